package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

// Tags is a set of lower-cased labels, persisted as a JSON array.
type Tags []string

// NewTags normalizes raw labels: trims, lower-cases, drops empties and
// duplicates, and sorts the result.
func NewTags(raw ...string) Tags {
	seen := make(map[string]bool, len(raw))
	tags := Tags{}
	for _, t := range raw {
		t = strings.ToLower(strings.TrimSpace(t))
		if t == "" || seen[t] {
			continue
		}
		seen[t] = true
		tags = append(tags, t)
	}
	sort.Strings(tags)
	return tags
}

// Has reports whether the set contains tag (case-insensitive).
func (t Tags) Has(tag string) bool {
	tag = strings.ToLower(strings.TrimSpace(tag))
	for _, v := range t {
		if v == tag {
			return true
		}
	}
	return false
}

// Value implements driver.Valuer.
func (t Tags) Value() (driver.Value, error) {
	b, err := json.Marshal(NewTags(t...))
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Scan implements sql.Scanner.
func (t *Tags) Scan(src any) error {
	var raw []byte
	switch v := src.(type) {
	case nil:
		*t = Tags{}
		return nil
	case string:
		raw = []byte(v)
	case []byte:
		raw = v
	default:
		return fmt.Errorf("tags: unsupported source type %T", src)
	}
	if len(raw) == 0 {
		*t = Tags{}
		return nil
	}
	var out []string
	if err := json.Unmarshal(raw, &out); err != nil {
		return fmt.Errorf("tags: %w", err)
	}
	*t = NewTags(out...)
	return nil
}

// TagCount is a tag with the number of items carrying it.
type TagCount struct {
	Name  string `json:"name" db:"name"`
	Count int    `json:"count" db:"count"`
}
