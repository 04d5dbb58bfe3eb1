package podcast

import (
	"strconv"
	"strings"
)

// maxDuration caps parsed values; longer claims are treated as malformed.
const maxDuration = 1000 * 60 * 60

// ParseDuration converts an itunes:duration value to whole seconds. It
// accepts "HH:MM:SS", "MM:SS" and plain seconds (fractions are dropped).
// Anything else, including values over maxDuration, yields 0.
func ParseDuration(raw string) int {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0
	}
	parts := strings.Split(raw, ":")
	if len(parts) > 3 {
		return 0
	}
	total := 0
	for i, p := range parts {
		last := i == len(parts)-1
		n, ok := parseComponent(p, last)
		if !ok || total > (maxDuration-n)/60 {
			return 0
		}
		total = total*60 + n
	}
	return total
}

// parseComponent parses one colon-separated field. Only the last field may
// carry a fractional part.
func parseComponent(p string, allowFraction bool) (int, bool) {
	if p == "" {
		return 0, false
	}
	if allowFraction && strings.Contains(p, ".") {
		f, err := strconv.ParseFloat(p, 64)
		if err != nil || f < 0 || f > maxDuration {
			return 0, false
		}
		return int(f), true
	}
	n, err := strconv.Atoi(p)
	if err != nil || n < 0 || n > maxDuration {
		return 0, false
	}
	return n, true
}
