package widgets

import (
	"bytes"
	"context"
	"sort"
	"strings"
	"time"

	"github.com/mmcdole/gofeed"

	"github.com/vrsandeep/homebase/internal/fetch"
	"github.com/vrsandeep/homebase/internal/logger"
)

// DefaultTriviaLimit applies when no positive limit is configured.
const DefaultTriviaLimit = 10

// TriviaItem is one entry of the trivia widget.
type TriviaItem struct {
	Title     string     `json:"title"`
	Link      string     `json:"link"`
	Summary   string     `json:"summary"`
	Source    string     `json:"source"`
	Published *time.Time `json:"published,omitempty"`
}

// Trivia merges the configured feeds into a single newest-first list.
type Trivia struct {
	client *fetch.Client
	feeds  []string
	limit  int
	log    logger.Logger
}

func NewTrivia(client *fetch.Client, feeds []string, limit int, log logger.Logger) *Trivia {
	if limit <= 0 {
		limit = DefaultTriviaLimit
	}
	if log == nil {
		log = logger.NewNop()
	}
	return &Trivia{client: client, feeds: feeds, limit: limit, log: log}
}

// Items returns the newest items across all feeds. A feed that fails is
// logged and skipped.
func (t *Trivia) Items(ctx context.Context) []TriviaItem {
	items := make([]TriviaItem, 0)
	for _, feedURL := range t.feeds {
		got, err := t.fetch(ctx, feedURL)
		if err != nil {
			t.log.Warn("Trivia feed failed", logger.String("url", feedURL), logger.Error(err))
			continue
		}
		items = append(items, got...)
	}

	sort.SliceStable(items, func(i, j int) bool {
		a, b := items[i].Published, items[j].Published
		switch {
		case a == nil:
			return false
		case b == nil:
			return true
		default:
			return a.After(*b)
		}
	})
	if len(items) > t.limit {
		items = items[:t.limit]
	}
	return items
}

func (t *Trivia) fetch(ctx context.Context, feedURL string) ([]TriviaItem, error) {
	body, err := t.client.GetBody(ctx, "widget", feedURL, "application/rss+xml, application/atom+xml, */*;q=0.8")
	if err != nil {
		return nil, err
	}
	feed, err := gofeed.NewParser().Parse(bytes.NewReader(body))
	if err != nil {
		return nil, err
	}

	out := make([]TriviaItem, 0, len(feed.Items))
	for _, it := range feed.Items {
		if it == nil {
			continue
		}
		item := TriviaItem{
			Title:   strings.TrimSpace(it.Title),
			Link:    it.Link,
			Summary: strings.TrimSpace(it.Description),
			Source:  strings.TrimSpace(feed.Title),
		}
		if p := it.PublishedParsed; p != nil {
			ts := p.UTC()
			item.Published = &ts
		} else if u := it.UpdatedParsed; u != nil {
			ts := u.UTC()
			item.Published = &ts
		}
		out = append(out, item)
	}
	return out, nil
}
