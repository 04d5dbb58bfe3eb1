// Package podcast fetches and normalizes podcast feeds, searches the
// directory and keeps subscriptions up to date.
package podcast

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/mmcdole/gofeed"

	"github.com/vrsandeep/homebase/internal/fetch"
	"github.com/vrsandeep/homebase/internal/models"
)

// UpstreamError reports a non-2xx answer from the feed host or directory.
type UpstreamError = fetch.UpstreamError

// UntitledEpisode is the title given to items that could not be normalized.
const UntitledEpisode = "Untitled episode"

const feedAccept = "application/rss+xml, application/atom+xml, application/xml;q=0.9, text/xml;q=0.9, */*;q=0.8"

// ParsedFeed is a feed's channel metadata with its normalized episodes.
type ParsedFeed struct {
	Feed     *models.Feed      `json:"feed"`
	Episodes []*models.Episode `json:"episodes"`
}

// FetchFeed downloads and parses the feed at feedURL.
func FetchFeed(ctx context.Context, client *fetch.Client, feedURL string) (*ParsedFeed, error) {
	body, err := client.GetBody(ctx, "feed", feedURL, feedAccept)
	if err != nil {
		return nil, err
	}
	return ParseFeed(body, feedURL)
}

// ParseFeed parses an RSS or Atom document. A fresh gofeed parser is used per
// call since parsers keep per-document state.
func ParseFeed(body []byte, feedURL string) (*ParsedFeed, error) {
	src, err := gofeed.NewParser().Parse(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("parse feed %s: %w", feedURL, err)
	}
	return normalize(src, feedURL), nil
}

func normalize(src *gofeed.Feed, feedURL string) *ParsedFeed {
	feed := &models.Feed{
		URL:         feedURL,
		Title:       strings.TrimSpace(src.Title),
		Author:      feedAuthor(src),
		Description: strings.TrimSpace(src.Description),
		ArtworkURL:  feedArtwork(src),
		WebsiteURL:  src.Link,
	}
	if feed.Description == "" && src.ITunesExt != nil {
		feed.Description = strings.TrimSpace(src.ITunesExt.Summary)
	}

	episodes := make([]*models.Episode, 0, len(src.Items))
	for _, item := range src.Items {
		episodes = append(episodes, normalizeItem(item, feed.ArtworkURL))
	}
	return &ParsedFeed{Feed: feed, Episodes: episodes}
}

func feedAuthor(src *gofeed.Feed) string {
	if src.ITunesExt != nil && strings.TrimSpace(src.ITunesExt.Author) != "" {
		return strings.TrimSpace(src.ITunesExt.Author)
	}
	for _, p := range src.Authors {
		if p == nil {
			continue
		}
		if p.Name != "" {
			return p.Name
		}
		if p.Email != "" {
			return p.Email
		}
	}
	return ""
}

func feedArtwork(src *gofeed.Feed) string {
	if src.ITunesExt != nil && src.ITunesExt.Image != "" {
		return src.ITunesExt.Image
	}
	if src.Image != nil {
		return src.Image.URL
	}
	return ""
}

// normalizeItem never fails: a malformed item becomes a placeholder so one
// bad entry cannot sink the whole feed.
func normalizeItem(item *gofeed.Item, fallbackImage string) (ep *models.Episode) {
	defer func() {
		if r := recover(); r != nil {
			ep = placeholderEpisode()
		}
	}()

	ep = &models.Episode{
		GUID:        resolveGUID(item),
		Title:       strings.TrimSpace(item.Title),
		Description: item.Description,
		AudioURL:    audioURL(item),
		ImageURL:    fallbackImage,
	}
	if ep.Title == "" {
		ep.Title = UntitledEpisode
	}
	if ep.Description == "" {
		ep.Description = item.Content
	}
	switch {
	case item.PublishedParsed != nil:
		t := item.PublishedParsed.UTC()
		ep.PublishedAt = &t
	case item.UpdatedParsed != nil:
		t := item.UpdatedParsed.UTC()
		ep.PublishedAt = &t
	}
	if item.Image != nil && item.Image.URL != "" {
		ep.ImageURL = item.Image.URL
	}
	if it := item.ITunesExt; it != nil {
		ep.Duration = ParseDuration(it.Duration)
		if it.Image != "" {
			ep.ImageURL = it.Image
		}
		if ep.Description == "" {
			ep.Description = it.Summary
		}
	}
	return ep
}

func placeholderEpisode() *models.Episode {
	return &models.Episode{GUID: "generated-" + uuid.NewString(), Title: UntitledEpisode}
}

// guidSpace namespaces the name-based UUIDs of items without an identity.
var guidSpace = uuid.MustParse("6f1d0c3e-5b7a-4c41-9f4e-2a8d1b7c9e30")

// resolveGUID picks the item's identity: the guid element, then the link,
// then a placeholder derived from the item's content so that re-reading
// the same item yields the same key.
func resolveGUID(item *gofeed.Item) string {
	if g := strings.TrimSpace(item.GUID); g != "" {
		return g
	}
	if l := strings.TrimSpace(item.Link); l != "" {
		return l
	}
	return generatedGUID(item)
}

func generatedGUID(item *gofeed.Item) string {
	published := item.Published
	if item.PublishedParsed != nil {
		published = item.PublishedParsed.UTC().Format(time.RFC3339)
	}
	key := strings.Join([]string{item.Title, published, audioURL(item), item.Description}, "\x00")
	return "generated-" + uuid.NewSHA1(guidSpace, []byte(key)).String()
}

// audioURL returns the first audio enclosure, or failing that the first
// enclosure of any type.
func audioURL(item *gofeed.Item) string {
	first := ""
	for _, enc := range item.Enclosures {
		if enc == nil || enc.URL == "" {
			continue
		}
		if strings.HasPrefix(strings.ToLower(enc.Type), "audio/") {
			return enc.URL
		}
		if first == "" {
			first = enc.URL
		}
	}
	return first
}
