package extract

import (
	"bytes"
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/vrsandeep/homebase/internal/fetch"
)

// PageMetadata is the preview of a bookmarked link.
type PageMetadata struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Image       string `json:"image"`
}

var (
	titleSelectors = []string{
		"meta[property='og:title']",
		"meta[name='twitter:title']",
	}
	descriptionSelectors = []string{
		"meta[property='og:description']",
		"meta[name='twitter:description']",
		"meta[name='description']",
	}
	imageSelectors = []string{
		"meta[property='og:image']",
		"meta[property='og:image:url']",
		"meta[name='twitter:image']",
		"meta[name='twitter:image:src']",
	}
)

// Metadata fetches pageURL and reads its title, description and preview
// image.
func (e *Extractor) Metadata(ctx context.Context, pageURL string) (*PageMetadata, error) {
	base, err := fetch.ValidateURL(pageURL)
	if err != nil {
		return nil, err
	}
	body, err := e.client.GetBody(ctx, "metadata", pageURL, htmlAccept)
	if err != nil {
		return nil, err
	}
	return ParseMetadata(body, base)
}

// ParseMetadata reads link preview fields from an HTML document.
func ParseMetadata(body []byte, base *url.URL) (*PageMetadata, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}

	meta := &PageMetadata{
		Title:       firstContent(doc, titleSelectors),
		Description: firstContent(doc, descriptionSelectors),
		Image:       firstContent(doc, imageSelectors),
	}
	if meta.Title == "" {
		meta.Title = strings.TrimSpace(doc.Find("title").First().Text())
	}
	if meta.Title == "" {
		meta.Title = base.Host
	}
	if meta.Image == "" {
		meta.Image = firstAttr(doc, "href", "link[rel='image_src']", "link[rel='apple-touch-icon']")
	}
	meta.Image = resolve(base, meta.Image)
	return meta, nil
}

func firstContent(doc *goquery.Document, selectors []string) string {
	return firstAttr(doc, "content", selectors...)
}

func firstAttr(doc *goquery.Document, attr string, selectors ...string) string {
	for _, sel := range selectors {
		if v, ok := doc.Find(sel).First().Attr(attr); ok && strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
	}
	return ""
}

// resolve makes ref absolute against base; unparseable refs are dropped.
func resolve(base *url.URL, ref string) string {
	if ref == "" {
		return ""
	}
	u, err := url.Parse(ref)
	if err != nil {
		return ""
	}
	return base.ResolveReference(u).String()
}
