// Package extract turns fetched web pages into readable article content
// and link previews.
package extract

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/url"
	"strings"
	"unicode/utf8"

	"github.com/go-shiori/go-readability"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/vrsandeep/homebase/internal/fetch"
)

// UpstreamError reports a non-2xx answer from the page's host.
type UpstreamError = fetch.UpstreamError

const htmlAccept = "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8"

// ArticleContent is the readable form of a page.
type ArticleContent struct {
	Content     string `json:"content"`
	TextContent string `json:"textContent"`
	Length      int    `json:"length"`
	Title       string `json:"title,omitempty"`
	Excerpt     string `json:"excerpt,omitempty"`
	Image       string `json:"image,omitempty"`
}

// Extractor fetches pages and extracts their content.
type Extractor struct {
	client *fetch.Client
}

func New(client *fetch.Client) *Extractor {
	return &Extractor{client: client}
}

// Article downloads pageURL and returns its main content.
func (e *Extractor) Article(ctx context.Context, pageURL string) (*ArticleContent, error) {
	resp, err := e.client.Get(ctx, "article", pageURL, htmlAccept)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, fetch.MaxBodySize))
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", pageURL, err)
	}
	return ParseArticle(body, resp.Request.URL)
}

// ParseArticle runs readability over an HTML document. When readability
// fails or finds nothing, the whole body is returned instead.
func ParseArticle(body []byte, pageURL *url.URL) (*ArticleContent, error) {
	parsed, err := readability.FromReader(bytes.NewReader(body), pageURL)
	if err == nil && strings.TrimSpace(parsed.Content) != "" {
		text := collapseSpace(parsed.TextContent)
		return &ArticleContent{
			Content:     strings.TrimSpace(parsed.Content),
			TextContent: text,
			Length:      utf8.RuneCountInString(text),
			Title:       strings.TrimSpace(parsed.Title),
			Excerpt:     strings.TrimSpace(parsed.Excerpt),
			Image:       parsed.Image,
		}, nil
	}
	return bodyFallback(body)
}

// bodyFallback returns the inner HTML of <body> with its visible text.
func bodyFallback(body []byte) (*ArticleContent, error) {
	doc, err := html.Parse(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}

	out := &ArticleContent{}
	if t := findFirst(doc, atom.Title); t != nil {
		out.Title = collapseSpace(textOf(t))
	}
	b := findFirst(doc, atom.Body)
	if b == nil {
		return out, nil
	}

	var buf bytes.Buffer
	for c := b.FirstChild; c != nil; c = c.NextSibling {
		if err := html.Render(&buf, c); err != nil {
			return nil, fmt.Errorf("render body: %w", err)
		}
	}
	out.Content = strings.TrimSpace(buf.String())
	out.TextContent = collapseSpace(textOf(b))
	out.Length = utf8.RuneCountInString(out.TextContent)
	return out, nil
}

func findFirst(n *html.Node, a atom.Atom) *html.Node {
	if n.Type == html.ElementNode && n.DataAtom == a {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := findFirst(c, a); found != nil {
			return found
		}
	}
	return nil
}

// textOf concatenates the text under n, skipping elements that never render.
func textOf(n *html.Node) string {
	var sb strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch n.DataAtom {
			case atom.Script, atom.Style, atom.Noscript, atom.Template:
				return
			}
		}
		if n.Type == html.TextNode {
			sb.WriteString(n.Data)
			sb.WriteByte(' ')
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return sb.String()
}

func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
