// Package export writes a user's notes, articles and links as a zip of
// markdown files with YAML front matter.
package export

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/gosimple/slug"
	"github.com/mholt/archives"
	"gopkg.in/yaml.v3"

	"github.com/vrsandeep/homebase/internal/extract"
	"github.com/vrsandeep/homebase/internal/models"
	"github.com/vrsandeep/homebase/internal/store"
)

// maxSlugLength keeps generated filenames well under filesystem limits.
const maxSlugLength = 80

// Source is the data an export reads.
type Source interface {
	ListNotes(userID int64, opts store.ListOptions) ([]*models.Note, int, error)
	ListArticles(userID int64, opts store.ListOptions) ([]*models.Article, int, error)
	GetArticle(userID, id int64) (*models.Article, error)
	ListLinks(userID int64, opts store.ListOptions) ([]*models.Link, int, error)
}

// Summary counts what an export wrote.
type Summary struct {
	Notes    int `json:"notes"`
	Articles int `json:"articles"`
	Links    int `json:"links"`
}

// FrontMatter is the YAML header of every exported file.
type FrontMatter struct {
	Title      string    `yaml:"title,omitempty"`
	Source     string    `yaml:"source,omitempty"`
	Tags       []string  `yaml:"tags,omitempty"`
	Favorite   bool      `yaml:"favorite,omitempty"`
	Archived   bool      `yaml:"archived,omitempty"`
	CreatedAt  time.Time `yaml:"created_at"`
	UpdatedAt  time.Time `yaml:"updated_at"`
	ExportedAt time.Time `yaml:"exported_at"`
}

// Write exports everything userID owns to w as a zip archive.
func Write(ctx context.Context, src Source, userID int64, w io.Writer) (Summary, error) {
	var sum Summary
	dir, err := os.MkdirTemp("", "homebase-export-")
	if err != nil {
		return sum, fmt.Errorf("create export dir: %w", err)
	}
	defer os.RemoveAll(dir)
	for _, kind := range []string{"notes", "articles", "links"} {
		if err := os.MkdirAll(filepath.Join(dir, kind), 0o755); err != nil {
			return sum, err
		}
	}

	ex := &exporter{dir: dir, now: time.Now().UTC(), used: make(map[string]bool)}
	if sum.Notes, err = ex.notes(src, userID); err != nil {
		return sum, err
	}
	if sum.Articles, err = ex.articles(src, userID); err != nil {
		return sum, err
	}
	if sum.Links, err = ex.links(src, userID); err != nil {
		return sum, err
	}

	files, err := archives.FilesFromDisk(ctx, nil, map[string]string{
		filepath.Join(dir, "notes"):    "notes",
		filepath.Join(dir, "articles"): "articles",
		filepath.Join(dir, "links"):    "links",
	})
	if err != nil {
		return sum, fmt.Errorf("collect export files: %w", err)
	}
	if err := (archives.Zip{}).Archive(ctx, w, files); err != nil {
		return sum, fmt.Errorf("write zip: %w", err)
	}
	return sum, nil
}

type exporter struct {
	dir  string
	now  time.Time
	used map[string]bool
}

func (e *exporter) notes(src Source, userID int64) (int, error) {
	count := 0
	err := paginate(func(opts store.ListOptions) (int, int, error) {
		notes, total, err := src.ListNotes(userID, opts)
		for _, n := range notes {
			title := noteTitle(n.Content)
			fm := FrontMatter{Title: title, Tags: n.Tags, CreatedAt: n.CreatedAt, UpdatedAt: n.UpdatedAt}
			if werr := e.write("notes", title, n.ID, fm, n.Content); werr != nil {
				return 0, 0, werr
			}
			count++
		}
		return len(notes), total, err
	})
	return count, err
}

func (e *exporter) articles(src Source, userID int64) (int, error) {
	var ids []int64
	err := paginate(func(opts store.ListOptions) (int, int, error) {
		list, total, err := src.ListArticles(userID, opts)
		for _, a := range list {
			ids = append(ids, a.ID)
		}
		return len(list), total, err
	})
	if err != nil {
		return 0, err
	}

	// Lists omit bodies, so each article is loaded on its own.
	for _, id := range ids {
		a, err := src.GetArticle(userID, id)
		if err != nil {
			return 0, err
		}
		body := fmt.Sprintf("*Content not extracted. Source: %s*\n", a.URL)
		if a.Content != nil && strings.TrimSpace(*a.Content) != "" {
			body = extract.Markdown(*a.Content)
		} else if a.TextContent != nil && *a.TextContent != "" {
			body = *a.TextContent
		}
		fm := FrontMatter{
			Title: a.Title, Source: a.URL, Tags: a.Tags,
			Favorite: a.Favorite, Archived: a.Archived,
			CreatedAt: a.CreatedAt, UpdatedAt: a.UpdatedAt,
		}
		if err := e.write("articles", a.Title, a.ID, fm, body); err != nil {
			return 0, err
		}
	}
	return len(ids), nil
}

func (e *exporter) links(src Source, userID int64) (int, error) {
	count := 0
	err := paginate(func(opts store.ListOptions) (int, int, error) {
		links, total, err := src.ListLinks(userID, opts)
		for _, l := range links {
			fm := FrontMatter{
				Title: l.Title, Source: l.URL, Tags: l.Tags,
				Favorite: l.Favorite, Archived: l.Archived,
				CreatedAt: l.CreatedAt, UpdatedAt: l.UpdatedAt,
			}
			if werr := e.write("links", l.Title, l.ID, fm, l.Description); werr != nil {
				return 0, 0, werr
			}
			count++
		}
		return len(links), total, err
	})
	return count, err
}

// paginate calls list for successive pages until all rows are seen.
func paginate(list func(opts store.ListOptions) (got, total int, err error)) error {
	seen := 0
	for page := 1; ; page++ {
		got, total, err := list(store.ListOptions{Page: page, PerPage: store.MaxPerPage, SortDir: "asc"})
		if err != nil {
			return err
		}
		seen += got
		if got == 0 || seen >= total {
			return nil
		}
	}
}

func (e *exporter) write(kind, title string, id int64, fm FrontMatter, body string) error {
	fm.ExportedAt = e.now
	header, err := yaml.Marshal(fm)
	if err != nil {
		return fmt.Errorf("marshal front matter: %w", err)
	}

	var sb strings.Builder
	sb.WriteString("---\n")
	sb.Write(header)
	sb.WriteString("---\n\n")
	sb.WriteString(strings.TrimSpace(body))
	sb.WriteString("\n")

	name := e.filename(kind, title, id)
	return os.WriteFile(filepath.Join(e.dir, kind, name), []byte(sb.String()), 0o644)
}

// filename slugs title, falling back to the kind and id, and appends the
// id when two entries share a slug.
func (e *exporter) filename(kind, title string, id int64) string {
	base := slug.Make(title)
	if len(base) > maxSlugLength {
		base = strings.Trim(base[:maxSlugLength], "-")
	}
	if base == "" {
		base = strings.TrimSuffix(kind, "s") + "-" + strconv.FormatInt(id, 10)
	}
	key := kind + "/" + base
	if e.used[key] {
		base = base + "-" + strconv.FormatInt(id, 10)
		key = kind + "/" + base
	}
	e.used[key] = true
	return base + ".md"
}

// noteTitle is the note's first non-empty line without heading marks.
func noteTitle(content string) string {
	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(strings.TrimLeft(strings.TrimSpace(line), "#"))
		if line != "" {
			return line
		}
	}
	return ""
}
