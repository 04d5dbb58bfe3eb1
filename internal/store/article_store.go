package store

import (
	"time"

	"github.com/vrsandeep/homebase/internal/models"
)

const articleColumns = `id, user_id, url, title, content, text_content, excerpt, image, tags,
	favorite, archived, created_at, updated_at`

var articleSorts = map[string]string{
	"created_at": "created_at",
	"updated_at": "updated_at",
	"title":      "title",
}

// CreateArticle inserts a new article for the user and returns the stored row.
func (s *Store) CreateArticle(userID int64, a *models.Article) (*models.Article, error) {
	now := time.Now().UTC()
	res, err := s.db.Exec(`
		INSERT INTO articles (user_id, url, title, content, text_content, excerpt, image, tags, favorite, archived, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		userID, a.URL, a.Title, a.Content, a.TextContent, a.Excerpt, a.Image, models.NewTags(a.Tags...),
		a.Favorite, a.Archived, now, now)
	if err != nil {
		return nil, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}
	return s.GetArticle(userID, id)
}

// GetArticle returns a single article owned by the user.
func (s *Store) GetArticle(userID, id int64) (*models.Article, error) {
	var a models.Article
	err := s.db.Get(&a, "SELECT "+articleColumns+" FROM articles WHERE id = ? AND user_id = ?", id, userID)
	if err != nil {
		return nil, notFound(err)
	}
	return &a, nil
}

// ListArticles returns one page of the user's articles and the total match count.
// The list omits the extracted body to keep responses small.
func (s *Store) ListArticles(userID int64, opts ListOptions) ([]*models.Article, int, error) {
	f := newFilter("user_id", userID)
	f.search(opts.Search, "title", "url", "excerpt", "text_content")
	f.tag(opts.Tag)
	f.flags(opts, "")
	articles := []*models.Article{}
	cols := "id, user_id, url, title, NULL AS content, NULL AS text_content, excerpt, image, tags, favorite, archived, created_at, updated_at"
	total, err := s.list(&articles, cols, "articles", f, opts, opts.orderBy(articleSorts, "created_at", "id"))
	if err != nil {
		return nil, 0, err
	}
	return articles, total, nil
}

// UpdateArticle overwrites the user-editable fields of an article.
func (s *Store) UpdateArticle(userID int64, a *models.Article) (*models.Article, error) {
	err := requireAffected(s.db.Exec(`
		UPDATE articles SET url = ?, title = ?, excerpt = ?, image = ?, tags = ?, favorite = ?, archived = ?, updated_at = ?
		WHERE id = ? AND user_id = ?`,
		a.URL, a.Title, a.Excerpt, a.Image, models.NewTags(a.Tags...), a.Favorite, a.Archived, time.Now().UTC(),
		a.ID, userID))
	if err != nil {
		return nil, err
	}
	return s.GetArticle(userID, a.ID)
}

// UpdateArticleContent replaces the extracted body of an article. Empty
// title, excerpt or image values keep what is already stored.
func (s *Store) UpdateArticleContent(userID, id int64, content, textContent, title, excerpt, image string) (*models.Article, error) {
	err := requireAffected(s.db.Exec(`
		UPDATE articles SET
			content = ?, text_content = ?,
			title = CASE WHEN ? <> '' THEN ? ELSE title END,
			excerpt = CASE WHEN ? <> '' THEN ? ELSE excerpt END,
			image = CASE WHEN ? <> '' THEN ? ELSE image END,
			updated_at = ?
		WHERE id = ? AND user_id = ?`,
		content, textContent, title, title, excerpt, excerpt, image, image, time.Now().UTC(), id, userID))
	if err != nil {
		return nil, err
	}
	return s.GetArticle(userID, id)
}

// DeleteArticle removes an article owned by the user.
func (s *Store) DeleteArticle(userID, id int64) error {
	return requireAffected(s.db.Exec("DELETE FROM articles WHERE id = ? AND user_id = ?", id, userID))
}
