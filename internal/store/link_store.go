package store

import (
	"time"

	"github.com/vrsandeep/homebase/internal/models"
)

const linkColumns = "id, user_id, url, title, description, image, tags, favorite, archived, created_at, updated_at"

var linkSorts = map[string]string{
	"created_at": "created_at",
	"updated_at": "updated_at",
	"title":      "title",
}

// CreateLink inserts a bookmark for the user.
func (s *Store) CreateLink(userID int64, l *models.Link) (*models.Link, error) {
	now := time.Now().UTC()
	res, err := s.db.Exec(`
		INSERT INTO links (user_id, url, title, description, image, tags, favorite, archived, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		userID, l.URL, l.Title, l.Description, l.Image, models.NewTags(l.Tags...), l.Favorite, l.Archived, now, now)
	if err != nil {
		return nil, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}
	return s.GetLink(userID, id)
}

// GetLink returns a single link owned by the user.
func (s *Store) GetLink(userID, id int64) (*models.Link, error) {
	var l models.Link
	err := s.db.Get(&l, "SELECT "+linkColumns+" FROM links WHERE id = ? AND user_id = ?", id, userID)
	if err != nil {
		return nil, notFound(err)
	}
	return &l, nil
}

// ListLinks returns one page of the user's links and the total match count.
func (s *Store) ListLinks(userID int64, opts ListOptions) ([]*models.Link, int, error) {
	f := newFilter("user_id", userID)
	f.search(opts.Search, "title", "url", "description")
	f.tag(opts.Tag)
	f.flags(opts, "")
	links := []*models.Link{}
	total, err := s.list(&links, linkColumns, "links", f, opts, opts.orderBy(linkSorts, "created_at", "id"))
	if err != nil {
		return nil, 0, err
	}
	return links, total, nil
}

// UpdateLink overwrites the editable fields of a link.
func (s *Store) UpdateLink(userID int64, l *models.Link) (*models.Link, error) {
	err := requireAffected(s.db.Exec(`
		UPDATE links SET url = ?, title = ?, description = ?, image = ?, tags = ?, favorite = ?, archived = ?, updated_at = ?
		WHERE id = ? AND user_id = ?`,
		l.URL, l.Title, l.Description, l.Image, models.NewTags(l.Tags...), l.Favorite, l.Archived, time.Now().UTC(),
		l.ID, userID))
	if err != nil {
		return nil, err
	}
	return s.GetLink(userID, l.ID)
}

// DeleteLink removes a link owned by the user.
func (s *Store) DeleteLink(userID, id int64) error {
	return requireAffected(s.db.Exec("DELETE FROM links WHERE id = ? AND user_id = ?", id, userID))
}
