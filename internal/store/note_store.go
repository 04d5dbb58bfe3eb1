package store

import (
	"time"

	"github.com/vrsandeep/homebase/internal/models"
)

const noteColumns = "id, user_id, content, tags, created_at, updated_at"

var noteSorts = map[string]string{
	"created_at": "created_at",
	"updated_at": "updated_at",
}

// CreateNote inserts a note for the user.
func (s *Store) CreateNote(userID int64, n *models.Note) (*models.Note, error) {
	now := time.Now().UTC()
	res, err := s.db.Exec(
		"INSERT INTO notes (user_id, content, tags, created_at, updated_at) VALUES (?, ?, ?, ?, ?)",
		userID, n.Content, models.NewTags(n.Tags...), now, now)
	if err != nil {
		return nil, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}
	return s.GetNote(userID, id)
}

// GetNote returns a single note owned by the user.
func (s *Store) GetNote(userID, id int64) (*models.Note, error) {
	var n models.Note
	err := s.db.Get(&n, "SELECT "+noteColumns+" FROM notes WHERE id = ? AND user_id = ?", id, userID)
	if err != nil {
		return nil, notFound(err)
	}
	return &n, nil
}

// ListNotes returns one page of the user's notes, most recently edited first
// unless another order is requested.
func (s *Store) ListNotes(userID int64, opts ListOptions) ([]*models.Note, int, error) {
	f := newFilter("user_id", userID)
	f.search(opts.Search, "content")
	f.tag(opts.Tag)
	notes := []*models.Note{}
	total, err := s.list(&notes, noteColumns, "notes", f, opts, opts.orderBy(noteSorts, "updated_at", "id"))
	if err != nil {
		return nil, 0, err
	}
	return notes, total, nil
}

// UpdateNote replaces the content and tags of a note.
func (s *Store) UpdateNote(userID int64, n *models.Note) (*models.Note, error) {
	err := requireAffected(s.db.Exec(
		"UPDATE notes SET content = ?, tags = ?, updated_at = ? WHERE id = ? AND user_id = ?",
		n.Content, models.NewTags(n.Tags...), time.Now().UTC(), n.ID, userID))
	if err != nil {
		return nil, err
	}
	return s.GetNote(userID, n.ID)
}

// DeleteNote removes a note owned by the user.
func (s *Store) DeleteNote(userID, id int64) error {
	return requireAffected(s.db.Exec("DELETE FROM notes WHERE id = ? AND user_id = ?", id, userID))
}
