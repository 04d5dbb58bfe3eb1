package store

import (
	"fmt"
	"time"

	"github.com/vrsandeep/homebase/internal/models"
)

const bookColumns = `id, user_id, title, author, cover_url, status, rating, started_at, finished_at,
	created_at, updated_at`

var bookSorts = map[string]string{
	"created_at":  "created_at",
	"updated_at":  "updated_at",
	"title":       "title",
	"author":      "author",
	"rating":      "rating",
	"finished_at": "finished_at",
}

// CreateBook adds a book to the user's shelf. A missing status defaults to
// backlog, and the dates implied by the status are filled in.
func (s *Store) CreateBook(userID int64, b *models.Book) (*models.Book, error) {
	now := time.Now().UTC()
	status := b.Status
	if status == "" {
		status = models.BookBacklog
	}
	if !status.Valid() {
		return nil, fmt.Errorf("invalid book status %q", status)
	}
	book := *b
	book.ApplyStatus(status, now)
	res, err := s.db.Exec(`
		INSERT INTO books (user_id, title, author, cover_url, status, rating, started_at, finished_at, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		userID, book.Title, book.Author, book.CoverURL, book.Status, book.Rating, book.StartedAt, book.FinishedAt, now, now)
	if err != nil {
		return nil, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}
	return s.GetBook(userID, id)
}

// GetBook returns a single book owned by the user.
func (s *Store) GetBook(userID, id int64) (*models.Book, error) {
	var b models.Book
	err := s.db.Get(&b, "SELECT "+bookColumns+" FROM books WHERE id = ? AND user_id = ?", id, userID)
	if err != nil {
		return nil, notFound(err)
	}
	return &b, nil
}

// ListBooks returns one page of the user's books. opts.Status narrows the
// shelf to one status.
func (s *Store) ListBooks(userID int64, opts ListOptions) ([]*models.Book, int, error) {
	f := newFilter("user_id", userID)
	f.search(opts.Search, "title", "author")
	if opts.Status != "" {
		f.add("status = ?", opts.Status)
	}
	books := []*models.Book{}
	total, err := s.list(&books, bookColumns, "books", f, opts, opts.orderBy(bookSorts, "created_at", "id"))
	if err != nil {
		return nil, 0, err
	}
	return books, total, nil
}

// UpdateBook overwrites the descriptive fields of a book. Status changes go
// through UpdateBookStatus.
func (s *Store) UpdateBook(userID int64, b *models.Book) (*models.Book, error) {
	err := requireAffected(s.db.Exec(`
		UPDATE books SET title = ?, author = ?, cover_url = ?, rating = ?, updated_at = ?
		WHERE id = ? AND user_id = ?`,
		b.Title, b.Author, b.CoverURL, b.Rating, time.Now().UTC(), b.ID, userID))
	if err != nil {
		return nil, err
	}
	return s.GetBook(userID, b.ID)
}

// UpdateBookStatus moves a book to a new status inside a transaction so the
// date bookkeeping sees the current row.
func (s *Store) UpdateBookStatus(userID, id int64, status models.BookStatus) (*models.Book, error) {
	if !status.Valid() {
		return nil, fmt.Errorf("invalid book status %q", status)
	}
	tx, err := s.db.Beginx()
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	var b models.Book
	if err := tx.Get(&b, "SELECT "+bookColumns+" FROM books WHERE id = ? AND user_id = ?", id, userID); err != nil {
		return nil, notFound(err)
	}
	now := time.Now().UTC()
	b.ApplyStatus(status, now)
	_, err = tx.Exec("UPDATE books SET status = ?, started_at = ?, finished_at = ?, updated_at = ? WHERE id = ?",
		b.Status, b.StartedAt, b.FinishedAt, now, b.ID)
	if err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	b.UpdatedAt = now
	return &b, nil
}

// DeleteBook removes a book owned by the user.
func (s *Store) DeleteBook(userID, id int64) error {
	return requireAffected(s.db.Exec("DELETE FROM books WHERE id = ? AND user_id = ?", id, userID))
}
