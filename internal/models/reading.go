// Data structures for the reading side of the dashboard: saved articles,
// links, notes and books.

package models

import "time"

// Article is a saved web page, optionally with its extracted body.
type Article struct {
	ID          int64     `json:"id" db:"id"`
	UserID      int64     `json:"-" db:"user_id"`
	URL         string    `json:"url" db:"url"`
	Title       string    `json:"title" db:"title"`
	Content     *string   `json:"content,omitempty" db:"content"`
	TextContent *string   `json:"text_content,omitempty" db:"text_content"`
	Excerpt     string    `json:"excerpt" db:"excerpt"`
	Image       string    `json:"image" db:"image"`
	Tags        Tags      `json:"tags" db:"tags"`
	Favorite    bool      `json:"favorite" db:"favorite"`
	Archived    bool      `json:"archived" db:"archived"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" db:"updated_at"`
}

// Link is a bookmarked URL with its preview metadata.
type Link struct {
	ID          int64     `json:"id" db:"id"`
	UserID      int64     `json:"-" db:"user_id"`
	URL         string    `json:"url" db:"url"`
	Title       string    `json:"title" db:"title"`
	Description string    `json:"description" db:"description"`
	Image       string    `json:"image" db:"image"`
	Tags        Tags      `json:"tags" db:"tags"`
	Favorite    bool      `json:"favorite" db:"favorite"`
	Archived    bool      `json:"archived" db:"archived"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" db:"updated_at"`
}

// Note is a free-text markdown note.
type Note struct {
	ID        int64     `json:"id" db:"id"`
	UserID    int64     `json:"-" db:"user_id"`
	Content   string    `json:"content" db:"content"`
	Tags      Tags      `json:"tags" db:"tags"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// BookStatus is where a book sits on the reading shelf.
type BookStatus string

const (
	BookBacklog   BookStatus = "backlog"
	BookReading   BookStatus = "reading"
	BookFinished  BookStatus = "finished"
	BookAbandoned BookStatus = "abandoned"
)

// Valid reports whether s is one of the known statuses.
func (s BookStatus) Valid() bool {
	switch s {
	case BookBacklog, BookReading, BookFinished, BookAbandoned:
		return true
	}
	return false
}

// Book is an entry on the reading shelf.
type Book struct {
	ID         int64      `json:"id" db:"id"`
	UserID     int64      `json:"-" db:"user_id"`
	Title      string     `json:"title" db:"title"`
	Author     string     `json:"author" db:"author"`
	CoverURL   string     `json:"cover_url" db:"cover_url"`
	Status     BookStatus `json:"status" db:"status"`
	Rating     int        `json:"rating" db:"rating"`
	StartedAt  *time.Time `json:"started_at,omitempty" db:"started_at"`
	FinishedAt *time.Time `json:"finished_at,omitempty" db:"finished_at"`
	CreatedAt  time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at" db:"updated_at"`
}

// ApplyStatus moves the book to status, filling in the reading dates that
// the transition implies when they are not already set.
func (b *Book) ApplyStatus(status BookStatus, now time.Time) {
	b.Status = status
	switch status {
	case BookReading:
		if b.StartedAt == nil {
			b.StartedAt = &now
		}
	case BookFinished:
		if b.StartedAt == nil {
			b.StartedAt = &now
		}
		if b.FinishedAt == nil {
			b.FinishedAt = &now
		}
	}
}
