package api

import (
	"net/http"
	"strings"

	"github.com/vrsandeep/homebase/internal/events"
	"github.com/vrsandeep/homebase/internal/models"
)

type bookPayload struct {
	Title    string            `json:"title"`
	Author   string            `json:"author"`
	CoverURL string            `json:"cover_url"`
	Status   models.BookStatus `json:"status"`
	Rating   int               `json:"rating"`
}

func (p bookPayload) validate() string {
	if strings.TrimSpace(p.Title) == "" {
		return "Book title is required"
	}
	if p.Status != "" && !p.Status.Valid() {
		return "Invalid book status"
	}
	if p.Rating < 0 || p.Rating > 5 {
		return "Rating must be between 0 and 5"
	}
	return ""
}

func (s *Server) handleListBooks(w http.ResponseWriter, r *http.Request) {
	user := getUserFromContext(r)
	opts := getListParams(r)
	if opts.Status != "" && !models.BookStatus(opts.Status).Valid() {
		RespondWithError(w, http.StatusBadRequest, "Invalid book status")
		return
	}
	books, total, err := s.store.ListBooks(user.ID, opts)
	if err != nil {
		s.respondStoreError(w, err, "Books")
		return
	}
	respondWithList(w, books, total)
}

func (s *Server) handleCreateBook(w http.ResponseWriter, r *http.Request) {
	user := getUserFromContext(r)
	var payload bookPayload
	if !decodeJSON(w, r, &payload) {
		return
	}
	if msg := payload.validate(); msg != "" {
		RespondWithError(w, http.StatusBadRequest, msg)
		return
	}
	book, err := s.store.CreateBook(user.ID, &models.Book{
		Title:    strings.TrimSpace(payload.Title),
		Author:   payload.Author,
		CoverURL: payload.CoverURL,
		Status:   payload.Status,
		Rating:   payload.Rating,
	})
	if err != nil {
		s.respondStoreError(w, err, "Book")
		return
	}
	s.app.Bus().Emit(events.BooksChanged, user.ID, map[string]int64{"id": book.ID})
	RespondWithJSON(w, http.StatusCreated, book)
}

func (s *Server) handleGetBook(w http.ResponseWriter, r *http.Request) {
	user := getUserFromContext(r)
	id, ok := urlParamID(r, "bookID")
	if !ok {
		RespondWithError(w, http.StatusBadRequest, "Invalid book ID")
		return
	}
	book, err := s.store.GetBook(user.ID, id)
	if err != nil {
		s.respondStoreError(w, err, "Book")
		return
	}
	RespondWithJSON(w, http.StatusOK, book)
}

// handleUpdateBook edits the descriptive fields. A status in the payload is
// applied too, so the edit form can save everything at once.
func (s *Server) handleUpdateBook(w http.ResponseWriter, r *http.Request) {
	user := getUserFromContext(r)
	id, ok := urlParamID(r, "bookID")
	if !ok {
		RespondWithError(w, http.StatusBadRequest, "Invalid book ID")
		return
	}
	var payload bookPayload
	if !decodeJSON(w, r, &payload) {
		return
	}
	if msg := payload.validate(); msg != "" {
		RespondWithError(w, http.StatusBadRequest, msg)
		return
	}
	book, err := s.store.UpdateBook(user.ID, &models.Book{
		ID:       id,
		Title:    strings.TrimSpace(payload.Title),
		Author:   payload.Author,
		CoverURL: payload.CoverURL,
		Rating:   payload.Rating,
	})
	if err != nil {
		s.respondStoreError(w, err, "Book")
		return
	}
	if payload.Status != "" && payload.Status != book.Status {
		if book, err = s.store.UpdateBookStatus(user.ID, id, payload.Status); err != nil {
			s.respondStoreError(w, err, "Book")
			return
		}
	}
	s.app.Bus().Emit(events.BooksChanged, user.ID, map[string]int64{"id": id})
	RespondWithJSON(w, http.StatusOK, book)
}

func (s *Server) handleUpdateBookStatus(w http.ResponseWriter, r *http.Request) {
	user := getUserFromContext(r)
	id, ok := urlParamID(r, "bookID")
	if !ok {
		RespondWithError(w, http.StatusBadRequest, "Invalid book ID")
		return
	}
	var payload struct {
		Status models.BookStatus `json:"status"`
	}
	if !decodeJSON(w, r, &payload) {
		return
	}
	if !payload.Status.Valid() {
		RespondWithError(w, http.StatusBadRequest, "Invalid book status")
		return
	}
	book, err := s.store.UpdateBookStatus(user.ID, id, payload.Status)
	if err != nil {
		s.respondStoreError(w, err, "Book")
		return
	}
	s.app.Bus().Emit(events.BooksChanged, user.ID, map[string]int64{"id": id})
	RespondWithJSON(w, http.StatusOK, book)
}

func (s *Server) handleDeleteBook(w http.ResponseWriter, r *http.Request) {
	user := getUserFromContext(r)
	id, ok := urlParamID(r, "bookID")
	if !ok {
		RespondWithError(w, http.StatusBadRequest, "Invalid book ID")
		return
	}
	if err := s.store.DeleteBook(user.ID, id); err != nil {
		s.respondStoreError(w, err, "Book")
		return
	}
	s.app.Bus().Emit(events.BooksChanged, user.ID, map[string]int64{"id": id})
	w.WriteHeader(http.StatusNoContent)
}
