package api

import (
	"net/http"
	"strings"

	"github.com/vrsandeep/homebase/internal/events"
	"github.com/vrsandeep/homebase/internal/models"
)

type notePayload struct {
	Content string   `json:"content"`
	Tags    []string `json:"tags"`
}

func (s *Server) handleListNotes(w http.ResponseWriter, r *http.Request) {
	user := getUserFromContext(r)
	notes, total, err := s.store.ListNotes(user.ID, getListParams(r))
	if err != nil {
		s.respondStoreError(w, err, "Notes")
		return
	}
	respondWithList(w, notes, total)
}

func (s *Server) handleCreateNote(w http.ResponseWriter, r *http.Request) {
	user := getUserFromContext(r)
	var payload notePayload
	if !decodeJSON(w, r, &payload) {
		return
	}
	if strings.TrimSpace(payload.Content) == "" {
		RespondWithError(w, http.StatusBadRequest, "Note content is required")
		return
	}
	note, err := s.store.CreateNote(user.ID, &models.Note{Content: payload.Content, Tags: payload.Tags})
	if err != nil {
		s.respondStoreError(w, err, "Note")
		return
	}
	s.app.Bus().Emit(events.NotesChanged, user.ID, map[string]int64{"id": note.ID})
	RespondWithJSON(w, http.StatusCreated, note)
}

func (s *Server) handleGetNote(w http.ResponseWriter, r *http.Request) {
	user := getUserFromContext(r)
	id, ok := urlParamID(r, "noteID")
	if !ok {
		RespondWithError(w, http.StatusBadRequest, "Invalid note ID")
		return
	}
	note, err := s.store.GetNote(user.ID, id)
	if err != nil {
		s.respondStoreError(w, err, "Note")
		return
	}
	RespondWithJSON(w, http.StatusOK, note)
}

func (s *Server) handleUpdateNote(w http.ResponseWriter, r *http.Request) {
	user := getUserFromContext(r)
	id, ok := urlParamID(r, "noteID")
	if !ok {
		RespondWithError(w, http.StatusBadRequest, "Invalid note ID")
		return
	}
	var payload notePayload
	if !decodeJSON(w, r, &payload) {
		return
	}
	note, err := s.store.UpdateNote(user.ID, &models.Note{ID: id, Content: payload.Content, Tags: payload.Tags})
	if err != nil {
		s.respondStoreError(w, err, "Note")
		return
	}
	s.app.Bus().Emit(events.NotesChanged, user.ID, map[string]int64{"id": id})
	RespondWithJSON(w, http.StatusOK, note)
}

func (s *Server) handleDeleteNote(w http.ResponseWriter, r *http.Request) {
	user := getUserFromContext(r)
	id, ok := urlParamID(r, "noteID")
	if !ok {
		RespondWithError(w, http.StatusBadRequest, "Invalid note ID")
		return
	}
	if err := s.store.DeleteNote(user.ID, id); err != nil {
		s.respondStoreError(w, err, "Note")
		return
	}
	s.app.Bus().Emit(events.NotesChanged, user.ID, map[string]int64{"id": id})
	w.WriteHeader(http.StatusNoContent)
}
