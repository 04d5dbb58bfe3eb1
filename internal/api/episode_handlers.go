package api

import (
	"net/http"

	"github.com/vrsandeep/homebase/internal/events"
	"github.com/vrsandeep/homebase/internal/models"
)

func (s *Server) handleGetEpisode(w http.ResponseWriter, r *http.Request) {
	user := getUserFromContext(r)
	id, ok := urlParamID(r, "episodeID")
	if !ok {
		RespondWithError(w, http.StatusBadRequest, "Invalid episode ID")
		return
	}
	episode, err := s.store.GetEpisode(user.ID, id)
	if err != nil {
		s.respondStoreError(w, err, "Episode")
		return
	}
	RespondWithJSON(w, http.StatusOK, episode)
}

func (s *Server) handleGetQueue(w http.ResponseWriter, r *http.Request) {
	user := getUserFromContext(r)
	episodes, err := s.store.ListQueue(user.ID)
	if err != nil {
		s.respondStoreError(w, err, "Queue")
		return
	}
	RespondWithJSON(w, http.StatusOK, episodes)
}

// handleUpdateEpisodeStatus toggles played, favorite, archived and queued.
// Flags missing from the payload keep their value.
func (s *Server) handleUpdateEpisodeStatus(w http.ResponseWriter, r *http.Request) {
	user := getUserFromContext(r)
	id, ok := urlParamID(r, "episodeID")
	if !ok {
		RespondWithError(w, http.StatusBadRequest, "Invalid episode ID")
		return
	}
	var upd models.EpisodeStatusUpdate
	if !decodeJSON(w, r, &upd) {
		return
	}
	if upd.Played == nil && upd.Favorite == nil && upd.Archived == nil && upd.Queued == nil {
		RespondWithError(w, http.StatusBadRequest, "No status fields given")
		return
	}
	episode, err := s.store.UpdateEpisodeStatus(user.ID, id, upd)
	if err != nil {
		s.respondStoreError(w, err, "Episode")
		return
	}
	s.app.Bus().Emit(events.EpisodesChanged, user.ID, map[string]int64{"id": id})
	RespondWithJSON(w, http.StatusOK, episode)
}

func (s *Server) handleUpdateEpisodePosition(w http.ResponseWriter, r *http.Request) {
	user := getUserFromContext(r)
	id, ok := urlParamID(r, "episodeID")
	if !ok {
		RespondWithError(w, http.StatusBadRequest, "Invalid episode ID")
		return
	}
	var payload struct {
		Position *float64 `json:"position"`
	}
	if !decodeJSON(w, r, &payload) {
		return
	}
	if payload.Position == nil {
		RespondWithError(w, http.StatusBadRequest, "Position is required")
		return
	}
	if err := s.store.UpdateEpisodePosition(user.ID, id, *payload.Position); err != nil {
		s.respondStoreError(w, err, "Episode")
		return
	}
	RespondWithJSON(w, http.StatusOK, map[string]string{"status": "success"})
}
