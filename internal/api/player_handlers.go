package api

import (
	"errors"
	"net/http"

	"github.com/vrsandeep/homebase/internal/logger"
	"github.com/vrsandeep/homebase/internal/models"
	"github.com/vrsandeep/homebase/internal/playback"
	"github.com/vrsandeep/homebase/internal/store"
)

// respondPlayer writes the state after a controller call, mapping the
// controller's errors to status codes.
func (s *Server) respondPlayer(w http.ResponseWriter, state models.PlayerState, err error) {
	switch {
	case err == nil:
		RespondWithJSON(w, http.StatusOK, state)
	case errors.Is(err, playback.ErrNothingLoaded):
		RespondWithError(w, http.StatusConflict, err.Error())
	case errors.Is(err, playback.ErrNoAudio):
		RespondWithError(w, http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, playback.ErrUnknownSignal):
		RespondWithError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, store.ErrNotFound):
		RespondWithError(w, http.StatusNotFound, "Episode not found")
	default:
		s.log.Error("Player operation failed", logger.Error(err))
		RespondWithError(w, http.StatusInternalServerError, "Player operation failed")
	}
}

func (s *Server) handleGetPlayerState(w http.ResponseWriter, r *http.Request) {
	user := getUserFromContext(r)
	RespondWithJSON(w, http.StatusOK, s.players.For(user.ID).State())
}

func (s *Server) handlePlayerPlay(w http.ResponseWriter, r *http.Request) {
	user := getUserFromContext(r)
	var payload struct {
		EpisodeID int64 `json:"episode_id"`
	}
	if !decodeJSON(w, r, &payload) {
		return
	}
	if payload.EpisodeID <= 0 {
		RespondWithError(w, http.StatusBadRequest, "episode_id is required")
		return
	}
	state, err := s.players.For(user.ID).Play(r.Context(), payload.EpisodeID)
	s.respondPlayer(w, state, err)
}

func (s *Server) handlePlayerPause(w http.ResponseWriter, r *http.Request) {
	user := getUserFromContext(r)
	state, err := s.players.For(user.ID).Pause(r.Context())
	s.respondPlayer(w, state, err)
}

func (s *Server) handlePlayerStop(w http.ResponseWriter, r *http.Request) {
	user := getUserFromContext(r)
	state, err := s.players.For(user.ID).Stop(r.Context())
	s.respondPlayer(w, state, err)
}

func (s *Server) handlePlayerSeek(w http.ResponseWriter, r *http.Request) {
	user := getUserFromContext(r)
	var payload struct {
		Position *float64 `json:"position"`
	}
	if !decodeJSON(w, r, &payload) {
		return
	}
	if payload.Position == nil {
		RespondWithError(w, http.StatusBadRequest, "position is required")
		return
	}
	state, err := s.players.For(user.ID).Seek(*payload.Position)
	s.respondPlayer(w, state, err)
}

func (s *Server) handlePlayerSkip(w http.ResponseWriter, r *http.Request) {
	user := getUserFromContext(r)
	var payload struct {
		Seconds float64 `json:"seconds"`
	}
	if !decodeJSON(w, r, &payload) {
		return
	}
	state, err := s.players.For(user.ID).Skip(payload.Seconds)
	s.respondPlayer(w, state, err)
}

func (s *Server) handlePlayerRate(w http.ResponseWriter, r *http.Request) {
	user := getUserFromContext(r)
	var payload struct {
		Rate float64 `json:"rate"`
	}
	if !decodeJSON(w, r, &payload) {
		return
	}
	if payload.Rate <= 0 {
		RespondWithError(w, http.StatusBadRequest, "rate must be positive")
		return
	}
	state, err := s.players.For(user.ID).SetRate(payload.Rate)
	s.respondPlayer(w, state, err)
}

// handlePlayerReport takes the browser audio element's events.
func (s *Server) handlePlayerReport(w http.ResponseWriter, r *http.Request) {
	user := getUserFromContext(r)
	var payload struct {
		Event    string   `json:"event"`
		Position *float64 `json:"position"`
		Duration *float64 `json:"duration"`
	}
	if !decodeJSON(w, r, &payload) {
		return
	}
	state, err := s.players.For(user.ID).Report(payload.Event, payload.Position, payload.Duration)
	s.respondPlayer(w, state, err)
}
