package api

import (
	"errors"
	"net/http"
	"strings"

	"github.com/vrsandeep/homebase/internal/events"
	"github.com/vrsandeep/homebase/internal/fetch"
	"github.com/vrsandeep/homebase/internal/logger"
	"github.com/vrsandeep/homebase/internal/podcast"
	"github.com/vrsandeep/homebase/internal/store"
)

func (s *Server) handleListFeeds(w http.ResponseWriter, r *http.Request) {
	user := getUserFromContext(r)
	feeds, err := s.store.ListFeeds(user.ID)
	if err != nil {
		s.respondStoreError(w, err, "Podcasts")
		return
	}
	RespondWithJSON(w, http.StatusOK, feeds)
}

// handleSubscribe follows a feed URL. Subscribing twice is not an error:
// the existing feed comes back with 200 instead of 201.
func (s *Server) handleSubscribe(w http.ResponseWriter, r *http.Request) {
	user := getUserFromContext(r)
	var payload struct {
		URL string `json:"url"`
	}
	if !decodeJSON(w, r, &payload) {
		return
	}
	payload.URL = strings.TrimSpace(payload.URL)
	if _, err := fetch.ValidateURL(payload.URL); err != nil {
		RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	feed, err := s.podcasts.Subscribe(r.Context(), user.ID, payload.URL)
	if errors.Is(err, podcast.ErrAlreadySubscribed) {
		RespondWithJSON(w, http.StatusOK, feed)
		return
	}
	if err != nil {
		if errors.Is(err, store.ErrNotFound) || errors.Is(err, store.ErrAlreadyExists) {
			s.respondStoreError(w, err, "Podcast")
			return
		}
		s.respondFetchError(w, err, "Failed to subscribe", payload.URL)
		return
	}
	RespondWithJSON(w, http.StatusCreated, feed)
}

func (s *Server) handleGetFeed(w http.ResponseWriter, r *http.Request) {
	user := getUserFromContext(r)
	id, ok := urlParamID(r, "feedID")
	if !ok {
		RespondWithError(w, http.StatusBadRequest, "Invalid podcast ID")
		return
	}
	feed, err := s.store.GetFeed(user.ID, id)
	if err != nil {
		s.respondStoreError(w, err, "Podcast")
		return
	}
	RespondWithJSON(w, http.StatusOK, feed)
}

func (s *Server) handleUnsubscribe(w http.ResponseWriter, r *http.Request) {
	user := getUserFromContext(r)
	id, ok := urlParamID(r, "feedID")
	if !ok {
		RespondWithError(w, http.StatusBadRequest, "Invalid podcast ID")
		return
	}
	if err := s.store.DeleteFeed(user.ID, id); err != nil {
		s.respondStoreError(w, err, "Podcast")
		return
	}
	s.log.Info("Unsubscribed from feed", logger.Int64("user_id", user.ID), logger.Int64("feed_id", id))
	s.app.Bus().Emit(events.FeedsChanged, user.ID, map[string]int64{"id": id})
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleRefreshFeed(w http.ResponseWriter, r *http.Request) {
	user := getUserFromContext(r)
	id, ok := urlParamID(r, "feedID")
	if !ok {
		RespondWithError(w, http.StatusBadRequest, "Invalid podcast ID")
		return
	}
	added, err := s.podcasts.Refresh(r.Context(), user.ID, id)
	if errors.Is(err, store.ErrNotFound) {
		s.respondStoreError(w, err, "Podcast")
		return
	}
	if err != nil {
		s.respondFetchError(w, err, "Failed to refresh podcast", "")
		return
	}
	RespondWithJSON(w, http.StatusOK, map[string]int{"added": added})
}

func (s *Server) handleListFeedEpisodes(w http.ResponseWriter, r *http.Request) {
	user := getUserFromContext(r)
	id, ok := urlParamID(r, "feedID")
	if !ok {
		RespondWithError(w, http.StatusBadRequest, "Invalid podcast ID")
		return
	}
	if _, err := s.store.GetFeed(user.ID, id); err != nil {
		s.respondStoreError(w, err, "Podcast")
		return
	}
	episodes, total, err := s.store.ListEpisodes(user.ID, id, getListParams(r))
	if err != nil {
		s.respondStoreError(w, err, "Episodes")
		return
	}
	respondWithList(w, episodes, total)
}
