package api

import (
	"errors"
	"net/http"
	"strings"

	"github.com/vrsandeep/homebase/internal/fetch"
	"github.com/vrsandeep/homebase/internal/logger"
	"github.com/vrsandeep/homebase/internal/podcast"
)

// requireURLParam reads and validates the url query parameter.
func requireURLParam(w http.ResponseWriter, r *http.Request) (string, bool) {
	raw := strings.TrimSpace(r.URL.Query().Get("url"))
	if raw == "" {
		RespondWithError(w, http.StatusBadRequest, "Missing 'url' parameter")
		return "", false
	}
	if _, err := fetch.ValidateURL(raw); err != nil {
		RespondWithError(w, http.StatusBadRequest, err.Error())
		return "", false
	}
	return raw, true
}

// handleArticleContent fetches a page and returns its readable content.
func (s *Server) handleArticleContent(w http.ResponseWriter, r *http.Request) {
	target, ok := requireURLParam(w, r)
	if !ok {
		return
	}
	content, err := s.extractor.Article(r.Context(), target)
	if err != nil {
		s.respondFetchError(w, err, "Failed to fetch article", target)
		return
	}
	RespondWithJSON(w, http.StatusOK, content)
}

// handlePodcastFeed fetches and normalizes a feed without subscribing.
func (s *Server) handlePodcastFeed(w http.ResponseWriter, r *http.Request) {
	target, ok := requireURLParam(w, r)
	if !ok {
		return
	}
	parsed, err := s.podcasts.Fetch(r.Context(), target)
	if err != nil {
		s.respondFetchError(w, err, "Failed to fetch podcast feed", target)
		return
	}
	RespondWithJSON(w, http.StatusOK, parsed)
}

// handlePodcastSearch queries the podcast directory.
func (s *Server) handlePodcastSearch(w http.ResponseWriter, r *http.Request) {
	term := r.URL.Query().Get("term")
	results, err := s.searcher.Search(r.Context(), term)
	if errors.Is(err, podcast.ErrEmptyTerm) {
		RespondWithError(w, http.StatusBadRequest, "Missing 'term' parameter")
		return
	}
	if err != nil {
		s.respondFetchError(w, err, "Failed to search podcasts", term)
		return
	}
	RespondWithJSON(w, http.StatusOK, map[string]interface{}{"podcasts": results})
}

// handleURLMetadata returns the preview metadata of a page.
func (s *Server) handleURLMetadata(w http.ResponseWriter, r *http.Request) {
	target, ok := requireURLParam(w, r)
	if !ok {
		return
	}
	meta, err := s.extractor.Metadata(r.Context(), target)
	if err != nil {
		s.respondFetchError(w, err, "Failed to fetch metadata", target)
		return
	}
	s.log.Debug("Fetched url metadata", logger.String("url", target))
	RespondWithJSON(w, http.StatusOK, meta)
}
