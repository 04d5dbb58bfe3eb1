// Helper functions for sending standardized JSON responses.

package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/vrsandeep/homebase/internal/fetch"
	"github.com/vrsandeep/homebase/internal/logger"
	"github.com/vrsandeep/homebase/internal/store"
)

// RespondWithJSON writes a JSON response with the given status code and payload.
func RespondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	response, err := json.Marshal(payload)
	if err != nil {
		RespondWithError(w, http.StatusInternalServerError, "Failed to marshal response")
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	w.Write(response)
}

// RespondWithError writes a standardized JSON error response.
func RespondWithError(w http.ResponseWriter, code int, message string) {
	RespondWithJSON(w, code, map[string]string{"error": message})
}

// respondStoreError maps store sentinels to status codes. what names the
// entity in the error message, e.g. "Article".
func (s *Server) respondStoreError(w http.ResponseWriter, err error, what string) {
	switch {
	case errors.Is(err, store.ErrNotFound):
		RespondWithError(w, http.StatusNotFound, what+" not found")
	case errors.Is(err, store.ErrAlreadyExists):
		RespondWithError(w, http.StatusConflict, what+" already exists")
	default:
		s.log.Error("Store operation failed", logger.String("entity", what), logger.Error(err))
		RespondWithError(w, http.StatusInternalServerError, "Failed to process "+what)
	}
}

// fetchErrorStatus picks the response status for a failed outbound fetch:
// 400 for a rejected URL, the upstream status for a non-2xx answer, 502
// for network failures.
func fetchErrorStatus(err error) int {
	var upstream *fetch.UpstreamError
	switch {
	case errors.Is(err, fetch.ErrInvalidURL), errors.Is(err, fetch.ErrPrivateHost):
		return http.StatusBadRequest
	case errors.As(err, &upstream):
		return upstream.Status
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return http.StatusBadGateway
	case isNetworkError(err):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func isNetworkError(err error) bool {
	var netErr interface{ Timeout() bool }
	return errors.As(err, &netErr)
}

// respondFetchError logs the failure and replies with fetchErrorStatus.
func (s *Server) respondFetchError(w http.ResponseWriter, err error, message, target string) {
	status := fetchErrorStatus(err)
	s.log.Error(message, logger.String("url", target), logger.Int("status", status), logger.Error(err))
	RespondWithError(w, status, message+": "+err.Error())
}
