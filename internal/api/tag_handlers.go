package api

import (
	"net/http"
)

// handleListTags returns every tag the user has applied with its usage
// count across articles, links and notes.
func (s *Server) handleListTags(w http.ResponseWriter, r *http.Request) {
	user := getUserFromContext(r)
	tags, err := s.store.TagCounts(user.ID)
	if err != nil {
		s.respondStoreError(w, err, "Tags")
		return
	}
	RespondWithJSON(w, http.StatusOK, tags)
}
