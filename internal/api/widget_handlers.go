package api

import (
	"net/http"
)

func (s *Server) handleGetPokemon(w http.ResponseWriter, r *http.Request) {
	p, err := s.pokemon.Get(r.Context())
	if err != nil {
		s.respondFetchError(w, err, "Failed to fetch pokemon of the day", "")
		return
	}
	w.Header().Set("Cache-Control", "private, max-age=3600")
	RespondWithJSON(w, http.StatusOK, p)
}

// handleGetTrivia never fails; feeds that cannot be read are skipped.
func (s *Server) handleGetTrivia(w http.ResponseWriter, r *http.Request) {
	RespondWithJSON(w, http.StatusOK, map[string]interface{}{"items": s.trivia.Items(r.Context())})
}
