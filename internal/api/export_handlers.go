package api

import (
	"bytes"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/vrsandeep/homebase/internal/export"
	"github.com/vrsandeep/homebase/internal/logger"
)

// handleExport streams the user's notes, articles and links as a zip of
// markdown files. The archive is built in memory first so a failure can
// still produce a JSON error.
func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	user := getUserFromContext(r)

	var buf bytes.Buffer
	sum, err := export.Write(r.Context(), s.store, user.ID, &buf)
	if err != nil {
		s.log.Error("Export failed", logger.Int64("user_id", user.ID), logger.Error(err))
		RespondWithError(w, http.StatusInternalServerError, "Failed to build export")
		return
	}
	s.log.Info("Export built",
		logger.Int64("user_id", user.ID),
		logger.Int("notes", sum.Notes),
		logger.Int("articles", sum.Articles),
		logger.Int("links", sum.Links))

	name := fmt.Sprintf("homebase-%s-%s.zip", user.Username, time.Now().UTC().Format("20060102"))
	w.Header().Set("Content-Type", "application/zip")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.WriteHeader(http.StatusOK)
	w.Write(buf.Bytes())
}
