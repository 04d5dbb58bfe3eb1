package api

import (
	"net/http"
	"strings"

	"github.com/vrsandeep/homebase/internal/events"
	"github.com/vrsandeep/homebase/internal/fetch"
	"github.com/vrsandeep/homebase/internal/logger"
	"github.com/vrsandeep/homebase/internal/models"
)

type linkPayload struct {
	URL         string   `json:"url"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Image       string   `json:"image"`
	Tags        []string `json:"tags"`
	Favorite    bool     `json:"favorite"`
	Archived    bool     `json:"archived"`
}

func (p linkPayload) link(id int64) *models.Link {
	return &models.Link{
		ID:          id,
		URL:         strings.TrimSpace(p.URL),
		Title:       p.Title,
		Description: p.Description,
		Image:       p.Image,
		Tags:        p.Tags,
		Favorite:    p.Favorite,
		Archived:    p.Archived,
	}
}

func (s *Server) handleListLinks(w http.ResponseWriter, r *http.Request) {
	user := getUserFromContext(r)
	links, total, err := s.store.ListLinks(user.ID, getListParams(r))
	if err != nil {
		s.respondStoreError(w, err, "Links")
		return
	}
	respondWithList(w, links, total)
}

// handleCreateLink bookmarks a URL, filling empty preview fields from the
// page's metadata when it can be fetched.
func (s *Server) handleCreateLink(w http.ResponseWriter, r *http.Request) {
	user := getUserFromContext(r)
	var payload linkPayload
	if !decodeJSON(w, r, &payload) {
		return
	}
	link := payload.link(0)
	if _, err := fetch.ValidateURL(link.URL); err != nil {
		RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	if link.Title == "" || link.Description == "" || link.Image == "" {
		meta, err := s.extractor.Metadata(r.Context(), link.URL)
		if err != nil {
			s.log.Warn("Link metadata fetch failed; saving as given",
				logger.String("url", link.URL), logger.Error(err))
		} else {
			if link.Title == "" {
				link.Title = meta.Title
			}
			if link.Description == "" {
				link.Description = meta.Description
			}
			if link.Image == "" {
				link.Image = meta.Image
			}
		}
	}
	if link.Title == "" {
		link.Title = link.URL
	}

	created, err := s.store.CreateLink(user.ID, link)
	if err != nil {
		s.respondStoreError(w, err, "Link")
		return
	}
	s.app.Bus().Emit(events.LinksChanged, user.ID, map[string]int64{"id": created.ID})
	RespondWithJSON(w, http.StatusCreated, created)
}

func (s *Server) handleGetLink(w http.ResponseWriter, r *http.Request) {
	user := getUserFromContext(r)
	id, ok := urlParamID(r, "linkID")
	if !ok {
		RespondWithError(w, http.StatusBadRequest, "Invalid link ID")
		return
	}
	link, err := s.store.GetLink(user.ID, id)
	if err != nil {
		s.respondStoreError(w, err, "Link")
		return
	}
	RespondWithJSON(w, http.StatusOK, link)
}

func (s *Server) handleUpdateLink(w http.ResponseWriter, r *http.Request) {
	user := getUserFromContext(r)
	id, ok := urlParamID(r, "linkID")
	if !ok {
		RespondWithError(w, http.StatusBadRequest, "Invalid link ID")
		return
	}
	var payload linkPayload
	if !decodeJSON(w, r, &payload) {
		return
	}
	link := payload.link(id)
	if _, err := fetch.ValidateURL(link.URL); err != nil {
		RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}
	updated, err := s.store.UpdateLink(user.ID, link)
	if err != nil {
		s.respondStoreError(w, err, "Link")
		return
	}
	s.app.Bus().Emit(events.LinksChanged, user.ID, map[string]int64{"id": id})
	RespondWithJSON(w, http.StatusOK, updated)
}

func (s *Server) handleDeleteLink(w http.ResponseWriter, r *http.Request) {
	user := getUserFromContext(r)
	id, ok := urlParamID(r, "linkID")
	if !ok {
		RespondWithError(w, http.StatusBadRequest, "Invalid link ID")
		return
	}
	if err := s.store.DeleteLink(user.ID, id); err != nil {
		s.respondStoreError(w, err, "Link")
		return
	}
	s.app.Bus().Emit(events.LinksChanged, user.ID, map[string]int64{"id": id})
	w.WriteHeader(http.StatusNoContent)
}
