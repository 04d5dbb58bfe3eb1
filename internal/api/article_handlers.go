package api

import (
	"net/http"
	"strings"

	"github.com/vrsandeep/homebase/internal/events"
	"github.com/vrsandeep/homebase/internal/extract"
	"github.com/vrsandeep/homebase/internal/fetch"
	"github.com/vrsandeep/homebase/internal/logger"
	"github.com/vrsandeep/homebase/internal/models"
)

type articlePayload struct {
	URL      string   `json:"url"`
	Title    string   `json:"title"`
	Content  *string  `json:"content"`
	Excerpt  string   `json:"excerpt"`
	Image    string   `json:"image"`
	Tags     []string `json:"tags"`
	Favorite bool     `json:"favorite"`
	Archived bool     `json:"archived"`
}

func (s *Server) handleListArticles(w http.ResponseWriter, r *http.Request) {
	user := getUserFromContext(r)
	articles, total, err := s.store.ListArticles(user.ID, getListParams(r))
	if err != nil {
		s.respondStoreError(w, err, "Articles")
		return
	}
	respondWithList(w, articles, total)
}

// handleCreateArticle saves an article. When no content is supplied the page
// is fetched and extracted; a failed extraction still saves the article.
func (s *Server) handleCreateArticle(w http.ResponseWriter, r *http.Request) {
	user := getUserFromContext(r)
	var payload articlePayload
	if !decodeJSON(w, r, &payload) {
		return
	}
	payload.URL = strings.TrimSpace(payload.URL)
	if _, err := fetch.ValidateURL(payload.URL); err != nil {
		RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	article := &models.Article{
		URL:      payload.URL,
		Title:    payload.Title,
		Content:  payload.Content,
		Excerpt:  payload.Excerpt,
		Image:    payload.Image,
		Tags:     payload.Tags,
		Favorite: payload.Favorite,
		Archived: payload.Archived,
	}
	if article.Content == nil {
		content, err := s.extractor.Article(r.Context(), article.URL)
		if err != nil {
			s.log.Warn("Article extraction failed; saving without content",
				logger.String("url", article.URL), logger.Error(err))
		} else {
			applyExtracted(article, content)
		}
	}
	if article.Title == "" {
		article.Title = article.URL
	}

	created, err := s.store.CreateArticle(user.ID, article)
	if err != nil {
		s.respondStoreError(w, err, "Article")
		return
	}
	s.app.Bus().Emit(events.ArticlesChanged, user.ID, map[string]int64{"id": created.ID})
	RespondWithJSON(w, http.StatusCreated, created)
}

// applyExtracted copies extracted fields into fields the client left empty.
func applyExtracted(a *models.Article, c *extract.ArticleContent) {
	a.Content = &c.Content
	a.TextContent = &c.TextContent
	if a.Title == "" {
		a.Title = c.Title
	}
	if a.Excerpt == "" {
		a.Excerpt = c.Excerpt
	}
	if a.Image == "" {
		a.Image = c.Image
	}
}

func (s *Server) handleGetArticle(w http.ResponseWriter, r *http.Request) {
	user := getUserFromContext(r)
	id, ok := urlParamID(r, "articleID")
	if !ok {
		RespondWithError(w, http.StatusBadRequest, "Invalid article ID")
		return
	}
	article, err := s.store.GetArticle(user.ID, id)
	if err != nil {
		s.respondStoreError(w, err, "Article")
		return
	}
	RespondWithJSON(w, http.StatusOK, article)
}

func (s *Server) handleUpdateArticle(w http.ResponseWriter, r *http.Request) {
	user := getUserFromContext(r)
	id, ok := urlParamID(r, "articleID")
	if !ok {
		RespondWithError(w, http.StatusBadRequest, "Invalid article ID")
		return
	}
	var payload articlePayload
	if !decodeJSON(w, r, &payload) {
		return
	}
	if _, err := fetch.ValidateURL(payload.URL); err != nil {
		RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	updated, err := s.store.UpdateArticle(user.ID, &models.Article{
		ID:       id,
		URL:      payload.URL,
		Title:    payload.Title,
		Excerpt:  payload.Excerpt,
		Image:    payload.Image,
		Tags:     payload.Tags,
		Favorite: payload.Favorite,
		Archived: payload.Archived,
	})
	if err != nil {
		s.respondStoreError(w, err, "Article")
		return
	}
	s.app.Bus().Emit(events.ArticlesChanged, user.ID, map[string]int64{"id": id})
	RespondWithJSON(w, http.StatusOK, updated)
}

func (s *Server) handleDeleteArticle(w http.ResponseWriter, r *http.Request) {
	user := getUserFromContext(r)
	id, ok := urlParamID(r, "articleID")
	if !ok {
		RespondWithError(w, http.StatusBadRequest, "Invalid article ID")
		return
	}
	if err := s.store.DeleteArticle(user.ID, id); err != nil {
		s.respondStoreError(w, err, "Article")
		return
	}
	s.app.Bus().Emit(events.ArticlesChanged, user.ID, map[string]int64{"id": id})
	w.WriteHeader(http.StatusNoContent)
}

// handleRefetchArticle re-extracts the stored URL and replaces the body.
func (s *Server) handleRefetchArticle(w http.ResponseWriter, r *http.Request) {
	user := getUserFromContext(r)
	id, ok := urlParamID(r, "articleID")
	if !ok {
		RespondWithError(w, http.StatusBadRequest, "Invalid article ID")
		return
	}
	article, err := s.store.GetArticle(user.ID, id)
	if err != nil {
		s.respondStoreError(w, err, "Article")
		return
	}

	content, err := s.extractor.Article(r.Context(), article.URL)
	if err != nil {
		s.respondFetchError(w, err, "Failed to fetch article", article.URL)
		return
	}
	updated, err := s.store.UpdateArticleContent(user.ID, id,
		content.Content, content.TextContent, content.Title, content.Excerpt, content.Image)
	if err != nil {
		s.respondStoreError(w, err, "Article")
		return
	}
	s.app.Bus().Emit(events.ArticlesChanged, user.ID, map[string]int64{"id": id})
	RespondWithJSON(w, http.StatusOK, updated)
}
