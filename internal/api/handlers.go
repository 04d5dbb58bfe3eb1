package api

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/vrsandeep/homebase/internal/store"
)

// getListParams extracts all query params for list endpoints.
func getListParams(r *http.Request) store.ListOptions {
	q := r.URL.Query()
	page, _ := strconv.Atoi(q.Get("page"))
	if page < 1 {
		page = 1
	}
	perPage, _ := strconv.Atoi(q.Get("per_page"))
	if perPage <= 0 {
		perPage = store.DefaultPerPage
	}
	return store.ListOptions{
		Search:   q.Get("search"),
		Tag:      q.Get("tag"),
		Status:   q.Get("status"),
		Favorite: boolParam(q.Get("favorite")),
		Archived: boolParam(q.Get("archived")),
		Page:     page,
		PerPage:  perPage,
		SortBy:   q.Get("sort_by"),
		SortDir:  q.Get("sort_dir"),
	}
}

// boolParam returns nil for an absent or unparsable flag.
func boolParam(raw string) *bool {
	if raw == "" {
		return nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return nil
	}
	return &v
}

// urlParamID parses a numeric path parameter.
func urlParamID(r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

// respondWithList writes a page of results with the total in X-Total-Count.
func respondWithList(w http.ResponseWriter, items interface{}, total int) {
	w.Header().Set("X-Total-Count", strconv.Itoa(total))
	RespondWithJSON(w, http.StatusOK, items)
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		RespondWithError(w, http.StatusBadRequest, "Invalid request payload")
		return false
	}
	return true
}
