package api_test

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vrsandeep/homebase/internal/testutil"
)

func TestRouter(t *testing.T) {
	server, _ := testutil.SetupTestServer(t)
	router := server.Router()

	t.Run("Health", func(t *testing.T) {
		rr := doRequest(t, router, "GET", "/api/health", nil, nil)
		require.Equal(t, http.StatusOK, rr.Code)
		assert.JSONEq(t, `{"status":"ok"}`, rr.Body.String())
	})

	t.Run("Pages", func(t *testing.T) {
		for _, path := range []string{"/", "/login", "/articles", "/articles/3", "/links", "/notes", "/books", "/podcasts", "/podcasts/1", "/player", "/admin"} {
			t.Run(path, func(t *testing.T) {
				rr := doRequest(t, router, "GET", path, nil, nil)
				require.Equal(t, http.StatusOK, rr.Code)
				assert.Contains(t, rr.Header().Get("Content-Type"), "text/html")
			})
		}
	})

	t.Run("Favicon", func(t *testing.T) {
		rr := doRequest(t, router, "GET", "/favicon.ico", nil, nil)
		assert.Equal(t, http.StatusOK, rr.Code)
	})

	t.Run("Metrics", func(t *testing.T) {
		doRequest(t, router, "GET", "/api/health", nil, nil)
		rr := doRequest(t, router, "GET", "/metrics", nil, nil)
		require.Equal(t, http.StatusOK, rr.Code)
		assert.Contains(t, rr.Body.String(), "homebase_")
	})

	t.Run("API requires a session", func(t *testing.T) {
		for _, path := range []string{"/api/articles", "/api/links", "/api/notes", "/api/books", "/api/podcasts", "/api/player", "/api/users/me", "/ws/events"} {
			rr := doRequest(t, router, "GET", path, nil, nil)
			assert.Equal(t, http.StatusUnauthorized, rr.Code, path)
		}
	})
}
