package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestMiddleware_UsesRoutePattern(t *testing.T) {
	r := chi.NewRouter()
	r.Use(Middleware)
	r.Get("/api/notes/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})

	before := testutil.ToFloat64(HTTPRequests.WithLabelValues("GET", "/api/notes/{id}", "418"))
	for _, id := range []string{"1", "2"} {
		rr := httptest.NewRecorder()
		r.ServeHTTP(rr, httptest.NewRequest("GET", "/api/notes/"+id, nil))
		assert.Equal(t, http.StatusTeapot, rr.Code)
	}
	after := testutil.ToFloat64(HTTPRequests.WithLabelValues("GET", "/api/notes/{id}", "418"))
	assert.Equal(t, before+2, after)
}

func TestHandler_ExposesCollectors(t *testing.T) {
	UpstreamFetches.WithLabelValues("feed", OutcomeOK).Inc()
	rr := httptest.NewRecorder()
	Handler().ServeHTTP(rr, httptest.NewRequest("GET", "/metrics", nil))
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "homebase_upstream_fetches_total")
}
