package api_test

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vrsandeep/homebase/internal/config"
	"github.com/vrsandeep/homebase/internal/testutil"
	"github.com/vrsandeep/homebase/internal/widgets"
)

func TestWidgetHandlers(t *testing.T) {
	server, _, _ := setupWithUpstream(t)
	router := server.Router()
	cookie := testutil.CookieForUser(t, server, "testuser", "password", "user")

	t.Run("Pokemon of the day", func(t *testing.T) {
		rr := doRequest(t, router, "GET", "/api/widgets/pokemon", nil, cookie)
		require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
		assert.Equal(t, "private, max-age=3600", rr.Header().Get("Cache-Control"))

		var p widgets.Pokemon
		decodeBody(t, rr, &p)
		assert.Equal(t, "bulbasaur", p.Name)
		assert.Equal(t, []string{"grass", "poison"}, p.Types)
		assert.NotEmpty(t, p.Date)
	})

	t.Run("Trivia skips failing feeds", func(t *testing.T) {
		rr := doRequest(t, router, "GET", "/api/widgets/trivia", nil, cookie)
		require.Equal(t, http.StatusOK, rr.Code)

		var body struct {
			Items []widgets.TriviaItem `json:"items"`
		}
		decodeBody(t, rr, &body)
		require.Len(t, body.Items, 2)
		assert.Equal(t, "Newer fact", body.Items[0].Title)
		assert.Equal(t, "On this day", body.Items[0].Source)
		assert.Equal(t, "Older fact", body.Items[1].Title)
	})

	t.Run("Pokemon upstream down", func(t *testing.T) {
		server, _ := testutil.SetupTestServer(t, func(cfg *config.Config) {
			cfg.Widgets.PokeAPIURL = "http://127.0.0.1:1"
		})
		cookie := testutil.CookieForUser(t, server, "testuser", "password", "user")
		rr := doRequest(t, server.Router(), "GET", "/api/widgets/pokemon", nil, cookie)
		assert.Equal(t, http.StatusBadGateway, rr.Code)
	})
}
