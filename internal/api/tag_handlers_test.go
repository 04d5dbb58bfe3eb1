package api_test

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vrsandeep/homebase/internal/models"
	"github.com/vrsandeep/homebase/internal/testutil"
)

func TestTagHandlers(t *testing.T) {
	server, _ := testutil.SetupTestServer(t)
	router := server.Router()
	cookie := testutil.CookieForUser(t, server, "testuser", "password", "user")
	userID := testutil.UserID(t, server, "testuser")

	_, err := server.Store().CreateNote(userID, &models.Note{Content: "a", Tags: models.Tags{"garden", "ideas"}})
	require.NoError(t, err)
	_, err = server.Store().CreateLink(userID, &models.Link{URL: "https://example.com", Title: "x", Tags: models.Tags{"garden"}})
	require.NoError(t, err)
	content := "<p>x</p>"
	_, err = server.Store().CreateArticle(userID, &models.Article{URL: "https://example.com/a", Title: "a", Content: &content, Tags: models.Tags{"Garden"}})
	require.NoError(t, err)

	rr := doRequest(t, router, "GET", "/api/tags", nil, cookie)
	require.Equal(t, http.StatusOK, rr.Code)

	var tags []models.TagCount
	decodeBody(t, rr, &tags)
	require.Len(t, tags, 2)
	assert.Equal(t, models.TagCount{Name: "garden", Count: 3}, tags[0])
	assert.Equal(t, models.TagCount{Name: "ideas", Count: 1}, tags[1])

	t.Run("Unauthenticated", func(t *testing.T) {
		rr := doRequest(t, router, "GET", "/api/tags", nil, nil)
		assert.Equal(t, http.StatusUnauthorized, rr.Code)
	})
}
