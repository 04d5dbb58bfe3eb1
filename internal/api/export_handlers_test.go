package api_test

import (
	"archive/zip"
	"bytes"
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vrsandeep/homebase/internal/models"
	"github.com/vrsandeep/homebase/internal/testutil"
)

func TestExportHandler(t *testing.T) {
	server, _ := testutil.SetupTestServer(t)
	cookie := testutil.CookieForUser(t, server, "exporter", "password", "user")
	userID := testutil.UserID(t, server, "exporter")

	_, err := server.Store().CreateNote(userID, &models.Note{Content: "# Seed list\n- chard", Tags: models.Tags{"garden"}})
	require.NoError(t, err)
	_, err = server.Store().CreateLink(userID, &models.Link{URL: "https://example.com", Title: "Example"})
	require.NoError(t, err)

	rr := doRequest(t, server.Router(), "GET", "/api/export", nil, cookie)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	assert.Equal(t, "application/zip", rr.Header().Get("Content-Type"))
	assert.Contains(t, rr.Header().Get("Content-Disposition"), `filename="homebase-exporter-`)

	body := rr.Body.Bytes()
	zr, err := zip.NewReader(bytes.NewReader(body), int64(len(body)))
	require.NoError(t, err)

	files := map[string]string{}
	for _, f := range zr.File {
		rc, err := f.Open()
		require.NoError(t, err)
		data, err := io.ReadAll(rc)
		rc.Close()
		require.NoError(t, err)
		files[f.Name] = string(data)
	}

	var note string
	for name, data := range files {
		if strings.HasPrefix(name, "notes/") && strings.HasSuffix(name, ".md") {
			note = data
		}
	}
	require.NotEmpty(t, note, "no note in %v", files)
	assert.True(t, strings.HasPrefix(note, "---\n"))
	assert.Contains(t, note, "- chard")
	assert.Contains(t, note, "garden")

	t.Run("Requires a session", func(t *testing.T) {
		rr := doRequest(t, server.Router(), "GET", "/api/export", nil, nil)
		assert.Equal(t, http.StatusUnauthorized, rr.Code)
	})
}
