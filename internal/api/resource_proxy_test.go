package api_test

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vrsandeep/homebase/internal/testutil"
)

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			img.Set(x, y, color.RGBA{R: uint8(x), G: uint8(y), B: 200, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

// setupMockResourceServer creates a mock HTTP server that simulates external resources
func setupMockResourceServer(t *testing.T) *httptest.Server {
	art := pngBytes(t, 400, 200)
	mux := http.NewServeMux()

	mux.HandleFunc("/cover.png", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "image/png")
		w.Write(art)
	})

	// No content type; the proxy infers it from the extension.
	mux.HandleFunc("/bare.png", func(w http.ResponseWriter, r *http.Request) {
		w.Header()["Content-Type"] = nil
		w.Write(art)
	})

	mux.HandleFunc("/page.html", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Write([]byte(`<html><body>Test Page</body></html>`))
	})

	mux.HandleFunc("/broken.jpg", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "image/jpeg")
		w.Write([]byte("not really a jpeg"))
	})

	mux.HandleFunc("/error", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte("Not found"))
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func proxyPath(target string, extra string) string {
	return "/api/proxy/image?url=" + url.QueryEscape(target) + extra
}

func TestHandleProxyImage(t *testing.T) {
	server, _ := testutil.SetupTestServer(t)
	router := server.Router()
	cookie := testutil.CookieForUser(t, server, "testuser", "password", "user")
	upstream := setupMockResourceServer(t)

	t.Run("Passes image through", func(t *testing.T) {
		rr := doRequest(t, router, "GET", proxyPath(upstream.URL+"/cover.png", ""), nil, cookie)
		require.Equal(t, http.StatusOK, rr.Code)
		assert.Equal(t, "image/png", rr.Header().Get("Content-Type"))
		assert.Contains(t, rr.Header().Get("Cache-Control"), "max-age=86400")
		assert.Equal(t, pngBytes(t, 400, 200), rr.Body.Bytes())
	})

	t.Run("Resizes when w is given", func(t *testing.T) {
		rr := doRequest(t, router, "GET", proxyPath(upstream.URL+"/cover.png", "&w=100"), nil, cookie)
		require.Equal(t, http.StatusOK, rr.Code)
		assert.Equal(t, "image/jpeg", rr.Header().Get("Content-Type"))

		img, _, err := image.Decode(rr.Body)
		require.NoError(t, err)
		assert.Equal(t, 100, img.Bounds().Dx())
		assert.Equal(t, 50, img.Bounds().Dy())
	})

	t.Run("Infers content type from extension", func(t *testing.T) {
		rr := doRequest(t, router, "GET", proxyPath(upstream.URL+"/bare.png", ""), nil, cookie)
		require.Equal(t, http.StatusOK, rr.Code)
		assert.True(t, strings.HasPrefix(rr.Header().Get("Content-Type"), "image/"))
	})

	t.Run("Rejects non-images", func(t *testing.T) {
		rr := doRequest(t, router, "GET", proxyPath(upstream.URL+"/page.html", ""), nil, cookie)
		assert.Equal(t, http.StatusUnsupportedMediaType, rr.Code)
	})

	t.Run("Undecodable image with resize", func(t *testing.T) {
		rr := doRequest(t, router, "GET", proxyPath(upstream.URL+"/broken.jpg", "&w=50"), nil, cookie)
		assert.Equal(t, http.StatusUnprocessableEntity, rr.Code)
	})

	t.Run("Upstream status is forwarded", func(t *testing.T) {
		rr := doRequest(t, router, "GET", proxyPath(upstream.URL+"/error", ""), nil, cookie)
		assert.Equal(t, http.StatusNotFound, rr.Code)
		assert.NotEmpty(t, errorMessage(t, rr))
	})

	t.Run("Invalid parameters", func(t *testing.T) {
		cases := map[string]string{
			"missing url": "/api/proxy/image",
			"ftp scheme":  proxyPath("ftp://example.com/a.png", ""),
			"bad width":   proxyPath(upstream.URL+"/cover.png", "&w=abc"),
			"huge width":  proxyPath(upstream.URL+"/cover.png", "&w=100000"),
		}
		for name, path := range cases {
			t.Run(name, func(t *testing.T) {
				rr := doRequest(t, router, "GET", path, nil, cookie)
				assert.Equal(t, http.StatusBadRequest, rr.Code)
			})
		}
	})

	t.Run("Requires authentication", func(t *testing.T) {
		rr := doRequest(t, router, "GET", proxyPath(upstream.URL+"/cover.png", ""), nil, nil)
		assert.Equal(t, http.StatusUnauthorized, rr.Code)
	})
}
