package api

import (
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/vrsandeep/homebase/internal/artwork"
	"github.com/vrsandeep/homebase/internal/fetch"
	"github.com/vrsandeep/homebase/internal/logger"
)

// handleProxyImage serves remote artwork through the server so pages do not
// hotlink podcast hosts or trip mixed-content rules.
//
// Query parameters:
//   - url: (required) the image URL
//   - w: (optional) resize to this width, keeping aspect ratio
func (s *Server) handleProxyImage(w http.ResponseWriter, r *http.Request) {
	target, ok := requireURLParam(w, r)
	if !ok {
		return
	}

	var width uint
	if raw := r.URL.Query().Get("w"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 || uint(n) > artwork.MaxWidth {
			RespondWithError(w, http.StatusBadRequest, "Invalid 'w' parameter")
			return
		}
		width = uint(n)
	}

	resp, err := s.client.Get(r.Context(), "image", target, "image/*")
	if err != nil {
		s.respondFetchError(w, err, "Failed to fetch image", target)
		return
	}
	defer resp.Body.Close()

	contentType := resp.Header.Get("Content-Type")
	// Trim any charset or other parameters
	if i := strings.Index(contentType, ";"); i >= 0 {
		contentType = strings.TrimSpace(contentType[:i])
	}
	if contentType == "" {
		contentType = inferContentType(target)
	}
	if !strings.HasPrefix(contentType, "image/") {
		RespondWithError(w, http.StatusUnsupportedMediaType, "Resource is not an image")
		return
	}

	if width == 0 || contentType == "image/svg+xml" {
		w.Header().Set("Content-Type", contentType)
		w.Header().Set("Cache-Control", "public, max-age=86400")
		if _, err := io.Copy(w, io.LimitReader(resp.Body, fetch.MaxBodySize)); err != nil {
			// Response already started, can't send error
			s.log.Warn("Error copying proxied image", logger.String("url", target), logger.Error(err))
		}
		return
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, fetch.MaxBodySize))
	if err != nil {
		s.respondFetchError(w, err, "Failed to read image", target)
		return
	}
	resized, err := artwork.Resize(data, width)
	if err != nil {
		s.log.Warn("Failed to resize image", logger.String("url", target), logger.Error(err))
		RespondWithError(w, http.StatusUnprocessableEntity, "Could not decode image")
		return
	}
	w.Header().Set("Content-Type", "image/jpeg")
	w.Header().Set("Cache-Control", "public, max-age=86400")
	w.Write(resized)
}

// inferContentType tries to infer content type from URL extension
func inferContentType(url string) string {
	lowerURL := strings.ToLower(url)
	if i := strings.IndexAny(lowerURL, "?#"); i >= 0 {
		lowerURL = lowerURL[:i]
	}
	switch {
	case strings.HasSuffix(lowerURL, ".jpg") || strings.HasSuffix(lowerURL, ".jpeg"):
		return "image/jpeg"
	case strings.HasSuffix(lowerURL, ".png"):
		return "image/png"
	case strings.HasSuffix(lowerURL, ".gif"):
		return "image/gif"
	case strings.HasSuffix(lowerURL, ".webp"):
		return "image/webp"
	case strings.HasSuffix(lowerURL, ".svg"):
		return "image/svg+xml"
	default:
		return "application/octet-stream"
	}
}
