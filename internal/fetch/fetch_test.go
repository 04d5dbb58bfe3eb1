package fetch

import (
	"context"
	"errors"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateURL(t *testing.T) {
	for _, raw := range []string{"", "ftp://example.com/x", "/relative", "javascript:alert(1)", "http://"} {
		_, err := ValidateURL(raw)
		assert.ErrorIs(t, err, ErrInvalidURL, raw)
	}
	u, err := ValidateURL("https://example.com/a?b=c")
	require.NoError(t, err)
	assert.Equal(t, "example.com", u.Host)
}

func TestClient_Get(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/missing" {
			http.NotFound(w, r)
			return
		}
		w.Write([]byte(r.Header.Get("User-Agent")))
	}))
	defer srv.Close()

	c := New(5*time.Second, "homebase-test", WithPrivateHosts(true))

	body, err := c.GetBody(context.Background(), "test", srv.URL+"/ok", "")
	require.NoError(t, err)
	assert.Equal(t, "homebase-test", string(body))

	_, err = c.GetBody(context.Background(), "test", srv.URL+"/missing", "")
	var upstream *UpstreamError
	require.True(t, errors.As(err, &upstream))
	assert.Equal(t, http.StatusNotFound, upstream.Status)
}

func TestClient_NetworkError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	_, err := New(time.Second, "x", WithPrivateHosts(true)).Get(context.Background(), "test", url, "")
	require.Error(t, err)
	var upstream *UpstreamError
	assert.False(t, errors.As(err, &upstream))
}

func TestClient_PrivateHosts(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("internal"))
	}))
	defer srv.Close()

	t.Run("Refused by default", func(t *testing.T) {
		_, err := New(time.Second, "x").Get(context.Background(), "test", srv.URL, "")
		assert.ErrorIs(t, err, ErrPrivateHost)
	})

	t.Run("Allowed when configured", func(t *testing.T) {
		body, err := New(time.Second, "x", WithPrivateHosts(true)).GetBody(context.Background(), "test", srv.URL, "")
		require.NoError(t, err)
		assert.Equal(t, "internal", string(body))
	})

	t.Run("Classification", func(t *testing.T) {
		for _, ip := range []string{"127.0.0.1", "::1", "10.1.2.3", "192.168.0.10", "169.254.169.254", "fe80::1", "0.0.0.0"} {
			assert.True(t, isPrivateIP(net.ParseIP(ip)), ip)
		}
		for _, ip := range []string{"93.184.216.34", "2606:4700::1111"} {
			assert.False(t, isPrivateIP(net.ParseIP(ip)), ip)
		}
	})
}
