// Package fetch performs outbound GETs on behalf of the dashboard: feeds,
// article pages, directory searches, images and widget data.
package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"syscall"
	"time"

	"github.com/vrsandeep/homebase/internal/metrics"
)

// MaxBodySize caps how much of an upstream response is read.
const MaxBodySize = 20 << 20

// ErrInvalidURL is returned for anything but an absolute http(s) URL.
var ErrInvalidURL = errors.New("invalid url: only absolute http and https URLs are allowed")

// UpstreamError reports a non-2xx answer from the remote host.
type UpstreamError struct {
	URL    string
	Status int
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("upstream %s returned status %d", e.URL, e.Status)
}

// ErrPrivateHost is returned when a URL resolves to a loopback, private,
// link-local or unspecified address and private hosts are not allowed.
var ErrPrivateHost = errors.New("refusing to fetch from a private network address")

// Client wraps http.Client with the dashboard's user agent and metrics.
type Client struct {
	http         *http.Client
	userAgent    string
	allowPrivate bool
}

// Option configures a Client.
type Option func(*Client)

// WithPrivateHosts lets the client reach addresses on the local network.
// Off by default so the proxy endpoints cannot be pointed at the host
// itself or its neighbours.
func WithPrivateHosts(allow bool) Option {
	return func(c *Client) { c.allowPrivate = allow }
}

// New creates a client with the given timeout and user agent.
func New(timeout time.Duration, userAgent string, opts ...Option) *Client {
	c := &Client{userAgent: userAgent}
	for _, opt := range opts {
		opt(c)
	}

	dialer := &net.Dialer{Timeout: 10 * time.Second, KeepAlive: 30 * time.Second}
	if !c.allowPrivate {
		// Control runs after name resolution, so every address a host
		// resolves to is checked, including redirect targets.
		dialer.Control = func(network, address string, _ syscall.RawConn) error {
			host, _, err := net.SplitHostPort(address)
			if err != nil {
				return err
			}
			if ip := net.ParseIP(host); ip == nil || isPrivateIP(ip) {
				return ErrPrivateHost
			}
			return nil
		}
	}
	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.DialContext = dialer.DialContext

	c.http = &http.Client{Timeout: timeout, Transport: transport}
	return c
}

func isPrivateIP(ip net.IP) bool {
	return ip.IsLoopback() || ip.IsPrivate() || ip.IsUnspecified() ||
		ip.IsLinkLocalUnicast() || ip.IsLinkLocalMulticast() || ip.IsInterfaceLocalMulticast()
}

// ValidateURL parses raw and checks it is an absolute http(s) URL.
func ValidateURL(raw string) (*url.URL, error) {
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return nil, ErrInvalidURL
	}
	return u, nil
}

// Get issues a GET and returns the response when the status is 2xx. The
// caller closes the body. kind labels the fetch in metrics.
func (c *Client) Get(ctx context.Context, kind, rawURL, accept string) (*http.Response, error) {
	if _, err := ValidateURL(rawURL); err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", c.userAgent)
	if accept != "" {
		req.Header.Set("Accept", accept)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		metrics.UpstreamFetches.WithLabelValues(kind, metrics.OutcomeNetwork).Inc()
		return nil, fmt.Errorf("fetch %s: %w", rawURL, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		resp.Body.Close()
		metrics.UpstreamFetches.WithLabelValues(kind, metrics.OutcomeUpstream).Inc()
		return nil, &UpstreamError{URL: rawURL, Status: resp.StatusCode}
	}
	metrics.UpstreamFetches.WithLabelValues(kind, metrics.OutcomeOK).Inc()
	return resp, nil
}

// GetBody is Get followed by reading at most MaxBodySize bytes.
func (c *Client) GetBody(ctx context.Context, kind, rawURL, accept string) ([]byte, error) {
	resp, err := c.Get(ctx, kind, rawURL, accept)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(io.LimitReader(resp.Body, MaxBodySize))
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", rawURL, err)
	}
	return body, nil
}
