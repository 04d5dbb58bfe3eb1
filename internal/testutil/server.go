// Shared test server setup, which simplifies all API tests.

package testutil

import (
	"database/sql"
	"testing"

	"github.com/vrsandeep/homebase/internal/api"
	"github.com/vrsandeep/homebase/internal/config"
	"github.com/vrsandeep/homebase/internal/core"
)

// SetupTestApp builds a core.App over an in-memory database with default
// configuration. opts adjust the configuration before the app is built,
// e.g. to point upstream URLs at an httptest server.
func SetupTestApp(t *testing.T, opts ...func(*config.Config)) *core.App {
	t.Helper()
	db := SetupTestDB(t)

	cfg := config.Default()
	cfg.Podcasts.HostRate = 0
	// Fake upstreams listen on loopback.
	cfg.HTTP.AllowPrivateHosts = true
	for _, opt := range opts {
		opt(cfg)
	}
	app := core.NewWith(cfg, db, nil, "test")
	t.Cleanup(func() {
		app.WsHub().Stop()
	})
	return app
}

// SetupTestServer initializes a full core.App and api.Server for integration testing.
func SetupTestServer(t *testing.T, opts ...func(*config.Config)) (*api.Server, *sql.DB) {
	t.Helper()
	app := SetupTestApp(t, opts...)
	server := api.NewServer(app)
	t.Cleanup(server.Close)
	return server, app.DB()
}
