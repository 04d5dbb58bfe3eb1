// This file contains shared test utilities for job context mocking.

package testutil

import (
	"database/sql"
	"testing"

	"github.com/vrsandeep/homebase/internal/config"
	"github.com/vrsandeep/homebase/internal/events"
	"github.com/vrsandeep/homebase/internal/jobs"
	"github.com/vrsandeep/homebase/internal/logger"
)

// MockJobContext implements jobs.JobContext over an in-memory database.
type MockJobContext struct {
	Database *sql.DB
	Cfg      *config.Config
	EventBus *events.Bus
	Manager  *jobs.JobManager
}

// NewJobContext returns a context with migrations applied, default config
// and a manager holding the built-in jobs.
func NewJobContext(t *testing.T) *MockJobContext {
	t.Helper()
	cfg := config.Default()
	cfg.HTTP.AllowPrivateHosts = true
	m := &MockJobContext{
		Database: SetupTestDB(t),
		Cfg:      cfg,
		EventBus: events.NewBus(nil),
	}
	m.Manager = jobs.NewManager(m)
	jobs.RegisterJobs(m.Manager)
	return m
}

func (m *MockJobContext) DB() *sql.DB                  { return m.Database }
func (m *MockJobContext) Config() *config.Config       { return m.Cfg }
func (m *MockJobContext) Logger() logger.Logger        { return logger.NewNop() }
func (m *MockJobContext) Bus() *events.Bus             { return m.EventBus }
func (m *MockJobContext) JobManager() *jobs.JobManager { return m.Manager }
