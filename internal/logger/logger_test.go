package logger_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vrsandeep/homebase/internal/logger"
)

func TestNew_WithFieldsCreatesDistinctLogger(t *testing.T) {
	base, err := logger.New(logger.Config{Level: "warn", OutputPaths: []string{"stderr"}})
	require.NoError(t, err)

	enriched := base.With(logger.String("component", "test"))
	assert.NotSame(t, base, enriched)

	// Must not panic at any level, even the filtered ones.
	enriched.Debug("debug")
	enriched.Info("info", logger.Int("n", 1))
	enriched.Warn("warn", logger.Bool("ok", true))
	enriched.Error("error", logger.Error(errors.New("boom")))
}

func TestNop(t *testing.T) {
	l := logger.NewNop()
	assert.Same(t, l, l.With(logger.String("k", "v")))
	assert.NoError(t, l.Sync())
}
