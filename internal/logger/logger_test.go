package logger_test

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/tvandenbrink/tafel-racer/internal/logger"
)

func fixedClock() time.Time {
	return time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
}

func TestLogger_LevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	log := logger.New(logger.WithOutput(&buf), logger.WithLevel(logger.WARN), logger.WithColors(false))

	log.Info("hidden")
	log.Warn("shown %d", 1)

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "WARN")
	assert.Contains(t, out, "shown 1")
}

func TestLogger_PrefixAndSortedFields(t *testing.T) {
	var buf bytes.Buffer
	log := logger.New(
		logger.WithOutput(&buf),
		logger.WithLevel(logger.DEBUG),
		logger.WithColors(false),
		logger.WithClock(fixedClock),
	)

	log.WithPrefix("session").WithFields(map[string]any{"player": "Tim", "lane": 2}).Debug("tick")

	out := buf.String()
	assert.Contains(t, out, "2024-05-01 12:00:00.000")
	assert.Contains(t, out, "[session]")
	assert.Contains(t, out, "tick lane=2 player=Tim")
}

func TestLogger_DerivedLoggerDoesNotMutateParent(t *testing.T) {
	var buf bytes.Buffer
	parent := logger.New(logger.WithOutput(&buf), logger.WithColors(false))
	_ = parent.WithField("k", "v")

	parent.Info("plain")
	assert.NotContains(t, buf.String(), "k=v")
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, logger.DEBUG, logger.ParseLevel("debug"))
	assert.Equal(t, logger.WARN, logger.ParseLevel("WARNING"))
	assert.Equal(t, logger.INFO, logger.ParseLevel("nonsense"))
	assert.True(t, logger.ValidLevel("error"))
	assert.False(t, logger.ValidLevel(""))
}

func TestContextRoundTrip(t *testing.T) {
	log := logger.Discard().WithPrefix("x")
	ctx := logger.NewContext(context.Background(), log)
	assert.Same(t, log, logger.FromContext(ctx))
	assert.Same(t, logger.Default(), logger.FromContext(context.Background()))
}
