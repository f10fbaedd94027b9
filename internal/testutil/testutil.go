package testutil

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/tvandenbrink/tafel-racer/internal/db"
)

// NewTestDB creates an in-memory SQLite database with all migrations applied.
func NewTestDB(t *testing.T) *db.DB {
	t.Helper()
	database, err := db.Open("file::memory:")
	require.NoError(t, err)
	return database
}

// MustClose closes a resource and fails the test on error.
func MustClose(t *testing.T, closer interface{ Close() error }) {
	require.NoError(t, closer.Close())
}

// Clock is a manually advanced time source for driving sessions in tests.
type Clock struct {
	now time.Time
}

// NewClock returns a clock starting at a fixed instant.
func NewClock() *Clock {
	return &Clock{now: time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)}
}

func (c *Clock) Now() time.Time { return c.now }

// Advance moves the clock forward and returns the new time.
func (c *Clock) Advance(d time.Duration) time.Time {
	c.now = c.now.Add(d)
	return c.now
}
