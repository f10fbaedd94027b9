package sqlite_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"github.com/tvandenbrink/tafel-racer/internal/kv"
	"github.com/tvandenbrink/tafel-racer/internal/kv/kvtest"
	"github.com/tvandenbrink/tafel-racer/internal/kv/sqlite"
	"github.com/tvandenbrink/tafel-racer/internal/testutil"
)

func TestSQLiteStore(t *testing.T) {
	suite.Run(t, &kvtest.StoreSuite{NewStore: func() kv.Store {
		database := testutil.NewTestDB(t)
		t.Cleanup(func() { _ = database.Close() })
		return sqlite.New(database.DB)
	}})
}

func TestSQLiteStore_PersistsRows(t *testing.T) {
	database := testutil.NewTestDB(t)
	defer testutil.MustClose(t, database)
	store := sqlite.New(database.DB)
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "statistics_Tim", `{"2 × 3":{"attempts":1,"mistakes":0}}`))

	var value string
	err := database.QueryRowContext(ctx, `SELECT value FROM kv_entries WHERE key = ?`, "statistics_Tim").Scan(&value)
	require.NoError(t, err)
	assert.JSONEq(t, `{"2 × 3":{"attempts":1,"mistakes":0}}`, value)
}
