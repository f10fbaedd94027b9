// Package kv defines the key-value store that holds per-player records.
//
// Keys follow the "<record>_<player>" layout, e.g. "highScore_Tim". Values are
// opaque strings; the repository layer encodes them as JSON.
package kv

import "context"

// Record names. The stored key is Key(record, player).
const (
	HighScore        = "highScore"
	IncorrectAnswers = "incorrectAnswers"
	PendingRepeats   = "pendingRepeats"
	Statistics       = "statistics"
)

// Store is a flat string key-value store.
type Store interface {
	// Get returns the value and true, or "" and false when the key is absent.
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
	// Delete removes keys; absent keys are ignored.
	Delete(ctx context.Context, keys ...string) error
	Close() error
}

// Key builds the namespaced key for a player's record.
func Key(record, player string) string {
	return record + "_" + player
}

// Namespace scopes a Store to one player.
type Namespace struct {
	store  Store
	player string
}

func NewNamespace(store Store, player string) Namespace {
	return Namespace{store: store, player: player}
}

func (n Namespace) Player() string { return n.player }

func (n Namespace) Get(ctx context.Context, record string) (string, bool, error) {
	return n.store.Get(ctx, Key(record, n.player))
}

func (n Namespace) Set(ctx context.Context, record, value string) error {
	return n.store.Set(ctx, Key(record, n.player), value)
}

func (n Namespace) Delete(ctx context.Context, records ...string) error {
	keys := make([]string, len(records))
	for i, r := range records {
		keys[i] = Key(r, n.player)
	}
	return n.store.Delete(ctx, keys...)
}
