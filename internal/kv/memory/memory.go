package memory

import (
	"context"
	"sync"

	"github.com/tvandenbrink/tafel-racer/internal/kv"
)

type store struct {
	mu   sync.RWMutex
	data map[string]string
}

// New returns a process-local kv.Store. Contents are lost on exit.
func New() kv.Store {
	return &store{data: make(map[string]string)}
}

func (s *store) Get(_ context.Context, key string) (string, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.data[key]
	return v, ok, nil
}

func (s *store) Set(_ context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[key] = value
	return nil
}

func (s *store) Delete(_ context.Context, keys ...string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, k := range keys {
		delete(s.data, k)
	}
	return nil
}

func (s *store) Close() error { return nil }
