package memory_test

import (
	"testing"

	"github.com/stretchr/testify/suite"
	"github.com/tvandenbrink/tafel-racer/internal/kv"
	"github.com/tvandenbrink/tafel-racer/internal/kv/kvtest"
	"github.com/tvandenbrink/tafel-racer/internal/kv/memory"
)

func TestMemoryStore(t *testing.T) {
	suite.Run(t, &kvtest.StoreSuite{NewStore: func() kv.Store { return memory.New() }})
}
