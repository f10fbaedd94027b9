// Package kvtest holds the behaviour every kv.Store backend must share.
package kvtest

import (
	"context"

	"github.com/stretchr/testify/suite"
	"github.com/tvandenbrink/tafel-racer/internal/kv"
)

// StoreSuite runs against a fresh store from NewStore before each test.
type StoreSuite struct {
	suite.Suite
	NewStore func() kv.Store
	store    kv.Store
}

func (s *StoreSuite) SetupTest() {
	s.store = s.NewStore()
}

func (s *StoreSuite) TearDownTest() {
	s.Require().NoError(s.store.Close())
}

func (s *StoreSuite) TestGetMissingKey() {
	v, ok, err := s.store.Get(context.Background(), "nope")
	s.Require().NoError(err)
	s.Assert().False(ok)
	s.Assert().Empty(v)
}

func (s *StoreSuite) TestSetOverwrites() {
	ctx := context.Background()
	s.Require().NoError(s.store.Set(ctx, "highScore_Tim", "3"))
	s.Require().NoError(s.store.Set(ctx, "highScore_Tim", "7"))

	v, ok, err := s.store.Get(ctx, "highScore_Tim")
	s.Require().NoError(err)
	s.Assert().True(ok)
	s.Assert().Equal("7", v)
}

func (s *StoreSuite) TestDeleteIgnoresMissing() {
	ctx := context.Background()
	s.Require().NoError(s.store.Set(ctx, "a", "1"))
	s.Require().NoError(s.store.Set(ctx, "b", "2"))

	s.Require().NoError(s.store.Delete(ctx, "a", "missing"))

	_, ok, err := s.store.Get(ctx, "a")
	s.Require().NoError(err)
	s.Assert().False(ok)
	v, ok, err := s.store.Get(ctx, "b")
	s.Require().NoError(err)
	s.Assert().True(ok)
	s.Assert().Equal("2", v)

	s.Require().NoError(s.store.Delete(ctx))
}

func (s *StoreSuite) TestNamespaceIsolatesPlayers() {
	ctx := context.Background()
	tim := kv.NewNamespace(s.store, "Tim")
	esmee := kv.NewNamespace(s.store, "Esmee")

	s.Require().NoError(tim.Set(ctx, kv.HighScore, "12"))
	s.Require().NoError(esmee.Set(ctx, kv.HighScore, "4"))

	v, ok, err := s.store.Get(ctx, "highScore_Tim")
	s.Require().NoError(err)
	s.Assert().True(ok)
	s.Assert().Equal("12", v)

	s.Require().NoError(tim.Delete(ctx, kv.HighScore, kv.Statistics))
	_, ok, err = tim.Get(ctx, kv.HighScore)
	s.Require().NoError(err)
	s.Assert().False(ok)

	v, _, err = esmee.Get(ctx, kv.HighScore)
	s.Require().NoError(err)
	s.Assert().Equal("4", v)
}
