package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"
	"github.com/tvandenbrink/tafel-racer/internal/models"
	"github.com/tvandenbrink/tafel-racer/internal/services"
)

// MockPlayerService is a mock implementation of services.PlayerService
type MockPlayerService struct {
	mock.Mock
}

func (m *MockPlayerService) ListPlayers(ctx context.Context) ([]models.Player, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Player), args.Error(1)
}

func (m *MockPlayerService) GetPlayer(ctx context.Context, name string) (*models.PlayerOverview, error) {
	args := m.Called(ctx, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.PlayerOverview), args.Error(1)
}

func (m *MockPlayerService) ResetStatistics(ctx context.Context, name string) error {
	args := m.Called(ctx, name)
	return args.Error(0)
}

func (m *MockPlayerService) ListResults(ctx context.Context, name string, limit, offset int) ([]models.GameResult, int, error) {
	args := m.Called(ctx, name, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}
	return args.Get(0).([]models.GameResult), args.Int(1), args.Error(2)
}

// MockStatsService is a mock implementation of services.StatsService
type MockStatsService struct {
	mock.Mock
}

func (m *MockStatsService) GetGrid(ctx context.Context, name string) (*models.StatsGrid, error) {
	args := m.Called(ctx, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.StatsGrid), args.Error(1)
}

func (m *MockStatsService) WeakestFacts(ctx context.Context, name string, n int) ([]models.FactStat, error) {
	args := m.Called(ctx, name, n)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.FactStat), args.Error(1)
}

// MockSessionService is a mock implementation of services.SessionService
type MockSessionService struct {
	mock.Mock
}

func (m *MockSessionService) Open(ctx context.Context, player string, sink services.Sink) (*services.SessionRunner, error) {
	args := m.Called(ctx, player, sink)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*services.SessionRunner), args.Error(1)
}
