package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"
	"github.com/tvandenbrink/tafel-racer/internal/models"
)

// MockResultRepository is a mock implementation of repository.ResultRepository
type MockResultRepository struct {
	mock.Mock
}

func (m *MockResultRepository) Insert(ctx context.Context, result models.GameResult) (int64, error) {
	args := m.Called(ctx, result)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockResultRepository) List(ctx context.Context, filter models.ResultFilter) ([]models.GameResult, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.GameResult), args.Error(1)
}

func (m *MockResultRepository) Count(ctx context.Context, filter models.ResultFilter) (int, error) {
	args := m.Called(ctx, filter)
	return args.Int(0), args.Error(1)
}

func (m *MockResultRepository) Best(ctx context.Context, player string) (*models.GameResult, error) {
	args := m.Called(ctx, player)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.GameResult), args.Error(1)
}
