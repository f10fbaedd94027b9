package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"
	"github.com/tvandenbrink/tafel-racer/internal/models"
)

// MockPlayerRepository is a mock implementation of repository.PlayerRepository
type MockPlayerRepository struct {
	mock.Mock
}

func (m *MockPlayerRepository) HighScore(ctx context.Context, player string) (int, error) {
	args := m.Called(ctx, player)
	return args.Int(0), args.Error(1)
}

func (m *MockPlayerRepository) SetHighScore(ctx context.Context, player string, score int) error {
	args := m.Called(ctx, player, score)
	return args.Error(0)
}

func (m *MockPlayerRepository) RaiseHighScore(ctx context.Context, player string, score int) (int, error) {
	args := m.Called(ctx, player, score)
	return args.Int(0), args.Error(1)
}

func (m *MockPlayerRepository) IncorrectAnswers(ctx context.Context, player string) ([]models.IncorrectAnswer, error) {
	args := m.Called(ctx, player)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.IncorrectAnswer), args.Error(1)
}

func (m *MockPlayerRepository) AddIncorrectAnswer(ctx context.Context, player string, entry models.IncorrectAnswer) error {
	args := m.Called(ctx, player, entry)
	return args.Error(0)
}

func (m *MockPlayerRepository) PendingRepeats(ctx context.Context, player string) ([]models.PendingRepeat, error) {
	args := m.Called(ctx, player)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.PendingRepeat), args.Error(1)
}

func (m *MockPlayerRepository) AddPendingRepeat(ctx context.Context, player string, repeat models.PendingRepeat) error {
	args := m.Called(ctx, player, repeat)
	return args.Error(0)
}

func (m *MockPlayerRepository) RemovePendingRepeat(ctx context.Context, player string, id string) error {
	args := m.Called(ctx, player, id)
	return args.Error(0)
}

func (m *MockPlayerRepository) Statistics(ctx context.Context, player string) (models.QuestionStats, error) {
	args := m.Called(ctx, player)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(models.QuestionStats), args.Error(1)
}

func (m *MockPlayerRepository) RecordAttempt(ctx context.Context, player string, question string, correct bool) error {
	args := m.Called(ctx, player, question, correct)
	return args.Error(0)
}

func (m *MockPlayerRepository) ResetStatistics(ctx context.Context, player string) error {
	args := m.Called(ctx, player)
	return args.Error(0)
}
