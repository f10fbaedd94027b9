package repository

import (
	"context"

	"github.com/tvandenbrink/tafel-racer/internal/models"
)

// MaxIncorrectAnswers caps the per-player wrong-answer log.
const MaxIncorrectAnswers = 10

// PlayerRepository handles the per-player practice records.
// Reads of absent or unreadable records return empty values, never an error.
type PlayerRepository interface {
	HighScore(ctx context.Context, player string) (int, error)
	SetHighScore(ctx context.Context, player string, score int) error
	// RaiseHighScore stores score only if it beats the stored one and returns
	// the high score in effect afterwards.
	RaiseHighScore(ctx context.Context, player string, score int) (int, error)
	IncorrectAnswers(ctx context.Context, player string) ([]models.IncorrectAnswer, error)
	AddIncorrectAnswer(ctx context.Context, player string, entry models.IncorrectAnswer) error
	PendingRepeats(ctx context.Context, player string) ([]models.PendingRepeat, error)
	AddPendingRepeat(ctx context.Context, player string, repeat models.PendingRepeat) error
	RemovePendingRepeat(ctx context.Context, player string, id string) error
	Statistics(ctx context.Context, player string) (models.QuestionStats, error)
	RecordAttempt(ctx context.Context, player string, question string, correct bool) error
	ResetStatistics(ctx context.Context, player string) error
}

// ResultRepository handles finished-run history
type ResultRepository interface {
	Insert(ctx context.Context, result models.GameResult) (int64, error)
	List(ctx context.Context, filter models.ResultFilter) ([]models.GameResult, error)
	Count(ctx context.Context, filter models.ResultFilter) (int, error)
	Best(ctx context.Context, player string) (*models.GameResult, error)
}
