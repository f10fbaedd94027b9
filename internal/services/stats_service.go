package services

import (
	"cmp"
	"context"
	"math"
	"slices"

	"github.com/tvandenbrink/tafel-racer/internal/errors"
	"github.com/tvandenbrink/tafel-racer/internal/logger"
	"github.com/tvandenbrink/tafel-racer/internal/models"
	"github.com/tvandenbrink/tafel-racer/internal/quiz"
	"github.com/tvandenbrink/tafel-racer/internal/repository"
)

// StatsService handles statistics-related business logic
type StatsService interface {
	GetGrid(ctx context.Context, name string) (*models.StatsGrid, error)
	// WeakestFacts returns up to n attempted facts, lowest success rate first.
	WeakestFacts(ctx context.Context, name string, n int) ([]models.FactStat, error)
}

type statsService struct {
	roster  Roster
	players repository.PlayerRepository
}

// NewStatsService creates a new StatsService
func NewStatsService(roster Roster, players repository.PlayerRepository) StatsService {
	return &statsService{roster: roster, players: players}
}

func (s *statsService) GetGrid(ctx context.Context, name string) (*models.StatsGrid, error) {
	log := logger.FromContext(ctx)
	log.Debug("getting stats grid: name=%s", name)

	if err := s.roster.check(name); err != nil {
		return nil, err
	}
	stats, err := s.players.Statistics(ctx, name)
	if err != nil {
		log.Error("failed to load statistics: %v", err)
		return nil, errors.NewInternalError(err)
	}
	return BuildGrid(name, stats), nil
}

func (s *statsService) WeakestFacts(ctx context.Context, name string, n int) ([]models.FactStat, error) {
	log := logger.FromContext(ctx)
	log.Debug("getting weakest facts: name=%s, n=%d", name, n)

	if n < 1 {
		return nil, errors.NewValidationError("n", "must be >= 1")
	}
	grid, err := s.GetGrid(ctx, name)
	if err != nil {
		return nil, err
	}

	var attempted []models.FactStat
	for _, f := range grid.Facts {
		if f.Attempts > 0 {
			attempted = append(attempted, f)
		}
	}
	// Grid order breaks ties, so the sort is stable.
	slices.SortStableFunc(attempted, func(a, b models.FactStat) int {
		if c := cmp.Compare(a.SuccessRate, b.SuccessRate); c != 0 {
			return c
		}
		return cmp.Compare(b.Mistakes, a.Mistakes)
	})
	if len(attempted) > n {
		attempted = attempted[:n]
	}
	return attempted, nil
}

// BuildGrid lays the stored statistics out over every fact from 1 × 1 to
// 10 × 10. Totals cover every stored question.
func BuildGrid(player string, stats models.QuestionStats) *models.StatsGrid {
	grid := &models.StatsGrid{
		Player: player,
		Facts:  make([]models.FactStat, 0, quiz.MaxFactor*quiz.MaxFactor),
	}
	for table := 1; table <= quiz.MaxFactor; table++ {
		for multiplier := 1; multiplier <= quiz.MaxFactor; multiplier++ {
			q := quiz.FormatQuestion(table, multiplier)
			st := stats[q]
			grid.Facts = append(grid.Facts, models.FactStat{
				Question:    q,
				Table:       table,
				Multiplier:  multiplier,
				Answer:      table * multiplier,
				Attempts:    st.Attempts,
				Mistakes:    st.Mistakes,
				SuccessRate: successRate(st.Attempts, st.Mistakes),
			})
		}
	}
	for _, st := range stats {
		grid.TotalAttempts += st.Attempts
		grid.TotalMistakes += st.Mistakes
	}
	grid.OverallSuccessRate = successRate(grid.TotalAttempts, grid.TotalMistakes)
	return grid
}

// successRate is a percentage rounded to one decimal.
func successRate(attempts, mistakes int) float64 {
	if attempts <= 0 {
		return 0
	}
	correct := max(attempts-mistakes, 0)
	return math.Round(float64(correct)/float64(attempts)*1000) / 10
}
