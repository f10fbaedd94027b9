package services

import (
	"context"
	"slices"

	"github.com/tvandenbrink/tafel-racer/internal/errors"
	"github.com/tvandenbrink/tafel-racer/internal/logger"
	"github.com/tvandenbrink/tafel-racer/internal/models"
	"github.com/tvandenbrink/tafel-racer/internal/repository"
)

// Roster is the fixed list of players who may race.
type Roster []string

func (r Roster) check(player string) error {
	if player == "" {
		return errors.NewValidationError("player", "cannot be empty")
	}
	if !slices.Contains(r, player) {
		return errors.NewNotFoundError("player", player)
	}
	return nil
}

// PlayerService handles player-related business logic
type PlayerService interface {
	ListPlayers(ctx context.Context) ([]models.Player, error)
	GetPlayer(ctx context.Context, name string) (*models.PlayerOverview, error)
	ResetStatistics(ctx context.Context, name string) error
	ListResults(ctx context.Context, name string, limit, offset int) ([]models.GameResult, int, error)
}

type playerService struct {
	roster  Roster
	players repository.PlayerRepository
	results repository.ResultRepository
}

// NewPlayerService creates a new PlayerService
func NewPlayerService(roster Roster, players repository.PlayerRepository, results repository.ResultRepository) PlayerService {
	return &playerService{roster: roster, players: players, results: results}
}

func (s *playerService) ListPlayers(ctx context.Context) ([]models.Player, error) {
	log := logger.FromContext(ctx)
	log.Debug("listing players: count=%d", len(s.roster))

	out := make([]models.Player, 0, len(s.roster))
	for _, name := range s.roster {
		score, err := s.players.HighScore(ctx, name)
		if err != nil {
			log.Error("failed to load high score for %s: %v", name, err)
			return nil, errors.NewInternalError(err)
		}
		out = append(out, models.Player{Name: name, HighScore: score})
	}
	return out, nil
}

func (s *playerService) GetPlayer(ctx context.Context, name string) (*models.PlayerOverview, error) {
	log := logger.FromContext(ctx)
	log.Debug("getting player: name=%s", name)

	if err := s.roster.check(name); err != nil {
		return nil, err
	}

	score, err := s.players.HighScore(ctx, name)
	if err != nil {
		log.Error("failed to load high score: %v", err)
		return nil, errors.NewInternalError(err)
	}
	wrong, err := s.players.IncorrectAnswers(ctx, name)
	if err != nil {
		log.Error("failed to load incorrect answers: %v", err)
		return nil, errors.NewInternalError(err)
	}
	pending, err := s.players.PendingRepeats(ctx, name)
	if err != nil {
		log.Error("failed to load pending repeats: %v", err)
		return nil, errors.NewInternalError(err)
	}
	best, err := s.results.Best(ctx, name)
	if err != nil {
		log.Error("failed to load best result: %v", err)
		return nil, errors.NewInternalError(err)
	}

	return &models.PlayerOverview{
		Player:           models.Player{Name: name, HighScore: score},
		IncorrectAnswers: wrong,
		PendingRepeats:   pending,
		BestResult:       best,
	}, nil
}

// ResetStatistics clears a player's statistics, answer log and repeat queue.
// The high score stays.
func (s *playerService) ResetStatistics(ctx context.Context, name string) error {
	log := logger.FromContext(ctx)
	log.Info("resetting statistics: name=%s", name)

	if err := s.roster.check(name); err != nil {
		return err
	}
	if err := s.players.ResetStatistics(ctx, name); err != nil {
		log.Error("failed to reset statistics: %v", err)
		return errors.NewInternalError(err)
	}
	return nil
}

func (s *playerService) ListResults(ctx context.Context, name string, limit, offset int) ([]models.GameResult, int, error) {
	log := logger.FromContext(ctx)
	log.Debug("listing results: name=%s, limit=%d, offset=%d", name, limit, offset)

	if err := s.roster.check(name); err != nil {
		return nil, 0, err
	}
	if limit < 0 {
		return nil, 0, errors.NewValidationError("limit", "must be >= 0")
	}
	if offset < 0 {
		return nil, 0, errors.NewValidationError("offset", "must be >= 0")
	}

	filter := models.ResultFilter{Player: name, Limit: limit, Offset: offset}
	results, err := s.results.List(ctx, filter)
	if err != nil {
		log.Error("failed to list results: %v", err)
		return nil, 0, errors.NewInternalError(err)
	}
	total, err := s.results.Count(ctx, filter)
	if err != nil {
		log.Error("failed to count results: %v", err)
		return nil, 0, errors.NewInternalError(err)
	}
	return results, total, nil
}
