package services

import (
	"context"
	stderrors "errors"
	"time"

	"github.com/tvandenbrink/tafel-racer/internal/errors"
	"github.com/tvandenbrink/tafel-racer/internal/game"
	"github.com/tvandenbrink/tafel-racer/internal/logger"
	"github.com/tvandenbrink/tafel-racer/internal/repository"
	"github.com/tvandenbrink/tafel-racer/internal/worker"
)

// Submitter queues a job; *worker.Pool is the production one.
type Submitter interface {
	Submit(job worker.Job) error
}

type SessionConfig struct {
	Roster Roster
	// Defaults are the settings a new session starts with; Player is filled per session.
	Defaults      game.Settings
	TickRate      int
	SnapshotEvery int
	Params        game.Params
	// Options are appended to every game.New call.
	Options []game.Option
}

// SessionService opens live racing sessions.
type SessionService interface {
	// Open creates a session for player and queues its runner. Updates go to
	// sink until the runner stops.
	Open(ctx context.Context, player string, sink Sink) (*SessionRunner, error)
}

type sessionService struct {
	cfg     SessionConfig
	players repository.PlayerRepository
	results repository.ResultRepository
	pool    Submitter
}

// NewSessionService creates a new SessionService
func NewSessionService(cfg SessionConfig, players repository.PlayerRepository, results repository.ResultRepository, pool Submitter) SessionService {
	if cfg.TickRate <= 0 {
		cfg.TickRate = 60
	}
	if cfg.SnapshotEvery <= 0 {
		cfg.SnapshotEvery = 1
	}
	if cfg.Params.StartingLives == 0 {
		cfg.Params = game.DefaultParams()
	}
	return &sessionService{cfg: cfg, players: players, results: results, pool: pool}
}

func (s *sessionService) Open(ctx context.Context, player string, sink Sink) (*SessionRunner, error) {
	log := logger.FromContext(ctx)
	log.Debug("opening session: player=%s", player)

	if err := s.cfg.Roster.check(player); err != nil {
		return nil, err
	}

	settings := s.cfg.Defaults
	settings.Player = player
	opts := append([]game.Option{game.WithParams(s.cfg.Params), game.WithResults(s.results)}, s.cfg.Options...)
	session, err := game.New(ctx, s.players, settings, opts...)
	if err != nil {
		return nil, sessionError(err)
	}

	runner := newSessionRunner(session, s.cfg.Roster, sink, time.Second/time.Duration(s.cfg.TickRate), s.cfg.SnapshotEvery)
	if err := s.pool.Submit(runner); err != nil {
		log.Warn("no capacity for session: player=%s: %v", player, err)
		return nil, errors.NewBusyError("too many sessions running, try again later", err)
	}
	log.Info("session queued: player=%s", player)
	return runner, nil
}

// sessionError maps game errors to AppErrors.
func sessionError(err error) error {
	if err == nil {
		return nil
	}
	if _, ok := errors.As(err); ok {
		return err
	}
	switch {
	case stderrors.Is(err, game.ErrInvalidTransition):
		return errors.NewConflictError(err.Error(), err)
	case stderrors.Is(err, game.ErrInvalidSettings):
		return errors.NewValidationError("settings", err.Error())
	default:
		return errors.NewInternalError(err)
	}
}
