package services

import (
	"context"
	stderrors "errors"
	"sync"
	"time"

	"github.com/tvandenbrink/tafel-racer/internal/errors"
	"github.com/tvandenbrink/tafel-racer/internal/game"
	"github.com/tvandenbrink/tafel-racer/internal/logger"
)

var (
	// ErrInputFull is returned by Send when the runner is not keeping up.
	ErrInputFull    = stderrors.New("session input queue full")
	ErrRunnerClosed = stderrors.New("session runner closed")
)

const inputQueueSize = 64

type CommandType string

const (
	CommandStart           CommandType = "start"
	CommandReplay          CommandType = "replay"
	CommandBackToSettings  CommandType = "back_to_settings"
	CommandStatistics      CommandType = "statistics"
	CommandResetStatistics CommandType = "reset_statistics"
	CommandConfigure       CommandType = "configure"
	CommandLeft            CommandType = "left"
	CommandRight           CommandType = "right"
	CommandSelectLane      CommandType = "select_lane"
	CommandBoost           CommandType = "boost"
)

// Command is one player input. Lane is read by select_lane, Held by boost and
// Settings by configure.
type Command struct {
	Type     CommandType
	Lane     int
	Held     bool
	Settings game.Settings
}

// Update is pushed to the sink after ticks and commands. Err is an AppError
// when a command was rejected; Snapshot is always the current state.
type Update struct {
	Snapshot game.Snapshot
	Err      error
}

// Sink receives updates on the runner goroutine and must not block.
type Sink func(Update)

// SessionRunner owns one game.Session and drives it from a single goroutine.
// It implements worker.Job.
type SessionRunner struct {
	session       *game.Session
	roster        Roster
	sink          Sink
	tick          time.Duration
	snapshotEvery int

	inputs    chan Command
	quit      chan struct{}
	done      chan struct{}
	closeOnce sync.Once
}

func newSessionRunner(session *game.Session, roster Roster, sink Sink, tick time.Duration, snapshotEvery int) *SessionRunner {
	return &SessionRunner{
		session:       session,
		roster:        roster,
		sink:          sink,
		tick:          tick,
		snapshotEvery: snapshotEvery,
		inputs:        make(chan Command, inputQueueSize),
		quit:          make(chan struct{}),
		done:          make(chan struct{}),
	}
}

func (r *SessionRunner) Name() string { return "session" }

// Send queues a command without blocking.
func (r *SessionRunner) Send(cmd Command) error {
	select {
	case <-r.quit:
		return ErrRunnerClosed
	default:
	}
	select {
	case r.inputs <- cmd:
		return nil
	default:
		return ErrInputFull
	}
}

// Close stops the runner; a run still in play is abandoned.
func (r *SessionRunner) Close() {
	r.closeOnce.Do(func() { close(r.quit) })
}

// Done is closed when Run returns.
func (r *SessionRunner) Done() <-chan struct{} {
	return r.done
}

func (r *SessionRunner) Run(ctx context.Context) error {
	defer close(r.done)
	log := logger.FromContext(ctx).WithField("player", r.session.Player())
	log.Info("session runner started: tick=%s, snapshot_every=%d", r.tick, r.snapshotEvery)

	ticker := time.NewTicker(r.tick)
	defer ticker.Stop()

	r.publish(nil)
	lastPhase := r.session.Phase()
	ticks := 0
	for {
		select {
		case <-ctx.Done():
			r.abandon(ctx, log)
			return nil
		case <-r.quit:
			r.abandon(ctx, log)
			return nil

		case cmd := <-r.inputs:
			if err := r.apply(ctx, cmd); err != nil {
				log.Debug("command %s rejected: %v", cmd.Type, err)
				r.publish(err)
				continue
			}
			lastPhase = r.session.Phase()
			r.publish(nil)

		case <-ticker.C:
			r.session.Tick(ctx)
			ticks++
			phase := r.session.Phase()
			moving := phase == game.PhaseCountdown || phase == game.PhasePlay
			if phase != lastPhase || (moving && ticks%r.snapshotEvery == 0) {
				lastPhase = phase
				r.publish(nil)
			}
		}
	}
}

func (r *SessionRunner) apply(ctx context.Context, cmd Command) error {
	s := r.session
	switch cmd.Type {
	case CommandStart:
		return sessionError(s.Start(ctx))
	case CommandReplay:
		return sessionError(s.Replay(ctx))
	case CommandBackToSettings:
		return sessionError(s.BackToSettings(ctx))
	case CommandStatistics:
		return sessionError(s.ShowStatistics(ctx))
	case CommandResetStatistics:
		return sessionError(s.ResetStatistics(ctx))
	case CommandConfigure:
		if err := r.roster.check(cmd.Settings.Player); err != nil {
			return err
		}
		return sessionError(s.Configure(ctx, cmd.Settings))
	case CommandLeft:
		s.MoveLeft()
	case CommandRight:
		s.MoveRight()
	case CommandSelectLane:
		s.SelectLane(cmd.Lane)
	case CommandBoost:
		s.SetBoost(cmd.Held)
	default:
		return errors.NewBadRequestError("unknown command: " + string(cmd.Type))
	}
	return nil
}

func (r *SessionRunner) publish(err error) {
	if r.sink != nil {
		r.sink(Update{Snapshot: r.session.Snapshot(), Err: err})
	}
}

// abandon records a run that is still in play. The runner's context may
// already be cancelled, so the store writes get a context of their own.
func (r *SessionRunner) abandon(ctx context.Context, log *logger.Logger) {
	if r.session.Phase() == game.PhasePlay {
		if err := r.session.ShowStatistics(context.WithoutCancel(ctx)); err != nil {
			log.Error("failed to abandon run: %v", err)
		} else {
			log.Info("run abandoned: score=%d", r.session.Score())
		}
	}
	log.Info("session runner stopped")
}
