// Package game runs one racing session: the phase machine, the track clock,
// and the scoring that follows from where the car is when gates and traffic
// arrive.
//
// A Session is not safe for concurrent use. One goroutine owns it and calls
// Tick and the command methods in turn; timers are events on an internal queue
// that Tick consumes, so a session can be driven by a fake clock.
package game

import (
	"errors"
	"fmt"
	"time"

	"github.com/tvandenbrink/tafel-racer/internal/track"
)

type Phase string

const (
	PhaseInit       Phase = "init"
	PhaseCountdown  Phase = "countdown"
	PhasePlay       Phase = "play"
	PhaseGameOver   Phase = "gameover"
	PhaseStatistics Phase = "statistics"
)

var (
	// ErrInvalidTransition is returned by commands that do not apply to the current phase.
	ErrInvalidTransition = errors.New("invalid phase transition")
	ErrInvalidSettings   = errors.New("invalid settings")
)

func invalidTransition(cmd string, from Phase) error {
	return fmt.Errorf("%w: %s from %s", ErrInvalidTransition, cmd, from)
}

// Settings bounds.
const (
	MinLanes        = 2
	MaxLanes        = 10
	MinCarSpeed     = 20
	MaxCarSpeed     = 200
	MaxGateInterval = 8 * time.Second
)

// Settings is what the player picks before a run.
type Settings struct {
	Player       string        `json:"player"`
	Lanes        int           `json:"lanes"`
	CarSpeed     int           `json:"car_speed"`
	GateInterval time.Duration `json:"gate_interval"`
}

func (s Settings) Validate() error {
	var errs []error
	if s.Player == "" {
		errs = append(errs, errors.New("player is required"))
	}
	if s.Lanes < MinLanes || s.Lanes > MaxLanes {
		errs = append(errs, fmt.Errorf("lanes must be between %d and %d, got %d", MinLanes, MaxLanes, s.Lanes))
	}
	if s.CarSpeed < MinCarSpeed || s.CarSpeed > MaxCarSpeed {
		errs = append(errs, fmt.Errorf("car speed must be between %d and %d, got %d", MinCarSpeed, MaxCarSpeed, s.CarSpeed))
	}
	if s.GateInterval < 0 || s.GateInterval > MaxGateInterval {
		errs = append(errs, fmt.Errorf("gate interval must be between 0 and %s, got %s", MaxGateInterval, s.GateInterval))
	}
	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", ErrInvalidSettings, errors.Join(errs...))
	}
	return nil
}

// Params are the timing and scoring rules shared by every session.
type Params struct {
	Track track.Params

	StartingLives int
	CountdownFrom int
	Invincibility time.Duration
	// A gate in the car's lane this close in travel time shields the car from traffic.
	ProtectionWindow time.Duration
	Flash            time.Duration
	CorrectAnswer    time.Duration
	ObstacleCheck    time.Duration
	MinGateInterval  time.Duration
	BoostMultiplier  float64
	// Track units per second per point of car speed.
	UnitsPerSpeed float64
	// Longest physics step; larger ticks are split.
	MaxStep time.Duration
}

func DefaultParams() Params {
	return Params{
		Track:            track.DefaultParams(),
		StartingLives:    3,
		CountdownFrom:    3,
		Invincibility:    2 * time.Second,
		ProtectionWindow: 2 * time.Second,
		Flash:            200 * time.Millisecond,
		CorrectAnswer:    time.Second,
		ObstacleCheck:    2500 * time.Millisecond,
		MinGateInterval:  100 * time.Millisecond,
		BoostMultiplier:  4,
		UnitsPerSpeed:    0.06,
		MaxStep:          time.Second / 60,
	}
}
