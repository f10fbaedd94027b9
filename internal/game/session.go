package game

import (
	"context"
	"math/rand/v2"
	"time"

	"github.com/google/uuid"
	"github.com/tvandenbrink/tafel-racer/internal/logger"
	"github.com/tvandenbrink/tafel-racer/internal/models"
	"github.com/tvandenbrink/tafel-racer/internal/quiz"
	"github.com/tvandenbrink/tafel-racer/internal/repository"
	"github.com/tvandenbrink/tafel-racer/internal/schedule"
	"github.com/tvandenbrink/tafel-racer/internal/track"
)

// CorrectAnswer is shown for a moment after a wrong gate.
type CorrectAnswer struct {
	Question string `json:"question"`
	Answer   int    `json:"answer"`
}

type Session struct {
	params  Params
	players repository.PlayerRepository
	results repository.ResultRepository
	now     func() time.Time
	rng     *rand.Rand
	newID   func() string

	gen    *quiz.Generator
	track  *track.Manager
	events *schedule.Queue

	settings Settings
	id       string
	epoch    uint64
	phase    Phase

	score     int
	lives     int
	highScore int
	answered  int
	carLane   int
	countdown int
	boost     bool

	invincible bool
	invStart   time.Time

	question *quiz.Question
	pending  []models.PendingRepeat

	redFlash      bool
	redUntil      time.Time
	greenFlash    bool
	greenUntil    time.Time
	correctAnswer *CorrectAnswer
	correctUntil  time.Time

	startedAt time.Time
	simTime   time.Time
	finished  bool
}

type Option func(*Session)

func WithClock(now func() time.Time) Option {
	return func(s *Session) { s.now = now }
}

func WithRand(rng *rand.Rand) Option {
	return func(s *Session) { s.rng = rng }
}

func WithParams(p Params) Option {
	return func(s *Session) { s.params = p }
}

// WithResults records every finished run.
func WithResults(results repository.ResultRepository) Option {
	return func(s *Session) { s.results = results }
}

// WithIDs replaces uuid generation for session, repeat and answer-log ids.
func WithIDs(newID func() string) Option {
	return func(s *Session) { s.newID = newID }
}

// New returns a session in the init phase.
func New(ctx context.Context, players repository.PlayerRepository, settings Settings, opts ...Option) (*Session, error) {
	if err := settings.Validate(); err != nil {
		return nil, err
	}
	s := &Session{
		params:  DefaultParams(),
		players: players,
		now:     time.Now,
		newID:   uuid.NewString,
		events:  schedule.New(),
		phase:   PhaseInit,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.rng == nil {
		s.rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	s.gen = quiz.NewGenerator(s.rng)
	s.settings = settings
	s.track = track.NewManager(settings.Lanes, s.params.Track, s.rng)
	s.lives = s.params.StartingLives
	s.simTime = s.now()
	s.highScore = s.loadHighScore(ctx)
	return s, nil
}

func (s *Session) Phase() Phase { return s.phase }
func (s *Session) ID() string { return s.id }
func (s *Session) Settings() Settings { return s.settings }
func (s *Session) Player() string { return s.settings.Player }
func (s *Session) Score() int { return s.score }
func (s *Session) Lives() int { return s.lives }
func (s *Session) Invincible() bool { return s.invincible }
func (s *Session) QuestionsAnswered() int { return s.answered }

func (s *Session) log(ctx context.Context) *logger.Logger {
	return logger.FromContext(ctx).WithPrefix("session").WithFields(map[string]any{
		"player":  s.settings.Player,
		"session": s.id,
	})
}

// Configure changes the settings between runs. Switching player reloads the
// high score shown on the settings screen.
func (s *Session) Configure(ctx context.Context, settings Settings) error {
	if s.phase != PhaseInit {
		return invalidTransition("configure", s.phase)
	}
	if err := settings.Validate(); err != nil {
		return err
	}
	s.settings = settings
	s.track = track.NewManager(settings.Lanes, s.params.Track, s.rng)
	s.highScore = s.loadHighScore(ctx)
	return nil
}

// Start begins the countdown for a new run.
func (s *Session) Start(ctx context.Context) error {
	if s.phase != PhaseInit {
		return invalidTransition("start", s.phase)
	}
	now := s.now()
	s.reset(now)
	s.id = s.newID()
	s.highScore = s.loadHighScore(ctx)
	s.pending = s.loadPending(ctx)
	s.startedAt = now
	s.phase = PhaseCountdown
	s.countdown = s.params.CountdownFrom
	s.scheduleAt(now.Add(time.Second), schedule.CountdownStep)

	s.log(ctx).Info("run started: lanes=%d, speed=%d, gate_interval=%s, pending_repeats=%d",
		s.settings.Lanes, s.settings.CarSpeed, s.settings.GateInterval, len(s.pending))
	return nil
}

// Replay goes from game over through init straight into a new countdown.
func (s *Session) Replay(ctx context.Context) error {
	if s.phase != PhaseGameOver {
		return invalidTransition("replay", s.phase)
	}
	s.toInit()
	return s.Start(ctx)
}

func (s *Session) BackToSettings(ctx context.Context) error {
	if s.phase != PhaseGameOver && s.phase != PhaseStatistics {
		return invalidTransition("back_to_settings", s.phase)
	}
	s.toInit()
	s.highScore = s.loadHighScore(ctx)
	return nil
}

// ShowStatistics leaves init, play or game over for the statistics screen.
// Leaving play abandons the run.
func (s *Session) ShowStatistics(ctx context.Context) error {
	switch s.phase {
	case PhaseInit, PhaseGameOver:
	case PhasePlay:
		s.Tick(ctx)
		if s.phase == PhasePlay {
			s.finish(ctx, s.now(), models.EndReasonAbandoned)
		}
	default:
		return invalidTransition("statistics", s.phase)
	}
	s.epoch++
	s.phase = PhaseStatistics
	return nil
}

// ResetStatistics wipes the player's practice records. Not allowed mid-run.
func (s *Session) ResetStatistics(ctx context.Context) error {
	switch s.phase {
	case PhaseInit, PhaseStatistics, PhaseGameOver:
	default:
		return invalidTransition("reset_statistics", s.phase)
	}
	if err := s.players.ResetStatistics(ctx, s.settings.Player); err != nil {
		return err
	}
	s.pending = nil
	return nil
}

func (s *Session) MoveLeft() {
	if s.phase == PhasePlay && s.carLane > 0 {
		s.carLane--
	}
}

func (s *Session) MoveRight() {
	if s.phase == PhasePlay && s.carLane < s.settings.Lanes-1 {
		s.carLane++
	}
}

// SelectLane jumps to lane, clamped to the track.
func (s *Session) SelectLane(lane int) {
	if s.phase != PhasePlay {
		return
	}
	s.carLane = min(max(lane, 0), s.settings.Lanes-1)
}

// SetBoost reflects whether the boost control is held. Ignored outside play.
func (s *Session) SetBoost(held bool) {
	if s.phase != PhasePlay {
		return
	}
	s.boost = held
}

func (s *Session) toInit() {
	s.phase = PhaseInit
	s.reset(s.now())
}

// reset clears everything a run owns and invalidates its pending events.
func (s *Session) reset(now time.Time) {
	s.epoch++
	s.score = 0
	s.lives = s.params.StartingLives
	s.answered = 0
	s.carLane = 0
	s.countdown = 0
	s.boost = false
	s.invincible = false
	s.invStart = time.Time{}
	s.question = nil
	s.redFlash, s.greenFlash = false, false
	s.correctAnswer = nil
	s.finished = false
	s.track.Reset()
	s.simTime = now
}

func (s *Session) scheduleAt(at time.Time, kind schedule.Kind) {
	s.events.Push(schedule.Event{At: at, Kind: kind, Epoch: s.epoch})
}

func (s *Session) gateInterval() time.Duration {
	return max(s.settings.GateInterval, s.params.MinGateInterval)
}

// velocity is the track speed in units per second.
func (s *Session) velocity() float64 {
	v := float64(s.settings.CarSpeed) * s.params.UnitsPerSpeed
	if s.boost {
		v *= s.params.BoostMultiplier
	}
	return v
}

func (s *Session) loadHighScore(ctx context.Context) int {
	score, err := s.players.HighScore(ctx, s.settings.Player)
	if err != nil {
		s.log(ctx).Warn("failed to load high score, using 0: %v", err)
		return 0
	}
	return score
}

// refreshPending picks up changes made to the queue outside this session,
// such as a statistics reset. On a read failure the cached queue stays.
func (s *Session) refreshPending(ctx context.Context) {
	pending, err := s.players.PendingRepeats(ctx, s.settings.Player)
	if err != nil {
		s.log(ctx).Warn("failed to reload pending repeats, keeping %d cached: %v", len(s.pending), err)
		return
	}
	s.pending = pending
}

func (s *Session) loadPending(ctx context.Context) []models.PendingRepeat {
	pending, err := s.players.PendingRepeats(ctx, s.settings.Player)
	if err != nil {
		s.log(ctx).Warn("failed to load pending repeats, starting empty: %v", err)
		return nil
	}
	return pending
}
