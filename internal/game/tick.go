package game

import (
	"context"
	"math"
	"time"

	"github.com/tvandenbrink/tafel-racer/internal/models"
	"github.com/tvandenbrink/tafel-racer/internal/schedule"
	"github.com/tvandenbrink/tafel-racer/internal/track"
)

// Tick brings the session up to the clock's current time. Due events are
// applied in time order with the track simulated up to each one first, so the
// outcome does not depend on how often Tick is called.
func (s *Session) Tick(ctx context.Context) {
	now := s.now()
	for {
		e, ok := s.events.PopDue(now)
		if !ok {
			break
		}
		s.simulateTo(ctx, e.At)
		if e.Epoch != s.epoch {
			continue
		}
		s.handle(ctx, e)
	}
	s.simulateTo(ctx, now)
}

func (s *Session) handle(ctx context.Context, e schedule.Event) {
	switch e.Kind {
	case schedule.CountdownStep:
		if s.phase != PhaseCountdown {
			return
		}
		s.countdown--
		if s.countdown > 0 {
			s.scheduleAt(e.At.Add(time.Second), schedule.CountdownStep)
			return
		}
		s.enterPlay(ctx, e.At)

	case schedule.GateTimer:
		if s.phase != PhasePlay {
			return
		}
		if !s.track.HasGates() {
			s.spawnGates(ctx, e.At)
		}
		s.scheduleAt(e.At.Add(s.gateInterval()), schedule.GateTimer)

	case schedule.ObstacleTimer:
		if s.phase != PhasePlay {
			return
		}
		gateDue, _ := s.events.NextOf(schedule.GateTimer, s.epoch)
		o, err := s.track.TrySpawnObstacle(e.At, gateDue, s.gateInterval())
		if err != nil {
			s.log(ctx).Debug("obstacle spawn skipped: %v", err)
		} else {
			s.log(ctx).Debug("obstacle spawned: lane=%d, color=%d", o.Lane, o.ColorIndex)
		}
		s.scheduleAt(e.At.Add(s.params.ObstacleCheck), schedule.ObstacleTimer)

	case schedule.ClearRedFlash:
		if !e.At.Before(s.redUntil) {
			s.redFlash = false
		}
	case schedule.ClearGreenFlash:
		if !e.At.Before(s.greenUntil) {
			s.greenFlash = false
		}
	case schedule.HideCorrectAnswer:
		if !e.At.Before(s.correctUntil) {
			s.correctAnswer = nil
		}
	}
}

func (s *Session) enterPlay(ctx context.Context, at time.Time) {
	s.phase = PhasePlay
	s.simTime = at
	s.log(ctx).Debug("countdown finished, racing")

	s.spawnGates(ctx, at)
	s.scheduleAt(at.Add(s.gateInterval()), schedule.GateTimer)
	s.scheduleAt(at.Add(s.params.ObstacleCheck), schedule.ObstacleTimer)
}

func (s *Session) spawnGates(ctx context.Context, at time.Time) {
	s.refreshPending(ctx)
	q := s.gen.Generate(s.settings.Lanes, s.answered, s.pending)
	if !s.track.SpawnGates(q.Options, at) {
		return
	}
	s.question = &q
	s.log(ctx).Debug("gate set spawned: question=%q, repeat=%t", q.Text, q.IsRepeat())
}

// simulateTo advances the track to t in steps no longer than MaxStep.
func (s *Session) simulateTo(ctx context.Context, t time.Time) {
	if s.phase != PhasePlay {
		if t.After(s.simTime) {
			s.simTime = t
		}
		return
	}
	for s.phase == PhasePlay && s.simTime.Before(t) {
		dt := min(t.Sub(s.simTime), s.params.MaxStep)
		s.simTime = s.simTime.Add(dt)
		s.step(ctx, dt, s.simTime)
	}
}

func (s *Session) step(ctx context.Context, dt time.Duration, at time.Time) {
	if s.invincible && at.Sub(s.invStart) >= s.params.Invincibility {
		s.invincible = false
	}

	s.track.Advance(s.velocity() * dt.Seconds())

	if !s.invincible {
		if g, ok := s.track.GateAtCar(s.carLane); ok {
			s.resolveGate(ctx, g, at)
		}
	}

	if s.track.GatesPassed() {
		s.log(ctx).Debug("gate set passed unanswered: question=%q", s.questionText())
		s.question = nil
		s.restartGateTimer(at)
	}
	s.track.Prune()

	if !s.invincible {
		for _, o := range s.track.ObstaclesAtCar(s.carLane) {
			s.hitObstacle(ctx, o, at)
			if s.invincible {
				break
			}
		}
	}

	if s.lives <= 0 {
		s.gameOver(ctx, at)
	}
}

// resolveGate settles the whole gate set the car drove through.
func (s *Session) resolveGate(ctx context.Context, g track.Gate, at time.Time) {
	log := s.log(ctx)
	q := s.question
	s.track.ClearGates()
	s.question = nil
	s.restartGateTimer(at)
	if q == nil {
		return
	}

	if g.Value == q.Correct {
		s.score++
		s.answered++
		s.flashGreen(at)
		log.Debug("correct: question=%q, score=%d", q.Text, s.score)

		if err := s.players.RecordAttempt(ctx, s.settings.Player, q.Text, true); err != nil {
			log.Error("failed to record attempt: %v", err)
		}
		if q.IsRepeat() {
			s.removePending(q.RepeatID)
			if err := s.players.RemovePendingRepeat(ctx, s.settings.Player, q.RepeatID); err != nil {
				log.Error("failed to remove pending repeat %s: %v", q.RepeatID, err)
			}
		}
		s.raiseHighScore(ctx)
		return
	}

	s.loseLife(at)
	s.correctAnswer = &CorrectAnswer{Question: q.Text, Answer: q.Correct}
	s.correctUntil = at.Add(s.params.CorrectAnswer)
	s.scheduleAt(s.correctUntil, schedule.HideCorrectAnswer)
	log.Debug("wrong: question=%q, given=%d, correct=%d, lives=%d", q.Text, g.Value, q.Correct, s.lives)

	if err := s.players.RecordAttempt(ctx, s.settings.Player, q.Text, false); err != nil {
		log.Error("failed to record attempt: %v", err)
	}
	entry := models.IncorrectAnswer{
		ID:            s.newID(),
		Question:      q.Text,
		CorrectAnswer: q.Correct,
		GivenAnswer:   g.Value,
		Timestamp:     at.UnixMilli(),
	}
	if err := s.players.AddIncorrectAnswer(ctx, s.settings.Player, entry); err != nil {
		log.Error("failed to log incorrect answer: %v", err)
	}
	if !q.IsRepeat() {
		repeat := models.PendingRepeat{
			ID:            s.newID(),
			Question:      q.Text,
			CorrectAnswer: q.Correct,
			AddedAt:       at.UnixMilli(),
		}
		s.pending = append(s.pending, repeat)
		if err := s.players.AddPendingRepeat(ctx, s.settings.Player, repeat); err != nil {
			log.Error("failed to queue repeat: %v", err)
		}
	}
}

// hitObstacle removes o and costs a life unless a gate in the car's lane is
// close enough that the car is committed to it.
func (s *Session) hitObstacle(ctx context.Context, o track.Obstacle, at time.Time) {
	s.track.RemoveObstacle(o.ID)

	if g, ok := s.track.GateInLane(s.carLane); ok {
		window := s.velocity() * s.params.ProtectionWindow.Seconds()
		if dist := math.Abs(g.Z); dist <= window {
			s.log(ctx).Debug("traffic hit shielded by gate: distance=%.2f, window=%.2f", dist, window)
			return
		}
	}

	s.loseLife(at)
	s.log(ctx).Debug("traffic hit: lane=%d, lives=%d", o.Lane, s.lives)
}

func (s *Session) loseLife(at time.Time) {
	s.lives--
	s.invincible = true
	s.invStart = at
	s.redFlash = true
	s.redUntil = at.Add(s.params.Flash)
	s.scheduleAt(s.redUntil, schedule.ClearRedFlash)
}

func (s *Session) flashGreen(at time.Time) {
	s.greenFlash = true
	s.greenUntil = at.Add(s.params.Flash)
	s.scheduleAt(s.greenUntil, schedule.ClearGreenFlash)
}

func (s *Session) removePending(id string) {
	kept := s.pending[:0]
	for _, p := range s.pending {
		if p.ID != id {
			kept = append(kept, p)
		}
	}
	s.pending = kept
}

func (s *Session) gameOver(ctx context.Context, at time.Time) {
	s.phase = PhaseGameOver
	s.finish(ctx, at, models.EndReasonGameOver)
	s.log(ctx).Info("game over: score=%d, answered=%d, high_score=%d", s.score, s.answered, s.highScore)
}

// finish settles the high score and records the run once.
func (s *Session) finish(ctx context.Context, at time.Time, reason string) {
	if s.finished {
		return
	}
	s.finished = true
	s.raiseHighScore(ctx)
	if s.results == nil {
		return
	}
	_, err := s.results.Insert(ctx, models.GameResult{
		SessionID:         s.id,
		Player:            s.settings.Player,
		Score:             s.score,
		QuestionsAnswered: s.answered,
		Lanes:             s.settings.Lanes,
		CarSpeed:          s.settings.CarSpeed,
		EndReason:         reason,
		StartedAt:         s.startedAt,
		EndedAt:           at,
	})
	if err != nil {
		s.log(ctx).Error("failed to record result: %v", err)
	}
}

// raiseHighScore stores the score if it is a new best. The stored value wins
// when another session of the same player already went higher.
func (s *Session) raiseHighScore(ctx context.Context) {
	if s.score <= s.highScore {
		return
	}
	best, err := s.players.RaiseHighScore(ctx, s.settings.Player, s.score)
	if err != nil {
		s.log(ctx).Error("failed to store high score: %v", err)
		s.highScore = s.score
		return
	}
	s.highScore = max(best, s.score)
}

// restartGateTimer makes the next gate set wait a full interval from at.
func (s *Session) restartGateTimer(at time.Time) {
	s.events.Cancel(schedule.GateTimer)
	s.scheduleAt(at.Add(s.gateInterval()), schedule.GateTimer)
}

func (s *Session) questionText() string {
	if s.question == nil {
		return ""
	}
	return s.question.Text
}
