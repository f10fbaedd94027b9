// Package kvstore implements the player records on top of a kv.Store.
package kvstore

import (
	"context"
	"encoding/json"
	"strconv"
	"sync"

	"github.com/tvandenbrink/tafel-racer/internal/kv"
	"github.com/tvandenbrink/tafel-racer/internal/logger"
	"github.com/tvandenbrink/tafel-racer/internal/models"
	"github.com/tvandenbrink/tafel-racer/internal/repository"
)

// playerRepository serializes its read-modify-write updates, so sessions of
// the same player running side by side do not lose each other's writes.
type playerRepository struct {
	mu    sync.Mutex
	store kv.Store
}

func NewPlayerRepository(store kv.Store) repository.PlayerRepository {
	return &playerRepository{store: store}
}

func (r *playerRepository) HighScore(ctx context.Context, player string) (int, error) {
	log := logger.FromContext(ctx).WithPrefix("player_repo")

	raw, ok, err := kv.NewNamespace(r.store, player).Get(ctx, kv.HighScore)
	if err != nil {
		log.Error("failed to read high score for %s: %v", player, err)
		return 0, err
	}
	if !ok {
		return 0, nil
	}
	score, err := strconv.Atoi(raw)
	if err != nil || score < 0 {
		log.Warn("unreadable high score for %s (%q), using 0", player, raw)
		return 0, nil
	}
	return score, nil
}

func (r *playerRepository) SetHighScore(ctx context.Context, player string, score int) error {
	log := logger.FromContext(ctx).WithPrefix("player_repo")
	log.Debug("setting high score for %s: %d", player, score)

	if err := kv.NewNamespace(r.store, player).Set(ctx, kv.HighScore, strconv.Itoa(score)); err != nil {
		log.Error("failed to write high score for %s: %v", player, err)
		return err
	}
	return nil
}

func (r *playerRepository) RaiseHighScore(ctx context.Context, player string, score int) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, err := r.HighScore(ctx, player)
	if err != nil {
		return 0, err
	}
	if score <= stored {
		return stored, nil
	}
	if err := r.SetHighScore(ctx, player, score); err != nil {
		return stored, err
	}
	return score, nil
}

func (r *playerRepository) IncorrectAnswers(ctx context.Context, player string) ([]models.IncorrectAnswer, error) {
	entries, err := readRecord[[]models.IncorrectAnswer](ctx, r.store, player, kv.IncorrectAnswers)
	if err != nil {
		return nil, err
	}
	if entries == nil {
		entries = []models.IncorrectAnswer{}
	}
	return entries, nil
}

// AddIncorrectAnswer puts entry first and drops the oldest beyond MaxIncorrectAnswers.
func (r *playerRepository) AddIncorrectAnswer(ctx context.Context, player string, entry models.IncorrectAnswer) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	entries, err := r.IncorrectAnswers(ctx, player)
	if err != nil {
		return err
	}
	entries = append([]models.IncorrectAnswer{entry}, entries...)
	if len(entries) > repository.MaxIncorrectAnswers {
		entries = entries[:repository.MaxIncorrectAnswers]
	}
	return r.writeJSON(ctx, player, kv.IncorrectAnswers, entries)
}

func (r *playerRepository) PendingRepeats(ctx context.Context, player string) ([]models.PendingRepeat, error) {
	repeats, err := readRecord[[]models.PendingRepeat](ctx, r.store, player, kv.PendingRepeats)
	if err != nil {
		return nil, err
	}
	if repeats == nil {
		repeats = []models.PendingRepeat{}
	}
	return repeats, nil
}

func (r *playerRepository) AddPendingRepeat(ctx context.Context, player string, repeat models.PendingRepeat) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	repeats, err := r.PendingRepeats(ctx, player)
	if err != nil {
		return err
	}
	return r.writeJSON(ctx, player, kv.PendingRepeats, append(repeats, repeat))
}

func (r *playerRepository) RemovePendingRepeat(ctx context.Context, player string, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	repeats, err := r.PendingRepeats(ctx, player)
	if err != nil {
		return err
	}
	kept := repeats[:0]
	for _, p := range repeats {
		if p.ID != id {
			kept = append(kept, p)
		}
	}
	if len(kept) == len(repeats) {
		logger.FromContext(ctx).WithPrefix("player_repo").Debug("pending repeat %s not found for %s", id, player)
		return nil
	}
	return r.writeJSON(ctx, player, kv.PendingRepeats, kept)
}

func (r *playerRepository) Statistics(ctx context.Context, player string) (models.QuestionStats, error) {
	stats, err := readRecord[models.QuestionStats](ctx, r.store, player, kv.Statistics)
	if err != nil {
		return nil, err
	}
	if stats == nil {
		stats = models.QuestionStats{}
	}
	return stats, nil
}

func (r *playerRepository) RecordAttempt(ctx context.Context, player string, question string, correct bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stats, err := r.Statistics(ctx, player)
	if err != nil {
		return err
	}
	s := stats[question]
	s.Attempts++
	if !correct {
		s.Mistakes++
	}
	stats[question] = s
	return r.writeJSON(ctx, player, kv.Statistics, stats)
}

// ResetStatistics clears the practice records. The high score is kept.
func (r *playerRepository) ResetStatistics(ctx context.Context, player string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	log := logger.FromContext(ctx).WithPrefix("player_repo")
	log.Info("resetting statistics for %s", player)

	err := kv.NewNamespace(r.store, player).Delete(ctx, kv.Statistics, kv.IncorrectAnswers, kv.PendingRepeats)
	if err != nil {
		log.Error("failed to reset statistics for %s: %v", player, err)
		return err
	}
	return nil
}

// readRecord returns the zero value when the record is absent or does not decode.
func readRecord[T any](ctx context.Context, store kv.Store, player, record string) (T, error) {
	log := logger.FromContext(ctx).WithPrefix("player_repo")

	var zero T
	raw, ok, err := kv.NewNamespace(store, player).Get(ctx, record)
	if err != nil {
		log.Error("failed to read %s for %s: %v", record, player, err)
		return zero, err
	}
	if !ok || raw == "" {
		return zero, nil
	}
	var v T
	if err := json.Unmarshal([]byte(raw), &v); err != nil {
		log.Warn("corrupt %s for %s, using empty value: %v", record, player, err)
		return zero, nil
	}
	return v, nil
}

func (r *playerRepository) writeJSON(ctx context.Context, player, record string, v any) error {
	log := logger.FromContext(ctx).WithPrefix("player_repo")

	b, err := json.Marshal(v)
	if err != nil {
		log.Error("failed to encode %s for %s: %v", record, player, err)
		return err
	}
	log.Debug("writing %s for %s", record, player)
	if err := kv.NewNamespace(r.store, player).Set(ctx, record, string(b)); err != nil {
		log.Error("failed to write %s for %s: %v", record, player, err)
		return err
	}
	return nil
}
