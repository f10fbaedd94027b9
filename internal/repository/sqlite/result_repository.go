package sqlite

import (
	"context"
	"database/sql"
	"errors"

	"github.com/Masterminds/squirrel"
	"github.com/tvandenbrink/tafel-racer/internal/logger"
	"github.com/tvandenbrink/tafel-racer/internal/models"
	"github.com/tvandenbrink/tafel-racer/internal/repository"
)

var sqlBuilder = squirrel.StatementBuilder.PlaceholderFormat(squirrel.Question)

// DefaultListLimit applies when a filter does not set one.
const DefaultListLimit = 50

var resultColumns = []string{
	"id", "session_id", "player", "score", "questions_answered", "lanes",
	"car_speed", "end_reason", "started_at", "ended_at",
}

type resultRepository struct {
	db *sql.DB
}

// NewResultRepository creates a new ResultRepository implementation
func NewResultRepository(db *sql.DB) repository.ResultRepository {
	return &resultRepository{db: db}
}

// Insert stores a finished run. A second insert for the same session returns
// the existing row id.
func (r *resultRepository) Insert(ctx context.Context, res models.GameResult) (int64, error) {
	log := logger.FromContext(ctx).WithPrefix("result_repo")
	log.Debug("inserting result: session=%s, player=%s, score=%d", res.SessionID, res.Player, res.Score)

	out, err := r.db.ExecContext(ctx, `
INSERT INTO game_results (
    session_id, player, score, questions_answered, lanes, car_speed, end_reason, started_at, ended_at
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(session_id) DO NOTHING
`, res.SessionID, res.Player, res.Score, res.QuestionsAnswered, res.Lanes, res.CarSpeed, res.EndReason,
		res.StartedAt.UTC(), res.EndedAt.UTC())
	if err != nil {
		log.Error("failed to insert result: %v", err)
		return 0, err
	}
	if n, err := out.RowsAffected(); err == nil && n > 0 {
		id, err := out.LastInsertId()
		if err == nil {
			log.Debug("result inserted: id=%d", id)
			return id, nil
		}
	}

	var id int64
	err = r.db.QueryRowContext(ctx, `SELECT id FROM game_results WHERE session_id = ?`, res.SessionID).Scan(&id)
	if err != nil {
		log.Error("failed to get result id: %v", err)
	} else {
		log.Debug("result exists: id=%d", id)
	}
	return id, err
}

func (r *resultRepository) List(ctx context.Context, filter models.ResultFilter) ([]models.GameResult, error) {
	log := logger.FromContext(ctx).WithPrefix("result_repo")
	log.Debug("listing results with filter: player=%s, end_reason=%s, limit=%d, offset=%d",
		filter.Player, filter.EndReason, filter.Limit, filter.Offset)

	limit := filter.Limit
	if limit <= 0 {
		limit = DefaultListLimit
	}
	query := applyFilter(sqlBuilder.Select(resultColumns...).From("game_results"), filter).
		OrderBy("ended_at DESC", "id DESC").
		Limit(uint64(limit))
	if filter.Offset > 0 {
		query = query.Offset(uint64(filter.Offset))
	}

	stmt, args, err := query.ToSql()
	if err != nil {
		log.Error("failed to build query: %v", err)
		return nil, err
	}

	rows, err := r.db.QueryContext(ctx, stmt, args...)
	if err != nil {
		log.Error("failed to query results: %v", err)
		return nil, err
	}
	defer rows.Close()

	var results []models.GameResult
	for rows.Next() {
		res, err := scanResult(rows)
		if err != nil {
			log.Error("failed to scan result: %v", err)
			return nil, err
		}
		results = append(results, res)
	}
	log.Debug("found %d results", len(results))
	return results, rows.Err()
}

func (r *resultRepository) Count(ctx context.Context, filter models.ResultFilter) (int, error) {
	log := logger.FromContext(ctx).WithPrefix("result_repo")

	stmt, args, err := applyFilter(sqlBuilder.Select("COUNT(*)").From("game_results"), filter).ToSql()
	if err != nil {
		log.Error("failed to build query: %v", err)
		return 0, err
	}

	var count int
	if err := r.db.QueryRowContext(ctx, stmt, args...).Scan(&count); err != nil {
		log.Error("failed to count results: %v", err)
		return 0, err
	}
	return count, nil
}

// Best returns the highest-scoring run for player, the earliest one on ties,
// or nil when the player has no results.
func (r *resultRepository) Best(ctx context.Context, player string) (*models.GameResult, error) {
	log := logger.FromContext(ctx).WithPrefix("result_repo")
	log.Debug("getting best result: player=%s", player)

	stmt, args, err := sqlBuilder.Select(resultColumns...).
		From("game_results").
		Where(squirrel.Eq{"player": player}).
		OrderBy("score DESC", "ended_at ASC").
		Limit(1).
		ToSql()
	if err != nil {
		log.Error("failed to build query: %v", err)
		return nil, err
	}

	res, err := scanResult(r.db.QueryRowContext(ctx, stmt, args...))
	if errors.Is(err, sql.ErrNoRows) {
		log.Debug("no results for player=%s", player)
		return nil, nil
	}
	if err != nil {
		log.Error("failed to get best result: %v", err)
		return nil, err
	}
	return &res, nil
}

func applyFilter(query squirrel.SelectBuilder, filter models.ResultFilter) squirrel.SelectBuilder {
	if filter.Player != "" {
		query = query.Where(squirrel.Eq{"player": filter.Player})
	}
	if filter.EndReason != "" {
		query = query.Where(squirrel.Eq{"end_reason": filter.EndReason})
	}
	if filter.Since != nil {
		query = query.Where(squirrel.GtOrEq{"ended_at": filter.Since.UTC()})
	}
	return query
}

type scanner interface {
	Scan(dest ...any) error
}

func scanResult(row scanner) (models.GameResult, error) {
	var res models.GameResult
	err := row.Scan(&res.ID, &res.SessionID, &res.Player, &res.Score, &res.QuestionsAnswered,
		&res.Lanes, &res.CarSpeed, &res.EndReason, &res.StartedAt, &res.EndedAt)
	return res, err
}
