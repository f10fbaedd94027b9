package api

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/tvandenbrink/tafel-racer/internal/errors"
	"github.com/tvandenbrink/tafel-racer/internal/logger"
	"github.com/tvandenbrink/tafel-racer/internal/services"
)

// Pinger reports whether the database answers.
type Pinger interface {
	PingContext(ctx context.Context) error
}

type Server struct {
	PlayerService  services.PlayerService
	StatsService   services.StatsService
	SessionService services.SessionService
	DB             Pinger
}

func writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.FromContext(r.Context()).Error("failed to encode response: %v", err)
	}
}

// queryInt reads a positive integer query parameter, falling back to def
// when it is absent.
func queryInt(r *http.Request, key string, def int) (int, error) {
	v := r.URL.Query().Get(key)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 1 {
		return 0, errors.NewValidationError(key, "must be a positive integer")
	}
	return n, nil
}
