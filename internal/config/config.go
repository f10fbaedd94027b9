package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/tvandenbrink/tafel-racer/internal/logger"
)

// Store backends accepted by STORE_BACKEND.
const (
	BackendSQLite = "sqlite"
	BackendRedis  = "redis"
	BackendMemory = "memory"
)

// Bounds of the settings surface.
const (
	MinLanes           = 2
	MaxLanes           = 10
	MinCarSpeed        = 20
	MaxCarSpeed        = 200
	MaxGateIntervalSec = 8
	MinTickRate        = 10
	MaxTickRate        = 240
)

type Config struct {
	Addr                string
	DBPath              string
	StoreBackend        string
	RedisAddr           string
	RedisPassword       string
	RedisDB             int
	LogLevel            string
	Players             []string
	Lanes               int
	CarSpeed            int
	GateIntervalSeconds float64
	TickRate            int
	SnapshotEvery       int
	SessionWorkerCount  int
	SessionQueueSize    int
}

// Load reads configuration from a .env file (if present) and environment variables,
// applying defaults when values are missing or invalid.
func Load() Config {
	// Ignore error so the app still starts when .env is absent in production.
	_ = godotenv.Load()

	return Config{
		Addr:                envOr("ADDR", ":8080"),
		DBPath:              envOr("DB_PATH", "file:tafelrace.db"),
		StoreBackend:        strings.ToLower(envOr("STORE_BACKEND", BackendSQLite)),
		RedisAddr:           envOr("REDIS_ADDR", "localhost:6379"),
		RedisPassword:       os.Getenv("REDIS_PASSWORD"),
		RedisDB:             envIntOr("REDIS_DB", 0),
		LogLevel:            envOr("LOG_LEVEL", "INFO"),
		Players:             envListOr("PLAYERS", []string{"Floris", "Esmee", "Tim"}),
		Lanes:               envIntOr("LANES", 6),
		CarSpeed:            envIntOr("CAR_SPEED", 150),
		GateIntervalSeconds: envFloatOr("GATE_INTERVAL_SECONDS", 0),
		TickRate:            envIntOr("TICK_RATE", 60),
		SnapshotEvery:       envIntOr("SNAPSHOT_EVERY", 2),
		SessionWorkerCount:  envIntOr("SESSION_WORKER_COUNT", 16),
		SessionQueueSize:    envIntOr("SESSION_QUEUE_SIZE", 16),
	}
}

// Validate checks every field and reports all violations at once.
func (c Config) Validate() error {
	var errs []error

	if c.Addr == "" {
		errs = append(errs, errors.New("ADDR cannot be empty"))
	}
	switch c.StoreBackend {
	case BackendSQLite, BackendMemory:
	case BackendRedis:
		if c.RedisAddr == "" {
			errs = append(errs, errors.New("REDIS_ADDR cannot be empty when STORE_BACKEND=redis"))
		}
		if c.RedisDB < 0 {
			errs = append(errs, fmt.Errorf("REDIS_DB must be >= 0, got %d", c.RedisDB))
		}
	default:
		errs = append(errs, fmt.Errorf("STORE_BACKEND must be one of sqlite, redis, memory, got %q", c.StoreBackend))
	}
	// Game results always live in SQLite.
	if c.DBPath == "" {
		errs = append(errs, errors.New("DB_PATH cannot be empty"))
	}
	if !logger.ValidLevel(c.LogLevel) {
		errs = append(errs, fmt.Errorf("LOG_LEVEL must be DEBUG, INFO, WARN or ERROR, got %q", c.LogLevel))
	}
	if len(c.Players) == 0 {
		errs = append(errs, errors.New("PLAYERS cannot be empty"))
	}
	seen := make(map[string]bool, len(c.Players))
	for _, p := range c.Players {
		if seen[p] {
			errs = append(errs, fmt.Errorf("PLAYERS contains duplicate %q", p))
		}
		seen[p] = true
	}
	if c.Lanes < MinLanes || c.Lanes > MaxLanes {
		errs = append(errs, fmt.Errorf("LANES must be between %d and %d, got %d", MinLanes, MaxLanes, c.Lanes))
	}
	if c.CarSpeed < MinCarSpeed || c.CarSpeed > MaxCarSpeed {
		errs = append(errs, fmt.Errorf("CAR_SPEED must be between %d and %d, got %d", MinCarSpeed, MaxCarSpeed, c.CarSpeed))
	}
	if c.GateIntervalSeconds < 0 || c.GateIntervalSeconds > MaxGateIntervalSec {
		errs = append(errs, fmt.Errorf("GATE_INTERVAL_SECONDS must be between 0 and %d, got %g", MaxGateIntervalSec, c.GateIntervalSeconds))
	}
	if c.TickRate < MinTickRate || c.TickRate > MaxTickRate {
		errs = append(errs, fmt.Errorf("TICK_RATE must be between %d and %d, got %d", MinTickRate, MaxTickRate, c.TickRate))
	}
	if c.SnapshotEvery < 1 {
		errs = append(errs, fmt.Errorf("SNAPSHOT_EVERY must be >= 1, got %d", c.SnapshotEvery))
	}
	if c.SessionWorkerCount < 1 {
		errs = append(errs, fmt.Errorf("SESSION_WORKER_COUNT must be >= 1, got %d", c.SessionWorkerCount))
	}
	if c.SessionQueueSize < 1 {
		errs = append(errs, fmt.Errorf("SESSION_QUEUE_SIZE must be >= 1, got %d", c.SessionQueueSize))
	}

	return errors.Join(errs...)
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envIntOr(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
		log.Printf("invalid value for %s=%q, using default %d", key, v, def)
	}
	return def
}

func envFloatOr(key string, def float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
		log.Printf("invalid value for %s=%q, using default %g", key, v, def)
	}
	return def
}

func envListOr(key string, def []string) []string {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
