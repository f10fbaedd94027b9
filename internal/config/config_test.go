package config_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tvandenbrink/tafel-racer/internal/config"
)

func validConfig() config.Config {
	return config.Config{
		Addr:                ":8080",
		DBPath:              "test.db",
		StoreBackend:        config.BackendSQLite,
		RedisAddr:           "localhost:6379",
		LogLevel:            "INFO",
		Players:             []string{"Floris", "Esmee", "Tim"},
		Lanes:               6,
		CarSpeed:            150,
		GateIntervalSeconds: 0,
		TickRate:            60,
		SnapshotEvery:       2,
		SessionWorkerCount:  16,
		SessionQueueSize:    16,
	}
}

func TestValidate_ValidConfig(t *testing.T) {
	assert.NoError(t, validConfig().Validate())
}

func TestValidate_EmptyAddr(t *testing.T) {
	cfg := validConfig()
	cfg.Addr = ""

	err := cfg.Validate()
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "ADDR cannot be empty")
}

func TestValidate_EmptyDBPath(t *testing.T) {
	cfg := validConfig()
	cfg.DBPath = ""

	err := cfg.Validate()
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "DB_PATH cannot be empty")
}

func TestValidate_Lanes(t *testing.T) {
	tests := []struct {
		name  string
		lanes int
		ok    bool
	}{
		{name: "below minimum", lanes: 1, ok: false},
		{name: "minimum", lanes: 2, ok: true},
		{name: "maximum", lanes: 10, ok: true},
		{name: "above maximum", lanes: 11, ok: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			cfg.Lanes = tt.lanes

			err := cfg.Validate()
			if tt.ok {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
				assert.Contains(t, err.Error(), "LANES")
			}
		})
	}
}

func TestValidate_CarSpeedAndGateInterval(t *testing.T) {
	cfg := validConfig()
	cfg.CarSpeed = 10
	cfg.GateIntervalSeconds = 9

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "CAR_SPEED")
	assert.Contains(t, err.Error(), "GATE_INTERVAL_SECONDS")
}

func TestValidate_StoreBackend(t *testing.T) {
	tests := []struct {
		name    string
		backend string
		redis   string
		wantErr string
	}{
		{name: "unknown backend", backend: "mongo", redis: "localhost:6379", wantErr: "STORE_BACKEND"},
		{name: "redis without addr", backend: config.BackendRedis, redis: "", wantErr: "REDIS_ADDR"},
		{name: "redis ok", backend: config.BackendRedis, redis: "localhost:6379"},
		{name: "memory ok", backend: config.BackendMemory},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			cfg.StoreBackend = tt.backend
			cfg.RedisAddr = tt.redis

			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			assert.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestValidate_LogLevel(t *testing.T) {
	tests := []struct {
		level string
		ok    bool
	}{
		{level: "DEBUG", ok: true},
		{level: "debug", ok: true},
		{level: "WARN", ok: true},
		{level: "INVALID", ok: false},
		{level: "", ok: false},
	}

	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			cfg := validConfig()
			cfg.LogLevel = tt.level

			err := cfg.Validate()
			if tt.ok {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
				assert.Contains(t, err.Error(), "LOG_LEVEL")
			}
		})
	}
}

func TestValidate_Players(t *testing.T) {
	cfg := validConfig()
	cfg.Players = []string{"Tim", "Tim"}
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate")

	cfg.Players = nil
	err = cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "PLAYERS cannot be empty")
}

func TestValidate_MultipleErrors(t *testing.T) {
	cfg := config.Config{
		Addr:         "",
		DBPath:       "",
		StoreBackend: "bogus",
		LogLevel:     "INVALID",
		Lanes:        0,
		CarSpeed:     0,
		TickRate:     0,
	}

	err := cfg.Validate()
	require.Error(t, err)

	errStr := err.Error()
	assert.Contains(t, errStr, "ADDR cannot be empty")
	assert.Contains(t, errStr, "DB_PATH cannot be empty")
	assert.Contains(t, errStr, "STORE_BACKEND")
	assert.Contains(t, errStr, "LOG_LEVEL")
	assert.Contains(t, errStr, "PLAYERS")
	assert.Contains(t, errStr, "LANES")
	assert.Contains(t, errStr, "CAR_SPEED")
	assert.Contains(t, errStr, "TICK_RATE")
	assert.Contains(t, errStr, "SNAPSHOT_EVERY")
	assert.Contains(t, errStr, "SESSION_WORKER_COUNT")
	assert.Contains(t, errStr, "SESSION_QUEUE_SIZE")
}

func TestLoad_EnvironmentVariables(t *testing.T) {
	t.Setenv("ADDR", ":9090")
	t.Setenv("DB_PATH", "custom.db")
	t.Setenv("PLAYERS", " Anna , Bob,,")
	t.Setenv("LANES", "4")
	t.Setenv("GATE_INTERVAL_SECONDS", "2.5")
	t.Setenv("STORE_BACKEND", "REDIS")

	cfg := config.Load()

	assert.Equal(t, ":9090", cfg.Addr)
	assert.Equal(t, "custom.db", cfg.DBPath)
	assert.Equal(t, []string{"Anna", "Bob"}, cfg.Players)
	assert.Equal(t, 4, cfg.Lanes)
	assert.Equal(t, 2.5, cfg.GateIntervalSeconds)
	assert.Equal(t, config.BackendRedis, cfg.StoreBackend)
}

func TestLoad_InvalidIntFallsBackToDefault(t *testing.T) {
	t.Setenv("LANES", "many")

	cfg := config.Load()
	assert.Equal(t, 6, cfg.Lanes)
}
