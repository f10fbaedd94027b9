package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/tvandenbrink/tafel-racer/internal/api"
	"github.com/tvandenbrink/tafel-racer/internal/config"
	"github.com/tvandenbrink/tafel-racer/internal/db"
	"github.com/tvandenbrink/tafel-racer/internal/game"
	"github.com/tvandenbrink/tafel-racer/internal/kv"
	"github.com/tvandenbrink/tafel-racer/internal/kv/memory"
	"github.com/tvandenbrink/tafel-racer/internal/kv/redis"
	kvsqlite "github.com/tvandenbrink/tafel-racer/internal/kv/sqlite"
	"github.com/tvandenbrink/tafel-racer/internal/logger"
	"github.com/tvandenbrink/tafel-racer/internal/repository/kvstore"
	"github.com/tvandenbrink/tafel-racer/internal/repository/sqlite"
	"github.com/tvandenbrink/tafel-racer/internal/services"
	"github.com/tvandenbrink/tafel-racer/internal/worker"
)

func main() {
	cfg := config.Load()

	// Initialize logger
	log := logger.New(
		logger.WithLevel(logger.ParseLevel(cfg.LogLevel)),
		logger.WithColors(true),
	)
	logger.SetDefault(log)

	log.Info("===========================================")
	log.Info("Tafel Race Server Starting")
	log.Info("===========================================")

	if err := cfg.Validate(); err != nil {
		log.Error("invalid configuration: %v", err)
		os.Exit(1)
	}
	log.Info("configuration loaded")
	log.Debug("addr=%s", cfg.Addr)
	log.Debug("db_path=%s", cfg.DBPath)
	log.Debug("store_backend=%s", cfg.StoreBackend)
	log.Debug("log_level=%s", cfg.LogLevel)
	log.Debug("players=%v", cfg.Players)
	log.Debug("lanes=%d car_speed=%d gate_interval_seconds=%g", cfg.Lanes, cfg.CarSpeed, cfg.GateIntervalSeconds)
	log.Debug("tick_rate=%d snapshot_every=%d", cfg.TickRate, cfg.SnapshotEvery)
	log.Debug("session_worker_count=%d session_queue_size=%d", cfg.SessionWorkerCount, cfg.SessionQueueSize)

	// Open database
	database, err := db.Open(cfg.DBPath)
	if err != nil {
		log.Error("failed to open database: %v", err)
		os.Exit(1)
	}
	defer func() {
		log.Debug("closing database connection")
		database.Close()
	}()

	store, err := openStore(cfg, database)
	if err != nil {
		log.Error("failed to open player store: %v", err)
		os.Exit(1)
	}
	defer func() {
		log.Debug("closing player store")
		if err := store.Close(); err != nil {
			log.Warn("failed to close player store: %v", err)
		}
	}()

	players := kvstore.NewPlayerRepository(store)
	results := sqlite.NewResultRepository(database.DB)
	roster := services.Roster(cfg.Players)

	sessionPool := worker.NewPool(cfg.SessionWorkerCount, cfg.SessionQueueSize)

	srv := &api.Server{
		PlayerService: services.NewPlayerService(roster, players, results),
		StatsService:  services.NewStatsService(roster, players),
		SessionService: services.NewSessionService(services.SessionConfig{
			Roster: roster,
			Defaults: game.Settings{
				Lanes:        cfg.Lanes,
				CarSpeed:     cfg.CarSpeed,
				GateInterval: time.Duration(cfg.GateIntervalSeconds * float64(time.Second)),
			},
			TickRate:      cfg.TickRate,
			SnapshotEvery: cfg.SnapshotEvery,
			Params:        game.DefaultParams(),
		}, players, results, sessionPool),
		DB: database,
	}

	ctx, cancel := context.WithCancel(context.Background())
	sessionPool.Start(ctx)

	// Configure HTTP server. No WriteTimeout: /play connections are long-lived
	// and the JSON routes carry their own timeout.
	httpServer := &http.Server{
		Addr:        cfg.Addr,
		Handler:     srv.Routes(),
		ReadTimeout: 15 * time.Second,
		IdleTimeout: 60 * time.Second,
	}

	// Start HTTP server
	go func() {
		log.Info("HTTP server listening on %s", cfg.Addr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("HTTP server error: %v", err)
			os.Exit(1)
		}
	}()

	// Wait for shutdown signal
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	sig := <-stop

	log.Info("received signal %v, initiating graceful shutdown", sig)

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	log.Debug("shutting down HTTP server")
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Error("HTTP server shutdown error: %v", err)
	}

	// Running sessions are abandoned and recorded before the stores close.
	log.Debug("stopping session pool")
	cancel()
	sessionPool.Stop()

	log.Info("===========================================")
	log.Info("Tafel Race Server Stopped")
	log.Info("===========================================")
}

func openStore(cfg config.Config, database *db.DB) (kv.Store, error) {
	switch cfg.StoreBackend {
	case config.BackendRedis:
		return redis.Open(redis.Options{
			Addr:      cfg.RedisAddr,
			Password:  cfg.RedisPassword,
			DB:        cfg.RedisDB,
			KeyPrefix: "tafelrace:",
		})
	case config.BackendMemory:
		logger.Default().Warn("using in-memory player store; records are lost on exit")
		return memory.New(), nil
	default:
		return kvsqlite.New(database.DB), nil
	}
}
