package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"usersvc/m/internal/api"
	"usersvc/m/internal/config"
	"usersvc/m/internal/database"
	"usersvc/m/internal/logging"
	"usersvc/m/internal/migrations"
	"usersvc/m/internal/seed"
)

func main() {
	_ = godotenv.Load()

	cfg := config.Load()
	logging.Init(logging.Config{Format: logging.Format(cfg.LogFormat), Level: cfg.LogLevel})
	logger := logging.Get("main")

	db, err := database.Connect(cfg.DatabaseDriver, cfg.DatabaseDSN, cfg.MaxOpenConns)
	if err != nil {
		logger.Fatal().Err(err).Str("driver", cfg.DatabaseDriver).Msg("failed to connect to database")
	}
	defer db.Close()

	if err := migrations.Run(db); err != nil {
		logger.Fatal().Stack().Err(err).Msg("failed to run migrations")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.SeedFile != "" {
		n, err := seed.LoadUsers(ctx, db, cfg.SeedFile)
		if err != nil {
			logger.Warn().Stack().Err(err).Str("file", cfg.SeedFile).Msg("failed to seed users")
		} else if n > 0 {
			logger.Info().Int("count", n).Msg("seeded users")
		}
	}

	handler := api.New(db, logging.Get("api"), api.Options{StaticDir: cfg.StaticDir})
	srv := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           handler.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info().Str("addr", srv.Addr).Msg("users server starting")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("server error")
		}
	}()

	<-ctx.Done()
	logger.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("graceful shutdown failed")
	}
}
