// Command devserver runs the blind maze game over HTTP with SQLite storage,
// for local play without a Nakama server.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"blindmaze/internal/app"
	"blindmaze/internal/app/onboarding"
	"blindmaze/internal/config"
	"blindmaze/internal/logging"
	"blindmaze/internal/ports"
	"blindmaze/internal/store"
	"blindmaze/internal/transport/httpapi"
)

func main() {
	if err := run(); err != nil {
		logging.New(os.Stderr, logging.LevelError).Error("devserver: %v", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.LoadServerConfig()
	if err != nil {
		return err
	}
	logger := logging.New(os.Stdout, logging.ParseLevel(cfg.LogLevel))

	if err := config.LoadGameConfig(cfg.GameConfigPath); err != nil {
		logger.Warn("game config %s not loaded, using defaults: %v", cfg.GameConfigPath, err)
	}
	rules := config.GetGameConfig()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := store.Open(ctx, cfg.DBPath)
	if err != nil {
		return err
	}
	defer db.Close()

	tickets := app.NewTicketIssuer(cfg.TicketSecret, cfg.TicketIssuer, time.Now)
	service := app.NewService(rules, db, tickets, logger, time.Now)
	welcome := onboarding.NewService(db, db, rules.WelcomeBonus, nil)
	stores := func(userID string) ports.KVStore { return db.ForPlayer(userID) }

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           httpapi.NewServer(service, stores, db, welcome, logger, cfg.RequestTimeout).Routes(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.WithFields(map[string]interface{}{
			"addr":  cfg.HTTPAddr,
			"db":    cfg.DBPath,
			"steps": rules.StepsPerAttempt,
		}).Info("BlindMaze dev server listening")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
