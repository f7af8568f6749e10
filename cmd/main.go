package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/itbasis/go-clock"
	"golang.org/x/sync/errgroup"

	"github.com/Dosada05/fidel-league/app"
	"github.com/Dosada05/fidel-league/config"
	"github.com/Dosada05/fidel-league/feed"
	"github.com/Dosada05/fidel-league/handlers"
	api "github.com/Dosada05/fidel-league/routes"
	"github.com/Dosada05/fidel-league/services"
)

const shutdownTimeout = 15 * time.Second

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	logger, err := app.NewLogger(os.Stdout, cfg.LogLevel)
	if err != nil {
		return err
	}
	logger.Info("configuration loaded",
		slog.Int("port", cfg.ServerPort),
		slog.String("storage_backend", cfg.StorageBackend),
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	leagueRepo, closeRepo, err := app.OpenLeagueRepository(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to open league storage", slog.Any("error", err))
		return err
	}
	defer func() {
		if err := closeRepo(); err != nil {
			logger.Error("failed to close league storage", slog.Any("error", err))
		}
	}()

	hub := feed.NewHub(logger)
	leagueService := services.NewLeagueService(leagueRepo, clock.New(), hub, logger)

	leagueHandler := handlers.NewLeagueHandler(leagueService, logger)
	feedHandler := handlers.NewFeedHandler(hub, leagueService, cfg.CORSOrigins, logger)

	router := chi.NewRouter()
	api.SetupRoutes(router, logger, cfg.CORSOrigins, leagueHandler, feedHandler)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.ServerPort),
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 35 * time.Second,
		IdleTimeout:  120 * time.Second,
		ErrorLog:     slog.NewLogLogger(logger.Handler(), slog.LevelError),
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return hub.Run(gctx)
	})

	g.Go(func() error {
		logger.Info("starting server", slog.String("address", server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down server", slog.Duration("timeout", shutdownTimeout))

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("graceful shutdown failed", slog.Any("error", err))
			return server.Close()
		}
		logger.Info("server shutdown complete")
		return nil
	})

	if err := g.Wait(); err != nil {
		logger.Error("application stopped with error", slog.Any("error", err))
		return err
	}
	logger.Info("application exited")
	return nil
}
