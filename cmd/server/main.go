// Package main is the entry point for the kquant dashboard gateway.
// The gateway sits between the browser and the trading backend: it owns
// the login session, fetches view data through per-view controllers and
// pushes state changes to the browser over SSE and websockets.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/kquant/dashboard/internal/config"
	"github.com/kquant/dashboard/internal/di"
	"github.com/kquant/dashboard/internal/server"
	"github.com/kquant/dashboard/pkg/logger"
)

func main() {
	// Load configuration first to get log level
	cfg, err := config.Load()
	if err != nil {
		fallbackLog := logger.New(logger.Config{
			Level:  "info",
			Pretty: true,
		})
		fallbackLog.Fatal().Err(err).Msg("Failed to load configuration")
	}

	log := logger.New(logger.Config{
		Level:  cfg.LogLevel,
		Pretty: cfg.DevMode,
	})
	logger.SetGlobalLogger(log)

	log.Info().
		Str("api", cfg.APIBaseURL).
		Str("data_dir", cfg.DataDir).
		Msg("Starting dashboard gateway")

	container, sched, _, err := di.Wire(cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to wire dependencies")
	}
	defer container.Close()

	srv := server.New(server.Config{
		Log:            log,
		Port:           cfg.Port,
		DevMode:        cfg.DevMode,
		AllowedOrigins: cfg.AllowedOrigins,
		DataDir:        cfg.DataDir,
		Bus:            container.EventBus,
		Session:        container.SessionStore,
		Public: []server.Routes{
			container.SessionHandler,
		},
		Gated: []server.Routes{
			container.DashboardHandler,
			container.MarketHandler,
			container.StocksHandler,
			container.WatchlistHandler,
			container.StrategiesHandler,
			container.BacktestHandler,
			container.AccountHandler,
			container.TradesHandler,
		},
	})

	go func() {
		if err := srv.Start(); err != nil {
			log.Fatal().Err(err).Msg("HTTP server failed")
		}
	}()
	log.Info().Int("port", cfg.Port).Msg("Server started")

	sched.Start()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down")

	// Stop jobs before the views they tick are unmounted
	sched.Stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server stopped")
}
