package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"

	"github.com/mcdev12/gameday/go/internal/inspect"
	"github.com/mcdev12/gameday/go/internal/live"
)

func main() {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil {
		log.Warn().Err(err).Msg("could not load .env file")
	}

	cfg, err := loadConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}
	setupLogging(cfg.Log)

	services, err := setupServices(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to setup services")
	}

	log.Info().
		Str("api", cfg.API.BaseURL).
		Str("transport", cfg.Live.Transport).
		Str("cache", cfg.Cache.Backend).
		Str("user_id", cfg.Screens.UserID).
		Msg("starting gameday")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// One shared live connection for the whole process
	hub, err := live.InitShared(ctx, services.Transport, live.WithMetrics(services.Metrics))
	if err != nil {
		fatal(services, err, "failed to start live connection")
	}

	state := inspect.NewStateHandler(hub)
	mounted, err := mountScreens(ctx, cfg, services, hub, state)
	if err != nil {
		fatal(services, err, "failed to mount screens")
	}

	var server *http.Server
	if cfg.Debug.Port != "" {
		server = setupServer(cfg.Debug.Port, state, services)
		go func() {
			log.Info().Str("addr", server.Addr).Msg("inspection server starting")
			if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				fatal(services, err, "inspection server failed")
			}
		}()
	}

	// Wait for interrupt signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	sig := <-sigChan

	log.Info().Str("signal", sig.String()).Msg("received shutdown signal")

	mounted.unmountAll()

	if server != nil {
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("inspection server shutdown failed")
		}
	}

	shutdown(services)
	cancel()

	log.Info().Msg("gameday shutdown complete")
}

// fatal releases what main has acquired so far, then exits
func fatal(services *Services, err error, msg string) {
	shutdown(services)
	log.Fatal().Err(err).Msg(msg)
}

// shutdown stops the shared live connection, if one was started, and releases services
func shutdown(services *Services) {
	if err := live.ShutdownShared(); err != nil && !errors.Is(err, live.ErrSharedNotInitialized) {
		log.Error().Err(err).Msg("live connection shutdown failed")
	}
	services.Close()
}
