package main

import (
	"os"
	"os/signal"
	"syscall"

	"storefront/internal/config"
	"storefront/internal/server"
	"storefront/pkg/logger"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/viper"
)

func main() {
	// --- Configuration ---
	v := viper.New()
	v.AutomaticEnv()
	cfg, err := config.Load(v)

	log := logger.New(logger.Options{
		ServiceName: "storefront",
		Level:       logger.ParseLevel(cfg.LogLevel),
		Console:     os.Getenv("LOG_FORMAT") == "console",
	})
	if err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}

	// --- Metrics ---
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	// --- Application ---
	srv, err := server.New(cfg, log, reg)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to start storefront")
	}

	// Graceful shutdown handling
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		log.Info().Str("addr", cfg.AppPort).Msg("starting server")
		if err := srv.App.Listen(cfg.AppPort); err != nil {
			log.Fatal().Err(err).Msg("server failed to start")
		}
	}()

	<-quit
	log.Info().Msg("shutting down server")

	if err := srv.App.Shutdown(); err != nil {
		log.Error().Err(err).Msg("error during fiber shutdown")
	}
	if err := srv.Close(); err != nil {
		log.Error().Err(err).Msg("error closing connections")
	}
	log.Info().Msg("server gracefully stopped")
}
