package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/victordov/telegram-video-downloader/internal/app"
	"github.com/victordov/telegram-video-downloader/internal/platform/config"
)

func main() {
	mode := flag.String("mode", "bot", "Service mode (bot, fetch)")
	url := flag.String("url", "", "URL to acquire (fetch mode)")

	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger := newLogger(cfg.AppEnv, cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	application, err := app.New(ctx, cfg, &logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to initialize application")
	}
	defer application.Close()

	if *mode == "bot" {
		go func() {
			if err := application.StartHealthServer(ctx); err != nil {
				logger.Error().Err(err).Msg("health check server error")
			}
		}()
	}

	if err := runMode(ctx, application, *mode, *url); err != nil {
		if errors.Is(err, context.Canceled) {
			logger.Info().Msg("application stopped")
			return
		}

		logger.Error().Err(err).Msg("application error")
		application.Close()
		stop()
		os.Exit(1)
	}
}

func newLogger(appEnv, level string) zerolog.Logger {
	var logger zerolog.Logger
	if appEnv == "local" {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}).With().Timestamp().Logger()
	} else {
		logger = zerolog.New(os.Stderr).With().Timestamp().Logger()
	}

	lvl, err := zerolog.ParseLevel(level)
	if err != nil || level == "" {
		lvl = zerolog.InfoLevel
	}

	return logger.Level(lvl)
}

func runMode(ctx context.Context, application *app.App, mode, url string) error {
	switch mode {
	case "bot":
		return application.RunBot(ctx)
	case "fetch":
		return application.RunFetch(ctx, url)
	default:
		log.Fatalf("Usage: %s --mode=[bot|fetch] [--url=URL]", os.Args[0])

		return nil
	}
}
