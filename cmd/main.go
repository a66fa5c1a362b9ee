package main

import (
	"context"
	"errors"
	"os"
	"time"

	"github.com/desertthunder/muse/internal/cache"
	"github.com/desertthunder/muse/internal/services"
	"github.com/desertthunder/muse/internal/shared"
	"github.com/desertthunder/muse/internal/store"
	"github.com/urfave/cli/v3"
)

func main() {
	logger := shared.NewLogger(nil)

	config := shared.DefaultConfig()
	if _, err := os.Stat("config.toml"); err == nil {
		if loadedConfig, err := shared.LoadConfig("config.toml"); err == nil {
			config = loadedConfig
		}
	}

	sunoService := services.NewSunoService(
		config.Credentials.Suno.BaseURL,
		config.Credentials.Suno.APIKey,
		services.SunoOpts{RequestGap: time.Duration(config.Generation.RequestGapMS) * time.Millisecond},
	)

	var trackCache *cache.TrackCache
	if kv, err := store.Open(config.Cache.Path, config.Cache.MaxOpenConns, config.Cache.MaxIdleConns); err != nil {
		logger.Warn("track cache unavailable", "path", config.Cache.Path, "err", err)
	} else {
		trackCache = cache.New(kv, cache.Opts{
			MaxTracks: config.Cache.MaxTracks,
			TTL:       time.Duration(config.Cache.TTLHours) * time.Hour,
			Logger:    logger,
		})
	}

	runner := NewRunner(RunnerOpts{
		Config:  config,
		Service: sunoService,
		Cache:   trackCache,
		Logger:  logger,
	})

	app := &cli.Command{
		Name:     "muse",
		Usage:    "Generate music from text prompts",
		Version:  "0.1.0",
		Commands: runner.register(),
	}

	if err := app.Run(context.Background(), os.Args); err != nil {
		err_ := errors.Unwrap(err)
		if errors.Is(err_, shared.ErrNotImplemented) {
			logger.Warn("not implemented")
			os.Exit(0)
		} else {
			logger.Fatalf("application error: %v", err)
		}
	}
}
