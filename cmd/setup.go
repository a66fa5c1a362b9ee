package main

import (
	"context"
	"fmt"
	"os"

	"github.com/desertthunder/muse/internal/shared"
	"github.com/desertthunder/muse/internal/store"
	"github.com/urfave/cli/v3"
)

// Setup writes a starter config file when none exists and initializes the
// cache database.
func (r *Runner) Setup(ctx context.Context, cmd *cli.Command) error {
	configPath := cmd.String("config")

	var config *shared.Config
	if _, err := os.Stat(configPath); err == nil {
		if config, err = shared.LoadConfig(configPath); err != nil {
			r.logger.Warn("failed to load config, using defaults", "error", err)
			config = shared.DefaultConfig()
		}
	} else {
		r.logger.Info("config file not found, creating from template", "path", configPath)
		if err := shared.CreateConfigFile(configPath); err != nil {
			r.logger.Warn("failed to create config file, using defaults", "error", err)
			config = shared.DefaultConfig()
		} else {
			r.logger.Info("config file created", "path", configPath)
			if config, err = shared.LoadConfig(configPath); err != nil {
				r.logger.Warn("failed to load created config, using defaults", "error", err)
				config = shared.DefaultConfig()
			}
		}
	}

	r.logger.Info("initializing cache database", "path", config.Cache.Path)

	kv, err := store.Open(config.Cache.Path, config.Cache.MaxOpenConns, config.Cache.MaxIdleConns)
	if err != nil {
		return fmt.Errorf("failed to initialize cache database: %w", err)
	}
	defer kv.Close()

	r.writePlainln("✓ Setup complete")
	r.writePlain("Config: %s\n", configPath)
	r.writePlain("Cache database: %s\n", config.Cache.Path)
	if config.Credentials.Suno.APIKey == "" {
		r.writePlain("Next step: add your API key under [credentials.suno] in %s\n", configPath)
	}

	return nil
}
