// Package config loads runtime settings from the environment and an optional
// .env file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config is the full set of runtime settings.
type Config struct {
	WindowWidth      int           `env:"WINDOW_WIDTH" envDefault:"1280"`
	WindowHeight     int           `env:"WINDOW_HEIGHT" envDefault:"800"`
	DBPath           string        `env:"DB_PATH" envDefault:"tabletop.db"`
	SaveKey          string        `env:"SAVE_KEY" envDefault:"rpg_hotseat_vtt_v1"`
	AutosaveInterval time.Duration `env:"AUTOSAVE_INTERVAL" envDefault:"25s"`
	StatusDuration   time.Duration `env:"STATUS_DURATION" envDefault:"1400ms"`
	ImageCacheBytes  int64         `env:"IMAGE_CACHE_BYTES" envDefault:"268435456"`
	LogLevel         string        `env:"LOG_LEVEL" envDefault:"info"`
	LogFile          string        `env:"LOG_FILE"`
	InitialMap       string        `env:"INITIAL_MAP"`
	// Seed fixes the dice and initiative random source; 0 seeds from the clock.
	Seed int64 `env:"SEED"`
}

// Prefix is prepended to every variable name.
const Prefix = "TABLETOP_"

// Load reads envFiles (missing files are skipped) into the process
// environment without overriding variables already set, then parses the
// TABLETOP_* variables.
func Load(envFiles ...string) (Config, error) {
	for _, f := range envFiles {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("load %s: %w", f, err)
		}
	}
	return Parse()
}

// Parse reads the TABLETOP_* variables from the process environment.
func Parse() (Config, error) {
	cfg, err := env.ParseAsWithOptions[Config](env.Options{Prefix: Prefix})
	if err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate rejects settings the board cannot run with.
func (c Config) Validate() error {
	if c.WindowWidth <= 0 || c.WindowHeight <= 0 {
		return fmt.Errorf("window size must be positive, got %dx%d", c.WindowWidth, c.WindowHeight)
	}
	if c.AutosaveInterval <= 0 {
		return fmt.Errorf("autosave interval must be positive, got %s", c.AutosaveInterval)
	}
	if c.SaveKey == "" {
		return fmt.Errorf("save key is required")
	}
	return nil
}
