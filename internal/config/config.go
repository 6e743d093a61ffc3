package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

const (
	StorageDatastore = "datastore"
	StorageSQLite    = "sqlite"
)

// Storage selects the profile store backend.
type Storage struct {
	StorageDriver string `env:"STORAGE_DRIVER" envDefault:"datastore"`
	StoragePath   string `env:"STORAGE_PATH" envDefault:"datastore.json"`
}

type Config struct {
	DiscordToken  string `env:"DISCORD_TOKEN,required,notEmpty"`
	CommandPrefix string `env:"COMMAND_PREFIX" envDefault:">"`

	Storage

	GracePeriod          time.Duration `env:"GRACE_PERIOD" envDefault:"60s"`
	ConnectTimeout       time.Duration `env:"CONNECT_TIMEOUT" envDefault:"30s"`
	PlaybackStartTimeout time.Duration `env:"PLAYBACK_START_TIMEOUT" envDefault:"5s"`

	// SearchRate is the number of search requests allowed per second.
	SearchRate float64 `env:"SEARCH_RATE" envDefault:"2"`

	LogLevel      string `env:"LOG_LEVEL" envDefault:"info"`
	LogFile       string `env:"LOG_FILE"`
	LogMaxSizeMB  int    `env:"LOG_MAX_SIZE_MB" envDefault:"50"`
	LogMaxBackups int    `env:"LOG_MAX_BACKUPS" envDefault:"3"`
	LogMaxAgeDays int    `env:"LOG_MAX_AGE_DAYS" envDefault:"28"`
}

// Load reads an optional .env file and then the process environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}
	return Parse()
}

// Parse builds a Config from the process environment only.
func Parse() (*Config, error) {
	cfg, err := env.ParseAs[Config]()
	if err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// LoadStorage reads only the storage settings, for tools that do not talk
// to Discord.
func LoadStorage() (Storage, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return Storage{}, fmt.Errorf("load .env: %w", err)
	}
	s, err := env.ParseAs[Storage]()
	if err != nil {
		return Storage{}, fmt.Errorf("parse env: %w", err)
	}
	return s, s.Validate()
}

func (s Storage) Validate() error {
	switch s.StorageDriver {
	case StorageDatastore, StorageSQLite:
	default:
		return fmt.Errorf("STORAGE_DRIVER must be %q or %q, got %q", StorageDatastore, StorageSQLite, s.StorageDriver)
	}
	if s.StoragePath == "" {
		return errors.New("STORAGE_PATH is empty")
	}
	return nil
}

func (c *Config) Validate() error {
	if err := c.Storage.Validate(); err != nil {
		return err
	}
	if c.CommandPrefix == "" {
		return errors.New("COMMAND_PREFIX is empty")
	}
	for name, d := range map[string]time.Duration{
		"GRACE_PERIOD":           c.GracePeriod,
		"CONNECT_TIMEOUT":        c.ConnectTimeout,
		"PLAYBACK_START_TIMEOUT": c.PlaybackStartTimeout,
	} {
		if d <= 0 {
			return fmt.Errorf("%s must be positive, got %s", name, d)
		}
	}
	if c.SearchRate <= 0 {
		return fmt.Errorf("SEARCH_RATE must be positive, got %v", c.SearchRate)
	}
	return nil
}
