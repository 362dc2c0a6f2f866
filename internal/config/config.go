package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// History backends.
const (
	DriverMemory   = "memory"
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// Config holds application configuration sourced from environment variables.
type Config struct {
	Port      string `env:"PORT" envDefault:"8080"`
	AppEnv    string `env:"APP_ENV" envDefault:"development"`
	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT"`

	HistoryDriver  string        `env:"HISTORY_DRIVER" envDefault:"memory"`
	DBPath         string        `env:"DB_PATH" envDefault:"./dev.db"`
	DatabaseURL    string        `env:"DATABASE_URL"`
	HistoryLimit   int           `env:"HISTORY_LIMIT" envDefault:"50"`
	HistoryTimeout time.Duration `env:"HISTORY_TIMEOUT" envDefault:"5s"`

	ReportFontPath string `env:"REPORT_FONT_PATH" envDefault:"assets/fonts/PTSans-Regular.ttf"`
	ReportTimezone string `env:"REPORT_TIMEZONE" envDefault:"Europe/Amsterdam"`
}

// Load reads an optional dotenv file, then the environment. Variables already
// set in the environment win over the file.
func Load(path ...string) (Config, error) {
	// Best-effort: production should use real env injection.
	if err := godotenv.Load(path...); err != nil && !errors.Is(err, os.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse environment: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func (c Config) IsDev() bool {
	return c.AppEnv == "development" || c.AppEnv == "local"
}

// LogEncoding is LOG_FORMAT when set, otherwise console in development and
// json elsewhere.
func (c Config) LogEncoding() string {
	if c.LogFormat != "" {
		return c.LogFormat
	}
	if c.IsDev() {
		return "console"
	}
	return "json"
}

func (c Config) validate() error {
	switch c.HistoryDriver {
	case DriverMemory, DriverSQLite:
	case DriverPostgres:
		if c.DatabaseURL == "" {
			return errors.New("HISTORY_DRIVER=postgres requires DATABASE_URL")
		}
	default:
		return fmt.Errorf("unknown HISTORY_DRIVER %q", c.HistoryDriver)
	}

	if c.HistoryLimit < 1 {
		return fmt.Errorf("HISTORY_LIMIT must be positive, got %d", c.HistoryLimit)
	}
	if c.HistoryTimeout <= 0 {
		return fmt.Errorf("HISTORY_TIMEOUT must be positive, got %s", c.HistoryTimeout)
	}

	return nil
}
