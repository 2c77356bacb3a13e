// Package config reads the service configuration from the environment.
package config

import (
	"fmt"
	"strings"

	"league-app/internal/model"

	"github.com/caarlos0/env/v11"
	"github.com/rs/zerolog"
)

type Config struct {
	App  string `env:"APP" envDefault:"dev"`
	Addr string `env:"ADDR" envDefault:":8080"`

	PostgresDSN           string `env:"POSTGRES_DSN"`
	PostgresMigrationsDir string `env:"POSTGRES_MIGRATIONS_DIR"`
	DBPath                string `env:"DB_PATH"`
	DBMigrationsDir       string `env:"DB_MIGRATIONS_DIR"`

	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogPretty bool   `env:"LOG_PRETTY"`

	CORSOrigins []string `env:"CORS_ORIGINS" envSeparator:"," envDefault:"*"`

	WinPoints  int `env:"LEAGUE_WIN_POINTS" envDefault:"2"`
	DrawPoints int `env:"LEAGUE_DRAW_POINTS" envDefault:"1"`
	LossPoints int `env:"LEAGUE_LOSS_POINTS" envDefault:"0"`

	LambdaFunction string `env:"AWS_LAMBDA_FUNCTION_NAME"`
}

// Load parses the environment and validates the result.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	if c.WinPoints < 0 || c.DrawPoints < 0 || c.LossPoints < 0 {
		return fmt.Errorf("league points must be non-negative, got %d/%d/%d", c.WinPoints, c.DrawPoints, c.LossPoints)
	}
	if _, err := zerolog.ParseLevel(strings.ToLower(c.LogLevel)); err != nil {
		return fmt.Errorf("LOG_LEVEL: %w", err)
	}
	return nil
}

func (c Config) IsProd() bool {
	return strings.EqualFold(c.App, "prod")
}

func (c Config) InLambda() bool {
	return c.LambdaFunction != ""
}

func (c Config) PointsFormula() model.PointsFormula {
	return model.PointsFormula{Win: c.WinPoints, Draw: c.DrawPoints, Loss: c.LossPoints}
}

// Level falls back to info for an empty LOG_LEVEL.
func (c Config) Level() zerolog.Level {
	level, err := zerolog.ParseLevel(strings.ToLower(c.LogLevel))
	if err != nil || level == zerolog.NoLevel {
		return zerolog.InfoLevel
	}
	return level
}
