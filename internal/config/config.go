// Package config loads the process-wide configuration from the environment.
// A .env file in the working directory is honoured when present.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"time"

	env "github.com/caarlos0/env/v6"
	"github.com/joho/godotenv"

	"ctchen222/portfolio-tracker/internal/validator"
)

// Config is built once in main and passed to every component that needs it.
type Config struct {
	HTTPAddr        string        `env:"HTTP_ADDR" envDefault:":8080" validate:"required,hostname_port"`
	DatabasePath    string        `env:"DATABASE_PATH" envDefault:"./portfolio.db" validate:"required"`
	JWTSecret       string        `env:"JWT_SECRET" validate:"required,min=16"`
	TokenTTL        time.Duration `env:"TOKEN_TTL" envDefault:"24h" validate:"gt=0"`
	BcryptCost      int           `env:"BCRYPT_COST" envDefault:"10" validate:"gte=4,lte=31"`
	RedisAddr       string        `env:"REDIS_ADDR" validate:"omitempty,hostname_port"`
	QuoteCacheTTL   time.Duration `env:"QUOTE_CACHE_TTL" envDefault:"1m" validate:"gt=0"`
	OTLPEndpoint    string        `env:"OTEL_EXPORTER_OTLP_ENDPOINT" validate:"omitempty,hostname_port"`
	LogLevel        string        `env:"LOG_LEVEL" envDefault:"info" validate:"loglevel"`
	SeedDemoData    bool          `env:"SEED_DEMO_DATA" envDefault:"false"`
	AuthRateLimit   float64       `env:"AUTH_RATE_LIMIT" envDefault:"5" validate:"gt=0"`
	AuthRateBurst   int           `env:"AUTH_RATE_BURST" envDefault:"10" validate:"gt=0"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"5s" validate:"gt=0"`
}

type loadOptions struct {
	envFiles    []string
	environment map[string]string
}

// LoadOption customises Load.
type LoadOption func(*loadOptions)

// WithEnvFiles overrides the dotenv files read before parsing.
func WithEnvFiles(files ...string) LoadOption {
	return func(o *loadOptions) {
		o.envFiles = files
	}
}

// WithEnvironment parses from the given map instead of the process environment.
func WithEnvironment(environment map[string]string) LoadOption {
	return func(o *loadOptions) {
		o.environment = environment
	}
}

// Load reads dotenv files, parses the environment and validates the result.
func Load(opts ...LoadOption) (Config, error) {
	options := &loadOptions{envFiles: []string{".env"}}
	for _, opt := range opts {
		opt(options)
	}

	for _, file := range options.envFiles {
		if err := godotenv.Load(file); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return Config{}, fmt.Errorf("failed to load env file %s: %w", file, err)
		}
	}

	var cfg Config
	envOpts := env.Options{}
	if options.environment != nil {
		envOpts.Environment = options.environment
	}
	if err := env.Parse(&cfg, envOpts); err != nil {
		return Config{}, fmt.Errorf("failed to parse environment: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks the values against their validate tags.
func (c Config) Validate() error {
	if err := validator.GetValidator().Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}

// SlogLevel returns LogLevel as a slog.Level, defaulting to info.
func (c Config) SlogLevel() slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return slog.LevelInfo
	}
	return level
}
