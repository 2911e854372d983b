package config

import (
	"strings"
	"time"

	"github.com/caarlos0/env/v11"

	"github.com/KirkDiggler/tactics-engine/internal/errors"
)

// Config holds all configuration for the simulator
type Config struct {
	Engine    EngineConfig
	Redis     RedisConfig
	Log       LogConfig
	Telemetry TelemetryConfig
}

// EngineConfig holds dice and content settings
type EngineConfig struct {
	// Seed fixes the dice sequence. Zero seeds from the clock.
	Seed int64 `env:"ENGINE_SEED" envDefault:"0"`

	// ContentPath is an optional directory of YAML/JSON records layered over
	// the built-in catalog
	ContentPath string `env:"CONTENT_PATH"`
}

// RedisConfig holds the outcome journal settings. An empty URL keeps the
// journal in memory.
type RedisConfig struct {
	URL        string        `env:"REDIS_URL"`
	JournalTTL time.Duration `env:"JOURNAL_TTL" envDefault:"24h"`
}

// LogConfig selects the zap logger
type LogConfig struct {
	Level  string `env:"LOG_LEVEL" envDefault:"info"`
	Format string `env:"LOG_FORMAT" envDefault:"console"`
}

// TelemetryConfig enables span export when an endpoint is set
type TelemetryConfig struct {
	Endpoint    string `env:"OTEL_EXPORTER_OTLP_ENDPOINT"`
	ServiceName string `env:"OTEL_SERVICE_NAME" envDefault:"tactics-engine"`
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, errors.WrapWithCode(err, errors.CodeInvalidArgument, "parse env")
	}

	cfg.Log.Format = strings.ToLower(cfg.Log.Format)
	switch cfg.Log.Format {
	case "console", "json":
	default:
		return nil, errors.InvalidArgumentf("LOG_FORMAT must be console or json, got %q", cfg.Log.Format)
	}

	if cfg.Redis.JournalTTL < 0 {
		return nil, errors.InvalidArgumentf("JOURNAL_TTL cannot be negative")
	}

	return cfg, nil
}

// JournalEnabled reports whether outcomes go to redis
func (c *Config) JournalEnabled() bool {
	return c.Redis.URL != ""
}
