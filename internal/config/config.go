package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"

	"statsdash/pkg/logger"
)

// devSessionSecret signs session cookies when no secret is configured outside release mode.
const devSessionSecret = "dev_session_secret_change_me"

type Config struct {
	Port    string `envconfig:"PORT" default:"8080"`
	GinMode string `envconfig:"GIN_MODE" default:"debug"`

	StatsEndpoint    string        `envconfig:"STATS_ENDPOINT" default:"http://localhost:8000/api/stats"`
	StatsTimeout     time.Duration `envconfig:"STATS_TIMEOUT" default:"30s"`
	StrictValidation bool          `envconfig:"STATS_STRICT_VALIDATION" default:"false"`

	SessionSecret   string        `envconfig:"SESSION_SECRET"`
	SessionTTL      time.Duration `envconfig:"SESSION_TTL" default:"30m"`
	SessionSweep    time.Duration `envconfig:"SESSION_SWEEP_INTERVAL" default:"1m"`
	SecureCookies   bool          `envconfig:"SECURE_COOKIES" default:"false"`
	CORSAllowOrigin []string      `envconfig:"CORS_ALLOW_ORIGINS" default:"http://localhost:5173,http://127.0.0.1:5173"`

	LogLevel  string `envconfig:"LOG_LEVEL" default:"info"`
	LogFormat string `envconfig:"LOG_FORMAT" default:"text"`
}

// IsRelease reports whether gin runs in release mode
func (c *Config) IsRelease() bool {
	return c.GinMode == "release"
}

// Load reads an optional dotenv file and then the process environment
func Load(envFile string) (*Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil {
			logger.Infof("No %s file found or error loading it, using process environment", envFile)
		}
	}

	cfg := &Config{}
	if err := envconfig.Process("", cfg); err != nil {
		return nil, fmt.Errorf("failed to process env config: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.SessionSecret == "" {
		if c.IsRelease() {
			return errors.New("SESSION_SECRET environment variable is required in release mode")
		}
		c.SessionSecret = devSessionSecret
	}
	if c.StatsEndpoint == "" {
		return errors.New("STATS_ENDPOINT must not be empty")
	}
	if c.StatsTimeout <= 0 {
		return fmt.Errorf("STATS_TIMEOUT must be positive, got %s", c.StatsTimeout)
	}
	if c.SessionTTL <= 0 {
		return fmt.Errorf("SESSION_TTL must be positive, got %s", c.SessionTTL)
	}
	if c.SessionSweep <= 0 {
		c.SessionSweep = time.Minute
	}
	return nil
}
