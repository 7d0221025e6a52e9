package config

// #region imports
import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// #endregion

// #region config

// Config is the full runtime configuration, loaded from the environment
// with an optional .env file on top.
type Config struct {
	Port              string `env:"PORT" envDefault:"8080"`
	DBPath            string `env:"BRAIN_DB" envDefault:"brain_memory.db"`
	CacheDir          string `env:"SESSION_CACHE_DIR" envDefault:"session_cache"`
	SessionTTLSeconds int    `env:"SESSION_TTL_SECONDS" envDefault:"1800"`
	SummaryMaxChars   int    `env:"SUMMARY_MAX_CHARS" envDefault:"2000"`
	PerceptionAddr    string `env:"PERCEPTION_ADDR"` // empty = keyword extractor only
}

// #endregion

// #region load

// Load reads .env when present, then parses the environment.
func Load() (Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	return cfg, nil
}

// #endregion

// #region accessors

// SessionTTL returns the cache inactivity window.
func (c Config) SessionTTL() time.Duration {
	return time.Duration(c.SessionTTLSeconds) * time.Second
}

// Addr returns the HTTP listen address. PORT may be "8080", ":8080" or a
// full host:port.
func (c Config) Addr() string {
	if strings.Contains(c.Port, ":") {
		return c.Port
	}
	return ":" + c.Port
}

// #endregion
