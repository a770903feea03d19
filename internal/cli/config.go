package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	pkgconfig "github.com/faycal55/respira/pkg/config"
)

const envPrefix = "RESPIRA_"

// Config holds the terminal client settings, read from RESPIRA_* variables.
type Config struct {
	APIURL      string        `env:"API_URL" envDefault:"http://localhost:8080"`
	Home        string        `env:"HOME"`
	StateRedis  string        `env:"STATE_REDIS"`
	LogLevel    string        `env:"LOG_LEVEL" envDefault:"error"`
	HTTPTimeout time.Duration `env:"HTTP_TIMEOUT" envDefault:"30s"`
	HTTPRetries int           `env:"HTTP_RETRIES" envDefault:"2"`
}

// LoadConfig reads the configuration from environ, or from the process
// environment when environ is nil.
func LoadConfig(environ map[string]string) (*Config, error) {
	cfg := &Config{}
	var err error
	if environ == nil {
		err = pkgconfig.LoadWithPrefix(cfg, envPrefix)
	} else {
		err = pkgconfig.LoadFrom(cfg, environ, envPrefix)
	}
	if err != nil {
		return nil, err
	}
	if cfg.Home == "" {
		dir, err := os.UserConfigDir()
		if err != nil {
			return nil, fmt.Errorf("resolve config dir: %w", err)
		}
		cfg.Home = filepath.Join(dir, "respira")
	}
	return cfg, nil
}

// StatePath is the SQLite file holding the persisted stores.
func (c *Config) StatePath() string {
	return filepath.Join(c.Home, "state.db")
}
