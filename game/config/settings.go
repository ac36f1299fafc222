package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Session store kinds
const (
	StoreFile   = "file"
	StoreSQLite = "sqlite"
)

// Settings holds process configuration read from the environment.
// Command line flags override these values.
type Settings struct {
	Host        string `env:"HOST" envDefault:"localhost"`
	Port        int    `env:"PORT" envDefault:"8080"`
	ConfigDir   string `env:"CONFIG_DIR" envDefault:"configs"`
	SessionsDir string `env:"SESSIONS_DIR" envDefault:"sessions"`
	// SessionStore is "file" or "sqlite"
	SessionStore string `env:"SESSION_STORE" envDefault:"file"`
	SQLitePath   string `env:"SQLITE_PATH" envDefault:"sessions.db"`

	FirstTurnTimeout time.Duration `env:"FIRST_TURN_TIMEOUT" envDefault:"5s"`
	TurnTimeout      time.Duration `env:"TURN_TIMEOUT" envDefault:"50ms"`

	Debug bool `env:"DEBUG" envDefault:"false"`

	NgrokEnabled   bool   `env:"NGROK_ENABLED" envDefault:"false"`
	NgrokAuthToken string `env:"NGROK_AUTHTOKEN"`
	NgrokDomain    string `env:"NGROK_DOMAIN"`
}

// LoadSettings parses Settings from the environment
func LoadSettings() (*Settings, error) {
	var s Settings
	if err := env.Parse(&s); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

// Validate checks values env parsing cannot
func (s *Settings) Validate() error {
	switch s.SessionStore {
	case StoreFile, StoreSQLite:
	default:
		return fmt.Errorf("SESSION_STORE must be %q or %q, got %q", StoreFile, StoreSQLite, s.SessionStore)
	}
	if s.Port <= 0 || s.Port > 65535 {
		return fmt.Errorf("PORT out of range: %d", s.Port)
	}
	if s.FirstTurnTimeout <= 0 || s.TurnTimeout <= 0 {
		return fmt.Errorf("turn timeouts must be positive")
	}
	return nil
}

// Addr returns the HTTP listen address
func (s *Settings) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}
