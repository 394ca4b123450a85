package config

import (
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
)

// Config holds runtime settings for the Notish client.
//
// Fields:
//   - DatabaseDSN: PostgreSQL connection string of the remote note store.
//     Empty means notes live in the local SQLite file.
//   - LocalDBPath: path of the SQLite file (preferences, and notes when no
//     DSN is set).
//   - JWTSecret: HMAC secret used to verify access tokens. Empty means
//     tokens are decoded without verification.
//   - SaveDebounce: quiet period after the last edit before a note is saved.
//   - LocalOwner: owner id used when no access token is given.
//   - LogLevel: debug, info, warn or error.
//   - IssueTokenFor: when set, the binary prints an access token for this
//     owner, signed with JWTSecret, and exits. Flag only.
type Config struct {
	DatabaseDSN  string
	LocalDBPath  string        `validate:"required"`
	JWTSecret    string        `validate:"required_with=IssueTokenFor"`
	SaveDebounce time.Duration `validate:"gt=0"`
	LocalOwner   string        `validate:"required"`
	LogLevel     string        `validate:"oneof=debug info warn error"`

	IssueTokenFor string
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.DatabaseDSN = ""
	c.LocalDBPath = "notish.db"
	c.SaveDebounce = time.Second
	c.LocalOwner = "local"
	c.LogLevel = "info"
}

// LoadConfig constructs a Config, applies defaults, then overlays values from
// the environment, JSON (if present) and command-line flags (if present).
// Later sources take precedence over earlier ones.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseEnv(cfg)
	parseJson(cfg)
	parseFlags(cfg)
	return cfg
}

// Remote reports whether notes are kept in the remote PostgreSQL store.
func (c *Config) Remote() bool {
	return c.DatabaseDSN != ""
}

// Validate checks the loaded values.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}
