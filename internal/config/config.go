// Package config holds runtime settings for the auth core and its CLI.
// Values are resolved in three stages: built-in defaults, then a JSON config
// file, then command-line flags, with later stages taking precedence.
package config

import (
	"time"

	"github.com/FalconEthics/lotus-auth/internal/cryptox"
	"github.com/FalconEthics/lotus-auth/internal/lockout"
	"github.com/FalconEthics/lotus-auth/internal/session"
)

// Config holds the auth core tunables.
//
// Fields:
//   - DatabasePath: SQLite file backing the durable store.
//   - SessionDuration: fixed session lifetime.
//   - LockDuration: how long the account stays locked after too many failures.
//   - MaxLoginAttempts: consecutive failures that trigger the lock.
//   - KeyIterations: PBKDF2 iteration count; values below cryptox.MinIterations
//     are raised to the minimum at load time.
type Config struct {
	DatabasePath     string
	SessionDuration  time.Duration
	LockDuration     time.Duration
	MaxLoginAttempts int
	KeyIterations    int
}

// LoadDefaults populates c with the shipped policy values.
func (c *Config) LoadDefaults() {
	c.DatabasePath = "lotus.db"
	c.SessionDuration = session.DefaultDuration
	c.LockDuration = lockout.DefaultLockDuration
	c.MaxLoginAttempts = lockout.DefaultMaxAttempts
	c.KeyIterations = cryptox.MinIterations
}

// LoadConfig constructs a Config, applies defaults, then overlays values
// from JSON (if a file is given) and command-line flags. The key-stretching
// floor is enforced last so no source can weaken it.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseFlags(cfg)

	if cfg.KeyIterations < cryptox.MinIterations {
		cfg.KeyIterations = cryptox.MinIterations
	}
	return cfg
}

// Lockout returns the lockout policy described by the config.
func (c *Config) Lockout() lockout.Policy {
	return lockout.Policy{MaxAttempts: c.MaxLoginAttempts, LockDuration: c.LockDuration}
}
