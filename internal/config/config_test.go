package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/FalconEthics/lotus-auth/internal/cryptox"
)

func TestLoadDefaults(t *testing.T) {
	var c Config
	c.LoadDefaults()

	assert.Equal(t, "lotus.db", c.DatabasePath)
	assert.Equal(t, 8*time.Hour, c.SessionDuration)
	assert.Equal(t, 30*time.Minute, c.LockDuration)
	assert.Equal(t, 5, c.MaxLoginAttempts)
	assert.Equal(t, cryptox.MinIterations, c.KeyIterations)
}

func TestLoadConfig_UsesDefaultsWithoutSources(t *testing.T) {
	origArgs := os.Args
	defer func() { os.Args = origArgs }()
	os.Args = []string{"app"}

	cfg := LoadConfig()
	require.NotNil(t, cfg)
	assert.Equal(t, "lotus.db", cfg.DatabasePath)
	assert.Equal(t, 8*time.Hour, cfg.SessionDuration)
}

func TestLoadConfig_JsonOverlayAndFlagPrecedence(t *testing.T) {
	origArgs := os.Args
	defer func() { os.Args = origArgs }()

	path := filepath.Join(t.TempDir(), "conf.json")
	require.NoError(t, os.WriteFile(path, []byte(`{
		"database_path": "from-json.db",
		"session_duration": "4h",
		"lock_duration": "15m",
		"max_login_attempts": 3
	}`), 0o600))

	os.Args = []string{"app", "-c", path, "-d", "from-flag.db"}

	cfg := LoadConfig()
	assert.Equal(t, "from-flag.db", cfg.DatabasePath, "flags override JSON")
	assert.Equal(t, 4*time.Hour, cfg.SessionDuration)
	assert.Equal(t, 15*time.Minute, cfg.LockDuration)
	assert.Equal(t, 3, cfg.MaxLoginAttempts)
}

func TestLoadConfig_EnforcesIterationFloor(t *testing.T) {
	origArgs := os.Args
	defer func() { os.Args = origArgs }()

	path := filepath.Join(t.TempDir(), "conf.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"key_iterations": 100}`), 0o600))
	os.Args = []string{"app", "-c", path}

	cfg := LoadConfig()
	assert.Equal(t, cryptox.MinIterations, cfg.KeyIterations)
}

func TestLockout_ReflectsConfig(t *testing.T) {
	c := Config{MaxLoginAttempts: 7, LockDuration: time.Hour}
	p := c.Lockout()
	assert.Equal(t, 7, p.MaxAttempts)
	assert.Equal(t, time.Hour, p.LockDuration)
}
