package config

import (
	"encoding/json"
	"os"
	"time"

	"github.com/FalconEthics/lotus-auth/internal/flagx"
	"github.com/FalconEthics/lotus-auth/internal/timex"
)

// JsonConfig is a DTO used exclusively for JSON unmarshalling. Durations use
// timex.Duration so the file can specify either strings like "8h" or integer
// nanoseconds. Zero-valued fields leave the current Config value in place.
type JsonConfig struct {
	DatabasePath     string         `json:"database_path"`
	SessionDuration  timex.Duration `json:"session_duration"`
	LockDuration     timex.Duration `json:"lock_duration"`
	MaxLoginAttempts int            `json:"max_login_attempts"`
	KeyIterations    int            `json:"key_iterations"`
}

// parseJson overlays cfg with values loaded from the JSON file named by the
// -c/-config flags. No file, no overlay. Read or parse errors panic, since a
// present-but-broken config file should stop startup rather than silently
// run on defaults.
func parseJson(cfg *Config) {
	jsonConfigFile := flagx.JsonConfigFlags()
	if jsonConfigFile == "" {
		return
	}

	data, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}

	var jc JsonConfig
	if err := json.Unmarshal(data, &jc); err != nil {
		panic(err)
	}

	if jc.DatabasePath != "" {
		cfg.DatabasePath = jc.DatabasePath
	}
	if jc.SessionDuration.Duration != 0 {
		cfg.SessionDuration = time.Duration(jc.SessionDuration.Duration)
	}
	if jc.LockDuration.Duration != 0 {
		cfg.LockDuration = time.Duration(jc.LockDuration.Duration)
	}
	if jc.MaxLoginAttempts != 0 {
		cfg.MaxLoginAttempts = jc.MaxLoginAttempts
	}
	if jc.KeyIterations != 0 {
		cfg.KeyIterations = jc.KeyIterations
	}
}
