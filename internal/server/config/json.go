package config

import (
	"encoding/json"
	"os"
	"time"

	"github.com/filmood/keygate/internal/flagx"
	"github.com/filmood/keygate/internal/timex"
)

// JsonConfig mirrors Config for JSON unmarshalling. Interval fields use
// timex.Duration so values can be strings like "24h" or integer
// nanoseconds. After unmarshalling, the values are copied into the runtime
// Config.
type JsonConfig struct {
	DatabaseDSN          string         `json:"database_dsn"`
	SecretKey            string         `json:"secret_key"`
	SessionTTL           timex.Duration `json:"session_ttl"`
	RememberedSessionTTL timex.Duration `json:"remembered_session_ttl"`
	SweepInterval        timex.Duration `json:"sweep_interval"`
}

// parseJson overlays configuration values from the JSON file named by the
// -c/-config flags, if any. An unreadable or malformed file panics; a
// missing flag is a no-op.
func parseJson(config *Config) {
	jsonConfigFile := flagx.JsonConfigFlags()
	if jsonConfigFile == "" {
		return
	}

	c := &JsonConfig{}

	file, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}
	if err := json.Unmarshal(file, c); err != nil {
		panic(err)
	}

	config.DatabaseDSN = c.DatabaseDSN
	config.SecretKey = c.SecretKey
	config.SessionTTL = time.Duration(c.SessionTTL.Duration)
	config.RememberedSessionTTL = time.Duration(c.RememberedSessionTTL.Duration)
	config.SweepInterval = time.Duration(c.SweepInterval.Duration)
}
