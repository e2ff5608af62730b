package config

import (
	"encoding/json"
	"os"
	"time"

	"github.com/emotune/emotune/internal/flagx"
	"github.com/emotune/emotune/internal/timex"
)

// JsonConfig is the DTO used only for reading JSON configuration files.
// It uses timex.Duration for interval fields, which parses both string
// values such as "24h" and integer nanoseconds. After unmarshalling, its
// fields are copied into the runtime Config.
type JsonConfig struct {
	EndpointAddrHTTP             string         `json:"endpoint_addr_http"`
	DatabaseDSN                  string         `json:"database_dsn"`
	SecretKey                    string         `json:"secret_key"`
	SessionTokenValidityDuration timex.Duration `json:"session_token_validity_duration"`
	OwnerOpenID                  string         `json:"owner_open_id"`
}

// parseJson loads configuration values from the JSON file named by the
// -c/-config flags into the provided Config. When no file is named,
// nothing is loaded. An unreadable or invalid file panics: a broken
// explicit config must not silently fall back to defaults.
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

	config.EndpointAddrHTTP = c.EndpointAddrHTTP
	config.DatabaseDSN = c.DatabaseDSN
	config.SecretKey = c.SecretKey
	config.SessionTokenValidityDuration = time.Duration(c.SessionTokenValidityDuration.Duration)
	config.OwnerOpenID = c.OwnerOpenID
}
