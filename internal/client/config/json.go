package config

import (
	"encoding/json"
	"os"

	"github.com/RndUsr76/Notish/internal/flagx"
	"github.com/RndUsr76/Notish/internal/timex"
)

// JsonConfig is a DTO used exclusively for JSON unmarshalling.
// It relies on timex.Duration so JSON can specify the debounce either as a
// string like "1s" or as integer nanoseconds.
type JsonConfig struct {
	DatabaseDSN  string         `json:"database_dsn"`
	LocalDBPath  string         `json:"local_db_path"`
	JWTSecret    string         `json:"jwt_secret"`
	SaveDebounce timex.Duration `json:"save_debounce"`
	LocalOwner   string         `json:"local_owner"`
	LogLevel     string         `json:"log_level"`
}

// parseJson overlays Config with values loaded from the JSON file named with
// -c or -config. Keys missing from the file leave the current value alone.
// Panics on read or unmarshal errors.
func parseJson(cfg *Config) {
	jsonConfigFile := flagx.JsonConfigFlags()
	if jsonConfigFile == "" {
		return
	}

	var jc JsonConfig

	data, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}
	if err := json.Unmarshal(data, &jc); err != nil {
		panic(err)
	}

	overlay(&cfg.DatabaseDSN, jc.DatabaseDSN)
	overlay(&cfg.LocalDBPath, jc.LocalDBPath)
	overlay(&cfg.JWTSecret, jc.JWTSecret)
	overlay(&cfg.LocalOwner, jc.LocalOwner)
	overlay(&cfg.LogLevel, jc.LogLevel)
	if jc.SaveDebounce.Duration != 0 {
		cfg.SaveDebounce = jc.SaveDebounce.Duration
	}
}

func overlay(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}
