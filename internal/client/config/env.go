package config

import (
	"os"
	"time"

	"github.com/RndUsr76/Notish/internal/flagx"
	"github.com/joho/godotenv"
)

const (
	envDatabaseDSN  = "NOTISH_DATABASE_DSN"
	envLocalDB      = "NOTISH_LOCAL_DB"
	envJWTSecret    = "NOTISH_JWT_SECRET"
	envSaveDebounce = "NOTISH_SAVE_DEBOUNCE"
	envLocalOwner   = "NOTISH_LOCAL_OWNER"
	envLogLevel     = "NOTISH_LOG_LEVEL"
)

// parseEnv overlays Config with NOTISH_* environment variables.
//
// A dotenv file is loaded first: the one named with -e/-env (it must exist),
// otherwise ./.env when present. Variables already set in the process
// environment win over the file. Panics on an unreadable -env file or on a
// malformed duration.
func parseEnv(cfg *Config) {
	if path := flagx.EnvFileFlags(); path != "" {
		if err := godotenv.Load(path); err != nil {
			panic(err)
		}
	} else {
		_ = godotenv.Load()
	}

	setString(&cfg.DatabaseDSN, envDatabaseDSN)
	setString(&cfg.LocalDBPath, envLocalDB)
	setString(&cfg.JWTSecret, envJWTSecret)
	setString(&cfg.LocalOwner, envLocalOwner)
	setString(&cfg.LogLevel, envLogLevel)

	if v, ok := os.LookupEnv(envSaveDebounce); ok && v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			panic(err)
		}
		cfg.SaveDebounce = d
	}
}

func setString(dst *string, key string) {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		*dst = v
	}
}
