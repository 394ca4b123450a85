// Package config loads runtime configuration for the Notish client.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Environment: NOTISH_* variables, after loading a dotenv file (-e/-env,
//     or ./.env when present).
//  3. Optional JSON file selected with -c or -config.
//  4. Command-line flags, which override earlier values.
//
// Supported flags
//
//	-d string   PostgreSQL DSN; empty keeps notes in the local SQLite file
//	-l string   local SQLite file (default notish.db)
//	-s int      save debounce in milliseconds (default 1000)
//	-v string   log level (default info)
//
// # JSON schema
//
//	{
//	  "database_dsn": "postgres://notish@localhost:5432/notish",
//	  "local_db_path": "notish.db",
//	  "jwt_secret": "...",
//	  "save_debounce": "1s",
//	  "local_owner": "local",
//	  "log_level": "debug"
//	}
//
// Call (*Config).Validate after loading.
package config
