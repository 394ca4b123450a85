package config

import (
	"flag"
	"os"
	"time"

	"github.com/RndUsr76/Notish/internal/flagx"
)

// parseFlags populates selected Config fields from command-line flags.
//
//	-d string   PostgreSQL DSN of the remote note store
//	-l string   path of the local SQLite file
//	-s int      save debounce in milliseconds
//	-v string   log level
//	-t string   print an access token for this owner and exit
//
// os.Args is filtered with flagx.FilterArgs first so that -c and -e, handled
// elsewhere, do not make parsing fail.
func parseFlags(cfg *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{"-d", "-l", "-s", "-v", "-t"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&cfg.DatabaseDSN, "d", cfg.DatabaseDSN, "PostgreSQL DSN of the note store")
	fs.StringVar(&cfg.LocalDBPath, "l", cfg.LocalDBPath, "path of the local database file")
	debounce := fs.Int("s", int(cfg.SaveDebounce.Milliseconds()), "save debounce (in milliseconds)")
	fs.StringVar(&cfg.LogLevel, "v", cfg.LogLevel, "log level: debug, info, warn, error")
	fs.StringVar(&cfg.IssueTokenFor, "t", cfg.IssueTokenFor, "print an access token for this owner and exit")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	cfg.SaveDebounce = time.Duration(*debounce) * time.Millisecond
}
