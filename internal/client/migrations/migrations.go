// Package migrations embeds the goose SQL migrations for both note store
// dialects and applies them.
package migrations

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"io/fs"

	"github.com/pressly/goose/v3"
)

//go:embed postgres/*.sql sqlite/*.sql
var Migrations embed.FS

// Up applies every pending migration of the given dialect to db.
// Supported dialects are goose.DialectPostgres and goose.DialectSQLite3.
func Up(ctx context.Context, db *sql.DB, dialect goose.Dialect) error {
	dir, err := dirFor(dialect)
	if err != nil {
		return err
	}

	fsys, err := fs.Sub(Migrations, dir)
	if err != nil {
		return fmt.Errorf("migrations sub fs: %w", err)
	}

	provider, err := goose.NewProvider(dialect, db, fsys)
	if err != nil {
		return fmt.Errorf("migration provider: %w", err)
	}

	if _, err := provider.Up(ctx); err != nil {
		return fmt.Errorf("migrate %s: %w", dir, err)
	}
	return nil
}

func dirFor(dialect goose.Dialect) (string, error) {
	switch dialect {
	case goose.DialectPostgres:
		return "postgres", nil
	case goose.DialectSQLite3:
		return "sqlite", nil
	default:
		return "", fmt.Errorf("unsupported dialect %q", dialect)
	}
}
