// Package storage opens the databases the client works with and picks the
// note store backend. The choice is made once, here, at startup.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/RndUsr76/Notish/internal/client/config"
	"github.com/RndUsr76/Notish/internal/client/migrations"
	"github.com/RndUsr76/Notish/internal/client/repositories/metadata"
	"github.com/RndUsr76/Notish/internal/client/repositories/notes"
	"github.com/RndUsr76/Notish/internal/filex"
	"github.com/RndUsr76/Notish/internal/logging"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
	_ "modernc.org/sqlite"
)

// Backend names reported by Repositories.Backend.
const (
	BackendPostgres = "postgres"
	BackendSQLite   = "sqlite"
)

// test seams
var (
	openDB  = sql.Open
	migrate = migrations.Up
)

// Repositories bundles the stores used by the client services.
type Repositories struct {
	Notes    notes.Repository
	Metadata metadata.Repository
	Backend  string

	local  *sql.DB
	remote *sql.DB
}

// Open opens the local SQLite file, which always holds preferences, and the
// note store: PostgreSQL when cfg.DatabaseDSN is set, the same SQLite file
// otherwise. Migrations are applied to every database opened.
func Open(ctx context.Context, cfg *config.Config, log logging.Logger) (*Repositories, error) {
	if err := filex.EnsureParentDir(cfg.LocalDBPath); err != nil {
		return nil, err
	}

	local, err := openDB("sqlite", cfg.LocalDBPath)
	if err != nil {
		return nil, fmt.Errorf("open local database: %w", err)
	}
	// modernc sqlite does not share in-memory databases between connections
	local.SetMaxOpenConns(1)

	if err := migrate(ctx, local, goose.DialectSQLite3); err != nil {
		_ = local.Close()
		return nil, fmt.Errorf("migrate local database: %w", err)
	}

	repos := &Repositories{
		Metadata: metadata.NewSQLiteRepository(local),
		local:    local,
	}

	if !cfg.Remote() {
		repos.Notes = notes.NewSQLiteRepository(local)
		repos.Backend = BackendSQLite
		log.Info(ctx, "note store opened", "backend", repos.Backend, "path", cfg.LocalDBPath)
		return repos, nil
	}

	remote, err := openDB("pgx", cfg.DatabaseDSN)
	if err != nil {
		_ = local.Close()
		return nil, fmt.Errorf("open remote database: %w", err)
	}
	if err := remote.PingContext(ctx); err != nil {
		_ = remote.Close()
		_ = local.Close()
		return nil, fmt.Errorf("connect remote database: %w", err)
	}
	if err := migrate(ctx, remote, goose.DialectPostgres); err != nil {
		_ = remote.Close()
		_ = local.Close()
		return nil, fmt.Errorf("migrate remote database: %w", err)
	}

	repos.Notes = notes.NewPostgresRepository(remote)
	repos.Backend = BackendPostgres
	repos.remote = remote
	log.Info(ctx, "note store opened", "backend", repos.Backend)
	return repos, nil
}

// Close closes every database opened by Open.
func (r *Repositories) Close() error {
	var errs []error
	if r.remote != nil {
		errs = append(errs, r.remote.Close())
	}
	if r.local != nil {
		errs = append(errs, r.local.Close())
	}
	return errors.Join(errs...)
}
