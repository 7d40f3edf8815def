package client

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"strings"

	"github.com/dmitrijs2005/artwall/internal/client/migrations"
	"github.com/dmitrijs2005/artwall/internal/client/repositories/prefs"
	"github.com/dmitrijs2005/artwall/internal/filex"
	"github.com/pressly/goose/v3"
	_ "modernc.org/sqlite"
)

func RunMigrations(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(migrations.Migrations)
	goose.SetLogger(goose.NopLogger())

	if err := goose.SetDialect("sqlite3"); err != nil {
		return fmt.Errorf("failed to set goose dialect: %w", err)
	}

	return goose.UpContext(ctx, db, ".")
}

// InitDatabase opens the SQLite file at dsn and brings its schema up to date.
func InitDatabase(ctx context.Context, dsn string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	// SQLite serializes writers; one connection keeps :memory: databases
	// coherent too.
	db.SetMaxOpenConns(1)

	if err := RunMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

// OpenPrefs selects the local state backend by dsn: redis:// and rediss://
// URLs use Redis, anything else is a SQLite path. The returned closer
// releases the backend.
func OpenPrefs(ctx context.Context, dsn string) (prefs.Repository, io.Closer, error) {
	if strings.HasPrefix(dsn, "redis://") || strings.HasPrefix(dsn, "rediss://") {
		repo, err := prefs.NewRedisRepository(ctx, dsn)
		if err != nil {
			return nil, nil, err
		}
		return repo, repo, nil
	}

	if dsn != ":memory:" && !strings.HasPrefix(dsn, "file:") {
		if err := filex.EnsureParentDir(dsn); err != nil {
			return nil, nil, fmt.Errorf("open local state: %w", err)
		}
	}
	db, err := InitDatabase(ctx, dsn)
	if err != nil {
		return nil, nil, fmt.Errorf("open local state: %w", err)
	}
	return prefs.NewSQLiteRepository(db), db, nil
}
