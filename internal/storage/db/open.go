// Package db contains the sqlite database code generation and utilities used
// by the storage package.
package db

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/pressly/goose/v3"
	"modernc.org/sqlite" // sqlite sql.DB driver initialization
)

//go:embed migrations/*.sql
var migrations embed.FS

// MemoryDSN opens a private in-memory database. Each [Open] call with it
// yields an empty database.
const MemoryDSN = ":memory:"

var registerHook sync.Once

// Open initializes a SQLite DB connection to the specified dsn. If the
// database file does not exist, it attempts to create it, and then migrates the
// database to match the current state expected of the system.
func Open(ctx context.Context, logger *slog.Logger, dsn string) (*sql.DB, error) {
	path, _, _ := strings.Cut(strings.TrimPrefix(dsn, "file:"), "?")
	if path != MemoryDSN && path != "" {
		if _, err := os.Stat(path); err != nil {
			const userOnlyDirPerms = 0o700
			if err = os.MkdirAll(filepath.Dir(path), userOnlyDirPerms); err != nil {
				return nil, fmt.Errorf("failed to create db parent directory: %w", err)
			}
		}
	}

	if strings.ContainsRune(dsn, '?') {
		dsn += "&"
	} else {
		dsn += "?"
	}
	dsn += "_time_format=sqlite"

	registerHook.Do(func() {
		sqlite.RegisterConnectionHook(func(conn sqlite.ExecQuerierContext, _ string) error {
			const initSQL = `
			pragma journal_mode = WAL; -- allow concurrent readers
			pragma synchronous = normal; -- don't wait for fsync except on checkpointing
			pragma foreign_keys = on; -- posts must reference a user
			pragma temp_store = memory; -- temporary indices
			`
			_, err := conn.ExecContext(context.Background(), initSQL, nil)
			return err
		})
	})

	handle, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to create DB handler: %w", err)
	} else if err = handle.PingContext(ctx); err != nil {
		_ = handle.Close()
		return nil, fmt.Errorf("failed to ping DB: %w", err)
	}
	// a single connection serializes writers and keeps :memory: databases alive
	handle.SetMaxOpenConns(1)

	if err = migrate(ctx, logger.With(slog.String("db", dsn)), handle); err != nil {
		_ = handle.Close()
		return nil, err
	}
	return handle, nil
}

func migrate(ctx context.Context, logger *slog.Logger, handle *sql.DB) error {
	fsys, err := fs.Sub(migrations, "migrations")
	if err != nil {
		return fmt.Errorf("failed to open migrations: %w", err)
	}
	provider, err := goose.NewProvider(goose.DialectSQLite3, handle, fsys)
	if err != nil {
		return fmt.Errorf("failed to create migration provider: %w", err)
	}
	results, err := provider.Up(ctx)
	if err != nil {
		return fmt.Errorf("failed to migrate DB: %w", err)
	}
	for _, res := range results {
		logger.DebugContext(ctx, "applied migration",
			slog.String("source", res.Source.Path),
			slog.Duration("duration", res.Duration),
		)
	}
	return nil
}
