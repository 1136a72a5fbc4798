package db

import (
	"context"
	"embed"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"
)

// Embedded so `dhaba migrate` works regardless of the current working directory.
//
//go:embed migrations
var migrationsFS embed.FS

const createMigrationsTable = `
CREATE TABLE IF NOT EXISTS schema_migrations (
    version    INTEGER PRIMARY KEY,
    name       TEXT NOT NULL,
    applied_at TIMESTAMP NOT NULL
)`

type Migrator struct {
	db  *DB
	log *zap.Logger
}

func NewMigrator(d *DB, log *zap.Logger) *Migrator {
	return &Migrator{db: d, log: log}
}

// Up applies every migration for the current dialect newer than the recorded version.
// Each file runs in its own transaction together with its schema_migrations row.
func (m *Migrator) Up(ctx context.Context) error {
	names, err := fs.Glob(migrationsFS, "migrations/"+string(m.db.Dialect)+"/*.sql")
	if err != nil {
		return fmt.Errorf("list migrations: %w", err)
	}
	if len(names) == 0 {
		return fmt.Errorf("no migrations for dialect %s", m.db.Dialect)
	}
	sort.Strings(names)

	if _, err := m.db.ExecContext(ctx, createMigrationsTable); err != nil {
		return fmt.Errorf("ensure schema_migrations: %w", err)
	}
	current, err := m.Version(ctx)
	if err != nil {
		return err
	}

	final, err := scriptVersion(path.Base(names[len(names)-1]))
	if err != nil {
		return err
	}
	if final > current {
		m.log.Info("Bringing up schema migrations", zap.Int("migration_count", final-current))
	}

	for _, name := range names {
		base := path.Base(name)
		v, err := scriptVersion(base)
		if err != nil {
			return err
		}
		if v <= current {
			continue
		}
		sqlBytes, err := migrationsFS.ReadFile(name)
		if err != nil {
			return fmt.Errorf("read migration %s: %w", base, err)
		}
		m.log.Debug("Executing schema migration", zap.String("migration_name", base))

		insert, args, err := m.db.Builder().
			Insert("schema_migrations").
			Columns("version", "name", "applied_at").
			Values(v, base, time.Now().UTC()).
			ToSql()
		if err != nil {
			return err
		}
		err = m.db.WithTx(ctx, func(tx *sqlx.Tx) error {
			if _, err := tx.ExecContext(ctx, string(sqlBytes)); err != nil {
				return err
			}
			_, err := tx.ExecContext(ctx, insert, args...)
			return err
		})
		if err != nil {
			return fmt.Errorf("apply migration %s: %w", base, err)
		}
		current = v
	}
	return nil
}

// Version returns the highest applied migration number, 0 when none.
func (m *Migrator) Version(ctx context.Context) (int, error) {
	var v int
	if err := m.db.GetContext(ctx, &v, `SELECT COALESCE(MAX(version), 0) FROM schema_migrations`); err != nil {
		return 0, fmt.Errorf("read schema version: %w", err)
	}
	return v, nil
}

// scriptVersion extracts 2 from a file named like "0002_reviews.sql".
func scriptVersion(filename string) (int, error) {
	v, err := strconv.Atoi(strings.SplitN(filename, "_", 2)[0])
	if err != nil {
		return 0, fmt.Errorf("migration %s: bad version prefix: %w", filename, err)
	}
	return v, nil
}
