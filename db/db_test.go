package db_test

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"dhaba/db"
	"dhaba/db/dbtest"
)

func TestOpenRejectsUnknownScheme(t *testing.T) {
	for _, url := range []string{"", "mysql://root@localhost/dhaba", "sqlite:", "sqlite://"} {
		_, err := db.Open(context.Background(), url)
		require.Error(t, err, url)
	}
}

func TestMigrateIsIdempotent(t *testing.T) {
	ctx := context.Background()
	d, err := db.Open(ctx, "sqlite://"+filepath.Join(t.TempDir(), "m.db"))
	require.NoError(t, err)
	defer d.Close()
	require.Equal(t, db.SQLite, d.Dialect)

	m := db.NewMigrator(d, zaptest.NewLogger(t))
	require.NoError(t, m.Up(ctx))
	require.NoError(t, m.Up(ctx))

	v, err := m.Version(ctx)
	require.NoError(t, err)
	require.Equal(t, 2, v)

	var tables []string
	require.NoError(t, d.SelectContext(ctx, &tables,
		`SELECT name FROM sqlite_master WHERE type = 'table' AND name IN ('categories', 'menu_items', 'reviews') ORDER BY name`))
	require.Equal(t, []string{"categories", "menu_items", "reviews"}, tables)
}

func TestWithTxRollsBackOnError(t *testing.T) {
	ctx := context.Background()
	d := dbtest.New(t)
	boom := errors.New("boom")

	err := d.WithTx(ctx, func(tx *sqlx.Tx) error {
		_, err := tx.ExecContext(ctx, `INSERT INTO categories (name, display_order, created_at) VALUES (?, ?, ?)`,
			"Starters", 1, time.Now().UTC())
		require.NoError(t, err)
		return boom
	})
	require.ErrorIs(t, err, boom)

	var n int
	require.NoError(t, d.GetContext(ctx, &n, `SELECT COUNT(*) FROM categories`))
	require.Zero(t, n)
}

func TestConstraintClassification(t *testing.T) {
	ctx := context.Background()
	d := dbtest.New(t)
	now := time.Now().UTC()

	_, err := d.ExecContext(ctx, `INSERT INTO categories (name, display_order, created_at) VALUES (?, ?, ?)`, "Rolls", 1, now)
	require.NoError(t, err)

	_, err = d.ExecContext(ctx, `INSERT INTO categories (name, display_order, created_at) VALUES (?, ?, ?)`, "Rolls", 2, now)
	require.True(t, db.IsUniqueViolation(err), "got %v", err)

	_, err = d.ExecContext(ctx, `INSERT INTO menu_items (category_id, name, created_at, updated_at) VALUES (?, ?, ?, ?)`, 999, "Ghost", now, now)
	require.True(t, db.IsForeignKeyViolation(err), "got %v", err)

	_, err = d.ExecContext(ctx, `INSERT INTO reviews (reviewer_name, rating, body, created_at) VALUES (?, ?, ?, ?)`, "A", 6, "x", now)
	require.True(t, db.IsCheckViolation(err), "got %v", err)

	require.False(t, db.IsUniqueViolation(nil))
}
