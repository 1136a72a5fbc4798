// Package dbtest opens throwaway SQLite stores with the schema applied.
package dbtest

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"dhaba/db"
)

func New(t testing.TB) *db.DB {
	t.Helper()

	ctx := context.Background()
	d, err := db.Open(ctx, "sqlite://"+filepath.Join(t.TempDir(), "dhaba.db"))
	require.NoError(t, err)
	t.Cleanup(d.Close)

	require.NoError(t, db.NewMigrator(d, zaptest.NewLogger(t)).Up(ctx))
	return d
}
