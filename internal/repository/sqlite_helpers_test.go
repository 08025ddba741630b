package repository

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/hitoshi/muebles/internal/credential"
	"github.com/hitoshi/muebles/internal/database"
)

// openTestDB はシード済みの一時SQLiteデータベースを返す。
func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	ctx := context.Background()

	db, err := database.Open(ctx, filepath.Join(t.TempDir(), "repo.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	require.NoError(t, database.Bootstrap(ctx, db, credential.NewHasher(bcrypt.MinCost)))
	return db
}
