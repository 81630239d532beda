package malimport

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/TahaZMohiuddin/arcanum/pkg/database"
)

func newTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := database.Open(database.Config{Path: filepath.Join(t.TempDir(), "test.db")})
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, database.Migrate(db))
	return db
}

func seedUser(t *testing.T, db *sql.DB) string {
	t.Helper()
	id := uuid.NewString()
	_, err := db.ExecContext(context.Background(), `
		INSERT INTO users (id, username, email, password_hash)
		VALUES (?, ?, ?, 'x')
	`, id, "user-"+id[:8], id[:8]+"@example.com")
	require.NoError(t, err)
	return id
}

func seedAnime(t *testing.T, db *sql.DB, anilistID int64, malID *int64, title string) string {
	t.Helper()
	id := uuid.NewString()
	var mal any
	if malID != nil {
		mal = *malID
	}
	_, err := db.ExecContext(context.Background(), `
		INSERT INTO anime (id, anilist_id, mal_id, title)
		VALUES (?, ?, ?, ?)
	`, id, anilistID, mal, title)
	require.NoError(t, err)
	return id
}

func seedEntry(t *testing.T, db *sql.DB, userID, animeID string) {
	t.Helper()
	_, err := db.ExecContext(context.Background(), `
		INSERT INTO list_entries (id, user_id, anime_id, status)
		VALUES (?, ?, ?, 'completed')
	`, uuid.NewString(), userID, animeID)
	require.NoError(t, err)
}

func i64(v int64) *int64 { return &v }
