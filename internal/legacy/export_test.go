package legacy

import (
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTestExport(t *testing.T) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "export.db")
	db, err := sql.Open("sqlite", path)
	require.NoError(t, err)
	defer db.Close()

	_, err = db.Exec(`
		CREATE TABLE users (
			id TEXT PRIMARY KEY,
			email TEXT NOT NULL,
			name TEXT NOT NULL
		);
		CREATE TABLE thumbnails (
			id TEXT PRIMARY KEY,
			user_id TEXT NOT NULL,
			title TEXT NOT NULL,
			prompt TEXT NOT NULL,
			style TEXT NOT NULL,
			aspect_ratio TEXT NOT NULL,
			color_scheme TEXT NOT NULL,
			text_overlay TEXT NOT NULL,
			image_url TEXT NOT NULL,
			is_generating INTEGER NOT NULL,
			created_at TEXT NOT NULL
		);`)
	require.NoError(t, err)

	_, err = db.Exec(`INSERT INTO users (id, email, name) VALUES
		('legacy_u1', 'alice@example.com', 'Alice'),
		('legacy_u2', 'bob@example.com', 'Bob')`)
	require.NoError(t, err)

	_, err = db.Exec(`INSERT INTO thumbnails
		(id, user_id, title, prompt, style, aspect_ratio, color_scheme, text_overlay, image_url, is_generating, created_at)
		VALUES
		('legacy_t1', 'legacy_u1', 'Old Video', 'a prompt', 'bold', '16:9', 'vibrant', 'WATCH',
		 'https://cdn.example.com/upload/v1/t1.png', 0, '2024-03-01T10:00:00Z'),
		('legacy_t2', 'legacy_u2', 'Stuck Video', 'another prompt', 'weird_style', '16:9', '', '',
		 '', 1, '2024-03-02 11:30:00')`)
	require.NoError(t, err)

	return path
}

func TestRead(t *testing.T) {
	export, err := Read(writeTestExport(t))
	require.NoError(t, err)

	require.Len(t, export.Users, 2)
	assert.Equal(t, "legacy_u1", export.Users[0].ID)
	assert.Equal(t, "alice@example.com", export.Users[0].Email)
	assert.Equal(t, "Alice", export.Users[0].Name)

	require.Len(t, export.Thumbnails, 2)

	first := export.Thumbnails[0]
	assert.Equal(t, "legacy_t1", first.ID)
	assert.Equal(t, "legacy_u1", first.UserID)
	assert.Equal(t, "Old Video", first.Title)
	assert.Equal(t, "bold", first.Style)
	assert.Equal(t, "vibrant", first.ColorScheme)
	assert.Equal(t, "WATCH", first.TextOverlay)
	assert.False(t, first.IsGenerating)
	assert.Equal(t, 2024, first.CreatedAt.Year())

	second := export.Thumbnails[1]
	assert.True(t, second.IsGenerating)
	assert.Equal(t, "weird_style", second.Style)
	assert.Empty(t, second.ImageURL)
	assert.Equal(t, 2024, second.CreatedAt.Year())
}

func TestRead_MissingFile(t *testing.T) {
	_, err := Read(filepath.Join(t.TempDir(), "nope.db"))
	assert.Error(t, err)
}
