// Package legacy reads sqlite export files produced by the original
// hosted app's export tool, so existing users can move their thumbnail
// history over.
package legacy

import (
	"database/sql"
	"fmt"
	"os"
	"time"

	_ "modernc.org/sqlite"
)

// User is a row from the export's users table.
type User struct {
	ID    string
	Email string
	Name  string
}

// Thumbnail is a row from the export's thumbnails table. Enum columns
// carry whatever the hosted app stored; callers validate and map them.
type Thumbnail struct {
	ID           string
	UserID       string
	Title        string
	Prompt       string
	Style        string
	AspectRatio  string
	ColorScheme  string
	TextOverlay  string
	ImageURL     string
	IsGenerating bool
	CreatedAt    time.Time
}

// Export is the full contents of a legacy export file.
type Export struct {
	Users      []User
	Thumbnails []Thumbnail
}

// Read loads a legacy export file. The file is opened read-only; an
// import never mutates the export.
func Read(path string) (*Export, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("export file: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open export: %w", err)
	}
	defer db.Close()

	// Single reader is enough; exports are read once, front to back.
	db.SetMaxOpenConns(1)

	pragmas := []string{
		"PRAGMA query_only=ON",
		"PRAGMA busy_timeout=5000",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			return nil, fmt.Errorf("exec pragma %q: %w", pragma, err)
		}
	}

	export := &Export{}

	if export.Users, err = readUsers(db); err != nil {
		return nil, err
	}
	if export.Thumbnails, err = readThumbnails(db); err != nil {
		return nil, err
	}

	return export, nil
}

func readUsers(db *sql.DB) ([]User, error) {
	rows, err := db.Query(`SELECT id, email, name FROM users`)
	if err != nil {
		return nil, fmt.Errorf("query users: %w", err)
	}
	defer rows.Close()

	var users []User
	for rows.Next() {
		var u User
		if err := rows.Scan(&u.ID, &u.Email, &u.Name); err != nil {
			return nil, fmt.Errorf("scan user row: %w", err)
		}
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate users: %w", err)
	}

	return users, nil
}

func readThumbnails(db *sql.DB) ([]Thumbnail, error) {
	rows, err := db.Query(`
		SELECT id, user_id, title, prompt, style, aspect_ratio,
		       color_scheme, text_overlay, image_url, is_generating, created_at
		FROM thumbnails
		ORDER BY created_at`)
	if err != nil {
		return nil, fmt.Errorf("query thumbnails: %w", err)
	}
	defer rows.Close()

	var thumbs []Thumbnail
	for rows.Next() {
		var th Thumbnail
		var createdAt string
		if err := rows.Scan(
			&th.ID, &th.UserID, &th.Title, &th.Prompt, &th.Style,
			&th.AspectRatio, &th.ColorScheme, &th.TextOverlay,
			&th.ImageURL, &th.IsGenerating, &createdAt,
		); err != nil {
			return nil, fmt.Errorf("scan thumbnail row: %w", err)
		}
		th.CreatedAt = parseExportTime(createdAt)
		thumbs = append(thumbs, th)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate thumbnails: %w", err)
	}

	return thumbs, nil
}

// parseExportTime accepts the timestamp formats the export tool has
// produced across versions. Unparseable values fall back to now rather
// than failing the whole import.
func parseExportTime(s string) time.Time {
	formats := []string{
		time.RFC3339Nano,
		time.RFC3339,
		"2006-01-02 15:04:05",
		"2006-01-02T15:04:05",
	}
	for _, f := range formats {
		if t, err := time.Parse(f, s); err == nil {
			return t
		}
	}
	return time.Now()
}
