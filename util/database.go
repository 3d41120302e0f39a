package util

import (
	"database/sql"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// Video is one entry in the local video library: a source file plus the
// metadata probed when it was first opened.
type Video struct {
	ID         string
	Path       string
	Title      string
	Duration   time.Duration
	FrameRate  float64
	SizeBytes  int64
	LastOpened time.Time
}

// Database wraps the SQL database with higher-level methods.
type Database struct {
	db *sql.DB
}

// InitDatabase creates and initializes the library database under ./data.
func InitDatabase() (*Database, error) {
	dbPath := "./data/skipcut.db"

	if err := os.MkdirAll("./data", 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	createTableSQL := `
	CREATE TABLE IF NOT EXISTS videos (
		id TEXT PRIMARY KEY,
		path TEXT NOT NULL UNIQUE,
		title TEXT NOT NULL,
		duration_ms INTEGER NOT NULL,
		frame_rate REAL NOT NULL,
		size_bytes INTEGER NOT NULL,
		last_opened INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_videos_last_opened ON videos(last_opened);
	`

	if _, err := db.Exec(createTableSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create table: %w", err)
	}

	return &Database{db: db}, nil
}

// Close closes the underlying database.
func (d *Database) Close() error {
	return d.db.Close()
}

// GetVideoByPath looks up a library entry by source path.
func (d *Database) GetVideoByPath(path string) (*Video, bool) {
	var v Video
	var durationMS, lastOpened int64
	err := d.db.QueryRow(`
		SELECT id, path, title, duration_ms, frame_rate, size_bytes, last_opened
		FROM videos WHERE path = ?`, path).Scan(
		&v.ID, &v.Path, &v.Title, &durationMS, &v.FrameRate, &v.SizeBytes, &lastOpened)
	if err != nil {
		return nil, false
	}
	v.Duration = time.Duration(durationMS) * time.Millisecond
	v.LastOpened = time.Unix(lastOpened, 0)
	return &v, true
}

// SaveVideo inserts or refreshes a library entry, keyed by path. New
// entries get a generated ID. The stored LastOpened is set to now.
func (d *Database) SaveVideo(v *Video) error {
	if v.ID == "" {
		v.ID = uuid.NewString()
	}
	v.LastOpened = time.Now()

	_, err := d.db.Exec(`
		INSERT INTO videos (id, path, title, duration_ms, frame_rate, size_bytes, last_opened)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(path) DO UPDATE SET
			title = excluded.title,
			duration_ms = excluded.duration_ms,
			frame_rate = excluded.frame_rate,
			size_bytes = excluded.size_bytes,
			last_opened = excluded.last_opened`,
		v.ID, v.Path, v.Title, v.Duration.Milliseconds(), v.FrameRate,
		v.SizeBytes, v.LastOpened.Unix())
	if err != nil {
		return fmt.Errorf("failed to save video %s: %w", v.Path, err)
	}
	return nil
}

// ListVideos returns the library ordered by most recently opened.
func (d *Database) ListVideos() ([]Video, error) {
	rows, err := d.db.Query(`
		SELECT id, path, title, duration_ms, frame_rate, size_bytes, last_opened
		FROM videos ORDER BY last_opened DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list videos: %w", err)
	}
	defer rows.Close()

	var videos []Video
	for rows.Next() {
		var v Video
		var durationMS, lastOpened int64
		if err := rows.Scan(&v.ID, &v.Path, &v.Title, &durationMS, &v.FrameRate,
			&v.SizeBytes, &lastOpened); err != nil {
			return nil, fmt.Errorf("failed to scan video row: %w", err)
		}
		v.Duration = time.Duration(durationMS) * time.Millisecond
		v.LastOpened = time.Unix(lastOpened, 0)
		videos = append(videos, v)
	}
	return videos, rows.Err()
}
