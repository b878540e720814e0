package local

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"time"

	_ "github.com/mattn/go-sqlite3" // SQLite3 driver
)

const storeTimeout = 5 * time.Second

// MetadataStore persists extracted item metadata keyed by file path,
// so unchanged files don't need to be re-read on every scan.
type MetadataStore struct {
	db *sql.DB
}

func OpenMetadataStore(ctx context.Context, dbPath string) (*MetadataStore, error) {
	connStr := fmt.Sprintf("%s?_journal_mode=WAL&_synchronous=NORMAL&_busy_timeout=5000", dbPath)
	db, err := sql.Open("sqlite3", connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to open metadata store: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, storeTimeout)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to metadata store: %w", err)
	}

	schema := `
	CREATE TABLE IF NOT EXISTS item_metadata (
		path TEXT PRIMARY KEY,
		mod_time INTEGER NOT NULL,
		size INTEGER NOT NULL,
		created_at INTEGER NOT NULL,
		duration_ms INTEGER NOT NULL DEFAULT 0,
		width INTEGER NOT NULL DEFAULT 0,
		height INTEGER NOT NULL DEFAULT 0,
		frame_rate REAL NOT NULL DEFAULT 0,
		capture_mode TEXT NOT NULL DEFAULT '',
		user_comment TEXT NOT NULL DEFAULT '',
		custom_rendered INTEGER NOT NULL DEFAULT 0
	);`
	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize metadata store schema: %w", err)
	}
	return &MetadataStore{db: db}, nil
}

// Get returns the stored metadata for path if the file's
// modification time and size still match.
func (s *MetadataStore) Get(path string, modTime time.Time, size int64) (Metadata, bool) {
	ctx, cancel := context.WithTimeout(context.Background(), storeTimeout)
	defer cancel()

	var m Metadata
	var storedMod, storedSize, createdAt, durationMs int64
	row := s.db.QueryRowContext(ctx, `
		SELECT mod_time, size, created_at, duration_ms, width, height,
			frame_rate, capture_mode, user_comment, custom_rendered
		FROM item_metadata WHERE path = ?`, path)
	err := row.Scan(&storedMod, &storedSize, &createdAt, &durationMs, &m.Width, &m.Height,
		&m.FrameRate, &m.CaptureMode, &m.UserComment, &m.CustomRendered)
	if err != nil {
		return Metadata{}, false
	}
	if storedMod != modTime.UnixMilli() || storedSize != size {
		return Metadata{}, false
	}
	m.CreatedAt = time.UnixMilli(createdAt)
	m.Duration = time.Duration(durationMs) * time.Millisecond
	return m, true
}

func (s *MetadataStore) Put(path string, modTime time.Time, size int64, m Metadata) error {
	ctx, cancel := context.WithTimeout(context.Background(), storeTimeout)
	defer cancel()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO item_metadata (path, mod_time, size, created_at, duration_ms, width, height,
			frame_rate, capture_mode, user_comment, custom_rendered)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(path) DO UPDATE SET
			mod_time = excluded.mod_time,
			size = excluded.size,
			created_at = excluded.created_at,
			duration_ms = excluded.duration_ms,
			width = excluded.width,
			height = excluded.height,
			frame_rate = excluded.frame_rate,
			capture_mode = excluded.capture_mode,
			user_comment = excluded.user_comment,
			custom_rendered = excluded.custom_rendered`,
		path, modTime.UnixMilli(), size, m.CreatedAt.UnixMilli(), m.Duration.Milliseconds(),
		m.Width, m.Height, m.FrameRate, m.CaptureMode, m.UserComment, m.CustomRendered)
	if err != nil {
		return fmt.Errorf("storing metadata: %w", err)
	}
	return nil
}

// Delete removes the entry for path and for anything below it,
// if path is a directory.
func (s *MetadataStore) Delete(path string) error {
	ctx, cancel := context.WithTimeout(context.Background(), storeTimeout)
	defer cancel()

	_, err := s.db.ExecContext(ctx,
		`DELETE FROM item_metadata WHERE path = ? OR path LIKE ? ESCAPE '\'`,
		path, escapeLike(path+string(os.PathSeparator))+"%")
	return err
}

func (s *MetadataStore) Close() error {
	return s.db.Close()
}

func escapeLike(s string) string {
	out := make([]rune, 0, len(s))
	for _, r := range s {
		if r == '%' || r == '_' || r == '\\' {
			out = append(out, '\\')
		}
		out = append(out, r)
	}
	return string(out)
}
