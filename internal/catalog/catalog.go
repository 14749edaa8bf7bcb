// Package catalog indexes finished recordings in SQLite.
package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/ritikZ18/screen-recoder-da/internal/types"
)

// timeLayout is fixed-width so started_at sorts lexically
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// Catalog stores one row per finished recording
type Catalog struct {
	db *sql.DB
}

// Open opens or creates the catalog database at dbPath.
func Open(dbPath string) (*Catalog, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("catalog: create db dir: %w", err)
	}
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("catalog: open sqlite: %w", err)
	}
	db.SetMaxOpenConns(1)

	c := &Catalog{db: db}
	if err := c.ensureSchema(context.Background()); err != nil {
		db.Close()
		return nil, err
	}
	return c, nil
}

func (c *Catalog) ensureSchema(ctx context.Context) error {
	const ddl = `
CREATE TABLE IF NOT EXISTS recordings (
  id TEXT PRIMARY KEY,
  output_path TEXT NOT NULL,
  sidecar_path TEXT,
  source TEXT NOT NULL,
  started_at TEXT NOT NULL,
  duration_s REAL NOT NULL,
  frames INTEGER NOT NULL,
  dropped_frames INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS recordings_started_at ON recordings(started_at);
`
	if _, err := c.db.ExecContext(ctx, ddl); err != nil {
		return fmt.Errorf("catalog: create recordings table: %w", err)
	}
	return nil
}

// Record inserts or replaces a recording by id.
func (c *Catalog) Record(ctx context.Context, rec types.RecordingInfo) error {
	const stmt = `
INSERT INTO recordings (id, output_path, sidecar_path, source, started_at, duration_s, frames, dropped_frames)
VALUES (?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(id) DO UPDATE SET
  output_path=excluded.output_path,
  sidecar_path=excluded.sidecar_path,
  source=excluded.source,
  started_at=excluded.started_at,
  duration_s=excluded.duration_s,
  frames=excluded.frames,
  dropped_frames=excluded.dropped_frames;
`
	_, err := c.db.ExecContext(ctx, stmt,
		rec.ID,
		rec.OutputPath,
		rec.SidecarPath,
		rec.Source,
		rec.StartedAt.UTC().Format(timeLayout),
		rec.Duration,
		int64(rec.Frames),
		int64(rec.DroppedFrames),
	)
	if err != nil {
		return fmt.Errorf("catalog: upsert recording: %w", err)
	}
	return nil
}

// List returns recordings newest first. limit <= 0 returns all.
func (c *Catalog) List(ctx context.Context, limit int) ([]types.RecordingInfo, error) {
	query := selectRecordings + " ORDER BY started_at DESC"
	args := []any{}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := c.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("catalog: list recordings: %w", err)
	}
	defer rows.Close()

	var out []types.RecordingInfo
	for rows.Next() {
		rec, err := scanRecording(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("catalog: list recordings: %w", err)
	}
	return out, nil
}

// Get returns a recording by id; ok is false when it does not exist.
func (c *Catalog) Get(ctx context.Context, id string) (rec types.RecordingInfo, ok bool, err error) {
	row := c.db.QueryRowContext(ctx, selectRecordings+" WHERE id = ?", id)
	rec, err = scanRecording(row)
	if errors.Is(err, sql.ErrNoRows) {
		return types.RecordingInfo{}, false, nil
	}
	if err != nil {
		return types.RecordingInfo{}, false, err
	}
	return rec, true, nil
}

const selectRecordings = `
SELECT id, output_path, COALESCE(sidecar_path, ''), source, started_at, duration_s, frames, dropped_frames
FROM recordings`

type scanner interface {
	Scan(dest ...any) error
}

func scanRecording(s scanner) (types.RecordingInfo, error) {
	var (
		rec             types.RecordingInfo
		startedAt       string
		frames, dropped int64
	)
	if err := s.Scan(&rec.ID, &rec.OutputPath, &rec.SidecarPath, &rec.Source,
		&startedAt, &rec.Duration, &frames, &dropped); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return rec, err
		}
		return rec, fmt.Errorf("catalog: scan recording: %w", err)
	}
	t, err := time.Parse(timeLayout, startedAt)
	if err != nil {
		return rec, fmt.Errorf("catalog: recording %s: bad started_at %q: %w", rec.ID, startedAt, err)
	}
	rec.StartedAt = t
	rec.Frames = uint64(frames)
	rec.DroppedFrames = uint64(dropped)
	return rec, nil
}

// Close closes the database.
func (c *Catalog) Close() error {
	return c.db.Close()
}
