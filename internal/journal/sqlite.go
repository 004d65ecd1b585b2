package journal

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"tablero/internal/domain"
	"tablero/internal/feed"

	_ "modernc.org/sqlite" // Pure-Go SQLite driver.
)

// Compile-time interface checks.
var _ feed.SnapshotLoader = (*SQLiteJournal)(nil)
var _ feed.Handler = (*SQLiteJournal)(nil)

const schema = `
CREATE TABLE IF NOT EXISTS polls (
	id        TEXT PRIMARY KEY,
	stream    TEXT NOT NULL,
	polled_at INTEGER NOT NULL,
	success   INTEGER NOT NULL,
	message   TEXT NOT NULL DEFAULT '',
	rows      INTEGER NOT NULL,
	payload   TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS polls_stream_time ON polls (stream, polled_at);
`

// SQLiteJournal stores polls in a SQLite database.
type SQLiteJournal struct {
	db  *sql.DB
	log *slog.Logger
}

// Open opens (or creates) the journal database at dbPath and applies the
// schema.
func Open(dbPath string, log *slog.Logger) (*SQLiteJournal, error) {
	if log == nil {
		log = slog.Default()
	}
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating journal dir: %w", err)
		}
	}
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening journal %s: %w", dbPath, err)
	}
	// One writer at a time; pollers record concurrently.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating journal schema: %w", err)
	}
	return &SQLiteJournal{db: db, log: log}, nil
}

// Close closes the underlying database connection.
func (j *SQLiteJournal) Close() error {
	return j.db.Close()
}

// Record appends one poll.
func (j *SQLiteJournal) Record(ctx context.Context, snap domain.Snapshot) error {
	rec, err := toRecord(uuid.NewString(), snap)
	if err != nil {
		return err
	}
	_, err = j.db.ExecContext(ctx,
		`INSERT INTO polls (id, stream, polled_at, success, message, rows, payload)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		rec.ID, rec.Stream, rec.PolledAt, rec.Success, rec.Message, rec.Rows, rec.Payload)
	if err != nil {
		return fmt.Errorf("recording poll for %s: %w", snap.Stream, err)
	}
	return nil
}

// HandleSnapshot records snap, logging rather than returning failures so a
// broken journal never stalls a poller.
func (j *SQLiteJournal) HandleSnapshot(snap domain.Snapshot) {
	if err := j.Record(context.Background(), snap); err != nil {
		j.log.Warn("journal write failed", "stream", snap.Stream, "error", err)
	}
}

// Records returns the journaled polls of stream, oldest first. An empty
// stream selects every stream. limit > 0 keeps only the most recent limit
// polls.
func (j *SQLiteJournal) Records(ctx context.Context, stream string, limit int) ([]PollRecord, error) {
	if limit <= 0 {
		limit = -1 // SQLite: no limit
	}
	rows, err := j.db.QueryContext(ctx,
		`SELECT id, stream, polled_at, success, message, rows, payload FROM (
			SELECT rowid AS seq, * FROM polls
			WHERE ? = '' OR stream = ?
			ORDER BY polled_at DESC, seq DESC
			LIMIT ?
		) ORDER BY polled_at ASC, seq ASC`,
		stream, stream, limit)
	if err != nil {
		return nil, fmt.Errorf("querying polls: %w", err)
	}
	defer rows.Close()

	var out []PollRecord
	for rows.Next() {
		var r PollRecord
		if err := rows.Scan(&r.ID, &r.Stream, &r.PolledAt, &r.Success, &r.Message, &r.Rows, &r.Payload); err != nil {
			return nil, fmt.Errorf("scanning poll: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// Load returns the journaled snapshots of stream, oldest first.
func (j *SQLiteJournal) Load(ctx context.Context, stream string, limit int) ([]domain.Snapshot, error) {
	recs, err := j.Records(ctx, stream, limit)
	if err != nil {
		return nil, err
	}
	snaps := make([]domain.Snapshot, 0, len(recs))
	for _, r := range recs {
		s, err := r.Snapshot()
		if err != nil {
			return nil, err
		}
		snaps = append(snaps, s)
	}
	return snaps, nil
}

// Count returns how many polls are journaled for stream ("" for all).
func (j *SQLiteJournal) Count(ctx context.Context, stream string) (int, error) {
	var n int
	err := j.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM polls WHERE ? = '' OR stream = ?`, stream, stream).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("counting polls: %w", err)
	}
	return n, nil
}
