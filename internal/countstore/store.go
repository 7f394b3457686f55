// Package countstore persists the per-span placeholder counters between
// runs, so placeholders minted for the same spans in a later session never
// reuse an identity.
package countstore

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/funvibe/rangetyck/internal/token"
	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS span_counts (
	file       TEXT    NOT NULL,
	start_line INTEGER NOT NULL,
	start_col  INTEGER NOT NULL,
	end_line   INTEGER NOT NULL,
	end_col    INTEGER NOT NULL,
	count      INTEGER NOT NULL,
	session    TEXT    NOT NULL,
	PRIMARY KEY (file, start_line, start_col, end_line, end_col)
);
CREATE TABLE IF NOT EXISTS sessions (
	id           TEXT    PRIMARY KEY,
	problem      TEXT    NOT NULL,
	started_at   TEXT    NOT NULL,
	diagnostics  INTEGER NOT NULL,
	placeholders INTEGER NOT NULL
);
`

// Session is one solving run as recorded in the store.
type Session struct {
	ID           uuid.UUID
	Problem      string
	StartedAt    time.Time
	Diagnostics  int
	Placeholders int
}

// Store is a sqlite database of span counters.
type Store struct {
	db   *sql.DB
	path string
}

// Open opens (creating if needed) the database at path.
func Open(ctx context.Context, path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("creating %s: %w", dir, err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening counts %s: %w", path, err)
	}
	// One connection keeps writes serialized.
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("initializing counts %s: %w", path, err)
	}
	return &Store{db: db, path: path}, nil
}

func (s *Store) Path() string {
	return s.path
}

func (s *Store) Close() error {
	return s.db.Close()
}

// Load returns the counters recorded for spans in file.
func (s *Store) Load(ctx context.Context, file string) (map[token.Span]int, error) {
	counts, err := s.query(ctx,
		`SELECT file, start_line, start_col, end_line, end_col, count FROM span_counts WHERE file = ?`, file)
	if err != nil {
		return nil, fmt.Errorf("loading counts for %s: %w", file, err)
	}
	return counts, nil
}

// LoadAll returns every recorded counter. A problem's spans may point into
// other files, so seeding a session from one file's rows is not enough.
func (s *Store) LoadAll(ctx context.Context) (map[token.Span]int, error) {
	counts, err := s.query(ctx,
		`SELECT file, start_line, start_col, end_line, end_col, count FROM span_counts`)
	if err != nil {
		return nil, fmt.Errorf("loading counts: %w", err)
	}
	return counts, nil
}

func (s *Store) query(ctx context.Context, query string, args ...interface{}) (map[token.Span]int, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[token.Span]int)
	for rows.Next() {
		var file string
		var sl, sc, el, ec, count int
		if err := rows.Scan(&file, &sl, &sc, &el, &ec, &count); err != nil {
			return nil, err
		}
		counts[token.NewSpan(file, sl, sc, el, ec)] = count
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return counts, nil
}

// Save records counts under session. A counter never goes down: the
// stored value is the maximum of the old and new one.
func (s *Store) Save(ctx context.Context, session uuid.UUID, counts map[token.Span]int) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("saving counts: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO span_counts (file, start_line, start_col, end_line, end_col, count, session)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (file, start_line, start_col, end_line, end_col)
		DO UPDATE SET count = MAX(count, excluded.count), session = excluded.session`)
	if err != nil {
		return fmt.Errorf("saving counts: %w", err)
	}
	defer stmt.Close()

	for span, count := range counts {
		if _, err := stmt.ExecContext(ctx, span.File,
			span.Start.Line, span.Start.Column, span.End.Line, span.End.Column,
			count, session.String()); err != nil {
			return fmt.Errorf("saving count for %s: %w", span, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("saving counts: %w", err)
	}
	return nil
}

// RecordSession appends a session summary.
func (s *Store) RecordSession(ctx context.Context, session Session) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO sessions (id, problem, started_at, diagnostics, placeholders) VALUES (?, ?, ?, ?, ?)`,
		session.ID.String(), session.Problem, session.StartedAt.UTC().Format(time.RFC3339Nano),
		session.Diagnostics, session.Placeholders)
	if err != nil {
		return fmt.Errorf("recording session %s: %w", session.ID, err)
	}
	return nil
}

// Sessions returns the most recent sessions for problem, newest first.
func (s *Store) Sessions(ctx context.Context, problem string, limit int) ([]Session, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, problem, started_at, diagnostics, placeholders FROM sessions
		WHERE problem = ? ORDER BY started_at DESC LIMIT ?`, problem, limit)
	if err != nil {
		return nil, fmt.Errorf("listing sessions: %w", err)
	}
	defer rows.Close()

	var sessions []Session
	for rows.Next() {
		var id, started string
		var sess Session
		if err := rows.Scan(&id, &sess.Problem, &started, &sess.Diagnostics, &sess.Placeholders); err != nil {
			return nil, fmt.Errorf("listing sessions: %w", err)
		}
		if sess.ID, err = uuid.Parse(id); err != nil {
			return nil, fmt.Errorf("session id %q: %w", id, err)
		}
		if sess.StartedAt, err = time.Parse(time.RFC3339Nano, started); err != nil {
			return nil, fmt.Errorf("session %s start time: %w", id, err)
		}
		sessions = append(sessions, sess)
	}
	return sessions, rows.Err()
}
