package textstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	_ "modernc.org/sqlite" // Pure-Go SQLite driver.
)

// schema contains the DDL executed on open. IF NOT EXISTS makes it safe to
// run on every startup.
const schema = `
CREATE TABLE IF NOT EXISTS flight_texts (
    source TEXT NOT NULL,
    kind   TEXT NOT NULL,
    target TEXT NOT NULL,
    body   TEXT NOT NULL,
    PRIMARY KEY (source, kind, target)
);

CREATE TABLE IF NOT EXISTS self_texts (
    role TEXT NOT NULL,
    kind TEXT NOT NULL,
    body TEXT NOT NULL,
    PRIMARY KEY (role, kind)
);

CREATE TABLE IF NOT EXISTS birth_texts (
    role TEXT NOT NULL,
    kind TEXT NOT NULL,
    body TEXT NOT NULL,
    PRIMARY KEY (role, kind)
);
`

// SQLiteStore implements Store over a local SQLite database.
type SQLiteStore struct {
	db      *sql.DB
	matcher KeyMatcher
}

// OpenSQLite opens (or creates) the database at dbPath and ensures the
// schema exists.
func OpenSQLite(ctx context.Context, dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("textstore: open database: %w", err)
	}
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("textstore: enable WAL mode: %w", err)
	}
	if _, err := db.ExecContext(ctx, "PRAGMA busy_timeout=5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("textstore: set busy timeout: %w", err)
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("textstore: create schema: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

// Close closes the database.
func (s *SQLiteStore) Close() error { return s.db.Close() }

// Import upserts every entry of d in a single transaction and returns the
// number of rows written. Title keys are normalized first.
func (s *SQLiteStore) Import(ctx context.Context, d Data) (int, error) {
	d = normalize(d)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("textstore: begin import: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // rollback after commit is a no-op

	flightStmt, err := tx.PrepareContext(ctx, `
		INSERT INTO flight_texts (source, kind, target, body) VALUES (?, ?, ?, ?)
		ON CONFLICT(source, kind, target) DO UPDATE SET body = excluded.body`)
	if err != nil {
		return 0, fmt.Errorf("textstore: prepare flight upsert: %w", err)
	}
	defer flightStmt.Close()

	n := 0
	for src, kinds := range d.Flights {
		for kind, targets := range kinds {
			for tgt, body := range targets {
				if _, err := flightStmt.ExecContext(ctx, src, kind, tgt, body); err != nil {
					return 0, fmt.Errorf("textstore: upsert flight %s/%s/%s: %w", src, kind, tgt, err)
				}
				n++
			}
		}
	}

	for table, rows := range map[string]map[string]map[string]string{"self_texts": d.Self, "birth_texts": d.Birth} {
		q := fmt.Sprintf(`
			INSERT INTO %s (role, kind, body) VALUES (?, ?, ?)
			ON CONFLICT(role, kind) DO UPDATE SET body = excluded.body`, table)
		for role, kinds := range rows {
			for kind, body := range kinds {
				if _, err := tx.ExecContext(ctx, q, role, kind, body); err != nil {
					return 0, fmt.Errorf("textstore: upsert %s %s/%s: %w", table, role, kind, err)
				}
				n++
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("textstore: commit import: %w", err)
	}
	return n, nil
}

// Flight implements Store.
func (s *SQLiteStore) Flight(ctx context.Context, source, kind, target string) (string, error) {
	var qerr error
	exists := func(q string, args ...any) bool {
		if qerr != nil {
			return false
		}
		var one int
		err := s.db.QueryRowContext(ctx, q, args...).Scan(&one)
		if err != nil && !errors.Is(err, sql.ErrNoRows) {
			qerr = err
		}
		return err == nil
	}

	src, ok := s.matcher.Resolve(source, func(k string) bool {
		return exists("SELECT 1 FROM flight_texts WHERE source = ? LIMIT 1", k)
	})
	if qerr != nil {
		return "", fmt.Errorf("textstore: flight source %q: %w", source, qerr)
	}
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrNotFound, source)
	}
	tgt, ok := s.matcher.Resolve(target, func(k string) bool {
		return exists("SELECT 1 FROM flight_texts WHERE source = ? AND kind = ? AND target = ?", src, kind, k)
	})
	if qerr != nil {
		return "", fmt.Errorf("textstore: flight target %q: %w", target, qerr)
	}
	if !ok {
		return "", fmt.Errorf("%w: %s化%s入%s", ErrNotFound, source, kind, target)
	}

	var body string
	err := s.db.QueryRowContext(ctx,
		"SELECT body FROM flight_texts WHERE source = ? AND kind = ? AND target = ?", src, kind, tgt).Scan(&body)
	if err != nil {
		return "", fmt.Errorf("textstore: flight %s/%s/%s: %w", src, kind, tgt, err)
	}
	return body, nil
}

// Self implements Store.
func (s *SQLiteStore) Self(ctx context.Context, role, kind string) (string, error) {
	return s.roleKind(ctx, "self_texts", role, kind)
}

// Birth implements Store.
func (s *SQLiteStore) Birth(ctx context.Context, role, kind string) (string, error) {
	return s.roleKind(ctx, "birth_texts", role, kind)
}

func (s *SQLiteStore) roleKind(ctx context.Context, table, role, kind string) (string, error) {
	var (
		body string
		qerr error
	)
	q := fmt.Sprintf("SELECT body FROM %s WHERE role = ? AND kind = ?", table)
	_, ok := s.matcher.Resolve(role, func(k string) bool {
		if qerr != nil {
			return false
		}
		err := s.db.QueryRowContext(ctx, q, k, kind).Scan(&body)
		if err != nil && !errors.Is(err, sql.ErrNoRows) {
			qerr = err
		}
		return err == nil
	})
	if qerr != nil {
		return "", fmt.Errorf("textstore: %s %s/%s: %w", table, role, kind, qerr)
	}
	if !ok {
		return "", fmt.Errorf("%w: %s %s", ErrNotFound, role, kind)
	}
	return body, nil
}
