// Package sqlite provides a core.HistoryStore backed by SQLite through the
// pure-Go modernc.org/sqlite driver.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/hupe1980/conceptmesh/core"
	"github.com/hupe1980/conceptmesh/history"
	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS results (
	seq            INTEGER PRIMARY KEY AUTOINCREMENT,
	id             TEXT NOT NULL UNIQUE,
	branch         TEXT NOT NULL,
	success        INTEGER NOT NULL,
	answer         TEXT NOT NULL,
	details        TEXT NOT NULL,
	error          TEXT NOT NULL,
	concepts       TEXT NOT NULL,
	concept_index  TEXT NOT NULL,
	edges_built    INTEGER NOT NULL,
	edges_retained INTEGER NOT NULL,
	alignment      TEXT NOT NULL,
	duration_ns    INTEGER NOT NULL,
	created_at     INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_results_created ON results(created_at);
`

const selectColumns = `id, branch, success, answer, details, error, concepts, edges_built, edges_retained, alignment, duration_ns, created_at`

// Store persists processing results in a SQLite database.
type Store struct {
	db *sql.DB
}

// Open opens (or creates) the database at path and applies the schema.
// Use ":memory:" for a throwaway database.
func Open(ctx context.Context, path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open history database: %w", err)
	}
	// A single connection keeps ":memory:" databases shared and serializes writers.
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to apply history schema: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the database.
func (s *Store) Close() error { return s.db.Close() }

// Record stores a result. Recording an existing id replaces it.
func (s *Store) Record(ctx context.Context, r core.ProcessingResult) error {
	if r.ID == "" {
		return fmt.Errorf("history: result has no id")
	}
	concepts, err := json.Marshal(r.Concepts)
	if err != nil {
		return fmt.Errorf("failed to encode concepts: %w", err)
	}
	alignment, err := json.Marshal(r.Alignment)
	if err != nil {
		return fmt.Errorf("failed to encode alignment: %w", err)
	}
	ts := r.Timestamp
	if ts.IsZero() {
		ts = time.Now()
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO results (id, branch, success, answer, details, error, concepts, concept_index,
			edges_built, edges_retained, alignment, duration_ns, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.ID, r.Branch, r.Success, r.Answer, r.SupportingDetails, r.Error, string(concepts), conceptIndex(r.Concepts),
		r.EdgesBuilt, r.EdgesRetained, string(alignment), int64(r.Duration), ts.UnixNano(),
	)
	if err != nil {
		return fmt.Errorf("failed to record result %s: %w", r.ID, err)
	}
	return nil
}

// Recent returns up to limit results, newest first.
func (s *Store) Recent(ctx context.Context, limit int) ([]core.ProcessingResult, error) {
	return s.query(ctx, `SELECT `+selectColumns+` FROM results ORDER BY seq DESC LIMIT ?`, limit)
}

// Search returns up to limit results, newest first, having a concept that
// contains query. Matching is case-insensitive.
func (s *Store) Search(ctx context.Context, query string, limit int) ([]core.ProcessingResult, error) {
	if query == "" {
		return s.Recent(ctx, limit)
	}
	pattern := "%" + escapeLike(strings.ToLower(query)) + "%"
	return s.query(ctx, `SELECT `+selectColumns+` FROM results WHERE concept_index LIKE ? ESCAPE '\' ORDER BY seq DESC LIMIT ?`, pattern, limit)
}

// Delete removes a result by id.
func (s *Store) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM results WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete result %s: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", history.ErrNotFound, id)
	}
	return nil
}

func (s *Store) query(ctx context.Context, q string, args ...any) ([]core.ProcessingResult, error) {
	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query history: %w", err)
	}
	defer rows.Close()

	out := []core.ProcessingResult{}
	for rows.Next() {
		var (
			r                   core.ProcessingResult
			concepts, alignment string
			durationNS, created int64
		)
		if err := rows.Scan(&r.ID, &r.Branch, &r.Success, &r.Answer, &r.SupportingDetails, &r.Error,
			&concepts, &r.EdgesBuilt, &r.EdgesRetained, &alignment, &durationNS, &created); err != nil {
			return nil, fmt.Errorf("failed to scan result: %w", err)
		}
		if err := json.Unmarshal([]byte(concepts), &r.Concepts); err != nil {
			return nil, fmt.Errorf("failed to decode concepts of %s: %w", r.ID, err)
		}
		if err := json.Unmarshal([]byte(alignment), &r.Alignment); err != nil {
			return nil, fmt.Errorf("failed to decode alignment of %s: %w", r.ID, err)
		}
		r.Duration = time.Duration(durationNS)
		r.Timestamp = time.Unix(0, created)
		out = append(out, r)
	}
	if err := rows.Err(); err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}
	return out, nil
}

// conceptIndex is a newline-delimited lowercase concept list used for LIKE search.
func conceptIndex(concepts []core.Concept) string {
	var b strings.Builder
	b.WriteByte('\n')
	for _, c := range concepts {
		b.WriteString(strings.ToLower(string(c)))
		b.WriteByte('\n')
	}
	return b.String()
}

func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}
