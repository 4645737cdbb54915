// Package history persists benchmark sessions to SQLite so past runs can be
// listed and compared after the process exits.
package history

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/oklog/ulid/v2"
	_ "modernc.org/sqlite"

	"github.com/Bubalan0203/crawlbench/internal/bench"
	"github.com/Bubalan0203/crawlbench/internal/strategy"
)

// Store persists benchmark reports in a SQLite database.
type Store struct {
	db *sql.DB
}

// Session is one persisted benchmark invocation.
type Session struct {
	ID             string    `json:"id"`
	CreatedAt      time.Time `json:"created_at"`
	TargetCount    int       `json:"target_count"`
	SequentialMs   *float64  `json:"sequential_ms,omitempty"`
	PooledMs       *float64  `json:"pooled_ms,omitempty"`
	BoundedMs      *float64  `json:"bounded_ms,omitempty"`
	SuccessCount   int       `json:"success_count"`
	FailureCount   int       `json:"failure_count"`
	SpeedupPooled  *float64  `json:"speedup_pooled,omitempty"`
	SpeedupBounded *float64  `json:"speedup_bounded,omitempty"`
}

// Result is one persisted per-target outcome of one strategy.
type Result struct {
	SessionID  string  `json:"session_id"`
	Strategy   string  `json:"strategy"`
	URL        string  `json:"url"`
	Title      string  `json:"title,omitempty"`
	Links      int     `json:"links"`
	StatusCode *int    `json:"status_code,omitempty"`
	Reason     string  `json:"reason,omitempty"`
	ElapsedMs  float64 `json:"elapsed_ms"`
	Retries    int     `json:"retries"`
	Success    bool    `json:"success"`
}

// Open creates the store, establishing a connection to the database file and
// running migrations so the schema is up to date.
func Open(ctx context.Context, dataSourceName string) (*Store, error) {
	db, err := sql.Open("sqlite", fmt.Sprintf("%s?_foreign_keys=on&_journal_mode=WAL", dataSourceName))
	if err != nil {
		return nil, fmt.Errorf("unable to open sqlite database: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("unable to ping database: %w", err)
	}
	store := &Store{db: db}
	if err := store.migrate(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error { return s.db.Close() }

func (s *Store) migrate(ctx context.Context) error {
	schema := `
CREATE TABLE IF NOT EXISTS sessions (
	id              TEXT PRIMARY KEY,
	created_at      TEXT NOT NULL,
	target_count    INTEGER NOT NULL,
	sequential_ms   REAL,
	pooled_ms       REAL,
	bounded_ms      REAL,
	success_count   INTEGER NOT NULL,
	failure_count   INTEGER NOT NULL,
	speedup_pooled  REAL,
	speedup_bounded REAL
);
CREATE INDEX IF NOT EXISTS idx_sessions_created_at ON sessions (created_at DESC);

CREATE TABLE IF NOT EXISTS results (
	id          INTEGER PRIMARY KEY AUTOINCREMENT,
	session_id  TEXT NOT NULL,
	strategy    TEXT NOT NULL,
	url         TEXT NOT NULL,
	title       TEXT,
	links       INTEGER NOT NULL,
	status_code INTEGER,
	reason      TEXT,
	elapsed_ms  REAL NOT NULL,
	retries     INTEGER NOT NULL,
	success     INTEGER NOT NULL,
	FOREIGN KEY(session_id) REFERENCES sessions(id) ON DELETE CASCADE
);
CREATE INDEX IF NOT EXISTS idx_results_session_strategy ON results (session_id, strategy);
`
	_, err := s.db.ExecContext(ctx, schema)
	return err
}

// SaveReport persists one report as a session plus its per-target results
// and returns the generated session ID.
func (s *Store) SaveReport(ctx context.Context, report *bench.Report) (string, error) {
	id := ulid.Make().String()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("could not begin transaction: %w", err)
	}
	defer tx.Rollback()

	session := sessionFromReport(id, report)
	_, err = tx.ExecContext(ctx, `
INSERT INTO sessions (id, created_at, target_count, sequential_ms, pooled_ms, bounded_ms,
	success_count, failure_count, speedup_pooled, speedup_bounded)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		session.ID,
		session.CreatedAt.Format(time.RFC3339Nano),
		session.TargetCount,
		session.SequentialMs,
		session.PooledMs,
		session.BoundedMs,
		session.SuccessCount,
		session.FailureCount,
		session.SpeedupPooled,
		session.SpeedupBounded,
	)
	if err != nil {
		return "", fmt.Errorf("failed to insert session: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
INSERT INTO results (session_id, strategy, url, title, links, status_code, reason, elapsed_ms, retries, success)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return "", fmt.Errorf("failed to prepare result insert: %w", err)
	}
	defer stmt.Close()

	for _, res := range report.Results {
		if res.Run == nil {
			continue
		}
		for _, o := range res.Run.Outcomes {
			var statusCode *int
			if o.StatusCode > 0 {
				code := o.StatusCode
				statusCode = &code
			}
			if _, err := stmt.ExecContext(ctx,
				id, string(res.Strategy), o.Target, o.Title, o.LinkCount,
				statusCode, string(o.Reason), o.ElapsedMs, o.Retries, o.Succeeded,
			); err != nil {
				return "", fmt.Errorf("failed to insert result: %w", err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("could not commit transaction: %w", err)
	}
	return id, nil
}

// ListSessions returns the most recent sessions, newest first.
func (s *Store) ListSessions(ctx context.Context, limit int) ([]Session, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.QueryContext(ctx, `
SELECT id, created_at, target_count, sequential_ms, pooled_ms, bounded_ms,
	success_count, failure_count, speedup_pooled, speedup_bounded
FROM sessions ORDER BY created_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query sessions: %w", err)
	}
	defer rows.Close()

	var sessions []Session
	for rows.Next() {
		var sess Session
		var createdAt string
		if err := rows.Scan(&sess.ID, &createdAt, &sess.TargetCount,
			&sess.SequentialMs, &sess.PooledMs, &sess.BoundedMs,
			&sess.SuccessCount, &sess.FailureCount,
			&sess.SpeedupPooled, &sess.SpeedupBounded,
		); err != nil {
			return nil, fmt.Errorf("failed to scan session: %w", err)
		}
		sess.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdAt)
		sessions = append(sessions, sess)
	}
	return sessions, rows.Err()
}

// SessionResults returns every per-target result stored for a session.
func (s *Store) SessionResults(ctx context.Context, sessionID string) ([]Result, error) {
	rows, err := s.db.QueryContext(ctx, `
SELECT session_id, strategy, url, title, links, status_code, reason, elapsed_ms, retries, success
FROM results WHERE session_id = ? ORDER BY strategy, id`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to query results: %w", err)
	}
	defer rows.Close()

	var results []Result
	for rows.Next() {
		var r Result
		var title, reason sql.NullString
		if err := rows.Scan(&r.SessionID, &r.Strategy, &r.URL, &title, &r.Links,
			&r.StatusCode, &reason, &r.ElapsedMs, &r.Retries, &r.Success,
		); err != nil {
			return nil, fmt.Errorf("failed to scan result: %w", err)
		}
		r.Title = title.String
		r.Reason = reason.String
		results = append(results, r)
	}
	return results, rows.Err()
}

// sessionFromReport flattens a report into one session row. Success and
// failure counts come from the first completed strategy: under identical
// inputs every strategy classifies targets the same way, so any completed
// run is representative.
func sessionFromReport(id string, report *bench.Report) Session {
	session := Session{
		ID:          id,
		CreatedAt:   report.StartedAt,
		TargetCount: report.TargetCount,
	}
	if session.CreatedAt.IsZero() {
		session.CreatedAt = time.Now().UTC()
	}

	counted := false
	for _, res := range report.Results {
		if res.Run == nil {
			continue
		}
		if !counted {
			session.SuccessCount = res.Run.Successes
			session.FailureCount = res.Run.Failures
			counted = true
		}
		ms := res.Run.ElapsedMs
		switch res.Strategy {
		case strategy.Sequential:
			session.SequentialMs = &ms
		case strategy.Pooled:
			session.PooledMs = &ms
		case strategy.BoundedConcurrent:
			session.BoundedMs = &ms
		}
	}

	if speedup, ok := report.Speedups[strategy.Pooled]; ok {
		v := speedup
		session.SpeedupPooled = &v
	}
	if speedup, ok := report.Speedups[strategy.BoundedConcurrent]; ok {
		v := speedup
		session.SpeedupBounded = &v
	}
	return session
}
