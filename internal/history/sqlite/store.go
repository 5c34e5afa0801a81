package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/artpar/querybench/internal/history"
	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// Store implements history.Store on an in-memory SQLite database.
// Nothing outlives the process.
type Store struct {
	mu     sync.RWMutex
	db     *sql.DB
	closed bool
}

const columns = `id, timestamp, route, method, url, request_body, seq,
	status, tone, response_body, failure_kind, failure_detail, duration, applied`

// NewInMemory creates a session history store.
func NewInMemory() (*Store, error) {
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		return nil, fmt.Errorf("failed to open in-memory database: %w", err)
	}
	// Every connection to :memory: is a separate database.
	db.SetMaxOpenConns(1)

	store := &Store{db: db}
	if err := store.initialize(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	return store, nil
}

func (s *Store) initialize() error {
	schema := `
		CREATE TABLE IF NOT EXISTS history (
			id TEXT PRIMARY KEY,
			timestamp INTEGER NOT NULL,
			route TEXT NOT NULL,
			method TEXT NOT NULL,
			url TEXT NOT NULL,
			request_body TEXT,
			seq INTEGER NOT NULL DEFAULT 0,
			status INTEGER NOT NULL DEFAULT 0,
			tone TEXT NOT NULL,
			response_body TEXT,
			failure_kind TEXT,
			failure_detail TEXT,
			duration INTEGER NOT NULL DEFAULT 0,
			applied INTEGER NOT NULL DEFAULT 1
		);

		CREATE INDEX IF NOT EXISTS idx_history_timestamp ON history(timestamp DESC);
		CREATE INDEX IF NOT EXISTS idx_history_route ON history(route, method);
	`
	_, err := s.db.Exec(schema)
	return err
}

// Add adds a new history entry and returns its ID.
func (s *Store) Add(ctx context.Context, entry history.Entry) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return "", history.ErrStoreClosed
	}

	if entry.ID == "" {
		entry.ID = uuid.New().String()
	}
	if entry.Timestamp.IsZero() {
		entry.Timestamp = time.Now()
	}

	_, err := s.db.ExecContext(ctx, `INSERT INTO history (`+columns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		entry.ID, entry.Timestamp.UnixNano(), entry.Route, entry.Method, entry.URL,
		entry.RequestBody, int64(entry.Seq), entry.Status, entry.Tone, entry.ResponseBody,
		entry.FailureKind, entry.FailureDetail, entry.Duration, entry.Applied,
	)
	if err != nil {
		return "", fmt.Errorf("failed to insert history entry: %w", err)
	}

	return entry.ID, nil
}

// Get retrieves a single history entry by ID.
func (s *Store) Get(ctx context.Context, id string) (history.Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return history.Entry{}, history.ErrStoreClosed
	}
	if id == "" {
		return history.Entry{}, history.ErrInvalidID
	}

	row := s.db.QueryRowContext(ctx, `SELECT `+columns+` FROM history WHERE id = ?`, id)
	entry, err := scanEntry(row)
	if errors.Is(err, sql.ErrNoRows) {
		return history.Entry{}, history.ErrNotFound
	}
	if err != nil {
		return history.Entry{}, fmt.Errorf("failed to get history entry: %w", err)
	}

	return entry, nil
}

// List retrieves history entries matching the query options, newest first.
func (s *Store) List(ctx context.Context, opts history.QueryOptions) ([]history.Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, history.ErrStoreClosed
	}

	query, args := buildListQuery(opts, false)
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list history entries: %w", err)
	}
	defer rows.Close()

	var entries []history.Entry
	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan history entry: %w", err)
		}
		entries = append(entries, entry)
	}

	return entries, rows.Err()
}

// Count returns the number of entries matching the query options.
func (s *Store) Count(ctx context.Context, opts history.QueryOptions) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return 0, history.ErrStoreClosed
	}

	query, args := buildListQuery(opts, true)
	var count int64
	if err := s.db.QueryRowContext(ctx, query, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count history entries: %w", err)
	}

	return count, nil
}

// Stats returns aggregate statistics for the session.
func (s *Store) Stats(ctx context.Context) (history.Stats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return history.Stats{}, history.ErrStoreClosed
	}

	stats := history.Stats{ToneCounts: make(map[string]int64)}
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*),
			COALESCE(SUM(applied), 0),
			COALESCE(SUM(CASE WHEN failure_kind != '' THEN 1 ELSE 0 END), 0),
			COALESCE(AVG(duration), 0)
		FROM history
	`).Scan(&stats.Total, &stats.Applied, &stats.Failures, &stats.AverageTime)
	if err != nil {
		return stats, fmt.Errorf("failed to get stats: %w", err)
	}
	stats.Discarded = stats.Total - stats.Applied

	rows, err := s.db.QueryContext(ctx, `SELECT tone, COUNT(*) FROM history GROUP BY tone`)
	if err != nil {
		return stats, fmt.Errorf("failed to count tones: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var tone string
		var count int64
		if err := rows.Scan(&tone, &count); err != nil {
			return stats, fmt.Errorf("failed to scan tone count: %w", err)
		}
		stats.ToneCounts[tone] = count
	}

	return stats, rows.Err()
}

// Clear removes all history entries.
func (s *Store) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return history.ErrStoreClosed
	}

	if _, err := s.db.ExecContext(ctx, "DELETE FROM history"); err != nil {
		return fmt.Errorf("failed to clear history: %w", err)
	}
	return nil
}

// Close closes the database. The session history is gone afterwards.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	s.closed = true
	return s.db.Close()
}

func buildListQuery(opts history.QueryOptions, countOnly bool) (string, []any) {
	query := `SELECT ` + columns + ` FROM history WHERE 1=1`
	if countOnly {
		query = "SELECT COUNT(*) FROM history WHERE 1=1"
	}

	var args []any

	if opts.Route != "" {
		query += " AND route = ?"
		args = append(args, opts.Route)
	}

	if opts.Method != "" {
		query += " AND method = ?"
		args = append(args, opts.Method)
	}

	if opts.StatusMin > 0 {
		query += " AND status >= ?"
		args = append(args, opts.StatusMin)
	}

	if opts.StatusMax > 0 {
		query += " AND status <= ?"
		args = append(args, opts.StatusMax)
	}

	if opts.AppliedOnly {
		query += " AND applied = 1"
	}

	if countOnly {
		return query, args
	}

	query += " ORDER BY timestamp DESC, rowid DESC"

	if opts.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, opts.Limit)
	} else if opts.Offset > 0 {
		query += " LIMIT -1"
	}

	if opts.Offset > 0 {
		query += " OFFSET ?"
		args = append(args, opts.Offset)
	}

	return query, args
}

type scanner interface {
	Scan(dest ...any) error
}

func scanEntry(row scanner) (history.Entry, error) {
	var entry history.Entry
	var ts, seq int64
	var requestBody, responseBody, failureKind, failureDetail sql.NullString

	err := row.Scan(
		&entry.ID, &ts, &entry.Route, &entry.Method, &entry.URL, &requestBody, &seq,
		&entry.Status, &entry.Tone, &responseBody, &failureKind, &failureDetail,
		&entry.Duration, &entry.Applied,
	)
	if err != nil {
		return entry, err
	}

	entry.Timestamp = time.Unix(0, ts)
	entry.Seq = uint64(seq)
	entry.RequestBody = requestBody.String
	entry.ResponseBody = responseBody.String
	entry.FailureKind = failureKind.String
	entry.FailureDetail = failureDetail.String

	return entry, nil
}
