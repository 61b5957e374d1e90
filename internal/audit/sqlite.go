package audit

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/msto63/termcore/foundation/term/command"
	"github.com/msto63/termcore/foundation/term/executor"
)

// MemoryPath opens a private in-memory database
const MemoryPath = ":memory:"

// SQLiteSink appends records to a local audit_log table
type SQLiteSink struct {
	db *sql.DB
	mu sync.Mutex
}

// NewSQLiteSink opens or creates the database at path
func NewSQLiteSink(path string) (*SQLiteSink, error) {
	if path == "" {
		path = "./data/audit.db"
	}

	dsn := path
	if path != MemoryPath {
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return nil, fmt.Errorf("failed to create directory: %w", err)
		}
		dsn = path + "?_journal_mode=WAL&_synchronous=NORMAL"
	}

	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// every connection to :memory: is a separate database
	db.SetMaxOpenConns(1)

	s := &SQLiteSink{db: db}
	if err := s.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	return s, nil
}

func (s *SQLiteSink) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS audit_log (
		id TEXT PRIMARY KEY,
		timestamp DATETIME NOT NULL,
		command TEXT NOT NULL,
		output TEXT NOT NULL,
		mode TEXT NOT NULL,
		status TEXT NOT NULL,
		branch TEXT NOT NULL,
		duration_ms INTEGER NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_audit_timestamp ON audit_log(timestamp DESC);
	CREATE INDEX IF NOT EXISTS idx_audit_mode ON audit_log(mode);
	`

	_, err := s.db.Exec(schema)
	return err
}

// Write implements Sink
func (s *SQLiteSink) Write(ctx context.Context, rec Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if rec.ID == "" {
		rec.ID = fmt.Sprintf("%d", time.Now().UnixNano())
	}
	if rec.Timestamp.IsZero() {
		rec.Timestamp = time.Now()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO audit_log (id, timestamp, command, output, mode, status, branch, duration_ms)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, rec.ID, rec.Timestamp.UTC(), rec.Command, rec.Output, rec.Mode,
		string(rec.Status), string(rec.Branch), rec.Duration.Milliseconds())
	if err != nil {
		return fmt.Errorf("failed to insert audit record: %w", err)
	}
	return nil
}

// Recent returns up to limit records, newest first
func (s *SQLiteSink) Recent(ctx context.Context, limit int) ([]Record, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, timestamp, command, output, mode, status, branch, duration_ms
		FROM audit_log
		ORDER BY timestamp DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query audit log: %w", err)
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		var (
			rec        Record
			status     string
			branch     string
			durationMs int64
		)
		if err := rows.Scan(&rec.ID, &rec.Timestamp, &rec.Command, &rec.Output, &rec.Mode,
			&status, &branch, &durationMs); err != nil {
			return nil, fmt.Errorf("failed to scan audit record: %w", err)
		}
		rec.Status = command.Status(status)
		rec.Branch = executor.Branch(branch)
		rec.Duration = time.Duration(durationMs) * time.Millisecond
		records = append(records, rec)
	}
	return records, rows.Err()
}

// Count returns the number of stored records
func (s *SQLiteSink) Count(ctx context.Context) (int64, error) {
	var n int64
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM audit_log").Scan(&n)
	return n, err
}

// Prune removes records older than the given age
func (s *SQLiteSink) Prune(ctx context.Context, olderThan time.Duration) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cutoff := time.Now().Add(-olderThan).UTC()
	result, err := s.db.ExecContext(ctx, "DELETE FROM audit_log WHERE timestamp < ?", cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to prune audit log: %w", err)
	}
	return result.RowsAffected()
}

// Close closes the database
func (s *SQLiteSink) Close() error {
	return s.db.Close()
}
