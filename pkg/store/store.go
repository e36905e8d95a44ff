package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/goforwind/jacoco/pkg/data"

	_ "modernc.org/sqlite"
)

const schemaVersion = 2

// Store persists sessions and execution data between import and render runs
type Store struct {
	db *sql.DB
}

// Open opens (creating if needed) the database at path for reading and writing.
// The default rollback journal is kept so OpenReadOnly needs no -wal/-shm files.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path+"?_pragma=busy_timeout(5000)&_pragma=foreign_keys(ON)")
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := createSchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}
	return &Store{db: db}, nil
}

// OpenReadOnly opens an existing database without write access
func OpenReadOnly(path string) (*Store, error) {
	// mode=ro is only honoured for file: URIs
	db, err := sql.Open("sqlite", "file:"+path+"?mode=ro&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("open database: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the database
func (s *Store) Close() error {
	return s.db.Close()
}

func createSchema(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_version (version INTEGER NOT NULL);

		CREATE TABLE IF NOT EXISTS sessions (
			seq         INTEGER PRIMARY KEY AUTOINCREMENT,
			session_id  TEXT NOT NULL,
			start_ms    INTEGER NOT NULL DEFAULT 0,
			dump_ms     INTEGER NOT NULL DEFAULT 0,
			source      TEXT NOT NULL DEFAULT ''
		);

		CREATE TABLE IF NOT EXISTS execution_data (
			seq         INTEGER PRIMARY KEY AUTOINCREMENT,
			class_name  TEXT NOT NULL,
			class_id    INTEGER NOT NULL,
			source      TEXT NOT NULL DEFAULT ''
		);

		CREATE INDEX IF NOT EXISTS idx_execution_data_class_name ON execution_data(class_name);
	`)
	if err != nil {
		return err
	}

	var count int
	if err := db.QueryRow("SELECT COUNT(*) FROM schema_version").Scan(&count); err != nil {
		return err
	}
	if count == 0 {
		_, err = db.Exec("INSERT INTO schema_version (version) VALUES (?)", schemaVersion)
		return err
	}

	var currentVersion int
	if err := db.QueryRow("SELECT version FROM schema_version").Scan(&currentVersion); err != nil {
		return err
	}
	if currentVersion < 2 {
		// v1 → v2: record which import produced each row
		for _, table := range []string{"sessions", "execution_data"} {
			_, alterErr := db.Exec(fmt.Sprintf("ALTER TABLE %s ADD COLUMN source TEXT NOT NULL DEFAULT ''", table))
			if alterErr != nil && !strings.Contains(alterErr.Error(), "duplicate column") {
				return fmt.Errorf("migrate v1→v2 (%s): %w", table, alterErr)
			}
		}
	}
	if currentVersion < schemaVersion {
		if _, err := db.Exec("UPDATE schema_version SET version = ?", schemaVersion); err != nil {
			return err
		}
	}

	return nil
}

// AddSessions appends sessions, keeping their order
func (s *Store) AddSessions(ctx context.Context, source string, sessions []data.SessionInfo) error {
	return s.inTx(ctx, func(tx *sql.Tx) error {
		stmt, err := tx.PrepareContext(ctx, "INSERT INTO sessions (session_id, start_ms, dump_ms, source) VALUES (?, ?, ?, ?)")
		if err != nil {
			return err
		}
		defer stmt.Close()

		for _, si := range sessions {
			if _, err := stmt.ExecContext(ctx, si.ID, si.StartTimeStamp, si.DumpTimeStamp, source); err != nil {
				return fmt.Errorf("insert session %s: %w", si.ID, err)
			}
		}
		return nil
	})
}

// AddExecutionData appends execution records; duplicates are kept
func (s *Store) AddExecutionData(ctx context.Context, source string, records []data.ExecutionData) error {
	return s.inTx(ctx, func(tx *sql.Tx) error {
		stmt, err := tx.PrepareContext(ctx, "INSERT INTO execution_data (class_name, class_id, source) VALUES (?, ?, ?)")
		if err != nil {
			return err
		}
		defer stmt.Close()

		for _, e := range records {
			if _, err := stmt.ExecContext(ctx, e.Name, e.ID, source); err != nil {
				return fmt.Errorf("insert execution data %s: %w", e.Name, err)
			}
		}
		return nil
	})
}

// Sessions returns all sessions in insertion order
func (s *Store) Sessions(ctx context.Context) ([]data.SessionInfo, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT session_id, start_ms, dump_ms FROM sessions ORDER BY seq")
	if err != nil {
		return nil, fmt.Errorf("query sessions: %w", err)
	}
	defer rows.Close()

	var sessions []data.SessionInfo
	for rows.Next() {
		var si data.SessionInfo
		if err := rows.Scan(&si.ID, &si.StartTimeStamp, &si.DumpTimeStamp); err != nil {
			return nil, fmt.Errorf("scan session: %w", err)
		}
		sessions = append(sessions, si)
	}
	return sessions, rows.Err()
}

// ExecutionData returns all execution records in insertion order
func (s *Store) ExecutionData(ctx context.Context) ([]data.ExecutionData, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT class_name, class_id FROM execution_data ORDER BY seq")
	if err != nil {
		return nil, fmt.Errorf("query execution data: %w", err)
	}
	defer rows.Close()

	var records []data.ExecutionData
	for rows.Next() {
		var e data.ExecutionData
		if err := rows.Scan(&e.Name, &e.ID); err != nil {
			return nil, fmt.Errorf("scan execution data: %w", err)
		}
		records = append(records, e)
	}
	return records, rows.Err()
}

// Counts returns the number of stored sessions and execution records
func (s *Store) Counts(ctx context.Context) (sessions, records int, err error) {
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM sessions").Scan(&sessions); err != nil {
		return 0, 0, fmt.Errorf("count sessions: %w", err)
	}
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM execution_data").Scan(&records); err != nil {
		return 0, 0, fmt.Errorf("count execution data: %w", err)
	}
	return sessions, records, nil
}

// Reset removes all sessions and execution records
func (s *Store) Reset(ctx context.Context) error {
	return s.inTx(ctx, func(tx *sql.Tx) error {
		for _, table := range []string{"sessions", "execution_data"} {
			if _, err := tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
				return fmt.Errorf("clear %s: %w", table, err)
			}
		}
		return nil
	})
}

func (s *Store) inTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	if err := fn(tx); err != nil {
		tx.Rollback()
		return err
	}
	return tx.Commit()
}
