// Package history persists applied-correction audit entries in a SQLite
// database so corrections can be reviewed after the fact.
package history

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/LinkesAuge/chestbuddy/pkg/types"
)

const schemaSQL = `CREATE TABLE IF NOT EXISTS correction_history (
    entry_id TEXT PRIMARY KEY,
    strategy TEXT NOT NULL,
    column_name TEXT,
    rows TEXT,
    args TEXT,
    applied_at INTEGER NOT NULL
);`

// Store is the SQLite-backed correction-history log. It implements the
// correction engine's Recorder interface.
type Store struct {
	db *sql.DB
}

// Open creates the data directory if needed, opens (or creates) the
// history database inside it, and ensures the schema exists.
func Open(dataDir string) (*Store, error) {
	if dataDir == "" {
		dataDir = "."
	}
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating data dir: %w", err)
	}

	dbPath := filepath.Join(dataDir, "chestbuddy.db")
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening history database: %w", err)
	}
	if _, err := db.Exec(schemaSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("initializing history schema: %w", err)
	}
	return &Store{db: db}, nil
}

// Close releases the database handle. Idempotent.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	return err
}

// Record appends one history entry.
func (s *Store) Record(entry types.HistoryEntry) error {
	rowsJSON, err := json.Marshal(entry.Rows)
	if err != nil {
		return fmt.Errorf("marshaling history rows: %w", err)
	}
	argsJSON, err := json.Marshal(entry.Args)
	if err != nil {
		return fmt.Errorf("marshaling history args: %w", err)
	}
	_, err = s.db.Exec(
		"INSERT INTO correction_history (entry_id, strategy, column_name, rows, args, applied_at) VALUES (?, ?, ?, ?, ?, ?)",
		entry.ID, entry.Strategy, entry.Column,
		string(rowsJSON), string(argsJSON),
		entry.AppliedAt.UnixNano(),
	)
	if err != nil {
		return fmt.Errorf("inserting history entry: %w", err)
	}
	return nil
}

// List returns history entries newest-first, at most limit of them.
// A non-positive limit returns everything.
func (s *Store) List(limit int) ([]types.HistoryEntry, error) {
	query := "SELECT entry_id, strategy, column_name, rows, args, applied_at FROM correction_history ORDER BY applied_at DESC"
	var queryArgs []any
	if limit > 0 {
		query += " LIMIT ?"
		queryArgs = append(queryArgs, limit)
	}

	rows, err := s.db.Query(query, queryArgs...)
	if err != nil {
		return nil, fmt.Errorf("querying history: %w", err)
	}
	defer rows.Close()

	var entries []types.HistoryEntry
	for rows.Next() {
		var entry types.HistoryEntry
		var rowsJSON, argsJSON string
		var appliedAt int64
		if err := rows.Scan(&entry.ID, &entry.Strategy, &entry.Column, &rowsJSON, &argsJSON, &appliedAt); err != nil {
			return nil, fmt.Errorf("scanning history entry: %w", err)
		}
		if err := json.Unmarshal([]byte(rowsJSON), &entry.Rows); err != nil {
			return nil, fmt.Errorf("parsing history rows: %w", err)
		}
		if err := json.Unmarshal([]byte(argsJSON), &entry.Args); err != nil {
			return nil, fmt.Errorf("parsing history args: %w", err)
		}
		entry.AppliedAt = time.Unix(0, appliedAt).UTC()
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating history: %w", err)
	}
	return entries, nil
}
