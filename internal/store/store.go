// Package store provides the namespaced key-value backing store used by the
// local track cache.
//
// The contract is deliberately small: get/set/delete by string key, multi-get,
// multi-delete, and key enumeration by prefix. Single-key operations are
// atomic; no transactions are required.
package store

import (
	"database/sql"
	"fmt"
	"strings"

	"github.com/desertthunder/muse/internal/shared"
)

// Store defines the key-value operations the cache layer depends on.
type Store interface {
	// Get returns the value for key. Absent keys are (nil, false, nil),
	// not an error.
	Get(key string) ([]byte, bool, error)

	// Set writes value under key, replacing any prior value.
	Set(key string, value []byte) error

	// Delete removes the given keys. Missing keys are not an error.
	Delete(keys ...string) error

	// GetMulti returns the values for every present key.
	GetMulti(keys []string) (map[string][]byte, error)

	// Keys enumerates every stored key beginning with prefix.
	Keys(prefix string) ([]string, error)
}

// SQLiteStore implements [Store] over a single kv table.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore wraps an open database connection. Call [SQLiteStore.Init]
// before first use to create the schema.
func NewSQLiteStore(db *sql.DB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

// Close releases the underlying database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// Init creates the kv table if it does not exist.
func (s *SQLiteStore) Init() error {
	query := `
		CREATE TABLE IF NOT EXISTS kv (
			key TEXT PRIMARY KEY,
			value BLOB NOT NULL
		)
	`

	if _, err := s.db.Exec(query); err != nil {
		return fmt.Errorf("failed to create kv table: %w", err)
	}

	return nil
}

// Get returns the value stored under key.
func (s *SQLiteStore) Get(key string) ([]byte, bool, error) {
	var value []byte

	err := s.db.QueryRow(`SELECT value FROM kv WHERE key = ?`, key).Scan(&value)
	if err == sql.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to read key %s: %w", key, err)
	}

	return value, true, nil
}

// Set writes value under key, replacing any prior value.
func (s *SQLiteStore) Set(key string, value []byte) error {
	query := `
		INSERT INTO kv (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value
	`

	if _, err := s.db.Exec(query, key, value); err != nil {
		return fmt.Errorf("failed to write key %s: %w", key, err)
	}

	return nil
}

// Delete removes the given keys. Deleting a missing key is a no-op.
func (s *SQLiteStore) Delete(keys ...string) error {
	if len(keys) == 0 {
		return nil
	}

	query := fmt.Sprintf(`DELETE FROM kv WHERE key IN (%s)`, placeholders(len(keys)))

	if _, err := s.db.Exec(query, args(keys)...); err != nil {
		return fmt.Errorf("failed to delete keys: %w", err)
	}

	return nil
}

// GetMulti returns the values for every present key.
func (s *SQLiteStore) GetMulti(keys []string) (map[string][]byte, error) {
	result := make(map[string][]byte, len(keys))
	if len(keys) == 0 {
		return result, nil
	}

	query := fmt.Sprintf(`SELECT key, value FROM kv WHERE key IN (%s)`, placeholders(len(keys)))

	rows, err := s.db.Query(query, args(keys)...)
	if err != nil {
		return nil, fmt.Errorf("failed to query keys: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var key string
		var value []byte
		if err := rows.Scan(&key, &value); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		result[key] = value
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return result, nil
}

// Keys enumerates every stored key beginning with prefix.
func (s *SQLiteStore) Keys(prefix string) ([]string, error) {
	query := `SELECT key FROM kv WHERE key LIKE ? ESCAPE '\' ORDER BY key`

	rows, err := s.db.Query(query, escapeLike(prefix)+"%")
	if err != nil {
		return nil, fmt.Errorf("failed to enumerate keys: %w", err)
	}
	defer rows.Close()

	var keys []string
	for rows.Next() {
		var key string
		if err := rows.Scan(&key); err != nil {
			return nil, fmt.Errorf("failed to scan key: %w", err)
		}
		keys = append(keys, key)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return keys, nil
}

// Open is a convenience that opens the database at path via
// [shared.NewDatabase], applies pool settings, and initializes the schema.
func Open(path string, maxOpenConns, maxIdleConns int) (*SQLiteStore, error) {
	db, err := shared.NewDatabase(path)
	if err != nil {
		return nil, err
	}

	if maxOpenConns > 0 {
		shared.ConfigureDatabase(db, maxOpenConns, maxIdleConns)
	}

	s := NewSQLiteStore(db)
	if err := s.Init(); err != nil {
		db.Close()
		return nil, err
	}

	return s, nil
}

func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}

func args(keys []string) []any {
	out := make([]any, len(keys))
	for i, k := range keys {
		out[i] = k
	}
	return out
}

// escapeLike escapes LIKE wildcards so prefixes match literally.
func escapeLike(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `%`, `\%`)
	s = strings.ReplaceAll(s, `_`, `\_`)
	return s
}
