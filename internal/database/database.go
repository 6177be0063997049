package database

import (
	"database/sql"
	"encoding/json"
	"fmt"

	_ "github.com/lib/pq"

	"github.com/elisartix/herder/internal/logger"
)

// Store is the namespaced key-value contract every module persists through.
// Values are opaque strings; JSON helpers are layered on top.
type Store interface {
	Get(namespace, key, fallback string) (string, error)
	Set(namespace, key, value string) error
	Delete(namespace, key string) error
	Close() error
}

type DB struct {
	conn *sql.DB
}

// NewDB creates a new database-backed store
func NewDB(dsn string) (*DB, error) {
	if dsn == "" {
		return nil, nil // No database configured
	}

	conn, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database connection: %w", err)
	}

	if err := conn.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	db := &DB{conn: conn}

	if err := db.initTables(); err != nil {
		return nil, fmt.Errorf("failed to initialize tables: %w", err)
	}

	logger.InfoMsg("Database connection established successfully")
	return db, nil
}

// Close closes the database connection
func (db *DB) Close() error {
	if db.conn != nil {
		return db.conn.Close()
	}
	return nil
}

func (db *DB) initTables() error {
	query := `
	CREATE TABLE IF NOT EXISTS kv_store (
		id SERIAL PRIMARY KEY,
		namespace VARCHAR(64) NOT NULL,
		key VARCHAR(255) NOT NULL,
		value TEXT NOT NULL DEFAULT '',
		updated_at TIMESTAMP WITH TIME ZONE DEFAULT NOW(),
		UNIQUE (namespace, key)
	);

	CREATE INDEX IF NOT EXISTS idx_kv_store_namespace_key ON kv_store(namespace, key);
	`

	if _, err := db.conn.Exec(query); err != nil {
		return fmt.Errorf("failed to create tables: %w", err)
	}

	return nil
}

// Get returns the stored value or fallback when the key is absent
func (db *DB) Get(namespace, key, fallback string) (string, error) {
	var value string
	err := db.conn.QueryRow(
		`SELECT value FROM kv_store WHERE namespace = $1 AND key = $2`,
		namespace, key,
	).Scan(&value)
	if err == sql.ErrNoRows {
		return fallback, nil
	}
	if err != nil {
		return fallback, fmt.Errorf("failed to get %s/%s: %w", namespace, key, err)
	}
	return value, nil
}

// Set stores the value, replacing any previous one
func (db *DB) Set(namespace, key, value string) error {
	_, err := db.conn.Exec(
		`INSERT INTO kv_store (namespace, key, value, updated_at)
		 VALUES ($1, $2, $3, NOW())
		 ON CONFLICT (namespace, key)
		 DO UPDATE SET value = EXCLUDED.value, updated_at = NOW()`,
		namespace, key, value,
	)
	if err != nil {
		return fmt.Errorf("failed to set %s/%s: %w", namespace, key, err)
	}
	return nil
}

// Delete removes the key; deleting an absent key is not an error
func (db *DB) Delete(namespace, key string) error {
	_, err := db.conn.Exec(
		`DELETE FROM kv_store WHERE namespace = $1 AND key = $2`,
		namespace, key,
	)
	if err != nil {
		return fmt.Errorf("failed to delete %s/%s: %w", namespace, key, err)
	}
	return nil
}

// GetJSON unmarshals the stored value into v; returns false when absent
func GetJSON(s Store, namespace, key string, v interface{}) (bool, error) {
	raw, err := s.Get(namespace, key, "")
	if err != nil {
		return false, err
	}
	if raw == "" {
		return false, nil
	}
	if err := json.Unmarshal([]byte(raw), v); err != nil {
		return false, fmt.Errorf("failed to decode %s/%s: %w", namespace, key, err)
	}
	return true, nil
}

// SetJSON marshals v and stores it
func SetJSON(s Store, namespace, key string, v interface{}) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to encode %s/%s: %w", namespace, key, err)
	}
	return s.Set(namespace, key, string(raw))
}
