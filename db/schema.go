// ABOUTME: Database schema for the local SQLite cache backend
// ABOUTME: A single kv_cache table keyed by cache/session key
package db

import (
	"database/sql"
)

const schema = `
CREATE TABLE IF NOT EXISTS kv_cache (
	key TEXT PRIMARY KEY,
	value TEXT NOT NULL,
	updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_kv_cache_updated_at ON kv_cache(updated_at);
`

func InitSchema(db *sql.DB) error {
	_, err := db.Exec(schema)
	return err
}
