// ABOUTME: Tests for database schema creation
// ABOUTME: Uses in-memory SQLite for fast isolated tests
package db

import (
	"database/sql"
	"testing"

	_ "github.com/mattn/go-sqlite3"
)

func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()
	database, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		t.Fatalf("Failed to open in-memory db: %v", err)
	}
	// every pooled connection would get its own empty :memory: database
	database.SetMaxOpenConns(1)
	if err := InitSchema(database); err != nil {
		t.Fatalf("InitSchema failed: %v", err)
	}
	return database
}

func TestInitSchema(t *testing.T) {
	db := setupTestDB(t)
	defer func() { _ = db.Close() }()

	var name string
	err := db.QueryRow("SELECT name FROM sqlite_master WHERE type='table' AND name='kv_cache'").Scan(&name)
	if err != nil {
		t.Errorf("Table kv_cache not found: %v", err)
	}

	var indexName string
	err = db.QueryRow("SELECT name FROM sqlite_master WHERE type='index' AND name='idx_kv_cache_updated_at'").Scan(&indexName)
	if err != nil {
		t.Errorf("Index idx_kv_cache_updated_at not found: %v", err)
	}
}

func TestInitSchemaIsIdempotent(t *testing.T) {
	db := setupTestDB(t)
	defer func() { _ = db.Close() }()

	if err := InitSchema(db); err != nil {
		t.Fatalf("second InitSchema failed: %v", err)
	}
}
