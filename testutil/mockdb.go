package testutil

import (
	"database/sql"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	_ "modernc.org/sqlite"
)

const cacheTableSQL = `
CREATE TABLE IF NOT EXISTS cacheKV (
	key TEXT PRIMARY KEY,
	value TEXT NOT NULL,
	updated_at INTEGER NOT NULL
)`

// CreateInMemoryDB creates an in-memory SQLite database with the cache schema
func CreateInMemoryDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("Failed to create in-memory database: %v", err)
	}
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })

	if _, err := db.Exec(cacheTableSQL); err != nil {
		t.Fatalf("Failed to create cacheKV table: %v", err)
	}
	return db
}

// InsertCacheEntry inserts a raw cacheKV row
func InsertCacheEntry(t *testing.T, db *sql.DB, key, value string) {
	t.Helper()
	if _, err := db.Exec("INSERT INTO cacheKV (key, value, updated_at) VALUES (?, ?, ?)", key, value, time.Now().UnixMilli()); err != nil {
		t.Fatalf("Failed to insert cache entry: %v", err)
	}
}

// CreateCacheFixture writes a cache database at dbPath holding sessions
// cached for apiURL and email.
func CreateCacheFixture(t *testing.T, dbPath, apiURL, email string, sessions []FakeSession) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		t.Fatalf("Failed to create fixture directory: %v", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		t.Fatalf("Failed to open database: %v", err)
	}
	defer func() { _ = db.Close() }()

	if _, err := db.Exec(cacheTableSQL); err != nil {
		t.Fatalf("Failed to create table: %v", err)
	}

	index := map[string]any{
		"sessions": sessions,
		"metadata": map[string]any{
			"api_url":       apiURL,
			"user_email":    email,
			"cache_version": "1",
			"updated_at":    time.Now().UTC(),
		},
	}
	data, err := json.Marshal(index)
	if err != nil {
		t.Fatalf("Failed to marshal index: %v", err)
	}
	InsertCacheEntry(t, db, "sessions:index", string(data))
}
