package internal

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

const (
	cacheVersion    = "1"
	sessionIndexKey = "sessions:index"
)

// CacheManager keeps the last fetched session list in a SQLite database.
// Only session identifiers and titles are stored, never message content.
type CacheManager struct {
	mu   sync.Mutex
	db   *sql.DB
	path string
}

// CacheMetadata identifies which backend and user a cached list belongs to
type CacheMetadata struct {
	APIURL       string    `json:"api_url"`
	UserEmail    string    `json:"user_email"`
	CacheVersion string    `json:"cache_version"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// SessionIndex is the cached session list
type SessionIndex struct {
	Sessions []Session     `json:"sessions"`
	Metadata CacheMetadata `json:"metadata"`
}

// NewCacheManager opens (or creates) the cache database at path
func NewCacheManager(path string) (*CacheManager, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
			return nil, &CacheError{Op: "open", Path: path, Err: err}
		}
	}
	db, err := OpenDatabase(path)
	if err != nil {
		return nil, &CacheError{Op: "open", Path: path, Err: err}
	}
	return &CacheManager{db: db, path: path}, nil
}

// Path returns the database path
func (cm *CacheManager) Path() string {
	return cm.path
}

// Close releases the database
func (cm *CacheManager) Close() error {
	return cm.db.Close()
}

// LoadIndex loads the cached index, or nil when nothing is cached
func (cm *CacheManager) LoadIndex() (*SessionIndex, error) {
	cm.mu.Lock()
	defer cm.mu.Unlock()

	pairs, err := QueryCacheKV(cm.db, sessionIndexKey)
	if err != nil {
		return nil, &CacheError{Op: "load", Path: cm.path, Err: err}
	}
	if len(pairs) == 0 {
		return nil, nil
	}

	var index SessionIndex
	if err := json.Unmarshal([]byte(pairs[0].Value), &index); err != nil {
		return nil, &CacheError{Op: "load", Path: cm.path, Err: fmt.Errorf("failed to unmarshal index: %w", err)}
	}
	return &index, nil
}

// IsCacheValid reports whether the cached list belongs to apiURL and email
func (cm *CacheManager) IsCacheValid(apiURL, email string) (bool, error) {
	index, err := cm.LoadIndex()
	if err != nil {
		return false, err
	}
	if index == nil {
		return false, nil
	}
	return index.Metadata.matches(apiURL, email), nil
}

func (m CacheMetadata) matches(apiURL, email string) bool {
	return m.CacheVersion == cacheVersion && m.APIURL == apiURL && m.UserEmail == email
}

// SaveSessions replaces the cached list
func (cm *CacheManager) SaveSessions(apiURL, email string, sessions []Session) error {
	index := SessionIndex{
		Sessions: append([]Session{}, sessions...),
		Metadata: CacheMetadata{
			APIURL:       apiURL,
			UserEmail:    email,
			CacheVersion: cacheVersion,
			UpdatedAt:    time.Now().UTC(),
		},
	}
	data, err := json.Marshal(index)
	if err != nil {
		return &CacheError{Op: "save", Path: cm.path, Err: fmt.Errorf("failed to marshal index: %w", err)}
	}

	cm.mu.Lock()
	defer cm.mu.Unlock()
	if err := PutCacheKV(cm.db, sessionIndexKey, string(data), index.Metadata.UpdatedAt.UnixMilli()); err != nil {
		return &CacheError{Op: "save", Path: cm.path, Err: err}
	}
	return nil
}

// LoadSessions returns the cached list when it is valid for apiURL and email
func (cm *CacheManager) LoadSessions(apiURL, email string) ([]Session, bool, error) {
	index, err := cm.LoadIndex()
	if err != nil || index == nil {
		return nil, false, err
	}
	if !index.Metadata.matches(apiURL, email) {
		LogDebug("Ignoring session cache for a different backend or user")
		return nil, false, nil
	}
	return index.Sessions, true, nil
}

// ClearCache removes every cached entry
func (cm *CacheManager) ClearCache() error {
	cm.mu.Lock()
	defer cm.mu.Unlock()
	n, err := DeleteCacheKV(cm.db, "%")
	if err != nil {
		return &CacheError{Op: "clear", Path: cm.path, Err: err}
	}
	LogDebug("Cleared %d cache entries", n)
	return nil
}

// Scope binds the cache to one backend and user for use by a Registry
func (cm *CacheManager) Scope(apiURL, email string) *SessionListCache {
	return &SessionListCache{cm: cm, apiURL: apiURL, email: email}
}

// SessionListCache is a CacheManager bound to one backend and user
type SessionListCache struct {
	cm     *CacheManager
	apiURL string
	email  string
}

// Load returns the cached list, or nil when none is valid
func (c *SessionListCache) Load() ([]Session, error) {
	sessions, ok, err := c.cm.LoadSessions(c.apiURL, c.email)
	if err != nil || !ok {
		return nil, err
	}
	return sessions, nil
}

// Save replaces the cached list
func (c *SessionListCache) Save(sessions []Session) error {
	return c.cm.SaveSessions(c.apiURL, c.email, sessions)
}
