package internal

import (
	"context"
	"sync"
)

// Backend is the subset of the assistant API the registry and pipeline use
type Backend interface {
	SendMessage(ctx context.Context, sessionID, text string) (string, error)
	ListSessions(ctx context.Context) ([]Session, error)
	History(ctx context.Context, sessionID string) ([]Message, error)
	DeleteSession(ctx context.Context, sessionID string) error
}

// SessionCache persists the last known session list
type SessionCache interface {
	Load() ([]Session, error)
	Save(sessions []Session) error
}

// Registry owns the session list and the active session pointer.
// The transcript always shows the active session.
type Registry struct {
	backend    Backend
	transcript *Transcript
	cache      SessionCache

	mu       sync.RWMutex
	sessions []Session
	activeID string

	// refreshes may overlap; only the newest completed one is applied
	refreshSeq uint64
	appliedSeq uint64
}

// NewRegistry creates a registry with a fresh, empty active session.
// cache may be nil.
func NewRegistry(backend Backend, transcript *Transcript, cache SessionCache) *Registry {
	r := &Registry{
		backend:    backend,
		transcript: transcript,
		cache:      cache,
	}
	r.CreateNew()
	return r
}

// Transcript returns the transcript of the active session
func (r *Registry) Transcript() *Transcript {
	return r.transcript
}

// Sessions returns a copy of the known sessions in backend order
func (r *Registry) Sessions() []Session {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]Session(nil), r.sessions...)
}

// ActiveID returns the identifier of the active session
func (r *Registry) ActiveID() string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.activeID
}

// Lookup finds a known session by identifier
func (r *Registry) Lookup(id string) (Session, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, s := range r.sessions {
		if s.ID == id {
			return s, true
		}
	}
	return Session{}, false
}

// RestoreCached seeds the list from the cache when no refresh has completed yet
func (r *Registry) RestoreCached() bool {
	if r.cache == nil {
		return false
	}
	sessions, err := r.cache.Load()
	if err != nil {
		LogWarn("Failed to read session cache: %v", err)
		return false
	}
	if sessions == nil {
		return false
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.appliedSeq != 0 {
		return false
	}
	r.sessions = sessions
	LogDebug("Restored %d cached sessions", len(sessions))
	return true
}

// Refresh replaces the session list with the backend's. On failure the
// list is left untouched.
func (r *Registry) Refresh(ctx context.Context) error {
	r.mu.Lock()
	r.refreshSeq++
	seq := r.refreshSeq
	r.mu.Unlock()

	sessions, err := r.backend.ListSessions(ctx)
	if err != nil {
		return err
	}

	r.mu.Lock()
	if seq < r.appliedSeq {
		r.mu.Unlock()
		LogDebug("Dropping stale session list")
		return nil
	}
	r.appliedSeq = seq
	r.sessions = sessions
	r.mu.Unlock()

	if r.cache != nil {
		if err := r.cache.Save(sessions); err != nil {
			LogWarn("Failed to update session cache: %v", err)
		}
	}
	return nil
}

// CreateNew makes a fresh session active with an empty transcript. The
// backend learns about it with the first message.
func (r *Registry) CreateNew() string {
	id := NewSessionID()
	r.mu.Lock()
	defer r.mu.Unlock()
	r.activeID = id
	r.transcript.Replace(id, nil)
	LogDebug("Started new session %s", id)
	return id
}

// Load fetches a session's history and makes it active. On failure neither
// the transcript nor the active session changes.
func (r *Registry) Load(ctx context.Context, id string) error {
	if id == "" {
		return &ValidationError{Field: "session_id", Err: ErrEmptySessionID}
	}
	messages, err := r.backend.History(ctx, id)
	if err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.activeID = id
	r.transcript.Replace(id, messages)
	LogDebug("Loaded session %s with %d messages", id, len(messages))
	return nil
}

// Delete removes a session from the backend and refreshes the list. Deleting
// the active session starts a new one. A session the backend no longer knows
// counts as deleted.
func (r *Registry) Delete(ctx context.Context, id string) error {
	if id == "" {
		return &ValidationError{Field: "session_id", Err: ErrEmptySessionID}
	}
	if err := r.backend.DeleteSession(ctx, id); err != nil {
		return err
	}

	r.mu.Lock()
	kept := make([]Session, 0, len(r.sessions))
	for _, s := range r.sessions {
		if s.ID != id {
			kept = append(kept, s)
		}
	}
	r.sessions = kept
	wasActive := r.activeID == id
	r.mu.Unlock()

	if wasActive {
		r.CreateNew()
	}

	if err := r.Refresh(ctx); err != nil {
		if IsAuthFailure(err) {
			return err
		}
		LogWarn("Session list refresh after delete failed: %v", err)
	}
	return nil
}
