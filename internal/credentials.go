package internal

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"gopkg.in/yaml.v3"
)

// credentialFile is the on-disk layout of the credential store
type credentialFile struct {
	Token string   `yaml:"token"`
	User  *Profile `yaml:"user"`
}

// CredentialStore holds the bearer credential and user profile.
// With an empty path it keeps them in memory only.
type CredentialStore struct {
	mu   sync.Mutex
	path string

	// in-memory copy; authoritative when path is empty
	cred    *Credential
	profile *Profile
}

// NewCredentialStore creates a store persisted at path ("" for memory-only)
func NewCredentialStore(path string) *CredentialStore {
	return &CredentialStore{path: path}
}

// Path returns the backing file path, or "" for a memory-only store
func (cs *CredentialStore) Path() string {
	return cs.path
}

// Set stores the credential and profile for subsequent requests
func (cs *CredentialStore) Set(cred Credential, profile Profile) error {
	cs.mu.Lock()
	defer cs.mu.Unlock()

	if cs.path != "" {
		data, err := yaml.Marshal(credentialFile{Token: cred.Token, User: &profile})
		if err != nil {
			return fmt.Errorf("failed to marshal credentials: %w", err)
		}
		if err := os.MkdirAll(filepath.Dir(cs.path), 0700); err != nil {
			return fmt.Errorf("failed to create credential directory: %w", err)
		}
		if err := os.WriteFile(cs.path, data, 0600); err != nil {
			return fmt.Errorf("failed to write credentials: %w", err)
		}
	}

	cs.cred = &cred
	cs.profile = &profile
	return nil
}

// Get returns the stored credential and profile, or ok=false when absent.
// A corrupt store is cleared and reported as absent.
func (cs *CredentialStore) Get() (Credential, Profile, bool) {
	cred, profile, err := cs.load()
	if err != nil {
		return Credential{}, Profile{}, false
	}
	return cred, profile, true
}

// Check reports why no usable credential is available: nil when one is,
// ErrNotAuthenticated when none was stored, or a StorageCorruptionError
// (after clearing the store) when the stored data is unreadable.
func (cs *CredentialStore) Check() error {
	_, _, err := cs.load()
	return err
}

// Token returns the stored bearer token, or "" when absent.
func (cs *CredentialStore) Token() string {
	cred, _, ok := cs.Get()
	if !ok {
		return ""
	}
	return cred.Token
}

func (cs *CredentialStore) load() (Credential, Profile, error) {
	cs.mu.Lock()
	defer cs.mu.Unlock()

	if cs.path == "" {
		if cs.cred == nil || cs.profile == nil {
			return Credential{}, Profile{}, ErrNotAuthenticated
		}
		return *cs.cred, *cs.profile, nil
	}

	data, err := os.ReadFile(cs.path)
	if errors.Is(err, os.ErrNotExist) {
		cs.cred, cs.profile = nil, nil
		return Credential{}, Profile{}, ErrNotAuthenticated
	}
	if err != nil {
		return Credential{}, Profile{}, cs.corrupt(err)
	}

	var file credentialFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return Credential{}, Profile{}, cs.corrupt(err)
	}
	if file.Token == "" && file.User == nil {
		return Credential{}, Profile{}, cs.corrupt(errors.New("empty credential file"))
	}
	if file.Token == "" {
		return Credential{}, Profile{}, cs.corrupt(errors.New("missing token"))
	}
	if file.User == nil {
		return Credential{}, Profile{}, cs.corrupt(errors.New("missing user profile"))
	}

	cs.cred = &Credential{Token: file.Token}
	cs.profile = file.User
	return *cs.cred, *cs.profile, nil
}

// corrupt clears the store and wraps cause; callers hold cs.mu.
func (cs *CredentialStore) corrupt(cause error) error {
	LogWarn("Credential storage unreadable, clearing: %v", cause)
	if err := cs.clearLocked(); err != nil {
		LogWarn("Failed to clear credential storage: %v", err)
	}
	return &StorageCorruptionError{Path: cs.path, Err: cause}
}

// Clear removes the credential and profile. Clearing an empty store is a no-op.
func (cs *CredentialStore) Clear() error {
	cs.mu.Lock()
	defer cs.mu.Unlock()
	return cs.clearLocked()
}

func (cs *CredentialStore) clearLocked() error {
	cs.cred, cs.profile = nil, nil
	if cs.path == "" {
		return nil
	}
	if err := os.Remove(cs.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to remove credentials: %w", err)
	}
	return nil
}
