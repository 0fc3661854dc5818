package session

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/facilite-dev/facilite/internal/access"
)

const (
	sessionDirName  = "facilite"
	sessionFileName = "session.json"
)

// Store persists session credentials between CLI invocations.
// The interface allows swapping the on-disk store for an in-memory one in
// tests.
type Store interface {
	// Save writes the credential and role together; a partially written
	// session must never be observable.
	Save(credential string, role access.Role) error
	// Load returns the persisted credential and role, or ok=false when no
	// session is stored.
	Load() (credential string, role access.Role, ok bool, err error)
	// Clear removes the persisted session. Clearing an empty store is not an
	// error.
	Clear() error
}

// sessionFile is the JSON document stored at ~/.config/facilite/session.json
type sessionFile struct {
	Credential string      `json:"credential"`
	Role       access.Role `json:"role"`
}

// fileStore implements Store on a JSON file under the user's config directory
type fileStore struct {
	path string
}

// NewFileStore returns the default on-disk store.
func NewFileStore() (Store, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("failed to get user home directory: %w", err)
	}
	return &fileStore{
		path: filepath.Join(homeDir, ".config", sessionDirName, sessionFileName),
	}, nil
}

// NewFileStoreAt returns an on-disk store rooted at an explicit path.
func NewFileStoreAt(path string) Store {
	return &fileStore{path: path}
}

func (f *fileStore) Save(credential string, role access.Role) error {
	if err := os.MkdirAll(filepath.Dir(f.path), 0755); err != nil {
		return fmt.Errorf("failed to create session directory: %w", err)
	}

	data, err := json.MarshalIndent(sessionFile{Credential: credential, Role: role}, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}

	// Write-then-rename so a crash mid-write cannot leave a torn session
	tmp := f.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0600); err != nil {
		return fmt.Errorf("failed to write session file: %w", err)
	}
	if err := os.Rename(tmp, f.path); err != nil {
		return fmt.Errorf("failed to replace session file: %w", err)
	}
	return nil
}

func (f *fileStore) Load() (string, access.Role, bool, error) {
	data, err := os.ReadFile(f.path)
	if os.IsNotExist(err) {
		return "", "", false, nil
	}
	if err != nil {
		return "", "", false, fmt.Errorf("failed to read session file: %w", err)
	}

	var doc sessionFile
	if err := json.Unmarshal(data, &doc); err != nil {
		return "", "", false, fmt.Errorf("failed to parse session file: %w", err)
	}
	// A credential without a role (or vice versa) is a torn session; treat it
	// as no session rather than hydrating half a login.
	if doc.Credential == "" || doc.Role == "" {
		return "", "", false, nil
	}
	return doc.Credential, doc.Role, true, nil
}

func (f *fileStore) Clear() error {
	if err := os.Remove(f.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove session file: %w", err)
	}
	return nil
}

// MemoryStore is an in-memory Store for tests.
type MemoryStore struct {
	credential string
	role       access.Role
	stored     bool
}

func (m *MemoryStore) Save(credential string, role access.Role) error {
	m.credential = credential
	m.role = role
	m.stored = true
	return nil
}

func (m *MemoryStore) Load() (string, access.Role, bool, error) {
	if !m.stored {
		return "", "", false, nil
	}
	return m.credential, m.role, true, nil
}

func (m *MemoryStore) Clear() error {
	m.credential = ""
	m.role = ""
	m.stored = false
	return nil
}
