// Package session holds the CLI's authentication state: who is logged in,
// with which credential, and as which role. The state lives in memory for the
// duration of a command and is persisted through a Store so it survives
// between invocations.
package session

import (
	"errors"
	"sync"

	"github.com/facilite-dev/facilite/internal/access"
)

// ErrIncompleteLogin is returned when a login supplies a credential without a
// role, or a role without a credential. The two are only ever valid as a pair.
var ErrIncompleteLogin = errors.New("login requires both a credential and a role")

// Session is the single authority over the CLI's login state. Every piece of
// code that needs to know "am I logged in, and as what" asks the session;
// nothing else reads the store directly.
//
// All state transitions go through Login and Logout, so the credential and
// the role can never disagree: they are set together and cleared together.
type Session struct {
	mu         sync.RWMutex
	store      Store
	credential string
	role       access.Role
}

// New returns an empty, unauthenticated session backed by store.
func New(store Store) *Session {
	return &Session{store: store}
}

// Resume returns a session restored from the store. A missing or empty store
// yields an anonymous session, not an error.
func Resume(store Store) (*Session, error) {
	credential, role, ok, err := store.Load()
	if err != nil {
		return nil, err
	}

	s := New(store)
	if ok && credential != "" && role != "" {
		s.credential = credential
		s.role = role
	}
	return s, nil
}

// Login records a successful authentication: the credential and role are
// stored together, in memory and on disk. Both must be non-empty, otherwise
// the session could end up authenticated without a credential or holding a
// credential with no role.
func (s *Session) Login(credential string, role access.Role) error {
	if credential == "" || role == "" {
		return ErrIncompleteLogin
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.store.Save(credential, role); err != nil {
		return err
	}
	s.credential = credential
	s.role = role
	return nil
}

// Logout clears the session in memory and on disk. It is the only way the
// session becomes unauthenticated, whether the user asked to log out or the
// server rejected the credential. Logging out of an anonymous session is a
// no-op.
func (s *Session) Logout() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.store.Clear(); err != nil {
		return err
	}
	s.credential = ""
	s.role = ""
	return nil
}

// IsAuthenticated reports whether a credential is held. The flag is derived
// from the credential rather than tracked separately, so the two cannot drift.
func (s *Session) IsAuthenticated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.credential != ""
}

// Credential returns the held credential, or "" when anonymous.
func (s *Session) Credential() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.credential
}

// Role returns the cached role tag, or "" when anonymous. The value is a
// display hint: the server re-derives the real role from the credential on
// every call.
func (s *Session) Role() access.Role {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.role
}
