package session

import (
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/facilite-dev/facilite/internal/access"
)

func TestLoginSetsCredentialAndRoleTogether(t *testing.T) {
	store := &MemoryStore{}
	s := New(store)

	require.False(t, s.IsAuthenticated())
	require.Empty(t, s.Credential())
	require.Empty(t, s.Role())

	require.NoError(t, s.Login("token-abc", access.RoleClient))

	require.True(t, s.IsAuthenticated())
	require.Equal(t, "token-abc", s.Credential())
	require.Equal(t, access.RoleClient, s.Role())

	// The store saw the same pair
	credential, role, ok, err := store.Load()
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "token-abc", credential)
	require.Equal(t, access.RoleClient, role)
}

func TestLoginRejectsHalfAPair(t *testing.T) {
	store := &MemoryStore{}
	s := New(store)

	// A role without a credential would authenticate a session that cannot
	// sign requests; a credential without a role has no place to land.
	require.ErrorIs(t, s.Login("", access.RoleAdmin), ErrIncompleteLogin)
	require.ErrorIs(t, s.Login("token-abc", ""), ErrIncompleteLogin)

	require.False(t, s.IsAuthenticated())
	require.Empty(t, s.Credential())
	require.Empty(t, s.Role())

	_, _, ok, err := store.Load()
	require.NoError(t, err)
	require.False(t, ok)
}

func TestLogoutClearsEverything(t *testing.T) {
	store := &MemoryStore{}
	s := New(store)
	require.NoError(t, s.Login("token-abc", access.RoleAdmin))

	require.NoError(t, s.Logout())

	require.False(t, s.IsAuthenticated())
	require.Empty(t, s.Credential())
	require.Empty(t, s.Role())

	_, _, ok, err := store.Load()
	require.NoError(t, err)
	require.False(t, ok)
}

func TestLogoutWhenAnonymousIsNoop(t *testing.T) {
	s := New(&MemoryStore{})
	require.NoError(t, s.Logout())
	require.False(t, s.IsAuthenticated())
}

func TestResumeRestoresPersistedSession(t *testing.T) {
	store := &MemoryStore{}
	first := New(store)
	require.NoError(t, first.Login("token-abc", access.RoleHotelManager))

	// A later invocation picks up where the first left off
	second, err := Resume(store)
	require.NoError(t, err)
	require.True(t, second.IsAuthenticated())
	require.Equal(t, "token-abc", second.Credential())
	require.Equal(t, access.RoleHotelManager, second.Role())
}

func TestResumeEmptyStoreIsAnonymous(t *testing.T) {
	s, err := Resume(&MemoryStore{})
	require.NoError(t, err)
	require.False(t, s.IsAuthenticated())
}

func TestFileStoreRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")
	store := NewFileStoreAt(path)

	_, _, ok, err := store.Load()
	require.NoError(t, err)
	require.False(t, ok)

	require.NoError(t, store.Save("token-abc", access.RoleClient))

	credential, role, ok, err := store.Load()
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "token-abc", credential)
	require.Equal(t, access.RoleClient, role)

	// The session file is not world-readable
	info, err := os.Stat(path)
	require.NoError(t, err)
	require.Equal(t, os.FileMode(0600), info.Mode().Perm())

	require.NoError(t, store.Clear())
	_, _, ok, err = store.Load()
	require.NoError(t, err)
	require.False(t, ok)

	// Clearing twice is fine
	require.NoError(t, store.Clear())
}

func TestFileStoreIgnoresTornSession(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{"empty credential", `{"credential":"","role":"client"}`},
		{"empty role", `{"credential":"token-abc","role":""}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "session.json")
			require.NoError(t, os.WriteFile(path, []byte(tt.doc), 0600))

			_, _, ok, err := NewFileStoreAt(path).Load()
			require.NoError(t, err)
			require.False(t, ok)
		})
	}
}

func TestResumeIgnoresRolelessStoredSession(t *testing.T) {
	// A store that hands back a credential without a role (a hand-edited file,
	// an older format) must hydrate to an anonymous session.
	store := &MemoryStore{}
	require.NoError(t, store.Save("token-abc", ""))

	s, err := Resume(store)
	require.NoError(t, err)
	require.False(t, s.IsAuthenticated())
	require.Empty(t, s.Credential())
	require.Empty(t, s.Role())
}

func TestConcurrentReadsDuringLogout(t *testing.T) {
	s := New(&MemoryStore{})
	require.NoError(t, s.Login("token-abc", access.RoleClient))

	// Readers racing a logout must see either the full session or none of it,
	// never a credential without its role
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				if s.IsAuthenticated() {
					_ = s.Credential()
					_ = s.Role()
				}
			}
		}()
	}
	require.NoError(t, s.Logout())
	wg.Wait()

	require.False(t, s.IsAuthenticated())
	require.Empty(t, s.Credential())
}
