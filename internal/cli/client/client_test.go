package client

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/facilite-dev/facilite/internal/access"
	"github.com/facilite-dev/facilite/internal/cli/session"
)

func newLoggedInClient(t *testing.T, handler http.Handler) (*Client, *session.Session) {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	sess := session.New(&session.MemoryStore{})
	require.NoError(t, sess.Login("token-abc", access.RoleClient))
	return New(server.URL, sess), sess
}

func TestCredentialAttachedToRequests(t *testing.T) {
	var got string
	c, _ := newLoggedInClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Get("Authorization")
		json.NewEncoder(w).Encode(UserDetail{ID: "u1", Name: "Amina"})
	}))

	_, err := c.Me()
	require.NoError(t, err)
	require.Equal(t, "Bearer token-abc", got)
}

func TestRejectedCredentialEndsSession(t *testing.T) {
	c, sess := newLoggedInClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		json.NewEncoder(w).Encode(map[string]string{"error": "Invalid token"})
	}))

	_, err := c.Me()
	require.ErrorIs(t, err, ErrSessionExpired)

	// The session was cleared in the same stroke: credential and role gone
	require.False(t, sess.IsAuthenticated())
	require.Empty(t, sess.Credential())
	require.Empty(t, sess.Role())
}

func TestFailedLoginDoesNotTouchSession(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		json.NewEncoder(w).Encode(map[string]string{"error": "Phone number not recognized"})
	}))
	t.Cleanup(server.Close)

	// Anonymous session: the 401 is an ordinary rejection, not an expiry
	sess := session.New(&session.MemoryStore{})
	c := New(server.URL, sess)

	_, err := c.LoginClient("+243820000001")
	require.Error(t, err)
	require.NotErrorIs(t, err, ErrSessionExpired)
	require.False(t, sess.IsAuthenticated())
}

func TestSuccessfulLoginStoresCredentialAndRole(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(LoginResponse{
			AccessToken: "fresh-token",
			TokenType:   "bearer",
			Role:        access.RoleHotelManager,
		})
	}))
	t.Cleanup(server.Close)

	store := &session.MemoryStore{}
	sess := session.New(store)
	c := New(server.URL, sess)

	resp, err := c.LoginManager("+243820000002", "password123")
	require.NoError(t, err)
	require.Equal(t, access.RoleHotelManager, resp.Role)

	require.True(t, sess.IsAuthenticated())
	require.Equal(t, "fresh-token", sess.Credential())
	require.Equal(t, access.RoleHotelManager, sess.Role())

	credential, role, ok, err := store.Load()
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "fresh-token", credential)
	require.Equal(t, access.RoleHotelManager, role)
}

func TestServerErrorSurfacedWithMessage(t *testing.T) {
	c, sess := newLoggedInClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		json.NewEncoder(w).Encode(map[string]string{"error": "Not your order"})
	}))

	_, err := c.MyOrders()
	require.Error(t, err)
	require.Contains(t, err.Error(), "Not your order")

	// 403 means "logged in but not allowed"; the session survives
	require.True(t, sess.IsAuthenticated())
}

func TestAnonymousRequestCarriesNoCredential(t *testing.T) {
	var got string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Get("Authorization")
		json.NewEncoder(w).Encode([]Hotel{})
	}))
	t.Cleanup(server.Close)

	c := New(server.URL, session.New(&session.MemoryStore{}))
	_, err := c.ListHotels()
	require.NoError(t, err)
	require.Empty(t, got)
}
