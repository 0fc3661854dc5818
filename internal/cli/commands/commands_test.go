package commands

import (
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/facilite-dev/facilite/internal/access"
	"github.com/facilite-dev/facilite/internal/cli/client"
	"github.com/facilite-dev/facilite/internal/cli/session"
)

func loggedInSession(t *testing.T, role access.Role) *session.Session {
	t.Helper()
	sess := session.New(&session.MemoryStore{})
	require.NoError(t, sess.Login("token-abc", role))
	return sess
}

func TestGuardRouteGrantsAuthenticated(t *testing.T) {
	sess := loggedInSession(t, access.RoleClient)
	require.NoError(t, guardRoute(sess, access.RouteDashboard))
}

func TestGuardRouteAnonymousPointsAtLogin(t *testing.T) {
	sess := session.New(&session.MemoryStore{})

	err := guardRoute(sess, access.RouteDashboard)
	require.Error(t, err)
	require.Contains(t, err.Error(), "facilite login")

	// Role-restricted screens give the same answer: login first, the role
	// never enters into it
	err = guardRoute(sess, access.RouteDashboardAdmin)
	require.Error(t, err)
	require.Contains(t, err.Error(), "facilite login")
}

func TestGuardRouteWrongRolePointsAtDashboard(t *testing.T) {
	sess := loggedInSession(t, access.RoleClient)

	err := guardRoute(sess, access.RouteDashboardAdmin)
	require.Error(t, err)
	require.Contains(t, err.Error(), access.RouteDashboard)
	require.Contains(t, err.Error(), "client")
}

func TestParseOrderItems(t *testing.T) {
	lines, err := parseOrderItems([]string{"menu-1", "menu-2x3"})
	require.NoError(t, err)
	require.Equal(t, []client.OrderItem{
		{MenuID: "menu-1", Quantity: 1},
		{MenuID: "menu-2", Quantity: 3},
	}, lines)
}

func TestParseOrderItemsRejectsZeroQuantity(t *testing.T) {
	_, err := parseOrderItems([]string{"menu-1x0"})
	require.Error(t, err)
}

func TestPaySubmitterRefusesConcurrentSubmission(t *testing.T) {
	var submitter paySubmitter

	started := make(chan struct{})
	release := make(chan struct{})

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		_, err := submitter.Submit(func() (*client.Payment, error) {
			close(started)
			<-release
			return &client.Payment{ID: "p1"}, nil
		})
		require.NoError(t, err)
	}()

	<-started

	// While the first submission is in flight, a second is refused outright
	_, err := submitter.Submit(func() (*client.Payment, error) {
		t.Fatal("second submission must not run")
		return nil, nil
	})
	require.ErrorIs(t, err, errPaymentInFlight)

	close(release)
	wg.Wait()

	// Once the first completes the latch opens again
	payment, err := submitter.Submit(func() (*client.Payment, error) {
		return &client.Payment{ID: "p2"}, nil
	})
	require.NoError(t, err)
	require.Equal(t, "p2", payment.ID)
}

func TestPayCommandSharesSubmissionLatch(t *testing.T) {
	// The pay command must contend on the process-wide latch, not a latch of
	// its own. With the shared latch occupied, the command is refused before
	// it ever reaches the network.
	home := t.TempDir()
	t.Setenv("HOME", home)

	store := session.NewFileStoreAt(filepath.Join(home, ".config", "facilite", "session.json"))
	require.NoError(t, store.Save("token-abc", access.RoleClient))

	require.True(t, paymentSubmission.inFlight.CompareAndSwap(false, true))
	defer paymentSubmission.inFlight.Store(false)

	cmd := NewPayCmd()
	cmd.SilenceUsage = true
	cmd.SilenceErrors = true
	cmd.SetArgs([]string{"--order", "order-1", "--method", "cash"})

	require.ErrorIs(t, cmd.Execute(), errPaymentInFlight)
}

func TestPaySubmitterReleasesLatchOnFailure(t *testing.T) {
	var submitter paySubmitter

	_, err := submitter.Submit(func() (*client.Payment, error) {
		return nil, errors.New("gateway down")
	})
	require.Error(t, err)

	// A failed attempt must not jam the latch
	done := make(chan struct{})
	go func() {
		defer close(done)
		_, err := submitter.Submit(func() (*client.Payment, error) {
			return &client.Payment{ID: "p3"}, nil
		})
		require.NoError(t, err)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("latch was not released after a failed submission")
	}
}
