package commands

import (
	"fmt"

	"github.com/facilite-dev/facilite/internal/access"
	"github.com/facilite-dev/facilite/internal/cli/client"
	"github.com/facilite-dev/facilite/internal/cli/session"
	"github.com/facilite-dev/facilite/internal/cli/userconfig"
)

// resumeSession restores the persisted session from disk.
func resumeSession() (*session.Session, error) {
	store, err := session.NewFileStore()
	if err != nil {
		return nil, err
	}
	return session.Resume(store)
}

// newAPIClient builds an API client on the resumed session and the configured
// server.
func newAPIClient() (*client.Client, *session.Session, error) {
	sess, err := resumeSession()
	if err != nil {
		return nil, nil, err
	}

	cfg, err := userconfig.Load()
	if err != nil {
		return nil, nil, err
	}

	return client.New(cfg.ServerURL, sess), sess, nil
}

// guardRoute checks the session against a screen's access policy before a
// command runs, mirroring what the server will enforce anyway. A rejected
// session gets a message pointing at where it can actually go.
func guardRoute(sess *session.Session, route string) error {
	decision, landing := access.Evaluate(sess, route)
	switch decision {
	case access.Grant:
		return nil
	case access.RedirectLogin:
		return fmt.Errorf("you are not logged in. Run 'facilite login' first")
	default:
		return fmt.Errorf("your role (%s) has no access to this screen; try '%s' instead",
			sess.Role(), landing)
	}
}
