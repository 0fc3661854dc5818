package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

// NewLogoutCmd creates the logout command
func NewLogoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Log out and forget the stored session",
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := resumeSession()
			if err != nil {
				return err
			}

			if !sess.IsAuthenticated() {
				fmt.Println("You are not logged in")
				return nil
			}

			if err := sess.Logout(); err != nil {
				return fmt.Errorf("failed to log out: %w", err)
			}
			fmt.Println("✓ Logged out")
			return nil
		},
	}
}
