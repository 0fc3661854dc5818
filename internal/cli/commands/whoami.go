package commands

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/facilite-dev/facilite/internal/cli/client"
)

// NewWhoamiCmd creates the whoami command
func NewWhoamiCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the account behind the current session",
		RunE: func(cmd *cobra.Command, args []string) error {
			apiClient, sess, err := newAPIClient()
			if err != nil {
				return err
			}

			if !sess.IsAuthenticated() {
				fmt.Println("Not logged in")
				return nil
			}

			// Ask the server rather than trusting the local cache: the
			// stored role is a display hint, /auth/me is the truth
			user, err := apiClient.Me()
			if err != nil {
				if errors.Is(err, client.ErrSessionExpired) {
					fmt.Println("Session expired, please log in again")
					return nil
				}
				return err
			}

			fmt.Printf("Name:  %s\n", user.Name)
			fmt.Printf("Phone: %s\n", user.PhoneNumber)
			fmt.Printf("Role:  %s\n", user.Role)
			return nil
		},
	}
}
