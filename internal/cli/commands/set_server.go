package commands

import (
	"fmt"
	"net/url"

	"github.com/spf13/cobra"

	"github.com/facilite-dev/facilite/internal/cli/userconfig"
)

// NewSetServerCmd creates the set-server command
func NewSetServerCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "set-server <url>",
		Short: "Point the CLI at a Facilite server",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			serverURL := args[0]

			parsed, err := url.Parse(serverURL)
			if err != nil || parsed.Scheme == "" || parsed.Host == "" {
				return fmt.Errorf("invalid server URL %q, expected e.g. http://localhost:8080", serverURL)
			}

			if err := userconfig.SetServerURL(serverURL); err != nil {
				return err
			}
			fmt.Printf("✓ Server set to %s\n", serverURL)
			return nil
		},
	}
}
