package commands

import (
	"fmt"
	"os"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/term"
)

// NewLoginCmd creates the login command
func NewLoginCmd() *cobra.Command {
	var phone, password string
	var asManager bool

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in to the Facilite server",
		Long: `Log in to the Facilite server.

Clients log in with their phone number alone. Staff accounts (managers,
couriers, admins) pass --manager and are prompted for their password.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLogin(phone, password, asManager)
		},
	}

	cmd.Flags().StringVar(&phone, "phone", "", "Phone number (or set FACILITE_PHONE)")
	cmd.Flags().StringVar(&password, "password", "", "Password for staff accounts (or set FACILITE_PASSWORD, will prompt if not provided)")
	cmd.Flags().BoolVar(&asManager, "manager", false, "Log in as a staff account (password required)")

	return cmd
}

func runLogin(phone, password string, asManager bool) error {
	// Environment variables are useful for scripts
	if phone == "" {
		phone = os.Getenv("FACILITE_PHONE")
	}
	if password == "" {
		password = os.Getenv("FACILITE_PASSWORD")
	}

	if phone == "" {
		return fmt.Errorf("phone number is required (use --phone flag or FACILITE_PHONE env var)")
	}

	apiClient, _, err := newAPIClient()
	if err != nil {
		return err
	}

	if asManager {
		if password == "" {
			if !term.IsTerminal(int(syscall.Stdin)) {
				return fmt.Errorf("password is required in non-interactive mode (use --password flag or FACILITE_PASSWORD env var)")
			}
			fmt.Print("Password: ")
			bytePassword, err := term.ReadPassword(int(syscall.Stdin))
			if err != nil {
				return fmt.Errorf("failed to read password: %w", err)
			}
			password = string(bytePassword)
			fmt.Println()
		}

		resp, err := apiClient.LoginManager(phone, password)
		if err != nil {
			return fmt.Errorf("login failed: %w", err)
		}
		fmt.Println("✓ Login successful!")
		fmt.Printf("  Role: %s\n", resp.Role)
		return nil
	}

	resp, err := apiClient.LoginClient(phone)
	if err != nil {
		return fmt.Errorf("login failed: %w", err)
	}
	fmt.Println("✓ Login successful!")
	fmt.Printf("  Role: %s\n", resp.Role)
	return nil
}
