package commands

import (
	"fmt"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/term"
)

// NewRegisterCmd creates the register command
func NewRegisterCmd() *cobra.Command {
	var name, phone, password string

	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create a client account",
		Long: `Create a client account on the Facilite server.

Registration logs the new account in immediately.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRegister(name, phone, password)
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "Full name")
	cmd.Flags().StringVar(&phone, "phone", "", "Phone number")
	cmd.Flags().StringVar(&password, "password", "", "Password (will prompt if not provided)")

	return cmd
}

func runRegister(name, phone, password string) error {
	if name == "" {
		return fmt.Errorf("name is required (use --name)")
	}
	if phone == "" {
		return fmt.Errorf("phone number is required (use --phone)")
	}

	if password == "" {
		if !term.IsTerminal(int(syscall.Stdin)) {
			return fmt.Errorf("password is required in non-interactive mode (use --password)")
		}
		fmt.Print("Password: ")
		bytePassword, err := term.ReadPassword(int(syscall.Stdin))
		if err != nil {
			return fmt.Errorf("failed to read password: %w", err)
		}
		password = string(bytePassword)
		fmt.Println()
	}

	apiClient, _, err := newAPIClient()
	if err != nil {
		return err
	}

	resp, err := apiClient.RegisterClient(name, phone, password)
	if err != nil {
		return fmt.Errorf("registration failed: %w", err)
	}

	fmt.Println("✓ Account created, you are now logged in")
	fmt.Printf("  Role: %s\n", resp.Role)
	return nil
}
