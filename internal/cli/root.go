package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/facilite-dev/facilite/internal/cli/commands"
)

var version = "dev" // Will be set during build

var rootCmd = &cobra.Command{
	Use:   "facilite",
	Short: "Facilite - hotel booking and food ordering",
	Long: `Facilite CLI - book hotels, order food, pay and track from the terminal.

Log in once with 'facilite login'; the session is kept on disk until you log
out or the server revokes it.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print the version number",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("facilite version %s\n", version)
		},
	})

	rootCmd.AddCommand(commands.NewLoginCmd())
	rootCmd.AddCommand(commands.NewRegisterCmd())
	rootCmd.AddCommand(commands.NewLogoutCmd())
	rootCmd.AddCommand(commands.NewWhoamiCmd())
	rootCmd.AddCommand(commands.NewDashboardCmd())
	rootCmd.AddCommand(commands.NewHotelsCmd())
	rootCmd.AddCommand(commands.NewRestaurantsCmd())
	rootCmd.AddCommand(commands.NewReserveCmd())
	rootCmd.AddCommand(commands.NewOrderCmd())
	rootCmd.AddCommand(commands.NewPayCmd())
	rootCmd.AddCommand(commands.NewPaymentsCmd())
	rootCmd.AddCommand(commands.NewNearbyCmd())
	rootCmd.AddCommand(commands.NewSetServerCmd())
}

// Execute runs the root command
func Execute() error {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return err
	}
	return nil
}
