package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/facilite-dev/facilite/internal/access"
)

// NewReserveCmd creates the reserve command
func NewReserveCmd() *cobra.Command {
	var hotelID, checkIn, checkOut string

	cmd := &cobra.Command{
		Use:   "reserve",
		Short: "Book a hotel stay",
		RunE: func(cmd *cobra.Command, args []string) error {
			if hotelID == "" || checkIn == "" || checkOut == "" {
				return fmt.Errorf("--hotel, --check-in and --check-out are required")
			}

			apiClient, sess, err := newAPIClient()
			if err != nil {
				return err
			}
			if err := guardRoute(sess, access.RouteDashboard); err != nil {
				return err
			}

			reservation, err := apiClient.CreateReservation(hotelID, checkIn, checkOut)
			if err != nil {
				return fmt.Errorf("booking failed: %w", err)
			}

			fmt.Println("✓ Reservation confirmed")
			fmt.Printf("  ID:    %s\n", reservation.ID)
			fmt.Printf("  Stay:  %s → %s\n", checkIn, checkOut)
			fmt.Printf("  Total: %.2f\n", reservation.TotalPrice)
			fmt.Printf("\nPay with: facilite pay --reservation %s --method <method>\n", reservation.ID)
			return nil
		},
	}

	cmd.Flags().StringVar(&hotelID, "hotel", "", "Hotel ID (see 'facilite hotels')")
	cmd.Flags().StringVar(&checkIn, "check-in", "", "Check-in date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&checkOut, "check-out", "", "Check-out date (YYYY-MM-DD)")

	return cmd
}
