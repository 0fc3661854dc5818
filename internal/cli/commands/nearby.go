package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

// NewNearbyCmd creates the nearby command
func NewNearbyCmd() *cobra.Command {
	var latitude, longitude, radiusKm float64

	cmd := &cobra.Command{
		Use:   "nearby",
		Short: "Find hotels and restaurants around a position",
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("lat") || !cmd.Flags().Changed("lon") {
				return fmt.Errorf("--lat and --lon are required")
			}

			apiClient, _, err := newAPIClient()
			if err != nil {
				return err
			}

			places, err := apiClient.Nearby(latitude, longitude, radiusKm)
			if err != nil {
				return err
			}
			if len(places) == 0 {
				fmt.Println("Nothing within range")
				return nil
			}

			for _, place := range places {
				fmt.Printf("%6.2f km  %-10s  %-26s %s\n",
					place.DistanceKm, place.Type, place.Name, place.Address)
			}
			return nil
		},
	}

	cmd.Flags().Float64Var(&latitude, "lat", 0, "Latitude")
	cmd.Flags().Float64Var(&longitude, "lon", 0, "Longitude")
	cmd.Flags().Float64Var(&radiusKm, "radius", 5, "Radius in kilometers")

	return cmd
}
