package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

// NewHotelsCmd creates the hotels command
func NewHotelsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "hotels [hotel-id]",
		Short: "Browse the hotel catalog",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			apiClient, _, err := newAPIClient()
			if err != nil {
				return err
			}

			if len(args) == 1 {
				hotel, err := apiClient.GetHotel(args[0])
				if err != nil {
					return err
				}

				fmt.Printf("%s\n", hotel.Name)
				fmt.Printf("  %s, %s\n", hotel.Address, hotel.City)
				fmt.Printf("  %.2f per night, rating %.1f\n", hotel.PricePerNight, hotel.Rating)
				if len(hotel.Rooms) > 0 {
					fmt.Println("  Rooms:")
					for _, room := range hotel.Rooms {
						fmt.Printf("    %-6s capacity %d  %.2f/night\n",
							room.RoomNumber, room.Capacity, room.PricePerNight)
					}
				}
				return nil
			}

			hotels, err := apiClient.ListHotels()
			if err != nil {
				return err
			}
			if len(hotels) == 0 {
				fmt.Println("No hotels available")
				return nil
			}

			for _, hotel := range hotels {
				fmt.Printf("%-26s  %-14s %8.2f/night  rating %.1f  %s\n",
					hotel.ID, hotel.City, hotel.PricePerNight, hotel.Rating, hotel.Name)
			}
			return nil
		},
	}

	return cmd
}
