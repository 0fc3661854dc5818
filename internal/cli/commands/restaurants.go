package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

// NewRestaurantsCmd creates the restaurants command
func NewRestaurantsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "restaurants [restaurant-id]",
		Short: "Browse restaurants and their menus",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			apiClient, _, err := newAPIClient()
			if err != nil {
				return err
			}

			if len(args) == 1 {
				restaurant, err := apiClient.GetRestaurant(args[0])
				if err != nil {
					return err
				}

				fmt.Printf("%s\n", restaurant.Name)
				fmt.Printf("  %s, rating %.1f\n", restaurant.Address, restaurant.Rating)
				if len(restaurant.Menus) > 0 {
					fmt.Println("  Menu:")
					for _, item := range restaurant.Menus {
						fmt.Printf("    %-26s  %-10s %8.2f  (%s)\n",
							item.Name, item.Category, item.Price, item.ID)
					}
				}
				return nil
			}

			restaurants, err := apiClient.ListRestaurants()
			if err != nil {
				return err
			}
			if len(restaurants) == 0 {
				fmt.Println("No restaurants available")
				return nil
			}

			for _, restaurant := range restaurants {
				fmt.Printf("%-26s  rating %.1f  %s\n",
					restaurant.ID, restaurant.Rating, restaurant.Name)
			}
			return nil
		},
	}

	return cmd
}
