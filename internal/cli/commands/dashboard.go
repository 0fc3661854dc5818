package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/facilite-dev/facilite/internal/access"
	"github.com/facilite-dev/facilite/internal/cli/client"
)

// NewDashboardCmd creates the dashboard command
func NewDashboardCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "dashboard",
		Short: "Show your dashboard",
		Long: `Show the dashboard for your role.

Clients see their reservations and orders; couriers their assigned
deliveries. The screen adapts to whoever is logged in.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			apiClient, sess, err := newAPIClient()
			if err != nil {
				return err
			}

			if err := guardRoute(sess, access.RouteDashboard); err != nil {
				return err
			}

			// The role-specific screen has its own guard; a role that fails
			// it falls back to the generic view rather than erroring
			route := access.DashboardRoute(sess.Role())
			if decision, _ := access.Evaluate(sess, route); decision != access.Grant {
				route = access.RouteDashboard
			}

			fmt.Printf("Dashboard (%s)\n\n", sess.Role())

			switch route {
			case access.RouteDashboardClient:
				if err := printClientDashboard(apiClient); err != nil {
					return err
				}
			default:
				if sess.Role() == access.RoleDeliveryPerson {
					if err := printCourierDashboard(apiClient); err != nil {
						return err
					}
				}
			}

			fmt.Println("Navigation:")
			for _, link := range access.Links(sess) {
				fmt.Printf("  %-22s %s\n", link.Label, link.Route)
			}
			return nil
		},
	}
}

func printClientDashboard(apiClient *client.Client) error {
	reservations, err := apiClient.MyReservations()
	if err != nil {
		return err
	}
	orders, err := apiClient.MyOrders()
	if err != nil {
		return err
	}

	fmt.Printf("Reservations: %d\n", len(reservations))
	for _, r := range reservations {
		name := r.HotelID
		if r.Hotel != nil {
			name = r.Hotel.Name
		}
		fmt.Printf("  %s  %s → %s  %.2f\n", name, r.CheckIn, r.CheckOut, r.TotalPrice)
	}

	fmt.Printf("Orders: %d\n", len(orders))
	for _, o := range orders {
		name := o.RestaurantID
		if o.Restaurant != nil {
			name = o.Restaurant.Name
		}
		fmt.Printf("  %s  %.2f\n", name, o.Total)
	}
	fmt.Println()
	return nil
}

func printCourierDashboard(apiClient *client.Client) error {
	deliveries, err := apiClient.MyDeliveries()
	if err != nil {
		return err
	}

	fmt.Printf("Assigned deliveries: %d\n", len(deliveries))
	for _, d := range deliveries {
		fmt.Printf("  %s  order %s  [%s]\n", d.ID, d.OrderID, d.Status)
	}
	fmt.Println()
	return nil
}
