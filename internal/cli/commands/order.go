package commands

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/facilite-dev/facilite/internal/access"
	"github.com/facilite-dev/facilite/internal/cli/client"
)

// NewOrderCmd creates the order command
func NewOrderCmd() *cobra.Command {
	var restaurantID string
	var items []string

	cmd := &cobra.Command{
		Use:   "order",
		Short: "Place a food order",
		Long: `Place a food order with a restaurant.

Each --item takes a menu item ID with an optional quantity:

  facilite order --restaurant <id> --item <menu-id>x2 --item <menu-id>`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if restaurantID == "" {
				return fmt.Errorf("--restaurant is required")
			}
			if len(items) == 0 {
				return fmt.Errorf("at least one --item is required")
			}

			lines, err := parseOrderItems(items)
			if err != nil {
				return err
			}

			apiClient, sess, err := newAPIClient()
			if err != nil {
				return err
			}
			if err := guardRoute(sess, access.RouteDashboard); err != nil {
				return err
			}

			order, err := apiClient.CreateOrder(restaurantID, lines)
			if err != nil {
				return fmt.Errorf("order failed: %w", err)
			}

			fmt.Println("✓ Order placed")
			fmt.Printf("  ID:    %s\n", order.ID)
			fmt.Printf("  Total: %.2f\n", order.Total)
			fmt.Printf("\nPay with: facilite pay --order %s --method <method>\n", order.ID)
			return nil
		},
	}

	cmd.Flags().StringVar(&restaurantID, "restaurant", "", "Restaurant ID (see 'facilite restaurants')")
	cmd.Flags().StringArrayVar(&items, "item", nil, "Menu item as <menu-id> or <menu-id>x<quantity>, repeatable")

	return cmd
}

// parseOrderItems turns "<menu-id>" or "<menu-id>x<quantity>" specs into
// order lines.
func parseOrderItems(specs []string) ([]client.OrderItem, error) {
	lines := make([]client.OrderItem, 0, len(specs))
	for _, spec := range specs {
		menuID, quantity := spec, 1
		if i := strings.LastIndex(spec, "x"); i > 0 {
			if q, err := strconv.Atoi(spec[i+1:]); err == nil {
				menuID, quantity = spec[:i], q
			}
		}
		if quantity <= 0 {
			return nil, fmt.Errorf("invalid quantity in item spec %q", spec)
		}
		lines = append(lines, client.OrderItem{MenuID: menuID, Quantity: quantity})
	}
	return lines, nil
}
