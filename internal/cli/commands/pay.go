package commands

import (
	"errors"
	"fmt"
	"sync/atomic"

	"github.com/spf13/cobra"

	"github.com/facilite-dev/facilite/internal/access"
	"github.com/facilite-dev/facilite/internal/cli/client"
)

var errPaymentInFlight = errors.New("a payment is already being submitted")

// paySubmitter serializes payment submission: while one submission is in
// flight, further attempts are refused instead of queued. Paying twice for
// the same order because of an impatient retry is worse than asking the user
// to wait.
type paySubmitter struct {
	inFlight atomic.Bool
}

func (p *paySubmitter) Submit(fn func() (*client.Payment, error)) (*client.Payment, error) {
	if !p.inFlight.CompareAndSwap(false, true) {
		return nil, errPaymentInFlight
	}
	defer p.inFlight.Store(false)
	return fn()
}

// paymentSubmission is the process-wide latch every pay invocation goes
// through. It must be shared, not per-command: a latch each caller constructs
// for itself has nobody to refuse.
var paymentSubmission paySubmitter

// NewPayCmd creates the pay command
func NewPayCmd() *cobra.Command {
	var orderID, reservationID, method string

	cmd := &cobra.Command{
		Use:   "pay",
		Short: "Pay for an order or a reservation",
		Long: `Pay for an order or a reservation.

Supported methods: airtel_money, orange_money, mpesa, visa, mastercard, cash.

Settlement is asynchronous; check the payment status with
'facilite payments' until it settles and a QR receipt appears.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if method == "" {
				return fmt.Errorf("--method is required")
			}
			if (orderID == "") == (reservationID == "") {
				return fmt.Errorf("exactly one of --order or --reservation is required")
			}

			apiClient, sess, err := newAPIClient()
			if err != nil {
				return err
			}
			if err := guardRoute(sess, access.RouteDashboard); err != nil {
				return err
			}

			payment, err := paymentSubmission.Submit(func() (*client.Payment, error) {
				return apiClient.CreatePayment(client.PaymentTarget{
					OrderID:       orderID,
					ReservationID: reservationID,
				}, method)
			})
			if err != nil {
				return fmt.Errorf("payment failed: %w", err)
			}

			fmt.Println("✓ Payment submitted")
			fmt.Printf("  ID:          %s\n", payment.ID)
			fmt.Printf("  Transaction: %s\n", payment.TransactionCode)
			fmt.Printf("  Amount:      %.2f (commission %.2f)\n", payment.Amount, payment.Commission)
			fmt.Printf("  Status:      %s\n", payment.Status)
			return nil
		},
	}

	cmd.Flags().StringVar(&orderID, "order", "", "Order ID to pay for")
	cmd.Flags().StringVar(&reservationID, "reservation", "", "Reservation ID to pay for")
	cmd.Flags().StringVar(&method, "method", "", "Payment method")

	return cmd
}

// NewPaymentsCmd creates the payments command
func NewPaymentsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "payments",
		Short: "List your payments",
		RunE: func(cmd *cobra.Command, args []string) error {
			apiClient, sess, err := newAPIClient()
			if err != nil {
				return err
			}
			if err := guardRoute(sess, access.RouteDashboard); err != nil {
				return err
			}

			payments, err := apiClient.MyPayments()
			if err != nil {
				return err
			}
			if len(payments) == 0 {
				fmt.Println("No payments yet")
				return nil
			}

			for _, p := range payments {
				line := fmt.Sprintf("%-26s  %-12s %8.2f  [%s]",
					p.ID, p.Method, p.Amount, p.Status)
				if p.QRPath != "" {
					line += "  QR: " + p.QRPath
				}
				fmt.Println(line)
			}
			return nil
		},
	}
}
