package tasks

import (
	"encoding/json"
	"fmt"

	"github.com/hibiken/asynq"
)

// Task type constants
const (
	// Payment settlement tasks
	TypeProcessPayment = "payment:process"
	TypeExpirePending  = "payment:expire_pending"
)

// PaymentPayload is the payload for payment tasks
type PaymentPayload struct {
	PaymentID string `json:"payment_id,omitempty"`
}

// NewProcessPaymentTask creates a task that settles a pending payment against
// the (simulated) gateway
func NewProcessPaymentTask(paymentID string) (*asynq.Task, error) {
	payload, err := json.Marshal(PaymentPayload{PaymentID: paymentID})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal payload: %w", err)
	}
	return asynq.NewTask(TypeProcessPayment, payload), nil
}

// NewExpirePendingTask creates a sweep task that fails payments stuck in
// pending beyond the configured age
func NewExpirePendingTask() (*asynq.Task, error) {
	payload, err := json.Marshal(PaymentPayload{})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal payload: %w", err)
	}
	return asynq.NewTask(TypeExpirePending, payload), nil
}

// ParsePaymentPayload parses task payload from an Asynq task
func ParsePaymentPayload(task *asynq.Task) (PaymentPayload, error) {
	var payload PaymentPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return payload, fmt.Errorf("failed to unmarshal payload: %w", err)
	}
	return payload, nil
}
