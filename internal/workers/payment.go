package workers

import (
	"context"
	"fmt"
	"time"

	"github.com/hibiken/asynq"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/facilite-dev/facilite/internal/config"
	"github.com/facilite-dev/facilite/internal/models"
	"github.com/facilite-dev/facilite/internal/qr"
	"github.com/facilite-dev/facilite/internal/tasks"
)

// HandleProcessPayment settles a pending payment against the gateway and, on
// success, writes the single-use QR receipt. Settlement outcome is derived
// deterministically from the transaction code so the worker is replayable.
func HandleProcessPayment(ctx context.Context, t *asynq.Task, db *gorm.DB, cfg *config.Config, logger zerolog.Logger) error {
	payload, err := tasks.ParsePaymentPayload(t)
	if err != nil {
		return fmt.Errorf("failed to parse payload: %w", err)
	}

	var payment models.Payment
	if err := models.FindByID(db, payload.PaymentID, &payment); err != nil {
		if err == gorm.ErrRecordNotFound {
			logger.Warn().Str("payment_id", payload.PaymentID).Msg("Payment vanished before settlement")
			return nil
		}
		return fmt.Errorf("failed to load payment: %w", err)
	}

	if payment.Status != models.PaymentStatusPending {
		logger.Debug().
			Str("payment_id", payment.ID).
			Str("status", payment.Status).
			Msg("Payment already settled, skipping")
		return nil
	}

	now := time.Now().UTC()
	if !gatewayAccepts(payment) {
		if err := db.Model(&payment).Updates(map[string]interface{}{
			"status":     models.PaymentStatusFailed,
			"settled_at": &now,
		}).Error; err != nil {
			return fmt.Errorf("failed to mark payment failed: %w", err)
		}
		logger.Info().
			Str("payment_id", payment.ID).
			Str("method", payment.Method).
			Msg("Payment declined by gateway")
		return nil
	}

	receipt := qr.ReceiptPayload{
		TransactionCode: payment.TransactionCode,
		UserID:          payment.UserID,
	}
	if payment.OrderID != nil {
		receipt.OrderID = *payment.OrderID
	}
	if payment.ReservationID != nil {
		receipt.ReservationID = *payment.ReservationID
	}

	qrPath, err := qr.WriteReceiptPNG(cfg.Payments.QRDir, receipt)
	if err != nil {
		// Retryable: the payment stays pending and Asynq re-delivers
		return fmt.Errorf("failed to write QR receipt: %w", err)
	}

	if err := db.Model(&payment).Updates(map[string]interface{}{
		"status":     models.PaymentStatusSuccess,
		"settled_at": &now,
		"qr_path":    qrPath,
	}).Error; err != nil {
		return fmt.Errorf("failed to mark payment settled: %w", err)
	}

	logger.Info().
		Str("payment_id", payment.ID).
		Str("transaction_code", payment.TransactionCode).
		Float64("net_amount", payment.NetAmount).
		Msg("Payment settled")

	return nil
}

// gatewayAccepts simulates the mobile-money/card gateway decision. Cash is
// always accepted; electronic methods decline when the transaction code's
// byte sum falls on a 1-in-8 bucket, giving a stable, replayable failure path.
func gatewayAccepts(payment models.Payment) bool {
	if payment.Method == "cash" {
		return true
	}
	var sum int
	for _, b := range []byte(payment.TransactionCode) {
		sum += int(b)
	}
	return sum%8 != 0
}

// HandleExpirePending fails payments stuck in pending beyond the configured
// age, so abandoned checkouts do not accumulate forever.
func HandleExpirePending(ctx context.Context, t *asynq.Task, db *gorm.DB, cfg *config.Config, logger zerolog.Logger) error {
	maxAge := time.Duration(cfg.Payments.PendingMaxAgeMinutes) * time.Minute
	cutoff := time.Now().UTC().Add(-maxAge)

	result := db.Model(&models.Payment{}).
		Where("status = ? AND created_at < ?", models.PaymentStatusPending, cutoff).
		Update("status", models.PaymentStatusFailed)
	if result.Error != nil {
		return fmt.Errorf("failed to expire pending payments: %w", result.Error)
	}

	if result.RowsAffected > 0 {
		logger.Info().
			Int64("expired", result.RowsAffected).
			Time("cutoff", cutoff).
			Msg("Expired stale pending payments")
	}

	return nil
}
