// Package qr generates payment transaction codes and single-use QR receipt
// images scanned by staff at the venue.
package qr

import (
	"crypto/rand"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	qrcode "github.com/skip2/go-qrcode"
)

const txAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

// NewTransactionCode returns a unique, human-readable transaction code,
// e.g. TXN-1757680412-8F9D2KQ3.
func NewTransactionCode() string {
	buf := make([]byte, 8)
	if _, err := rand.Read(buf); err != nil {
		// crypto/rand failing means the process is in serious trouble;
		// fall back to a timestamp-only code rather than aborting a payment
		return fmt.Sprintf("TXN-%d", time.Now().UTC().UnixNano())
	}
	for i, b := range buf {
		buf[i] = txAlphabet[int(b)%len(txAlphabet)]
	}
	return fmt.Sprintf("TXN-%d-%s", time.Now().UTC().Unix(), string(buf))
}

// ReceiptPayload is the JSON structure encoded into a receipt QR code.
type ReceiptPayload struct {
	TransactionCode string `json:"transaction_code"`
	UserID          string `json:"user_id"`
	OrderID         string `json:"order_id,omitempty"`
	ReservationID   string `json:"reservation_id,omitempty"`
	IssuedAt        int64  `json:"ts"`
}

// WriteReceiptPNG encodes the payload into a QR PNG under dir and returns the
// written file path.
func WriteReceiptPNG(dir string, payload ReceiptPayload) (string, error) {
	if payload.IssuedAt == 0 {
		payload.IssuedAt = time.Now().UTC().Unix()
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("failed to marshal receipt payload: %w", err)
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create QR directory: %w", err)
	}

	path := filepath.Join(dir, payload.TransactionCode+".png")
	if err := qrcode.WriteFile(string(data), qrcode.Medium, 256, path); err != nil {
		return "", fmt.Errorf("failed to write QR receipt: %w", err)
	}

	return path, nil
}
