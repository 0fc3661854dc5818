package qr

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewTransactionCodeShape(t *testing.T) {
	code := NewTransactionCode()
	assert.True(t, strings.HasPrefix(code, "TXN-"))

	parts := strings.Split(code, "-")
	require.Len(t, parts, 3)
	assert.Len(t, parts[2], 8)
}

func TestNewTransactionCodeUnique(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		code := NewTransactionCode()
		assert.False(t, seen[code], "duplicate code %s", code)
		seen[code] = true
	}
}

func TestWriteReceiptPNG(t *testing.T) {
	dir := t.TempDir()

	path, err := WriteReceiptPNG(dir, ReceiptPayload{
		TransactionCode: "TXN-1-TESTCODE",
		UserID:          "u1",
		OrderID:         "o1",
	})
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "TXN-1-TESTCODE.png"), path)

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Greater(t, info.Size(), int64(0))
}

func TestWriteReceiptPNGCreatesDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "qrcodes")

	_, err := WriteReceiptPNG(dir, ReceiptPayload{TransactionCode: "TXN-2-TESTCODE", UserID: "u1"})
	require.NoError(t, err)

	_, err = os.Stat(dir)
	assert.NoError(t, err)
}
