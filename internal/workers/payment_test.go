package workers

import (
	"context"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/facilite-dev/facilite/internal/access"
	"github.com/facilite-dev/facilite/internal/config"
	"github.com/facilite-dev/facilite/internal/models"
	"github.com/facilite-dev/facilite/internal/tasks"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, models.AutoMigrate(db))
	return db
}

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	return &config.Config{
		Payments: config.PaymentsConfig{
			QRDir:                t.TempDir(),
			PendingMaxAgeMinutes: 30,
		},
	}
}

func seedPayment(t *testing.T, db *gorm.DB, txCode, method string) *models.Payment {
	t.Helper()

	// Phone derived from the code keeps the unique constraint happy across
	// multiple seeds in one test
	user := &models.User{Name: "Ada", PhoneNumber: "+24382-" + txCode, Role: access.RoleClient}
	require.NoError(t, db.Create(user).Error)

	orderID := "order-1"
	payment := &models.Payment{
		UserID:          user.ID,
		OrderID:         &orderID,
		Amount:          25,
		NetAmount:       22.5,
		Commission:      2.5,
		Method:          method,
		Status:          models.PaymentStatusPending,
		TransactionCode: txCode,
	}
	require.NoError(t, db.Create(payment).Error)
	return payment
}

// acceptedCode has a byte sum that does not land on the declined bucket;
// declinedCode does. Both are fixed so the simulated gateway stays stable.
const (
	acceptedCode = "TXN-1-AAAAAAAB" // byte sum 910, 910 % 8 == 6
	declinedCode = "TXN-1-AAAAAAAD" // byte sum 912, 912 % 8 == 0
)

func TestGatewayAcceptsDeterministic(t *testing.T) {
	assert.True(t, gatewayAccepts(models.Payment{Method: "mpesa", TransactionCode: acceptedCode}))
	assert.False(t, gatewayAccepts(models.Payment{Method: "mpesa", TransactionCode: declinedCode}))
	// Cash never goes through a gateway
	assert.True(t, gatewayAccepts(models.Payment{Method: "cash", TransactionCode: declinedCode}))
}

func TestHandleProcessPaymentSettles(t *testing.T) {
	db := newTestDB(t)
	cfg := testConfig(t)
	payment := seedPayment(t, db, acceptedCode, "mpesa")

	task, err := tasks.NewProcessPaymentTask(payment.ID)
	require.NoError(t, err)

	require.NoError(t, HandleProcessPayment(context.Background(), task, db, cfg, zerolog.Nop()))

	var settled models.Payment
	require.NoError(t, models.FindByID(db, payment.ID, &settled))
	assert.Equal(t, models.PaymentStatusSuccess, settled.Status)
	assert.NotNil(t, settled.SettledAt)
	assert.NotEmpty(t, settled.QRPath)
}

func TestHandleProcessPaymentDeclines(t *testing.T) {
	db := newTestDB(t)
	cfg := testConfig(t)
	payment := seedPayment(t, db, declinedCode, "mpesa")

	task, err := tasks.NewProcessPaymentTask(payment.ID)
	require.NoError(t, err)

	require.NoError(t, HandleProcessPayment(context.Background(), task, db, cfg, zerolog.Nop()))

	var declined models.Payment
	require.NoError(t, models.FindByID(db, payment.ID, &declined))
	assert.Equal(t, models.PaymentStatusFailed, declined.Status)
	assert.Empty(t, declined.QRPath)
}

func TestHandleProcessPaymentSkipsSettled(t *testing.T) {
	db := newTestDB(t)
	cfg := testConfig(t)
	payment := seedPayment(t, db, acceptedCode, "mpesa")
	require.NoError(t, db.Model(payment).Update("status", models.PaymentStatusSuccess).Error)

	task, err := tasks.NewProcessPaymentTask(payment.ID)
	require.NoError(t, err)

	require.NoError(t, HandleProcessPayment(context.Background(), task, db, cfg, zerolog.Nop()))

	var p models.Payment
	require.NoError(t, models.FindByID(db, payment.ID, &p))
	// Untouched: no QR generated for an already settled payment
	assert.Empty(t, p.QRPath)
}

func TestHandleProcessPaymentMissingPaymentIsNotRetried(t *testing.T) {
	db := newTestDB(t)
	task, err := tasks.NewProcessPaymentTask("no-such-id")
	require.NoError(t, err)

	assert.NoError(t, HandleProcessPayment(context.Background(), task, db, testConfig(t), zerolog.Nop()))
}

func TestHandleExpirePending(t *testing.T) {
	db := newTestDB(t)
	cfg := testConfig(t)

	stale := seedPayment(t, db, "TXN-1-STALECODE", "mpesa")
	require.NoError(t, db.Model(stale).Update("created_at", time.Now().UTC().Add(-2*time.Hour)).Error)
	fresh := seedPayment(t, db, "TXN-1-FRESHCOD2", "mpesa")

	task, err := tasks.NewExpirePendingTask()
	require.NoError(t, err)

	require.NoError(t, HandleExpirePending(context.Background(), task, db, cfg, zerolog.Nop()))

	// Fresh destination per lookup: a populated struct's primary key would
	// leak into the next query's conditions.
	var expired models.Payment
	require.NoError(t, models.FindByID(db, stale.ID, &expired))
	assert.Equal(t, models.PaymentStatusFailed, expired.Status)

	var untouched models.Payment
	require.NoError(t, models.FindByID(db, fresh.ID, &untouched))
	assert.Equal(t, models.PaymentStatusPending, untouched.Status)
}

func TestNextSweepTime(t *testing.T) {
	from := time.Date(2026, 3, 1, 10, 7, 0, 0, time.UTC)

	next := nextSweepTime("*/15 * * * *", from)
	require.NotNil(t, next)
	assert.Equal(t, time.Date(2026, 3, 1, 10, 15, 0, 0, time.UTC), *next)

	assert.Nil(t, nextSweepTime("", from))
	assert.Nil(t, nextSweepTime("not a cron", from))
}
