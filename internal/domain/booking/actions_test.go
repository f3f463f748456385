package booking

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BruksfildServices01/barber-marketplace/internal/models"
)

func pendingBooking() *models.Booking {
	return &models.Booking{
		ID:            1,
		BarberID:      1,
		Status:        string(StatusPending),
		PaymentStatus: string(PaymentPending),
	}
}

func TestConfirm(t *testing.T) {
	b := pendingBooking()

	require.NoError(t, Confirm(b))
	assert.Equal(t, string(StatusConfirmed), b.Status)
	assert.Equal(t, string(PaymentSucceeded), b.PaymentStatus)
}

func TestConfirm_FailedStaysFailed(t *testing.T) {
	b := pendingBooking()
	require.NoError(t, Fail(b))

	err := Confirm(b)
	require.Error(t, err)
	assert.Equal(t, string(StatusFailed), b.Status)
}

func TestExpire(t *testing.T) {
	b := pendingBooking()

	require.NoError(t, Expire(b))
	assert.Equal(t, string(StatusExpired), b.Status)
	assert.Equal(t, string(PaymentFailed), b.PaymentStatus)
}

func TestCancel_TerminalIsImmutable(t *testing.T) {
	now := time.Now()

	b := pendingBooking()
	require.NoError(t, Confirm(b))
	require.NoError(t, Complete(b, now))
	require.NotNil(t, b.CompletedAt)

	err := Cancel(b, now)
	require.Error(t, err)
	assert.Equal(t, string(StatusCompleted), b.Status)
	assert.Nil(t, b.CancelledAt)
}

func TestCancel_SetsTimestamp(t *testing.T) {
	now := time.Now()

	b := pendingBooking()
	require.NoError(t, Cancel(b, now))
	assert.Equal(t, string(StatusCancelled), b.Status)
	require.NotNil(t, b.CancelledAt)
	assert.Equal(t, now, *b.CancelledAt)
}

func TestRefund_PartialKeepsBookingAlive(t *testing.T) {
	b := pendingBooking()
	require.NoError(t, Confirm(b))

	require.NoError(t, Refund(b, true))
	assert.Equal(t, string(StatusPartiallyRefunded), b.Status)
	assert.Equal(t, string(PaymentPartiallyRefunded), b.PaymentStatus)

	// A partially refunded booking can still complete.
	require.NoError(t, Complete(b, time.Now()))
	assert.Equal(t, string(StatusCompleted), b.Status)
}

func TestRefund_FullAfterCompletionTouchesPaymentOnly(t *testing.T) {
	b := pendingBooking()
	require.NoError(t, Confirm(b))
	require.NoError(t, Complete(b, time.Now()))

	require.NoError(t, Refund(b, false))
	assert.Equal(t, string(StatusCompleted), b.Status)
	assert.Equal(t, string(PaymentRefunded), b.PaymentStatus)
}

func TestRefund_FullOnConfirmed(t *testing.T) {
	b := pendingBooking()
	require.NoError(t, Confirm(b))

	require.NoError(t, Refund(b, false))
	assert.Equal(t, string(StatusRefunded), b.Status)
	assert.Equal(t, string(PaymentRefunded), b.PaymentStatus)
}

func TestCanTransition(t *testing.T) {
	assert.True(t, CanTransition(StatusPending, StatusConfirmed))
	assert.True(t, CanTransition(StatusPending, StatusExpired))
	assert.True(t, CanTransition(StatusConfirmed, StatusCompleted))
	assert.True(t, CanTransition(StatusPartiallyRefunded, StatusRefunded))

	assert.False(t, CanTransition(StatusPending, StatusCompleted))
	assert.False(t, CanTransition(StatusFailed, StatusConfirmed))
	assert.False(t, CanTransition(StatusCompleted, StatusCancelled))
	assert.False(t, CanTransition(StatusRefunded, StatusCompleted))
	assert.False(t, CanTransition(StatusExpired, StatusConfirmed))
}

func TestTerminal(t *testing.T) {
	assert.True(t, StatusCompleted.Terminal())
	assert.True(t, StatusCancelled.Terminal())
	assert.True(t, StatusRefunded.Terminal())
	assert.True(t, StatusExpired.Terminal())

	assert.False(t, StatusPending.Terminal())
	assert.False(t, StatusConfirmed.Terminal())
	assert.False(t, StatusFailed.Terminal())
	assert.False(t, StatusPartiallyRefunded.Terminal())
}
