package booking

import (
	"time"

	"github.com/BruksfildServices01/barber-marketplace/internal/httperr"
	"github.com/BruksfildServices01/barber-marketplace/internal/models"
)

// ===============================
// Domain Actions
// ===============================

func transition(b *models.Booking, to Status) error {
	if !CanTransition(Status(b.Status), to) {
		return httperr.ErrBusiness("invalid_state")
	}
	b.Status = string(to)
	return nil
}

// Confirm applies a successful payment to a pending booking.
func Confirm(b *models.Booking) error {
	if err := transition(b, StatusConfirmed); err != nil {
		return err
	}
	b.PaymentStatus = string(PaymentSucceeded)
	return nil
}

func Fail(b *models.Booking) error {
	if err := transition(b, StatusFailed); err != nil {
		return err
	}
	b.PaymentStatus = string(PaymentFailed)
	return nil
}

// Expire marks a pending booking whose checkout session lapsed.
func Expire(b *models.Booking) error {
	if err := transition(b, StatusExpired); err != nil {
		return err
	}
	b.PaymentStatus = string(PaymentFailed)
	return nil
}

func Complete(b *models.Booking, now time.Time) error {
	if err := transition(b, StatusCompleted); err != nil {
		return err
	}
	b.CompletedAt = &now
	return nil
}

func Cancel(b *models.Booking, now time.Time) error {
	if err := transition(b, StatusCancelled); err != nil {
		return err
	}
	b.CancelledAt = &now
	return nil
}

// Refund applies a provider refund. A partial refund only touches the
// payment side when the booking has already reached a terminal status.
func Refund(b *models.Booking, partial bool) error {
	if partial {
		b.PaymentStatus = string(PaymentPartiallyRefunded)
		if !Status(b.Status).Terminal() {
			b.Status = string(StatusPartiallyRefunded)
		}
		return nil
	}

	b.PaymentStatus = string(PaymentRefunded)
	if !Status(b.Status).Terminal() {
		if !CanTransition(Status(b.Status), StatusRefunded) {
			return httperr.ErrBusiness("invalid_state")
		}
		b.Status = string(StatusRefunded)
	}
	return nil
}
