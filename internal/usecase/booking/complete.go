package booking

import (
	"context"
	"time"

	"github.com/BruksfildServices01/barber-marketplace/internal/audit"
	domain "github.com/BruksfildServices01/barber-marketplace/internal/domain/booking"
	"github.com/BruksfildServices01/barber-marketplace/internal/models"
	"github.com/BruksfildServices01/barber-marketplace/internal/notify"
)

type CompleteBooking struct {
	repo     domain.Repository
	notifier *notify.Dispatcher
	audit    *audit.Dispatcher
	now      func() time.Time
}

func NewCompleteBooking(
	repo domain.Repository,
	notifier *notify.Dispatcher,
	auditor *audit.Dispatcher,
) *CompleteBooking {
	return &CompleteBooking{
		repo:     repo,
		notifier: notifier,
		audit:    auditor,
		now:      time.Now,
	}
}

func (uc *CompleteBooking) Execute(
	ctx context.Context,
	bookingID uint,
	barberID uint,
) (*models.Booking, error) {

	b, err := uc.repo.GetBookingForBarber(ctx, bookingID, barberID)
	if err != nil {
		return nil, err
	}

	if err := domain.Complete(b, uc.now()); err != nil {
		return nil, err
	}

	if err := uc.repo.UpdateBooking(ctx, b); err != nil {
		return nil, err
	}

	if b.ClientID != nil {
		uc.notifier.Push(models.Notification{
			UserID:    *b.ClientID,
			Title:     "Booking Completed",
			Message:   "Thanks for visiting, see you next time.",
			Type:      notify.TypeBooking,
			BookingID: &b.ID,
		})
	}

	uc.audit.Dispatch(audit.Event{
		UserID:   &barberID,
		Action:   "booking_completed",
		Entity:   "booking",
		EntityID: &b.ID,
	})

	return b, nil
}
