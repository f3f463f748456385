package booking

import (
	"context"
	"time"

	"github.com/BruksfildServices01/barber-marketplace/internal/audit"
	domain "github.com/BruksfildServices01/barber-marketplace/internal/domain/booking"
	"github.com/BruksfildServices01/barber-marketplace/internal/models"
	"github.com/BruksfildServices01/barber-marketplace/internal/notify"
)

type CancelBooking struct {
	repo     domain.Repository
	notifier *notify.Dispatcher
	audit    *audit.Dispatcher
	now      func() time.Time
}

func NewCancelBooking(
	repo domain.Repository,
	notifier *notify.Dispatcher,
	auditor *audit.Dispatcher,
) *CancelBooking {
	return &CancelBooking{
		repo:     repo,
		notifier: notifier,
		audit:    auditor,
		now:      time.Now,
	}
}

// Execute cancels a booking on behalf of its barber. Cancelling frees the
// time immediately; the exclusion constraint only covers pending and
// confirmed rows.
func (uc *CancelBooking) Execute(
	ctx context.Context,
	bookingID uint,
	barberID uint,
) (*models.Booking, error) {

	b, err := uc.repo.GetBookingForBarber(ctx, bookingID, barberID)
	if err != nil {
		return nil, err
	}

	if err := domain.Cancel(b, uc.now()); err != nil {
		return nil, err
	}

	if err := uc.repo.UpdateBooking(ctx, b); err != nil {
		return nil, err
	}

	if b.ClientID != nil {
		uc.notifier.Push(models.Notification{
			UserID:    *b.ClientID,
			Title:     "Booking Cancelled",
			Message:   "Your booking for " + b.StartTime.Format("2006-01-02 15:04") + " was cancelled.",
			Type:      notify.TypeBooking,
			BookingID: &b.ID,
		})
	}

	uc.audit.Dispatch(audit.Event{
		UserID:   &barberID,
		Action:   "booking_cancelled",
		Entity:   "booking",
		EntityID: &b.ID,
	})

	return b, nil
}
