package booking

import (
	"context"
	"time"

	"github.com/BruksfildServices01/barber-marketplace/internal/audit"
	domain "github.com/BruksfildServices01/barber-marketplace/internal/domain/booking"
	"github.com/BruksfildServices01/barber-marketplace/internal/httperr"
	"github.com/BruksfildServices01/barber-marketplace/internal/models"
	"github.com/BruksfildServices01/barber-marketplace/internal/notify"
)

// ======================================================
// INPUT
// ======================================================

type UpdateBookingInput struct {
	BookingID uint
	BarberID  uint

	Start  *time.Time
	Status *string
	Notes  *string
}

// ======================================================
// USE CASE
// ======================================================

type UpdateBooking struct {
	repo      domain.Repository
	admission *AdmissionChecker
	notifier  *notify.Dispatcher
	audit     *audit.Dispatcher
	now       func() time.Time
}

func NewUpdateBooking(
	repo domain.Repository,
	admission *AdmissionChecker,
	notifier *notify.Dispatcher,
	auditor *audit.Dispatcher,
) *UpdateBooking {
	return &UpdateBooking{
		repo:      repo,
		admission: admission,
		notifier:  notifier,
		audit:     auditor,
		now:       time.Now,
	}
}

// ======================================================
// EXECUTE
// ======================================================

func (uc *UpdateBooking) Execute(
	ctx context.Context,
	in UpdateBookingInput,
) (*models.Booking, error) {

	b, err := uc.repo.GetBookingForBarber(ctx, in.BookingID, in.BarberID)
	if err != nil {
		return nil, err
	}

	// Finalized bookings are read-only.
	if domain.Status(b.Status).Terminal() {
		return nil, httperr.ErrBusiness("booking_finalized")
	}

	// --------------------------------------------------
	// 1. Reschedule: re-admit the new time, the booking
	//    itself excluded from the snapshot
	// --------------------------------------------------
	if in.Start != nil && !in.Start.Equal(b.StartTime) {
		svc, err := uc.repo.GetService(ctx, b.BarberID, b.ServiceID)
		if err != nil {
			return nil, err
		}

		start := *in.Start
		if !start.After(uc.now()) {
			return nil, httperr.ErrValidation("start_time", "must_be_future")
		}
		end := start.Add(time.Duration(svc.DurationMin) * time.Minute)

		cand := domain.Candidate{Start: start, End: end}
		if err := uc.admission.Check(ctx, b.BarberID, cand, b.ID); err != nil {
			return nil, err
		}

		b.StartTime = start
		b.EndTime = end
	}

	// --------------------------------------------------
	// 2. Status change through the lifecycle actions
	// --------------------------------------------------
	statusChanged := false
	if in.Status != nil && *in.Status != b.Status {
		switch domain.Status(*in.Status) {
		case domain.StatusConfirmed:
			err = domain.Confirm(b)
		case domain.StatusCancelled:
			err = domain.Cancel(b, uc.now())
		case domain.StatusCompleted:
			err = domain.Complete(b, uc.now())
		default:
			err = httperr.ErrBusiness("invalid_state")
		}
		if err != nil {
			return nil, err
		}
		statusChanged = true
	}

	if in.Notes != nil {
		b.Notes = *in.Notes
	}

	if err := uc.repo.UpdateBooking(ctx, b); err != nil {
		if httperr.IsExclusionConflict(err) {
			return nil, httperr.ErrConflict("time_conflict")
		}
		return nil, err
	}

	// --------------------------------------------------
	// 3. Tell the client what changed
	// --------------------------------------------------
	if b.ClientID != nil {
		title := "Booking Updated"
		if statusChanged {
			switch domain.Status(b.Status) {
			case domain.StatusConfirmed:
				title = "Booking Confirmed"
			case domain.StatusCancelled:
				title = "Booking Cancelled"
			case domain.StatusCompleted:
				title = "Booking Completed"
			}
		}
		uc.notifier.Push(models.Notification{
			UserID:    *b.ClientID,
			Title:     title,
			Message:   "Your booking for " + b.StartTime.Format("2006-01-02 15:04") + " changed.",
			Type:      notify.TypeBooking,
			BookingID: &b.ID,
		})
	}

	uc.audit.Dispatch(audit.Event{
		UserID:   &in.BarberID,
		Action:   "booking_updated",
		Entity:   "booking",
		EntityID: &b.ID,
	})

	return b, nil
}
