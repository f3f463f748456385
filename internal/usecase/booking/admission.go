package booking

import (
	"context"
	"time"

	"github.com/BruksfildServices01/barber-marketplace/internal/constraints"
	domain "github.com/BruksfildServices01/barber-marketplace/internal/domain/booking"
)

// ======================================================
// ADMISSION CHECKER
// ======================================================

// AdmissionChecker loads a barber's scheduling rules plus the bookings that
// can interact with a candidate and runs the domain checks against that one
// consistent snapshot. The database exclusion constraint stays authoritative
// for races the snapshot cannot see.
type AdmissionChecker struct {
	repo  domain.Repository
	store *constraints.Store
	now   func() time.Time
}

func NewAdmissionChecker(
	repo domain.Repository,
	store *constraints.Store,
) *AdmissionChecker {
	return &AdmissionChecker{
		repo:  repo,
		store: store,
		now:   time.Now,
	}
}

// Check returns nil when the candidate is admissible. excludeID removes one
// booking from the snapshot, used when rescheduling so a booking does not
// block itself.
func (a *AdmissionChecker) Check(
	ctx context.Context,
	barberID uint,
	cand domain.Candidate,
	excludeID uint,
) error {

	cons, err := a.store.GetConstraints(ctx, barberID)
	if err != nil {
		return err
	}

	weekday := int(cand.Start.Weekday())

	templates, err := a.store.ListActiveSlotTemplates(ctx, barberID, weekday)
	if err != nil {
		return err
	}

	fallback, err := a.store.GetAvailability(ctx, barberID, weekday)
	if err != nil {
		return err
	}

	// The day's bookings, padded by the minimum interval so starts just
	// outside the day boundary still count against the gap check.
	loc := cand.Start.Location()
	dayStart := time.Date(
		cand.Start.Year(), cand.Start.Month(), cand.Start.Day(),
		0, 0, 0, 0, loc,
	)
	dayEnd := dayStart.AddDate(0, 0, 1)
	pad := time.Duration(cons.MinIntervalMinutes) * time.Minute

	bookings, err := a.repo.ListBlockingBookings(
		ctx,
		barberID,
		dayStart.Add(-pad),
		dayEnd.Add(pad),
		excludeID,
	)
	if err != nil {
		return err
	}

	snap := domain.Snapshot{
		Now:         a.now(),
		Constraints: cons,
		Templates:   templates,
		Fallback:    fallback,
		Bookings:    bookings,
	}

	if rej := domain.CheckAdmission(cand, snap); rej != nil {
		return rej.Err()
	}
	return nil
}
