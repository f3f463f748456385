package booking

import (
	"context"
	"time"

	"github.com/BruksfildServices01/barber-marketplace/internal/constraints"
	domain "github.com/BruksfildServices01/barber-marketplace/internal/domain/booking"
	"github.com/BruksfildServices01/barber-marketplace/internal/httperr"
	"github.com/BruksfildServices01/barber-marketplace/internal/timezone"
)

type TimeSlot struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

// ======================================================
// USE CASE
// ======================================================

// GetAvailability produces the bookable start times for one barber, service
// and day. Each candidate runs through the same admission checks a real
// booking would, so the grid never offers a slot creation would reject.
type GetAvailability struct {
	repo  domain.Repository
	store *constraints.Store
	now   func() time.Time
}

func NewGetAvailability(
	repo domain.Repository,
	store *constraints.Store,
) *GetAvailability {
	return &GetAvailability{
		repo:  repo,
		store: store,
		now:   time.Now,
	}
}

func (uc *GetAvailability) Execute(
	ctx context.Context,
	barberID uint,
	serviceID uint,
	date string,
) ([]TimeSlot, error) {

	barber, err := uc.repo.GetBarber(ctx, barberID)
	if err != nil {
		return nil, err
	}

	svc, err := uc.repo.GetService(ctx, barberID, serviceID)
	if err != nil {
		return nil, err
	}

	loc := timezone.Location(barber.Timezone)
	day, err := time.ParseInLocation("2006-01-02", date, loc)
	if err != nil {
		return nil, httperr.ErrValidation("date", "invalid_date")
	}

	weekday := int(day.Weekday())

	cons, err := uc.store.GetConstraints(ctx, barberID)
	if err != nil {
		return nil, err
	}
	templates, err := uc.store.ListActiveSlotTemplates(ctx, barberID, weekday)
	if err != nil {
		return nil, err
	}
	fallback, err := uc.store.GetAvailability(ctx, barberID, weekday)
	if err != nil {
		return nil, err
	}

	pad := time.Duration(cons.MinIntervalMinutes) * time.Minute
	bookings, err := uc.repo.ListBlockingBookings(
		ctx,
		barberID,
		day.Add(-pad),
		day.AddDate(0, 0, 1).Add(pad),
		0,
	)
	if err != nil {
		return nil, err
	}

	snap := domain.Snapshot{
		Now:         uc.now(),
		Constraints: cons,
		Templates:   templates,
		Fallback:    fallback,
		Bookings:    bookings,
	}

	duration := time.Duration(svc.DurationMin) * time.Minute
	slots := []TimeSlot{}
	seen := map[string]bool{}

	admit := func(start time.Time) {
		key := start.Format("15:04")
		if seen[key] {
			return
		}
		cand := domain.Candidate{Start: start, End: start.Add(duration)}
		if domain.CheckAdmission(cand, snap) == nil {
			seen[key] = true
			slots = append(slots, TimeSlot{
				Start: key,
				End:   cand.End.Format("15:04"),
			})
		}
	}

	// Template windows step by the template's slot duration.
	for _, tpl := range templates {
		winStart, okS := wallClock(day, tpl.StartTime)
		winEnd, okE := wallClock(day, tpl.EndTime)
		if !okS || !okE {
			continue
		}
		winStart = winStart.Add(time.Duration(tpl.BufferBeforeMin) * time.Minute)
		winEnd = winEnd.Add(-time.Duration(tpl.BufferAfterMin) * time.Minute)

		step := time.Duration(tpl.SlotDurationMin) * time.Minute
		if step <= 0 {
			step = duration
		}
		for cur := winStart; !cur.Add(duration).After(winEnd); cur = cur.Add(step) {
			admit(cur)
		}
	}

	// Fallback hours step by the service duration.
	if fallback != nil && fallback.Active {
		open, okS := wallClock(day, fallback.StartTime)
		closeAt, okE := wallClock(day, fallback.EndTime)
		if okS && okE {
			for cur := open; !cur.Add(duration).After(closeAt); cur = cur.Add(duration) {
				admit(cur)
			}
		}
	}

	return slots, nil
}

func wallClock(day time.Time, hm string) (time.Time, bool) {
	t, err := time.Parse("15:04", hm)
	if err != nil {
		return time.Time{}, false
	}
	return time.Date(
		day.Year(), day.Month(), day.Day(),
		t.Hour(), t.Minute(), 0, 0,
		day.Location(),
	), true
}
