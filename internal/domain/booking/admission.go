package booking

import (
	"time"

	"github.com/BruksfildServices01/barber-marketplace/internal/httperr"
	"github.com/BruksfildServices01/barber-marketplace/internal/models"
)

// ===============================
// Admission Checker
// ===============================

type RejectReason string

const (
	RejectTooFarInAdvance     RejectReason = "too_far_in_advance"
	RejectSameDayDisallowed   RejectReason = "same_day_disallowed"
	RejectOutsideAvailability RejectReason = "outside_availability"
	RejectDailyLimitExceeded  RejectReason = "daily_limit_exceeded"
	RejectIntervalTooShort    RejectReason = "interval_too_short"
	RejectSlotFull            RejectReason = "slot_full"
	RejectTimeConflict        RejectReason = "time_conflict"
)

type Rejection struct {
	Reason RejectReason
}

func (r *Rejection) Err() error {
	return httperr.ErrConflict(string(r.Reason))
}

type Candidate struct {
	Start time.Time
	End   time.Time
}

// Snapshot is everything the checker reads, loaded in one pass so all checks
// see a consistent view. Bookings must hold the barber's blocking bookings
// for the candidate day padded by the minimum interval on both sides.
type Snapshot struct {
	Now         time.Time
	Constraints models.BarberConstraints
	Templates   []models.SlotTemplate
	Fallback    *models.Availability
	Bookings    []models.Booking
}

// matchedWindow is the effective slot window the candidate landed in.
type matchedWindow struct {
	start     time.Time
	end       time.Time
	slotDur   time.Duration
	bufBefore time.Duration
	bufAfter  time.Duration
	capacity  uint
	template  bool
}

// CheckAdmission evaluates all constraints in order, short-circuiting on the
// first failure. Cheapest checks run first. A nil return means Admit.
func CheckAdmission(c Candidate, s Snapshot) *Rejection {

	cons := s.Constraints

	// 1. Advance window
	if cons.AdvanceBookingDays > 0 {
		limit := s.Now.AddDate(0, 0, int(cons.AdvanceBookingDays))
		if c.Start.After(limit) {
			return &Rejection{Reason: RejectTooFarInAdvance}
		}
	}

	// 2. Same-day toggle
	if !cons.SameDayBookingEnabled && sameDate(c.Start, s.Now) {
		return &Rejection{Reason: RejectSameDayDisallowed}
	}

	// 3. Slot containment
	win := matchWindow(c, s)
	if win == nil {
		return &Rejection{Reason: RejectOutsideAvailability}
	}

	// 4. Daily cap
	dayCount := 0
	for _, b := range s.Bookings {
		if sameDate(b.StartTime, c.Start) {
			dayCount++
		}
	}
	if cons.MaxBookingsPerDay > 0 && dayCount >= int(cons.MaxBookingsPerDay) {
		return &Rejection{Reason: RejectDailyLimitExceeded}
	}

	// 5. Minimum interval between booking starts
	minGap := time.Duration(cons.MinIntervalMinutes) * time.Minute
	for _, b := range s.Bookings {
		gap := c.Start.Sub(b.StartTime)
		if gap < 0 {
			gap = -gap
		}
		if gap < minGap {
			return &Rejection{Reason: RejectIntervalTooShort}
		}
	}

	// 6. Slot capacity (template windows only; the fallback window's implicit
	// capacity of 1 is enforced by the overlap check)
	if win.template && win.capacity > 0 {
		cellStart, cellEnd := win.cellFor(c.Start)
		occupied := uint(0)
		for _, b := range s.Bookings {
			if !b.StartTime.Before(cellStart) && b.StartTime.Before(cellEnd) {
				occupied++
			}
		}
		if occupied >= win.capacity {
			return &Rejection{Reason: RejectSlotFull}
		}
	}

	// 7. Overlap against buffered occupancy of existing bookings. Runs even
	// when capacity allows sharing, as the guard against template
	// misconfiguration.
	for _, b := range s.Bookings {
		occStart := b.StartTime.Add(-win.bufBefore)
		occEnd := b.EndTime.Add(win.bufAfter)
		if c.Start.Before(occEnd) && c.End.After(occStart) {
			return &Rejection{Reason: RejectTimeConflict}
		}
	}

	return nil
}

// cellFor returns the slot-duration cell within the window that contains t.
func (w *matchedWindow) cellFor(t time.Time) (time.Time, time.Time) {
	if w.slotDur <= 0 {
		return w.start, w.end
	}
	offset := t.Sub(w.start)
	k := offset / w.slotDur
	cellStart := w.start.Add(k * w.slotDur)
	return cellStart, cellStart.Add(w.slotDur)
}

func matchWindow(c Candidate, s Snapshot) *matchedWindow {
	weekday := int(c.Start.Weekday())

	for _, tpl := range s.Templates {
		if !tpl.Active || tpl.Weekday != weekday {
			continue
		}

		tplStart, okS := atTime(c.Start, tpl.StartTime)
		tplEnd, okE := atTime(c.Start, tpl.EndTime)
		if !okS || !okE || !tplStart.Before(tplEnd) {
			continue
		}

		bufBefore := time.Duration(tpl.BufferBeforeMin) * time.Minute
		bufAfter := time.Duration(tpl.BufferAfterMin) * time.Minute

		winStart := tplStart.Add(bufBefore)
		winEnd := tplEnd.Add(-bufAfter)

		if !c.Start.Before(winStart) && !c.End.After(winEnd) {
			return &matchedWindow{
				start:     winStart,
				end:       winEnd,
				slotDur:   time.Duration(tpl.SlotDurationMin) * time.Minute,
				bufBefore: bufBefore,
				bufAfter:  bufAfter,
				capacity:  tpl.MaxBookingsPerSlot,
				template:  true,
			}
		}
	}

	// Fallback: the barber's general weekly hours, implicit capacity 1.
	av := s.Fallback
	if av == nil || !av.Active || av.Weekday != weekday {
		return nil
	}

	open, okS := atTime(c.Start, av.StartTime)
	closeAt, okE := atTime(c.Start, av.EndTime)
	if !okS || !okE || !open.Before(closeAt) {
		return nil
	}
	if c.Start.Before(open) || c.End.After(closeAt) {
		return nil
	}

	// Lunch break splits the fallback window, no bookings across it.
	if av.LunchStart != "" && av.LunchEnd != "" {
		lunchStart, okLS := atTime(c.Start, av.LunchStart)
		lunchEnd, okLE := atTime(c.Start, av.LunchEnd)
		if okLS && okLE && c.Start.Before(lunchEnd) && c.End.After(lunchStart) {
			return nil
		}
	}

	return &matchedWindow{
		start:    open,
		end:      closeAt,
		capacity: 1,
	}
}

// atTime anchors an "HH:MM" wall-clock string on ref's date and location.
func atTime(ref time.Time, hm string) (time.Time, bool) {
	t, err := time.Parse("15:04", hm)
	if err != nil {
		return time.Time{}, false
	}
	return time.Date(
		ref.Year(), ref.Month(), ref.Day(),
		t.Hour(), t.Minute(), 0, 0,
		ref.Location(),
	), true
}

func sameDate(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.In(a.Location()).Date()
	return ay == by && am == bm && ad == bd
}
