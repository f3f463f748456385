package booking

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BruksfildServices01/barber-marketplace/internal/models"
)

// Monday, March 2nd 2026.
var monday = time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)

func at(day time.Time, hour, min int) time.Time {
	return time.Date(day.Year(), day.Month(), day.Day(), hour, min, 0, 0, day.Location())
}

func defaultSnapshot() Snapshot {
	return Snapshot{
		Now: at(monday, 8, 0),
		Constraints: models.BarberConstraints{
			BarberID:              1,
			MinIntervalMinutes:    5,
			MaxBookingsPerDay:     10,
			AdvanceBookingDays:    30,
			SameDayBookingEnabled: true,
		},
		Templates: []models.SlotTemplate{
			{
				BarberID:           1,
				Weekday:            1,
				StartTime:          "09:00",
				EndTime:            "17:00",
				SlotDurationMin:    30,
				MaxBookingsPerSlot: 1,
				Active:             true,
			},
		},
	}
}

func booking(start, end time.Time) models.Booking {
	return models.Booking{BarberID: 1, StartTime: start, EndTime: end, Status: "confirmed"}
}

func TestCheckAdmission_EmptyCalendarAdmits(t *testing.T) {
	s := defaultSnapshot()
	c := Candidate{Start: at(monday, 10, 0), End: at(monday, 10, 30)}

	assert.Nil(t, CheckAdmission(c, s))
}

func TestCheckAdmission_AdvanceWindow(t *testing.T) {
	s := defaultSnapshot()

	// 31 days out, Monday again, inside the template window.
	farDay := monday.AddDate(0, 0, 35)
	c := Candidate{Start: at(farDay, 10, 0), End: at(farDay, 10, 30)}

	rej := CheckAdmission(c, s)
	require.NotNil(t, rej)
	assert.Equal(t, RejectTooFarInAdvance, rej.Reason)

	// Zero means unlimited.
	s.Constraints.AdvanceBookingDays = 0
	assert.Nil(t, CheckAdmission(c, s))
}

func TestCheckAdmission_SameDayToggle(t *testing.T) {
	s := defaultSnapshot()
	s.Constraints.SameDayBookingEnabled = false

	c := Candidate{Start: at(monday, 10, 0), End: at(monday, 10, 30)}

	rej := CheckAdmission(c, s)
	require.NotNil(t, rej)
	assert.Equal(t, RejectSameDayDisallowed, rej.Reason)

	// The next Monday is fine.
	next := monday.AddDate(0, 0, 7)
	c = Candidate{Start: at(next, 10, 0), End: at(next, 10, 30)}
	assert.Nil(t, CheckAdmission(c, s))
}

func TestCheckAdmission_NoWindowForWeekday(t *testing.T) {
	s := defaultSnapshot()

	sunday := monday.AddDate(0, 0, 6)
	c := Candidate{Start: at(sunday, 10, 0), End: at(sunday, 10, 30)}

	rej := CheckAdmission(c, s)
	require.NotNil(t, rej)
	assert.Equal(t, RejectOutsideAvailability, rej.Reason)
}

func TestCheckAdmission_BeforeOpeningRejected(t *testing.T) {
	s := defaultSnapshot()
	c := Candidate{Start: at(monday, 8, 30), End: at(monday, 9, 0)}

	rej := CheckAdmission(c, s)
	require.NotNil(t, rej)
	assert.Equal(t, RejectOutsideAvailability, rej.Reason)
}

func TestCheckAdmission_DailyCap(t *testing.T) {
	s := defaultSnapshot()
	s.Constraints.MaxBookingsPerDay = 2
	s.Bookings = []models.Booking{
		booking(at(monday, 9, 0), at(monday, 9, 30)),
		booking(at(monday, 10, 0), at(monday, 10, 30)),
	}

	c := Candidate{Start: at(monday, 11, 0), End: at(monday, 11, 30)}

	rej := CheckAdmission(c, s)
	require.NotNil(t, rej)
	assert.Equal(t, RejectDailyLimitExceeded, rej.Reason)
}

func TestCheckAdmission_MinimumInterval(t *testing.T) {
	s := defaultSnapshot()
	s.Constraints.MinIntervalMinutes = 10
	s.Bookings = []models.Booking{
		booking(at(monday, 10, 0), at(monday, 10, 30)),
	}

	// 5 minutes after an existing start; the gap check fires before the
	// overlap check does.
	c := Candidate{Start: at(monday, 10, 5), End: at(monday, 10, 35)}

	rej := CheckAdmission(c, s)
	require.NotNil(t, rej)
	assert.Equal(t, RejectIntervalTooShort, rej.Reason)
}

func TestCheckAdmission_BufferedOverlap(t *testing.T) {
	s := defaultSnapshot()
	s.Templates[0].BufferAfterMin = 5
	s.Bookings = []models.Booking{
		booking(at(monday, 9, 0), at(monday, 9, 30)),
	}

	// Starts inside the occupied cell.
	c := Candidate{Start: at(monday, 9, 25), End: at(monday, 9, 55)}
	rej := CheckAdmission(c, s)
	require.NotNil(t, rej)

	// Clears the booking plus its 5 minute buffer.
	c = Candidate{Start: at(monday, 9, 35), End: at(monday, 10, 5)}
	assert.Nil(t, CheckAdmission(c, s))
}

func TestCheckAdmission_SlotCapacity(t *testing.T) {
	s := defaultSnapshot()
	s.Bookings = []models.Booking{
		booking(at(monday, 9, 0), at(monday, 9, 15)),
	}

	// Same 30 minute cell, capacity 1: full.
	c := Candidate{Start: at(monday, 9, 15), End: at(monday, 9, 30)}
	rej := CheckAdmission(c, s)
	require.NotNil(t, rej)
	assert.Equal(t, RejectSlotFull, rej.Reason)

	// Capacity 2 shares the cell as long as times do not overlap.
	s.Templates[0].MaxBookingsPerSlot = 2
	assert.Nil(t, CheckAdmission(c, s))

	// Overlap is still rejected regardless of capacity.
	c = Candidate{Start: at(monday, 9, 10), End: at(monday, 9, 40)}
	rej = CheckAdmission(c, s)
	require.NotNil(t, rej)
	assert.Equal(t, RejectTimeConflict, rej.Reason)
}

func TestCheckAdmission_FallbackAvailability(t *testing.T) {
	s := defaultSnapshot()
	s.Templates = nil
	s.Fallback = &models.Availability{
		BarberID:   1,
		Weekday:    1,
		StartTime:  "09:00",
		EndTime:    "18:00",
		LunchStart: "12:00",
		LunchEnd:   "13:00",
		Active:     true,
	}

	c := Candidate{Start: at(monday, 10, 0), End: at(monday, 10, 30)}
	assert.Nil(t, CheckAdmission(c, s))

	// Crossing lunch is not bookable.
	c = Candidate{Start: at(monday, 11, 45), End: at(monday, 12, 15)}
	rej := CheckAdmission(c, s)
	require.NotNil(t, rej)
	assert.Equal(t, RejectOutsideAvailability, rej.Reason)

	// Fallback capacity is 1: any overlap conflicts.
	s.Bookings = []models.Booking{
		booking(at(monday, 10, 0), at(monday, 10, 30)),
	}
	c = Candidate{Start: at(monday, 10, 15), End: at(monday, 10, 45)}
	rej = CheckAdmission(c, s)
	require.NotNil(t, rej)
	assert.Equal(t, RejectTimeConflict, rej.Reason)
}

func TestCheckAdmission_TemplatePreferredOverFallback(t *testing.T) {
	s := defaultSnapshot()
	s.Fallback = &models.Availability{
		BarberID:  1,
		Weekday:   1,
		StartTime: "06:00",
		EndTime:   "22:00",
		Active:    true,
	}

	// Inside the template window: template rules apply.
	c := Candidate{Start: at(monday, 10, 0), End: at(monday, 10, 30)}
	assert.Nil(t, CheckAdmission(c, s))

	// Outside the template but inside the fallback: admitted via fallback.
	c = Candidate{Start: at(monday, 19, 0), End: at(monday, 19, 30)}
	assert.Nil(t, CheckAdmission(c, s))
}
