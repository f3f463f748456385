package booking

import (
	"context"
	"time"

	domain "github.com/BruksfildServices01/barber-marketplace/internal/domain/booking"
	"github.com/BruksfildServices01/barber-marketplace/internal/httperr"
	"github.com/BruksfildServices01/barber-marketplace/internal/models"
	"github.com/BruksfildServices01/barber-marketplace/internal/timezone"
)

type ListBookings struct {
	repo domain.Repository
}

func NewListBookings(repo domain.Repository) *ListBookings {
	return &ListBookings{repo: repo}
}

// ByDate lists the barber's bookings for one day, date in "2006-01-02"
// interpreted in the barber's timezone.
func (uc *ListBookings) ByDate(
	ctx context.Context,
	barberID uint,
	date string,
) ([]models.Booking, error) {

	barber, err := uc.repo.GetBarber(ctx, barberID)
	if err != nil {
		return nil, err
	}

	loc := timezone.Location(barber.Timezone)
	day, err := time.ParseInLocation("2006-01-02", date, loc)
	if err != nil {
		return nil, httperr.ErrValidation("date", "invalid_date")
	}

	return uc.repo.ListBookingsForPeriod(ctx, barberID, day, day.AddDate(0, 0, 1))
}

// ByMonth lists the barber's bookings for one month, month in "2006-01".
func (uc *ListBookings) ByMonth(
	ctx context.Context,
	barberID uint,
	month string,
) ([]models.Booking, error) {

	barber, err := uc.repo.GetBarber(ctx, barberID)
	if err != nil {
		return nil, err
	}

	loc := timezone.Location(barber.Timezone)
	first, err := time.ParseInLocation("2006-01", month, loc)
	if err != nil {
		return nil, httperr.ErrValidation("month", "invalid_month")
	}

	return uc.repo.ListBookingsForPeriod(ctx, barberID, first, first.AddDate(0, 1, 0))
}
