package booking

import (
	"context"
	"time"

	"github.com/BruksfildServices01/barber-marketplace/internal/models"
)

type Repository interface {
	// -------- Users / services --------
	GetBarber(
		ctx context.Context,
		barberID uint,
	) (*models.User, error)

	GetBarberByPayoutAccount(
		ctx context.Context,
		accountID string,
	) (*models.User, error)

	UpdateBarberPayoutStatus(
		ctx context.Context,
		accountID string,
		status string,
	) error

	GetService(
		ctx context.Context,
		barberID uint,
		serviceID uint,
	) (*models.Service, error)

	// -------- Booking (create / lookup) --------
	CreateBooking(
		ctx context.Context,
		b *models.Booking,
	) error

	GetBooking(
		ctx context.Context,
		bookingID uint,
	) (*models.Booking, error)

	GetBookingForBarber(
		ctx context.Context,
		bookingID uint,
		barberID uint,
	) (*models.Booking, error)

	GetBookingByPaymentIntent(
		ctx context.Context,
		paymentIntentID string,
	) (*models.Booking, error)

	GetBookingByCheckoutSession(
		ctx context.Context,
		sessionID string,
	) (*models.Booking, error)

	UpdateBooking(
		ctx context.Context,
		b *models.Booking,
	) error

	// -------- Admission snapshot --------

	// ListBlockingBookings returns bookings that occupy the barber's
	// calendar (every status except cancelled, failed and expired) with start
	// times inside [from, to), excluding excludeID when non-zero.
	ListBlockingBookings(
		ctx context.Context,
		barberID uint,
		from time.Time,
		to time.Time,
		excludeID uint,
	) ([]models.Booking, error)

	ListBookingsForPeriod(
		ctx context.Context,
		barberID uint,
		from time.Time,
		to time.Time,
	) ([]models.Booking, error)
}
