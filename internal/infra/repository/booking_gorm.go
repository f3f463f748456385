package repository

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	domain "github.com/BruksfildServices01/barber-marketplace/internal/domain/booking"
	"github.com/BruksfildServices01/barber-marketplace/internal/httperr"
	"github.com/BruksfildServices01/barber-marketplace/internal/models"
)

type BookingGormRepository struct {
	db *gorm.DB
}

func NewBookingGormRepository(db *gorm.DB) *BookingGormRepository {
	return &BookingGormRepository{db: db}
}

// notFoundOr keeps the port's error contract: a missing row is a typed
// not-found, anything else is an upstream failure the caller may retry.
func notFoundOr(err error, entity string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return httperr.ErrNotFound(entity)
	}
	return httperr.ErrUpstream("get_"+entity, err)
}

// --------------------------------------------------
// Users / services
// --------------------------------------------------

func (r *BookingGormRepository) GetBarber(
	ctx context.Context,
	barberID uint,
) (*models.User, error) {

	var u models.User
	if err := r.db.WithContext(ctx).
		Where("id = ? AND role = ?", barberID, models.RoleBarber).
		First(&u).Error; err != nil {
		return nil, notFoundOr(err, "barber")
	}
	return &u, nil
}

func (r *BookingGormRepository) GetBarberByPayoutAccount(
	ctx context.Context,
	accountID string,
) (*models.User, error) {

	var u models.User
	if err := r.db.WithContext(ctx).
		Where("payout_account_id = ? AND role = ?", accountID, models.RoleBarber).
		First(&u).Error; err != nil {
		return nil, notFoundOr(err, "barber")
	}
	return &u, nil
}

func (r *BookingGormRepository) UpdateBarberPayoutStatus(
	ctx context.Context,
	accountID string,
	status string,
) error {

	res := r.db.WithContext(ctx).
		Model(&models.User{}).
		Where("payout_account_id = ? AND role = ?", accountID, models.RoleBarber).
		Update("payout_account_status", status)

	if res.Error != nil {
		return httperr.ErrUpstream("update_payout_status", res.Error)
	}
	if res.RowsAffected == 0 {
		return httperr.ErrNotFound("barber")
	}
	return nil
}

func (r *BookingGormRepository) GetService(
	ctx context.Context,
	barberID uint,
	serviceID uint,
) (*models.Service, error) {

	var svc models.Service
	if err := r.db.WithContext(ctx).
		Where("id = ? AND barber_id = ? AND active = ?", serviceID, barberID, true).
		First(&svc).Error; err != nil {
		return nil, notFoundOr(err, "service")
	}
	return &svc, nil
}

// --------------------------------------------------
// Booking (create / lookup)
// --------------------------------------------------

// CreateBooking returns constraint violations (exclusion, unique) unwrapped
// inside the upstream error so httperr's pg checks still recognize them.
func (r *BookingGormRepository) CreateBooking(
	ctx context.Context,
	b *models.Booking,
) error {
	if err := r.db.WithContext(ctx).Create(b).Error; err != nil {
		return httperr.ErrUpstream("create_booking", err)
	}
	return nil
}

func (r *BookingGormRepository) GetBooking(
	ctx context.Context,
	bookingID uint,
) (*models.Booking, error) {

	var b models.Booking
	if err := r.db.WithContext(ctx).
		Preload("Service").
		First(&b, bookingID).Error; err != nil {
		return nil, notFoundOr(err, "booking")
	}
	return &b, nil
}

func (r *BookingGormRepository) GetBookingForBarber(
	ctx context.Context,
	bookingID uint,
	barberID uint,
) (*models.Booking, error) {

	var b models.Booking
	if err := r.db.WithContext(ctx).
		Preload("Service").
		Where("id = ? AND barber_id = ?", bookingID, barberID).
		First(&b).Error; err != nil {
		return nil, notFoundOr(err, "booking")
	}
	return &b, nil
}

func (r *BookingGormRepository) GetBookingByPaymentIntent(
	ctx context.Context,
	paymentIntentID string,
) (*models.Booking, error) {

	var b models.Booking
	if err := r.db.WithContext(ctx).
		Where("payment_intent_id = ?", paymentIntentID).
		First(&b).Error; err != nil {
		return nil, notFoundOr(err, "booking")
	}
	return &b, nil
}

func (r *BookingGormRepository) GetBookingByCheckoutSession(
	ctx context.Context,
	sessionID string,
) (*models.Booking, error) {

	var b models.Booking
	if err := r.db.WithContext(ctx).
		Where("checkout_session_id = ?", sessionID).
		First(&b).Error; err != nil {
		return nil, notFoundOr(err, "booking")
	}
	return &b, nil
}

func (r *BookingGormRepository) UpdateBooking(
	ctx context.Context,
	b *models.Booking,
) error {
	if err := r.db.WithContext(ctx).Save(b).Error; err != nil {
		return httperr.ErrUpstream("update_booking", err)
	}
	return nil
}

// --------------------------------------------------
// Admission snapshot
// --------------------------------------------------

func (r *BookingGormRepository) ListBlockingBookings(
	ctx context.Context,
	barberID uint,
	from time.Time,
	to time.Time,
	excludeID uint,
) ([]models.Booking, error) {

	// Cancelled, failed and expired bookings release their time; everything
	// else (pending, confirmed, completed, refund states) still occupies it.
	q := r.db.WithContext(ctx).
		Select("id", "start_time", "end_time", "status").
		Where(
			"barber_id = ? AND status NOT IN ('cancelled', 'failed', 'expired') AND start_time >= ? AND start_time < ?",
			barberID, from, to,
		)

	if excludeID != 0 {
		q = q.Where("id <> ?", excludeID)
	}

	var bookings []models.Booking
	if err := q.Order("start_time ASC").Find(&bookings).Error; err != nil {
		return nil, httperr.ErrUpstream("list_blocking_bookings", err)
	}
	return bookings, nil
}

func (r *BookingGormRepository) ListBookingsForPeriod(
	ctx context.Context,
	barberID uint,
	from time.Time,
	to time.Time,
) ([]models.Booking, error) {

	var bookings []models.Booking
	err := r.db.WithContext(ctx).
		Preload("Client").
		Preload("Service").
		Where(
			"barber_id = ? AND start_time >= ? AND start_time < ?",
			barberID, from, to,
		).
		Order("start_time ASC").
		Find(&bookings).Error

	if err != nil {
		return nil, httperr.ErrUpstream("list_bookings_for_period", err)
	}
	return bookings, nil
}

// Compile-time check
var _ domain.Repository = (*BookingGormRepository)(nil)
