package booking

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/BruksfildServices01/barber-marketplace/internal/audit"
	domain "github.com/BruksfildServices01/barber-marketplace/internal/domain/booking"
	"github.com/BruksfildServices01/barber-marketplace/internal/httperr"
	"github.com/BruksfildServices01/barber-marketplace/internal/models"
	"github.com/BruksfildServices01/barber-marketplace/internal/notify"
	"github.com/BruksfildServices01/barber-marketplace/internal/settlement"
)

// ======================================================
// INPUT
// ======================================================

type CreateBookingInput struct {
	BarberID  uint
	ServiceID uint

	// Exactly one identity path.
	ClientID   *uint
	GuestName  string
	GuestEmail string
	GuestPhone string

	Start time.Time

	// PaymentIntentID may initially carry the checkout session id when the
	// provider has not materialized a payment intent yet; settlement
	// backfills the real one. CheckoutSessionID is empty for walk-ins.
	PaymentIntentID   string
	CheckoutSessionID string

	// Price defaults to the service price; fee and payout default to the
	// platform split when both are absent.
	Price        float64
	PlatformFee  *float64
	BarberPayout *float64

	Notes string
}

// ======================================================
// USE CASE
// ======================================================

type CreateBooking struct {
	repo      domain.Repository
	admission *AdmissionChecker
	notifier  *notify.Dispatcher
	audit     *audit.Dispatcher

	feePercent float64
	now        func() time.Time
}

func NewCreateBooking(
	repo domain.Repository,
	admission *AdmissionChecker,
	notifier *notify.Dispatcher,
	auditor *audit.Dispatcher,
	feePercent float64,
) *CreateBooking {
	return &CreateBooking{
		repo:       repo,
		admission:  admission,
		notifier:   notifier,
		audit:      auditor,
		feePercent: feePercent,
		now:        time.Now,
	}
}

// ======================================================
// EXECUTE
// ======================================================

func (uc *CreateBooking) Execute(
	ctx context.Context,
	in CreateBookingInput,
) (*models.Booking, error) {

	// --------------------------------------------------
	// 1. Identity: registered client or guest, never both
	// --------------------------------------------------
	hasGuest := in.GuestName != "" || in.GuestEmail != "" || in.GuestPhone != ""
	if in.ClientID != nil && hasGuest {
		return nil, httperr.ErrValidation("client", "both_identities")
	}
	if in.ClientID == nil && (in.GuestName == "" || in.GuestEmail == "" || in.GuestPhone == "") {
		return nil, httperr.ErrValidation("client", "identity_required")
	}

	// --------------------------------------------------
	// 2. Barber and service
	// --------------------------------------------------
	barber, err := uc.repo.GetBarber(ctx, in.BarberID)
	if err != nil {
		return nil, err
	}

	svc, err := uc.repo.GetService(ctx, in.BarberID, in.ServiceID)
	if err != nil {
		return nil, err
	}

	// --------------------------------------------------
	// 3. Time and payment reference
	// --------------------------------------------------
	if in.Start.IsZero() || !in.Start.After(uc.now()) {
		return nil, httperr.ErrValidation("start_time", "must_be_future")
	}
	if in.PaymentIntentID == "" {
		return nil, httperr.ErrValidation("payment_intent_id", "required")
	}

	end := in.Start.Add(time.Duration(svc.DurationMin) * time.Minute)

	// --------------------------------------------------
	// 4. Price and split
	// --------------------------------------------------
	price := in.Price
	if price == 0 {
		price = svc.Price
	}
	if price < 0 {
		return nil, httperr.ErrValidation("price", "negative")
	}

	var fee, payout float64
	switch {
	case in.PlatformFee != nil && in.BarberPayout != nil:
		fee, payout = *in.PlatformFee, *in.BarberPayout
		if err := settlement.ValidateSplit(price, fee, payout); err != nil {
			return nil, err
		}
	case in.PlatformFee == nil && in.BarberPayout == nil:
		fee, payout = settlement.ComputeSplit(price, uc.feePercent)
	default:
		return nil, httperr.ErrValidation("platform_fee", "partial_split")
	}

	// --------------------------------------------------
	// 5. Admission
	// --------------------------------------------------
	cand := domain.Candidate{Start: in.Start, End: end}
	if err := uc.admission.Check(ctx, in.BarberID, cand, 0); err != nil {
		return nil, err
	}

	// --------------------------------------------------
	// 6. Insert; the exclusion constraint settles races
	// --------------------------------------------------
	b := &models.Booking{
		BarberID:        in.BarberID,
		ServiceID:       svc.ID,
		ClientID:        in.ClientID,
		GuestName:       in.GuestName,
		GuestEmail:      in.GuestEmail,
		GuestPhone:      in.GuestPhone,
		StartTime:       in.Start,
		EndTime:         end,
		Status:            string(domain.StatusPending),
		PaymentStatus:     string(domain.PaymentPending),
		PaymentIntentID:   in.PaymentIntentID,
		CheckoutSessionID: in.CheckoutSessionID,
		Price:           price,
		PlatformFee:     fee,
		BarberPayout:    payout,
		Notes:           in.Notes,
	}

	if err := uc.repo.CreateBooking(ctx, b); err != nil {
		if httperr.IsExclusionConflict(err) {
			return nil, httperr.ErrConflict("time_conflict")
		}
		if httperr.IsUniqueViolation(err) || errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, httperr.ErrConflict("duplicate_payment_intent")
		}
		return nil, err
	}

	// --------------------------------------------------
	// 7. Notifications and audit
	// --------------------------------------------------
	uc.notifier.Push(models.Notification{
		UserID:    barber.ID,
		Title:     "New Booking",
		Message:   svc.Name + " at " + in.Start.Format("2006-01-02 15:04"),
		Type:      notify.TypeBooking,
		BookingID: &b.ID,
	})
	if b.ClientID != nil {
		uc.notifier.Push(models.Notification{
			UserID:    *b.ClientID,
			Title:     "Booking Confirmation",
			Message:   "Your booking is reserved pending payment.",
			Type:      notify.TypeBooking,
			BookingID: &b.ID,
		})
	}

	uc.audit.Dispatch(audit.Event{
		UserID:   in.ClientID,
		Action:   "booking_created",
		Entity:   "booking",
		EntityID: &b.ID,
	})

	return b, nil
}
