package settlement

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/go-redis/redis/v8"
	"gorm.io/gorm"

	domain "github.com/BruksfildServices01/barber-marketplace/internal/domain/booking"
	"github.com/BruksfildServices01/barber-marketplace/internal/httperr"
	"github.com/BruksfildServices01/barber-marketplace/internal/models"
	"github.com/BruksfildServices01/barber-marketplace/internal/notify"
)

const providerName = "stripe"

const dedupeTTL = 24 * time.Hour

// Reconciler applies verified provider events to booking state. Deliveries
// are at-least-once and unordered, so every branch is idempotent: a replay
// either hits the dedupe record or finds the booking already settled.
type Reconciler struct {
	db       *gorm.DB
	repo     domain.Repository
	notifier *notify.Dispatcher
	rdb      *redis.Client // optional fast dedupe front

	feePercent float64
	now        func() time.Time
}

func NewReconciler(
	db *gorm.DB,
	repo domain.Repository,
	notifier *notify.Dispatcher,
	rdb *redis.Client,
	feePercent float64,
) *Reconciler {
	return &Reconciler{
		db:         db,
		repo:       repo,
		notifier:   notifier,
		rdb:        rdb,
		feePercent: feePercent,
		now:        time.Now,
	}
}

// Handle settles one verified event. A nil return tells the transport to
// acknowledge (2xx); any retryable error tells it to fail so the provider
// redelivers. Unknown referenced entities are logged and acknowledged, the
// provider must stop redelivering what can never succeed.
func (r *Reconciler) Handle(ctx context.Context, ev Event) error {
	seen, err := r.alreadySeen(ctx, ev)
	if err != nil {
		return err
	}
	if seen {
		log.Printf("settlement: duplicate delivery %s (%s), ignoring", ev.ProviderEventID(), ev.EventType())
		return nil
	}

	switch e := ev.(type) {
	case CheckoutCompleted:
		err = r.applyPaymentSuccess(ctx, e.PaymentIntentID, e.SessionID, &e.Metadata)
	case PaymentSucceeded:
		err = r.applyPaymentSuccess(ctx, e.PaymentIntentID, "", nil)
	case CheckoutExpired:
		err = r.applyExpiry(ctx, e.PaymentIntentID, e.SessionID)
	case PaymentFailed:
		err = r.applyFailure(ctx, e.PaymentIntentID)
	case ChargeRefunded:
		err = r.applyRefund(ctx, e)
	case AccountUpdated:
		err = r.applyAccountStatus(ctx, e.AccountID, accountStatus(e))
	case AccountDeauthorized:
		err = r.applyAccountStatus(ctx, e.AccountID, models.PayoutAccountDeauthorized)
	case UnknownEvent:
		log.Printf("settlement: unhandled event type %s, acknowledging", e.EventType())
		err = nil
	default:
		log.Printf("settlement: unhandled event type %s, acknowledging", ev.EventType())
		err = nil
	}

	if err != nil {
		if !deadEnd(err) {
			// Store or provider trouble; fail the delivery so it is retried.
			return err
		}
		// Business-level dead ends (missing booking or barber, state already
		// settled) are acknowledged; redelivery cannot fix them.
		log.Printf("settlement: event %s (%s) not applied: %v", ev.ProviderEventID(), ev.EventType(), err)
	}

	r.markProcessed(ctx, ev)
	return nil
}

// deadEnd reports whether redelivering the event could never change the
// outcome. Only typed business failures qualify; anything unrecognized is
// assumed transient and worth a retry.
func deadEnd(err error) bool {
	var be httperr.BusinessError
	if errors.As(err, &be) {
		return true
	}
	if _, ok := httperr.ConflictReason(err); ok {
		return true
	}
	return httperr.IsNotFound(err) || httperr.IsValidation(err) || httperr.IsSignature(err)
}

// ===============================
// Dedupe
// ===============================

// alreadySeen consults the dedupe records without writing them. The records
// are only written after an event fully settles, so a delivery that failed
// midway is retried by the provider instead of silently lost.
func (r *Reconciler) alreadySeen(ctx context.Context, ev Event) (bool, error) {
	id := ev.ProviderEventID()
	if id == "" {
		// No delivery id; only state-based idempotency applies.
		return false, nil
	}

	if r.rdb != nil {
		n, err := r.rdb.Exists(ctx, "webhook:"+providerName+":"+id).Result()
		if err == nil && n > 0 {
			return true, nil
		}
		if err != nil {
			log.Println("settlement: redis dedupe unavailable:", err)
		}
	}

	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.WebhookEvent{}).
		Where(
			"provider = ? AND provider_event_id = ? AND processed_at IS NOT NULL",
			providerName, id,
		).
		Count(&count).Error
	if err != nil {
		return false, httperr.ErrUpstream("lookup_webhook_event", err)
	}
	return count > 0, nil
}

func (r *Reconciler) markProcessed(ctx context.Context, ev Event) {
	id := ev.ProviderEventID()
	if id == "" {
		return
	}

	now := r.now()
	row := models.WebhookEvent{
		Provider:        providerName,
		ProviderEventID: id,
		EventType:       ev.EventType(),
		ProcessedAt:     &now,
	}
	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		if httperr.IsUniqueViolation(err) || errors.Is(err, gorm.ErrDuplicatedKey) {
			err = r.db.WithContext(ctx).
				Model(&models.WebhookEvent{}).
				Where("provider = ? AND provider_event_id = ?", providerName, id).
				Update("processed_at", &now).Error
		}
		if err != nil {
			log.Println("settlement: mark processed:", err)
		}
	}

	if r.rdb != nil {
		if err := r.rdb.Set(ctx, "webhook:"+providerName+":"+id, 1, dedupeTTL).Err(); err != nil {
			log.Println("settlement: redis dedupe unavailable:", err)
		}
	}
}

// ===============================
// Payment success
// ===============================

// findByPaymentRef resolves a booking by payment intent first, then by the
// checkout session it was opened under. The session path covers rows created
// before the provider materialized a payment intent.
func (r *Reconciler) findByPaymentRef(ctx context.Context, paymentIntentID, sessionID string) (*models.Booking, error) {
	if paymentIntentID != "" {
		b, err := r.repo.GetBookingByPaymentIntent(ctx, paymentIntentID)
		if err == nil || !httperr.IsNotFound(err) {
			return b, err
		}
	}
	if sessionID != "" {
		return r.repo.GetBookingByCheckoutSession(ctx, sessionID)
	}
	return nil, httperr.ErrNotFound("booking")
}

func (r *Reconciler) applyPaymentSuccess(ctx context.Context, paymentIntentID, sessionID string, meta *BookingMetadata) error {
	if paymentIntentID == "" && sessionID == "" {
		return httperr.ErrValidation("payment_intent_id", "missing")
	}

	b, err := r.findByPaymentRef(ctx, paymentIntentID, sessionID)
	if httperr.IsNotFound(err) {
		if meta == nil {
			return err
		}
		// Checkout completed before the booking row landed; build it from
		// the session metadata.
		return r.createFromMetadata(ctx, paymentIntentID, sessionID, *meta)
	}
	if err != nil {
		return err
	}

	if b.PaymentStatus == string(domain.PaymentSucceeded) {
		// Re-delivery after settlement: same state, no second notification.
		return nil
	}
	if domain.Status(b.Status).Terminal() {
		return nil
	}

	if err := domain.Confirm(b); err != nil {
		return err
	}
	if paymentIntentID != "" && b.PaymentIntentID != paymentIntentID {
		b.PaymentIntentID = paymentIntentID
	}
	r.ensureSplit(b)

	if err := r.repo.UpdateBooking(ctx, b); err != nil {
		return err
	}

	r.notifier.Push(models.Notification{
		UserID:    b.BarberID,
		Title:     "Booking Confirmed",
		Message:   "Payment received, the booking is confirmed.",
		Type:      notify.TypePayment,
		BookingID: &b.ID,
	})
	if b.ClientID != nil {
		r.notifier.Push(models.Notification{
			UserID:    *b.ClientID,
			Title:     "Booking Confirmed",
			Message:   "Your payment went through and the booking is confirmed.",
			Type:      notify.TypePayment,
			BookingID: &b.ID,
		})
	}
	return nil
}

func (r *Reconciler) createFromMetadata(ctx context.Context, paymentIntentID, sessionID string, meta BookingMetadata) error {
	if meta.BarberID == 0 || meta.ServiceID == 0 {
		return httperr.ErrValidation("metadata", "missing_booking_reference")
	}

	if _, err := r.repo.GetBarber(ctx, meta.BarberID); err != nil {
		return err
	}
	svc, err := r.repo.GetService(ctx, meta.BarberID, meta.ServiceID)
	if err != nil {
		return err
	}

	start, err := time.Parse(time.RFC3339, meta.Date)
	if err != nil {
		return httperr.ErrValidation("metadata.date", "invalid_date")
	}

	price := meta.Price
	if price <= 0 {
		price = svc.Price
	}
	fee, payout := ComputeSplit(price, r.feePercent)

	paymentRef := paymentIntentID
	if paymentRef == "" {
		paymentRef = sessionID
	}

	b := &models.Booking{
		BarberID:          meta.BarberID,
		ServiceID:         meta.ServiceID,
		ClientID:          meta.ClientID,
		GuestName:         meta.GuestName,
		GuestEmail:        meta.GuestEmail,
		GuestPhone:        meta.GuestPhone,
		StartTime:         start,
		EndTime:           start.Add(time.Duration(svc.DurationMin) * time.Minute),
		Status:            string(domain.StatusConfirmed),
		PaymentStatus:     string(domain.PaymentSucceeded),
		PaymentIntentID:   paymentRef,
		CheckoutSessionID: sessionID,
		Price:             price,
		PlatformFee:       fee,
		BarberPayout:      payout,
		Notes:             meta.Notes,
	}

	if err := r.repo.CreateBooking(ctx, b); err != nil {
		if httperr.IsUniqueViolation(err) || errors.Is(err, gorm.ErrDuplicatedKey) {
			// Lost the race against the primary creation path; the booking
			// exists, the success is already being applied.
			return nil
		}
		return err
	}

	r.notifier.Push(models.Notification{
		UserID:    b.BarberID,
		Title:     "New Booking",
		Message:   "A paid booking was created from checkout.",
		Type:      notify.TypeBooking,
		BookingID: &b.ID,
	})
	if b.ClientID != nil {
		r.notifier.Push(models.Notification{
			UserID:    *b.ClientID,
			Title:     "Booking Confirmed",
			Message:   "Your payment went through and the booking is confirmed.",
			Type:      notify.TypePayment,
			BookingID: &b.ID,
		})
	}
	return nil
}

func (r *Reconciler) ensureSplit(b *models.Booking) {
	if b.PlatformFee == 0 && b.BarberPayout == 0 && b.Price > 0 {
		b.PlatformFee, b.BarberPayout = ComputeSplit(b.Price, r.feePercent)
	}
}

// ===============================
// Failure / expiry / refund
// ===============================

func (r *Reconciler) applyExpiry(ctx context.Context, paymentIntentID, sessionID string) error {
	b, err := r.findByPaymentRef(ctx, paymentIntentID, sessionID)
	if err != nil {
		return err
	}
	if domain.Status(b.Status).Terminal() || b.Status == string(domain.StatusFailed) {
		return nil
	}
	if err := domain.Expire(b); err != nil {
		return err
	}
	return r.repo.UpdateBooking(ctx, b)
}

func (r *Reconciler) applyFailure(ctx context.Context, paymentIntentID string) error {
	b, err := r.repo.GetBookingByPaymentIntent(ctx, paymentIntentID)
	if err != nil {
		return err
	}
	if domain.Status(b.Status).Terminal() || b.Status == string(domain.StatusFailed) {
		return nil
	}
	if err := domain.Fail(b); err != nil {
		return err
	}

	if err := r.repo.UpdateBooking(ctx, b); err != nil {
		return err
	}

	if b.ClientID != nil {
		r.notifier.Push(models.Notification{
			UserID:    *b.ClientID,
			Title:     "Payment Failed",
			Message:   "Your payment did not go through, the booking was not confirmed.",
			Type:      notify.TypePayment,
			BookingID: &b.ID,
		})
	}
	return nil
}

func (r *Reconciler) applyRefund(ctx context.Context, e ChargeRefunded) error {
	if e.PaymentIntentID == "" {
		return httperr.ErrValidation("payment_intent_id", "missing")
	}

	b, err := r.repo.GetBookingByPaymentIntent(ctx, e.PaymentIntentID)
	if err != nil {
		return err
	}

	partial := e.AmountRefunded < e.AmountCharged

	if !partial && b.PaymentStatus == string(domain.PaymentRefunded) {
		return nil
	}
	if partial && b.PaymentStatus == string(domain.PaymentPartiallyRefunded) {
		return nil
	}

	if err := domain.Refund(b, partial); err != nil {
		return err
	}

	if err := r.repo.UpdateBooking(ctx, b); err != nil {
		return err
	}

	if b.ClientID != nil {
		title := "Refund Issued"
		if partial {
			title = "Partial Refund Issued"
		}
		r.notifier.Push(models.Notification{
			UserID:    *b.ClientID,
			Title:     title,
			Message:   "A refund was applied to your booking payment.",
			Type:      notify.TypePayment,
			BookingID: &b.ID,
		})
	}
	return nil
}

// ===============================
// Payout account
// ===============================

func accountStatus(e AccountUpdated) string {
	if e.ChargesEnabled && e.PayoutsEnabled {
		return models.PayoutAccountActive
	}
	return models.PayoutAccountPending
}

func (r *Reconciler) applyAccountStatus(ctx context.Context, accountID, status string) error {
	if accountID == "" {
		return httperr.ErrValidation("account_id", "missing")
	}
	return r.repo.UpdateBarberPayoutStatus(ctx, accountID, status)
}
