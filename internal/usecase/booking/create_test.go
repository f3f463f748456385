package booking

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/BruksfildServices01/barber-marketplace/internal/audit"
	"github.com/BruksfildServices01/barber-marketplace/internal/constraints"
	domain "github.com/BruksfildServices01/barber-marketplace/internal/domain/booking"
	infraRepo "github.com/BruksfildServices01/barber-marketplace/internal/infra/repository"
	"github.com/BruksfildServices01/barber-marketplace/internal/httperr"
	"github.com/BruksfildServices01/barber-marketplace/internal/models"
	"github.com/BruksfildServices01/barber-marketplace/internal/notify"
)

// clock is frozen at a Monday morning; the candidate day is the following
// Wednesday so the advance window and same-day checks stay quiet unless a
// test tightens them.
var testNow = time.Date(2026, 3, 2, 8, 0, 0, 0, time.UTC)

func wednesday(h, m int) time.Time {
	return time.Date(2026, 3, 4, h, m, 0, 0, time.UTC)
}

type createFixture struct {
	db     *gorm.DB
	store  *constraints.Store
	uc     *CreateBooking
	barber models.User
	client models.User
	svc    models.Service
}

func newCreateFixture(t *testing.T) *createFixture {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		TranslateError: true,
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.Service{},
		&models.BarberConstraints{},
		&models.SlotTemplate{},
		&models.Availability{},
		&models.Booking{},
		&models.Notification{},
		&models.AuditLog{},
	))

	barber := models.User{
		Name:         "Marco",
		Email:        "marco@example.com",
		PasswordHash: "x",
		Role:         models.RoleBarber,
		Timezone:     "UTC",
	}
	require.NoError(t, db.Create(&barber).Error)

	client := models.User{
		Name:         "Ana",
		Email:        "ana@example.com",
		PasswordHash: "x",
		Role:         models.RoleClient,
	}
	require.NoError(t, db.Create(&client).Error)

	svc := models.Service{
		BarberID:    barber.ID,
		Name:        "Haircut",
		DurationMin: 30,
		Price:       50,
		Active:      true,
	}
	require.NoError(t, db.Create(&svc).Error)

	repo := infraRepo.NewBookingGormRepository(db)
	store := constraints.NewStore(db)

	// Fallback hours open every weekday.
	week := make([]models.Availability, 0, 5)
	for wd := 1; wd <= 5; wd++ {
		week = append(week, models.Availability{
			Weekday:   wd,
			StartTime: "09:00",
			EndTime:   "18:00",
			Active:    true,
		})
	}
	require.NoError(t, store.ReplaceAvailability(context.Background(), barber.ID, week))

	admission := NewAdmissionChecker(repo, store)
	admission.now = func() time.Time { return testNow }

	uc := NewCreateBooking(
		repo,
		admission,
		notify.NewDispatcher(db),
		audit.NewDispatcher(audit.New(db)),
		20,
	)
	uc.now = func() time.Time { return testNow }

	return &createFixture{
		db:     db,
		store:  store,
		uc:     uc,
		barber: barber,
		client: client,
		svc:    svc,
	}
}

func (f *createFixture) guestInput(start time.Time) CreateBookingInput {
	return CreateBookingInput{
		BarberID:        f.barber.ID,
		ServiceID:       f.svc.ID,
		GuestName:       "Walk In",
		GuestEmail:      "walkin@example.com",
		GuestPhone:      "555-0100",
		Start:           start,
		PaymentIntentID: fmt.Sprintf("pi_%d", start.Unix()),
	}
}

func TestCreateBooking_Guest(t *testing.T) {
	f := newCreateFixture(t)

	b, err := f.uc.Execute(context.Background(), f.guestInput(wednesday(10, 0)))
	require.NoError(t, err)

	assert.NotZero(t, b.ID)
	assert.Equal(t, string(domain.StatusPending), b.Status)
	assert.Equal(t, string(domain.PaymentPending), b.PaymentStatus)
	assert.True(t, wednesday(10, 30).Equal(b.EndTime))

	// Default price and platform split.
	assert.Equal(t, 50.0, b.Price)
	assert.Equal(t, 10.0, b.PlatformFee)
	assert.Equal(t, 40.0, b.BarberPayout)
}

func TestCreateBooking_RegisteredClient(t *testing.T) {
	f := newCreateFixture(t)

	in := CreateBookingInput{
		BarberID:        f.barber.ID,
		ServiceID:       f.svc.ID,
		ClientID:        &f.client.ID,
		Start:           wednesday(10, 0),
		PaymentIntentID: "pi_client",
	}
	b, err := f.uc.Execute(context.Background(), in)
	require.NoError(t, err)
	require.NotNil(t, b.ClientID)
	assert.Equal(t, f.client.ID, *b.ClientID)

	// Registered clients receive a confirmation notification.
	var n models.Notification
	require.Eventually(t, func() bool {
		return f.db.Where("user_id = ?", f.client.ID).First(&n).Error == nil
	}, time.Second, 10*time.Millisecond)
	assert.Equal(t, "Booking Confirmation", n.Title)
}

func TestCreateBooking_IdentityRules(t *testing.T) {
	f := newCreateFixture(t)
	ctx := context.Background()

	both := f.guestInput(wednesday(10, 0))
	both.ClientID = &f.client.ID
	_, err := f.uc.Execute(ctx, both)
	assert.True(t, httperr.IsValidation(err))

	neither := f.guestInput(wednesday(10, 0))
	neither.GuestName = ""
	neither.GuestEmail = ""
	neither.GuestPhone = ""
	_, err = f.uc.Execute(ctx, neither)
	assert.True(t, httperr.IsValidation(err))

	// The guest triple is all or nothing.
	noEmail := f.guestInput(wednesday(10, 0))
	noEmail.GuestEmail = ""
	_, err = f.uc.Execute(ctx, noEmail)
	assert.True(t, httperr.IsValidation(err))

	noPhone := f.guestInput(wednesday(10, 0))
	noPhone.GuestPhone = ""
	_, err = f.uc.Execute(ctx, noPhone)
	assert.True(t, httperr.IsValidation(err))
}

func TestCreateBooking_StartAndPaymentValidation(t *testing.T) {
	f := newCreateFixture(t)
	ctx := context.Background()

	past := f.guestInput(testNow.Add(-time.Hour))
	_, err := f.uc.Execute(ctx, past)
	assert.True(t, httperr.IsValidation(err))

	noPI := f.guestInput(wednesday(10, 0))
	noPI.PaymentIntentID = ""
	_, err = f.uc.Execute(ctx, noPI)
	assert.True(t, httperr.IsValidation(err))
}

func TestCreateBooking_SplitRules(t *testing.T) {
	f := newCreateFixture(t)
	ctx := context.Background()

	fee, payout := 0.0, 50.0
	explicit := f.guestInput(wednesday(10, 0))
	explicit.PlatformFee = &fee
	explicit.BarberPayout = &payout
	b, err := f.uc.Execute(ctx, explicit)
	require.NoError(t, err)
	assert.Equal(t, 0.0, b.PlatformFee)
	assert.Equal(t, 50.0, b.BarberPayout)

	half := f.guestInput(wednesday(11, 0))
	half.PlatformFee = &fee
	_, err = f.uc.Execute(ctx, half)
	assert.True(t, httperr.IsValidation(err))

	wrong := f.guestInput(wednesday(12, 0))
	bad := 1.0
	wrong.PlatformFee = &bad
	wrong.BarberPayout = &payout
	_, err = f.uc.Execute(ctx, wrong)
	assert.True(t, httperr.IsValidation(err))
}

func TestCreateBooking_OverlapRejected(t *testing.T) {
	f := newCreateFixture(t)
	ctx := context.Background()

	_, err := f.uc.Execute(ctx, f.guestInput(wednesday(10, 0)))
	require.NoError(t, err)

	_, err = f.uc.Execute(ctx, f.guestInput(wednesday(10, 15)))
	reason, ok := httperr.ConflictReason(err)
	require.True(t, ok)
	assert.Equal(t, string(domain.RejectTimeConflict), reason)

	// Back to back is fine.
	_, err = f.uc.Execute(ctx, f.guestInput(wednesday(10, 30)))
	assert.NoError(t, err)
}

func TestCreateBooking_DailyCapAndCancelRetry(t *testing.T) {
	f := newCreateFixture(t)
	ctx := context.Background()

	one := uint(1)
	_, err := f.store.UpdateConstraints(ctx, f.barber.ID, constraints.ConstraintsPatch{
		MaxBookingsPerDay:  &one,
		MinIntervalMinutes: new(uint),
	})
	require.NoError(t, err)

	first, err := f.uc.Execute(ctx, f.guestInput(wednesday(10, 0)))
	require.NoError(t, err)

	_, err = f.uc.Execute(ctx, f.guestInput(wednesday(14, 0)))
	reason, ok := httperr.ConflictReason(err)
	require.True(t, ok)
	assert.Equal(t, string(domain.RejectDailyLimitExceeded), reason)

	// A cancelled booking frees its place against the cap.
	require.NoError(t, f.db.Model(&models.Booking{}).
		Where("id = ?", first.ID).
		Update("status", string(domain.StatusCancelled)).Error)

	_, err = f.uc.Execute(ctx, f.guestInput(wednesday(14, 0)))
	assert.NoError(t, err)
}

func (f *createFixture) seedBooking(t *testing.T, start time.Time, status string) models.Booking {
	t.Helper()

	b := models.Booking{
		BarberID:        f.barber.ID,
		ServiceID:       f.svc.ID,
		GuestName:       "Seed",
		GuestEmail:      "seed@example.com",
		GuestPhone:      "555-0199",
		StartTime:       start,
		EndTime:         start.Add(30 * time.Minute),
		Status:          status,
		PaymentStatus:   string(domain.PaymentPending),
		PaymentIntentID: fmt.Sprintf("pi_seed_%d_%s", start.Unix(), status),
		Price:           50,
	}
	require.NoError(t, f.db.Create(&b).Error)
	return b
}

func TestCreateBooking_PartiallyRefundedStillBlocks(t *testing.T) {
	f := newCreateFixture(t)

	// A partial refund keeps the booking alive, so its time stays occupied.
	f.seedBooking(t, wednesday(10, 0), string(domain.StatusPartiallyRefunded))

	_, err := f.uc.Execute(context.Background(), f.guestInput(wednesday(10, 10)))
	reason, ok := httperr.ConflictReason(err)
	require.True(t, ok)
	assert.Equal(t, string(domain.RejectTimeConflict), reason)
}

func TestCreateBooking_CompletedCountsTowardDailyCap(t *testing.T) {
	f := newCreateFixture(t)
	ctx := context.Background()

	one := uint(1)
	_, err := f.store.UpdateConstraints(ctx, f.barber.ID, constraints.ConstraintsPatch{
		MaxBookingsPerDay: &one,
	})
	require.NoError(t, err)

	f.seedBooking(t, wednesday(10, 0), string(domain.StatusCompleted))

	_, err = f.uc.Execute(ctx, f.guestInput(wednesday(14, 0)))
	reason, ok := httperr.ConflictReason(err)
	require.True(t, ok)
	assert.Equal(t, string(domain.RejectDailyLimitExceeded), reason)
}

func TestCreateBooking_DuplicatePaymentIntent(t *testing.T) {
	f := newCreateFixture(t)
	ctx := context.Background()

	in := f.guestInput(wednesday(10, 0))
	_, err := f.uc.Execute(ctx, in)
	require.NoError(t, err)

	dup := f.guestInput(wednesday(14, 0))
	dup.PaymentIntentID = in.PaymentIntentID
	_, err = f.uc.Execute(ctx, dup)

	reason, ok := httperr.ConflictReason(err)
	require.True(t, ok)
	assert.Equal(t, "duplicate_payment_intent", reason)
}

func TestCreateBooking_OutsideHours(t *testing.T) {
	f := newCreateFixture(t)

	_, err := f.uc.Execute(context.Background(), f.guestInput(wednesday(20, 0)))
	reason, ok := httperr.ConflictReason(err)
	require.True(t, ok)
	assert.Equal(t, string(domain.RejectOutsideAvailability), reason)
}

func TestCreateBooking_UnknownBarberOrService(t *testing.T) {
	f := newCreateFixture(t)
	ctx := context.Background()

	in := f.guestInput(wednesday(10, 0))
	in.BarberID = 999
	_, err := f.uc.Execute(ctx, in)
	assert.True(t, httperr.IsNotFound(err))

	in = f.guestInput(wednesday(10, 0))
	in.ServiceID = 999
	_, err = f.uc.Execute(ctx, in)
	assert.True(t, httperr.IsNotFound(err))
}
