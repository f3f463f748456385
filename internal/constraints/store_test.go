package constraints

import (
	"context"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/BruksfildServices01/barber-marketplace/internal/httperr"
	"github.com/BruksfildServices01/barber-marketplace/internal/models"
)

func testStore(t *testing.T) *Store {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		TranslateError: true,
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(
		&models.BarberConstraints{},
		&models.SlotTemplate{},
		&models.Availability{},
	))

	return NewStore(db)
}

func uintPtr(v uint) *uint { return &v }
func boolPtr(v bool) *bool { return &v }

func TestGetConstraints_DefaultsWhenAbsent(t *testing.T) {
	s := testStore(t)

	cons, err := s.GetConstraints(context.Background(), 7)
	require.NoError(t, err)

	assert.Equal(t, uint(7), cons.BarberID)
	assert.Equal(t, uint(DefaultMinIntervalMinutes), cons.MinIntervalMinutes)
	assert.Equal(t, uint(DefaultMaxBookingsPerDay), cons.MaxBookingsPerDay)
	assert.Equal(t, uint(DefaultAdvanceBookingDays), cons.AdvanceBookingDays)
	assert.True(t, cons.SameDayBookingEnabled)
	assert.Zero(t, cons.ID, "defaults are not persisted by a read")
}

func TestUpdateConstraints_PatchSemantics(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	cons, err := s.UpdateConstraints(ctx, 7, ConstraintsPatch{
		MaxBookingsPerDay: uintPtr(3),
	})
	require.NoError(t, err)
	assert.Equal(t, uint(3), cons.MaxBookingsPerDay)

	// Untouched fields keep defaults.
	assert.Equal(t, uint(DefaultMinIntervalMinutes), cons.MinIntervalMinutes)
	assert.True(t, cons.SameDayBookingEnabled)

	// Second patch does not clobber the first.
	cons, err = s.UpdateConstraints(ctx, 7, ConstraintsPatch{
		SameDayBookingEnabled: boolPtr(false),
	})
	require.NoError(t, err)
	assert.Equal(t, uint(3), cons.MaxBookingsPerDay)
	assert.False(t, cons.SameDayBookingEnabled)

	got, err := s.GetConstraints(ctx, 7)
	require.NoError(t, err)
	assert.Equal(t, uint(3), got.MaxBookingsPerDay)
	assert.False(t, got.SameDayBookingEnabled)
}

func TestUpdateConstraints_Validation(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	_, err := s.UpdateConstraints(ctx, 7, ConstraintsPatch{
		MaxBookingsPerDay: uintPtr(0),
	})
	assert.True(t, httperr.IsValidation(err))

	_, err = s.UpdateConstraints(ctx, 7, ConstraintsPatch{
		MaxBookingsPerDay: uintPtr(101),
	})
	assert.True(t, httperr.IsValidation(err))

	_, err = s.UpdateConstraints(ctx, 7, ConstraintsPatch{
		AdvanceBookingDays: uintPtr(366),
	})
	assert.True(t, httperr.IsValidation(err))

	_, err = s.UpdateConstraints(ctx, 7, ConstraintsPatch{
		MinIntervalMinutes: uintPtr(24*60 + 1),
	})
	assert.True(t, httperr.IsValidation(err))

	// Zero advance days means unlimited, it is accepted.
	cons, err := s.UpdateConstraints(ctx, 7, ConstraintsPatch{
		AdvanceBookingDays: uintPtr(0),
	})
	require.NoError(t, err)
	assert.Equal(t, uint(0), cons.AdvanceBookingDays)
}

func TestUpdateConstraints_FirstWriteKeepsZeroValues(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	// First write for this barber inserts the row; unlimited advance (0) and
	// a disabled same-day toggle must survive the column defaults.
	_, err := s.UpdateConstraints(ctx, 7, ConstraintsPatch{
		AdvanceBookingDays:    uintPtr(0),
		SameDayBookingEnabled: boolPtr(false),
	})
	require.NoError(t, err)

	got, err := s.GetConstraints(ctx, 7)
	require.NoError(t, err)
	assert.NotZero(t, got.ID)
	assert.Equal(t, uint(0), got.AdvanceBookingDays)
	assert.False(t, got.SameDayBookingEnabled)
}

func TestResetConstraints(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	_, err := s.UpdateConstraints(ctx, 7, ConstraintsPatch{
		MaxBookingsPerDay:     uintPtr(2),
		SameDayBookingEnabled: boolPtr(false),
	})
	require.NoError(t, err)

	cons, err := s.ResetConstraints(ctx, 7)
	require.NoError(t, err)

	assert.Equal(t, uint(DefaultMaxBookingsPerDay), cons.MaxBookingsPerDay)
	assert.True(t, cons.SameDayBookingEnabled)
	assert.NotZero(t, cons.ID, "reset keeps the row")
}

func TestSeedDefaults(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	require.NoError(t, s.SeedDefaults(ctx, 7))

	cons, err := s.GetConstraints(ctx, 7)
	require.NoError(t, err)
	assert.NotZero(t, cons.ID)
	assert.Equal(t, uint(DefaultMaxBookingsPerDay), cons.MaxBookingsPerDay)
}

// ---------------------------------------------------------------------------

func validTemplate(barberID uint) models.SlotTemplate {
	return models.SlotTemplate{
		BarberID:           barberID,
		Weekday:            1,
		StartTime:          "09:00",
		EndTime:            "17:00",
		SlotDurationMin:    30,
		MaxBookingsPerSlot: 1,
		Active:             true,
	}
}

func TestCreateSlotTemplate_Validation(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	cases := []struct {
		name   string
		mutate func(*models.SlotTemplate)
	}{
		{"weekday out of range", func(tpl *models.SlotTemplate) { tpl.Weekday = 7 }},
		{"bad start time", func(tpl *models.SlotTemplate) { tpl.StartTime = "9am" }},
		{"bad end time", func(tpl *models.SlotTemplate) { tpl.EndTime = "25:00" }},
		{"start not before end", func(tpl *models.SlotTemplate) { tpl.StartTime = "17:00"; tpl.EndTime = "09:00" }},
		{"duration too short", func(tpl *models.SlotTemplate) { tpl.SlotDurationMin = 10 }},
		{"duration too long", func(tpl *models.SlotTemplate) { tpl.SlotDurationMin = 121 }},
		{"buffer before too long", func(tpl *models.SlotTemplate) { tpl.BufferBeforeMin = 61 }},
		{"buffer after negative", func(tpl *models.SlotTemplate) { tpl.BufferAfterMin = -1 }},
		{"capacity zero", func(tpl *models.SlotTemplate) { tpl.MaxBookingsPerSlot = 0 }},
		{"capacity too high", func(tpl *models.SlotTemplate) { tpl.MaxBookingsPerSlot = 11 }},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			tpl := validTemplate(7)
			tc.mutate(&tpl)
			err := s.CreateSlotTemplate(ctx, &tpl)
			assert.True(t, httperr.IsValidation(err), "expected validation error, got %v", err)
		})
	}

	tpl := validTemplate(7)
	require.NoError(t, s.CreateSlotTemplate(ctx, &tpl))
	assert.NotZero(t, tpl.ID)
}

func TestSlotTemplate_CRUD(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	tpl := validTemplate(7)
	require.NoError(t, s.CreateSlotTemplate(ctx, &tpl))

	other := validTemplate(7)
	other.Weekday = 2
	require.NoError(t, s.CreateSlotTemplate(ctx, &other))

	tpls, err := s.ListSlotTemplates(ctx, 7)
	require.NoError(t, err)
	require.Len(t, tpls, 2)
	assert.Equal(t, 1, tpls[0].Weekday)
	assert.Equal(t, 2, tpls[1].Weekday)

	tpl.SlotDurationMin = 45
	require.NoError(t, s.UpdateSlotTemplate(ctx, 7, &tpl))

	active, err := s.ListActiveSlotTemplates(ctx, 7, 1)
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, 45, active[0].SlotDurationMin)

	// Deactivated templates disappear from the active listing only.
	tpl.Active = false
	require.NoError(t, s.UpdateSlotTemplate(ctx, 7, &tpl))

	active, err = s.ListActiveSlotTemplates(ctx, 7, 1)
	require.NoError(t, err)
	assert.Empty(t, active)

	tpls, err = s.ListSlotTemplates(ctx, 7)
	require.NoError(t, err)
	assert.Len(t, tpls, 2)

	require.NoError(t, s.DeleteSlotTemplate(ctx, 7, tpl.ID))
	assert.True(t, httperr.IsNotFound(s.DeleteSlotTemplate(ctx, 7, tpl.ID)))
}

func TestUpdateSlotTemplate_OwnershipEnforced(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	tpl := validTemplate(7)
	require.NoError(t, s.CreateSlotTemplate(ctx, &tpl))

	stolen := tpl
	err := s.UpdateSlotTemplate(ctx, 8, &stolen)
	assert.True(t, httperr.IsNotFound(err))
}

// ---------------------------------------------------------------------------

func TestReplaceAvailability(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	week := []models.Availability{
		{Weekday: 1, StartTime: "09:00", EndTime: "18:00", LunchStart: "12:00", LunchEnd: "13:00", Active: true},
		{Weekday: 2, StartTime: "09:00", EndTime: "18:00", Active: true},
		{Weekday: 0, Active: false},
	}
	require.NoError(t, s.ReplaceAvailability(ctx, 7, week))

	days, err := s.ListAvailability(ctx, 7)
	require.NoError(t, err)
	require.Len(t, days, 3)
	assert.Equal(t, 0, days[0].Weekday)
	assert.Equal(t, uint(7), days[0].BarberID)

	av, err := s.GetAvailability(ctx, 7, 1)
	require.NoError(t, err)
	require.NotNil(t, av)
	assert.Equal(t, "12:00", av.LunchStart)

	av, err = s.GetAvailability(ctx, 7, 5)
	require.NoError(t, err)
	assert.Nil(t, av)

	// A replace swaps the whole week.
	require.NoError(t, s.ReplaceAvailability(ctx, 7, []models.Availability{
		{Weekday: 3, StartTime: "10:00", EndTime: "16:00", Active: true},
	}))
	days, err = s.ListAvailability(ctx, 7)
	require.NoError(t, err)
	require.Len(t, days, 1)
	assert.Equal(t, 3, days[0].Weekday)

	err = s.ReplaceAvailability(ctx, 7, []models.Availability{
		{Weekday: 9, StartTime: "10:00", EndTime: "16:00", Active: true},
	})
	assert.True(t, httperr.IsValidation(err))

	err = s.ReplaceAvailability(ctx, 7, []models.Availability{
		{Weekday: 4, StartTime: "16:00", EndTime: "10:00", Active: true},
	})
	assert.True(t, httperr.IsValidation(err))
}
