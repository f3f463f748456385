package constraints

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/BruksfildServices01/barber-marketplace/internal/httperr"
	"github.com/BruksfildServices01/barber-marketplace/internal/models"
)

// Defaults applied when a barber has no stored constraints row.
const (
	DefaultMinIntervalMinutes = 5
	DefaultMaxBookingsPerDay  = 10
	DefaultAdvanceBookingDays = 30
)

// Validation ranges for slot templates. Out-of-range writes are rejected
// with a validation error; the UI validates too, the store re-validates.
const (
	MinSlotDurationMin = 15
	MaxSlotDurationMin = 120
	MaxBufferMin       = 60
	MinSlotCapacity    = 1
	MaxSlotCapacity    = 10
)

type Store struct {
	db *gorm.DB
}

func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

// ===============================
// BarberConstraints
// ===============================

func defaultConstraints(barberID uint) models.BarberConstraints {
	return models.BarberConstraints{
		BarberID:              barberID,
		MinIntervalMinutes:    DefaultMinIntervalMinutes,
		MaxBookingsPerDay:     DefaultMaxBookingsPerDay,
		AdvanceBookingDays:    DefaultAdvanceBookingDays,
		SameDayBookingEnabled: true,
	}
}

// saveConstraints persists the row. On the insert path the columns are named
// explicitly: gorm skips zero-valued fields that carry default tags, which
// would turn "0 = unlimited" or a disabled toggle back into the column
// default on the first write.
func (s *Store) saveConstraints(ctx context.Context, cons *models.BarberConstraints) error {
	if cons.ID != 0 {
		return s.db.WithContext(ctx).Save(cons).Error
	}
	return s.db.WithContext(ctx).
		Select(
			"BarberID",
			"MinIntervalMinutes",
			"MaxBookingsPerDay",
			"AdvanceBookingDays",
			"SameDayBookingEnabled",
			"CreatedAt",
			"UpdatedAt",
		).
		Create(cons).Error
}

// GetConstraints returns the barber's stored restrictions, or defaults when
// none were configured yet.
func (s *Store) GetConstraints(ctx context.Context, barberID uint) (models.BarberConstraints, error) {
	var cons models.BarberConstraints
	err := s.db.WithContext(ctx).
		Where("barber_id = ?", barberID).
		First(&cons).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return defaultConstraints(barberID), nil
	}
	if err != nil {
		return models.BarberConstraints{}, httperr.ErrUpstream("get_constraints", err)
	}
	return cons, nil
}

type ConstraintsPatch struct {
	MinIntervalMinutes    *uint `json:"min_interval_minutes"`
	MaxBookingsPerDay     *uint `json:"max_bookings_per_day"`
	AdvanceBookingDays    *uint `json:"advance_booking_days"`
	SameDayBookingEnabled *bool `json:"same_day_booking_enabled"`
}

func (s *Store) UpdateConstraints(ctx context.Context, barberID uint, patch ConstraintsPatch) (models.BarberConstraints, error) {
	cons, err := s.GetConstraints(ctx, barberID)
	if err != nil {
		return models.BarberConstraints{}, err
	}

	if patch.MinIntervalMinutes != nil {
		if *patch.MinIntervalMinutes > 24*60 {
			return models.BarberConstraints{}, httperr.ErrValidation("min_interval_minutes", "out_of_range")
		}
		cons.MinIntervalMinutes = *patch.MinIntervalMinutes
	}
	if patch.MaxBookingsPerDay != nil {
		if *patch.MaxBookingsPerDay == 0 || *patch.MaxBookingsPerDay > 100 {
			return models.BarberConstraints{}, httperr.ErrValidation("max_bookings_per_day", "out_of_range")
		}
		cons.MaxBookingsPerDay = *patch.MaxBookingsPerDay
	}
	if patch.AdvanceBookingDays != nil {
		if *patch.AdvanceBookingDays > 365 {
			return models.BarberConstraints{}, httperr.ErrValidation("advance_booking_days", "out_of_range")
		}
		cons.AdvanceBookingDays = *patch.AdvanceBookingDays
	}
	if patch.SameDayBookingEnabled != nil {
		cons.SameDayBookingEnabled = *patch.SameDayBookingEnabled
	}

	if err := s.saveConstraints(ctx, &cons); err != nil {
		return models.BarberConstraints{}, httperr.ErrUpstream("save_constraints", err)
	}
	return cons, nil
}

// ResetConstraints soft-resets the row to defaults. Rows are never deleted.
func (s *Store) ResetConstraints(ctx context.Context, barberID uint) (models.BarberConstraints, error) {
	cons, err := s.GetConstraints(ctx, barberID)
	if err != nil {
		return models.BarberConstraints{}, err
	}

	def := defaultConstraints(barberID)
	cons.MinIntervalMinutes = def.MinIntervalMinutes
	cons.MaxBookingsPerDay = def.MaxBookingsPerDay
	cons.AdvanceBookingDays = def.AdvanceBookingDays
	cons.SameDayBookingEnabled = def.SameDayBookingEnabled

	if err := s.saveConstraints(ctx, &cons); err != nil {
		return models.BarberConstraints{}, httperr.ErrUpstream("reset_constraints", err)
	}
	return cons, nil
}

// SeedDefaults creates the constraints row at barber onboarding.
func (s *Store) SeedDefaults(ctx context.Context, barberID uint) error {
	cons := defaultConstraints(barberID)
	if err := s.saveConstraints(ctx, &cons); err != nil {
		return httperr.ErrUpstream("seed_constraints", err)
	}
	return nil
}

// ===============================
// SlotTemplate
// ===============================

func validateTemplate(tpl *models.SlotTemplate) error {
	if tpl.Weekday < 0 || tpl.Weekday > 6 {
		return httperr.ErrValidation("weekday", "out_of_range")
	}

	start, err := time.Parse("15:04", tpl.StartTime)
	if err != nil {
		return httperr.ErrValidation("start_time", "invalid_time")
	}
	end, err := time.Parse("15:04", tpl.EndTime)
	if err != nil {
		return httperr.ErrValidation("end_time", "invalid_time")
	}
	if !start.Before(end) {
		return httperr.ErrValidation("start_time", "start_not_before_end")
	}

	if tpl.SlotDurationMin < MinSlotDurationMin || tpl.SlotDurationMin > MaxSlotDurationMin {
		return httperr.ErrValidation("slot_duration_min", "out_of_range")
	}
	if tpl.BufferBeforeMin < 0 || tpl.BufferBeforeMin > MaxBufferMin {
		return httperr.ErrValidation("buffer_before_min", "out_of_range")
	}
	if tpl.BufferAfterMin < 0 || tpl.BufferAfterMin > MaxBufferMin {
		return httperr.ErrValidation("buffer_after_min", "out_of_range")
	}
	if tpl.MaxBookingsPerSlot < MinSlotCapacity || tpl.MaxBookingsPerSlot > MaxSlotCapacity {
		return httperr.ErrValidation("max_bookings_per_slot", "out_of_range")
	}
	return nil
}

func (s *Store) CreateSlotTemplate(ctx context.Context, tpl *models.SlotTemplate) error {
	if err := validateTemplate(tpl); err != nil {
		return err
	}
	if err := s.db.WithContext(ctx).Create(tpl).Error; err != nil {
		return httperr.ErrUpstream("create_slot_template", err)
	}
	return nil
}

func (s *Store) UpdateSlotTemplate(ctx context.Context, barberID uint, tpl *models.SlotTemplate) error {
	var existing models.SlotTemplate
	err := s.db.WithContext(ctx).
		Where("id = ? AND barber_id = ?", tpl.ID, barberID).
		First(&existing).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return httperr.ErrNotFound("slot_template")
	}
	if err != nil {
		return httperr.ErrUpstream("get_slot_template", err)
	}

	tpl.BarberID = barberID
	tpl.CreatedAt = existing.CreatedAt
	if err := validateTemplate(tpl); err != nil {
		return err
	}

	if err := s.db.WithContext(ctx).Save(tpl).Error; err != nil {
		return httperr.ErrUpstream("update_slot_template", err)
	}
	return nil
}

// DeleteSlotTemplate removes a template. Already-confirmed bookings are not
// retroactively invalidated.
func (s *Store) DeleteSlotTemplate(ctx context.Context, barberID uint, templateID uint) error {
	res := s.db.WithContext(ctx).
		Where("id = ? AND barber_id = ?", templateID, barberID).
		Delete(&models.SlotTemplate{})
	if res.Error != nil {
		return httperr.ErrUpstream("delete_slot_template", res.Error)
	}
	if res.RowsAffected == 0 {
		return httperr.ErrNotFound("slot_template")
	}
	return nil
}

func (s *Store) ListSlotTemplates(ctx context.Context, barberID uint) ([]models.SlotTemplate, error) {
	var tpls []models.SlotTemplate
	err := s.db.WithContext(ctx).
		Where("barber_id = ?", barberID).
		Order("weekday ASC, start_time ASC").
		Find(&tpls).Error
	if err != nil {
		return nil, httperr.ErrUpstream("list_slot_templates", err)
	}
	return tpls, nil
}

func (s *Store) ListActiveSlotTemplates(ctx context.Context, barberID uint, weekday int) ([]models.SlotTemplate, error) {
	var tpls []models.SlotTemplate
	err := s.db.WithContext(ctx).
		Where("barber_id = ? AND weekday = ? AND active = ?", barberID, weekday, true).
		Order("start_time ASC").
		Find(&tpls).Error
	if err != nil {
		return nil, httperr.ErrUpstream("list_active_slot_templates", err)
	}
	return tpls, nil
}

// ===============================
// Availability (weekly fallback hours)
// ===============================

func (s *Store) GetAvailability(ctx context.Context, barberID uint, weekday int) (*models.Availability, error) {
	var av models.Availability
	err := s.db.WithContext(ctx).
		Where("barber_id = ? AND weekday = ?", barberID, weekday).
		First(&av).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, httperr.ErrUpstream("get_availability", err)
	}
	return &av, nil
}

func (s *Store) ListAvailability(ctx context.Context, barberID uint) ([]models.Availability, error) {
	var days []models.Availability
	err := s.db.WithContext(ctx).
		Where("barber_id = ?", barberID).
		Order("weekday ASC").
		Find(&days).Error
	if err != nil {
		return nil, httperr.ErrUpstream("list_availability", err)
	}
	return days, nil
}

// ReplaceAvailability swaps the barber's whole week, the way the settings
// form submits it.
func (s *Store) ReplaceAvailability(ctx context.Context, barberID uint, days []models.Availability) error {
	for i := range days {
		d := &days[i]
		if d.Weekday < 0 || d.Weekday > 6 {
			return httperr.ErrValidation("weekday", "out_of_range")
		}
		if d.Active {
			start, err := time.Parse("15:04", d.StartTime)
			if err != nil {
				return httperr.ErrValidation("start_time", "invalid_time")
			}
			end, err := time.Parse("15:04", d.EndTime)
			if err != nil {
				return httperr.ErrValidation("end_time", "invalid_time")
			}
			if !start.Before(end) {
				return httperr.ErrValidation("start_time", "start_not_before_end")
			}
		}
		d.BarberID = barberID
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("barber_id = ?", barberID).Delete(&models.Availability{}).Error; err != nil {
			return err
		}
		if len(days) == 0 {
			return nil
		}
		return tx.Create(&days).Error
	})
	if err != nil {
		return httperr.ErrUpstream("replace_availability", err)
	}
	return nil
}
