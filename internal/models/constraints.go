package models

import "time"

// BarberConstraints holds the per-barber global booking restrictions. One row
// per barber, created with defaults at onboarding, never deleted.
type BarberConstraints struct {
	ID       uint `gorm:"primaryKey" json:"id"`
	BarberID uint `gorm:"uniqueIndex" json:"barber_id"`

	MinIntervalMinutes    uint `gorm:"default:5" json:"min_interval_minutes"`
	MaxBookingsPerDay     uint `gorm:"default:10" json:"max_bookings_per_day"`
	AdvanceBookingDays    uint `gorm:"default:30" json:"advance_booking_days"` // 0 = unlimited
	SameDayBookingEnabled bool `gorm:"default:true" json:"same_day_booking_enabled"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// SlotTemplate is a recurring weekly scheduling window with duration, buffer
// and capacity rules. Overlapping templates for the same weekday are allowed;
// each is evaluated independently.
type SlotTemplate struct {
	ID       uint `gorm:"primaryKey" json:"id"`
	BarberID uint `gorm:"index" json:"barber_id"`

	Weekday int `json:"weekday"` // 0 = Sunday

	StartTime string `gorm:"size:5" json:"start_time"` // "15:04"
	EndTime   string `gorm:"size:5" json:"end_time"`

	SlotDurationMin    int  `json:"slot_duration_min"`
	BufferBeforeMin    int  `json:"buffer_before_min"`
	BufferAfterMin     int  `json:"buffer_after_min"`
	MaxBookingsPerSlot uint `gorm:"default:1" json:"max_bookings_per_slot"`

	Active bool `gorm:"default:true" json:"active"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Availability is the barber's general weekly open/close window, used as the
// admission fallback when no slot template matches (implicit capacity 1).
type Availability struct {
	ID       uint `gorm:"primaryKey" json:"id"`
	BarberID uint `gorm:"index" json:"barber_id"`

	Weekday int `json:"weekday"`

	StartTime  string `gorm:"size:5" json:"start_time"`
	EndTime    string `gorm:"size:5" json:"end_time"`
	LunchStart string `gorm:"size:5" json:"lunch_start"`
	LunchEnd   string `gorm:"size:5" json:"lunch_end"`
	Active     bool   `json:"active"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
