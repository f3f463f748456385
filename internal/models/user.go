package models

import "time"

const (
	RoleBarber = "barber"
	RoleClient = "client"
)

// Payout account status, driven by the payment provider's account.* events.
const (
	PayoutAccountNone         = "none"
	PayoutAccountPending      = "pending"
	PayoutAccountActive       = "active"
	PayoutAccountDeauthorized = "deauthorized"
)

type User struct {
	ID uint `gorm:"primaryKey" json:"id"`

	Name         string `gorm:"size:100;not null" json:"name"`
	Email        string `gorm:"size:100;uniqueIndex;not null" json:"email"`
	PasswordHash string `gorm:"size:255;not null" json:"-"`
	Phone        string `gorm:"size:20" json:"phone"`
	Role         string `gorm:"size:20;default:'client'" json:"role"`

	Timezone string `gorm:"size:50" json:"timezone"`
	Bio      string `gorm:"size:255" json:"bio"`
	PhotoURL string `gorm:"size:255" json:"photo_url"`

	// Barber-only payout account fields
	PayoutAccountID     string `gorm:"size:100;index" json:"payout_account_id"`
	PayoutAccountStatus string `gorm:"size:20;default:'none'" json:"payout_account_status"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (u *User) IsBarber() bool {
	return u.Role == RoleBarber
}
