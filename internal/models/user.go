package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Role is the staff role of a user.
type Role string

const (
	RoleSeller Role = "SELLER"
	RoleAdmin  Role = "ADMIN"
	RoleOwner  Role = "OWNER"
)

// User is a staff member. Sellers create quotes; admins and owners may authorize discounts.
type User struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Username string `gorm:"uniqueIndex;size:150;not null" json:"username"`
	Email    string `gorm:"size:255" json:"email,omitempty"`
	Name     string `gorm:"size:255" json:"name,omitempty"`
	Password string `gorm:"size:255;not null" json:"-"` // bcrypt hash
	Role     Role   `gorm:"size:20;not null" json:"role"`
	Phone    string `gorm:"size:20" json:"phone,omitempty"`
	IsActive bool   `gorm:"not null" json:"is_active"`

	IndividualTargetValue decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"individual_target_value"`
}

// DisplayName returns the name, falling back to the username.
func (u *User) DisplayName() string {
	if u.Name != "" {
		return u.Name
	}
	return u.Username
}
