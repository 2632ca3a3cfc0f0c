package models

import (
	"strings"
	"time"
)

// ShippingCompany is a carrier that can be chosen for a quote's freight.
type ShippingCompany struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Name           string `gorm:"size:255;not null" json:"name"`
	CNPJ           string `gorm:"size:18" json:"cnpj,omitempty"`
	Phone          string `gorm:"size:20" json:"phone,omitempty"`
	Email          string `gorm:"size:255" json:"email,omitempty"`
	ContactPerson  string `gorm:"size:255" json:"contact_person,omitempty"`
	Address        string `gorm:"type:text" json:"address,omitempty"`
	PaymentMethods string `gorm:"type:text" json:"payment_methods,omitempty"` // one per line
	Notes          string `gorm:"type:text" json:"notes,omitempty"`
	IsActive       bool   `gorm:"not null;index" json:"is_active"`
}

// PaymentMethodList splits the newline separated payment methods, skipping blanks.
func (s *ShippingCompany) PaymentMethodList() []string {
	out := []string{}
	for _, line := range strings.Split(s.PaymentMethods, "\n") {
		if m := strings.TrimSpace(line); m != "" {
			out = append(out, m)
		}
	}
	return out
}
