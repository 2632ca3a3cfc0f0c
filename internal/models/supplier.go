package models

import "time"

// Supplier is a vendor that receives purchase orders.
type Supplier struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Name           string `gorm:"size:255;not null" json:"name"`
	SupplierNumber string `gorm:"size:50;not null;uniqueIndex" json:"supplier_number"`
	Email          string `gorm:"size:255;not null;uniqueIndex" json:"email"`
	Phone          string `gorm:"size:20" json:"phone,omitempty"`
	Notes          string `gorm:"type:text" json:"notes,omitempty"`

	PaymentOptions []SupplierPaymentOption `gorm:"foreignKey:SupplierID;constraint:OnDelete:CASCADE" json:"payment_options,omitempty"`
}

// DefaultPaymentOption returns the option flagged as default, if any.
func (s *Supplier) DefaultPaymentOption() *SupplierPaymentOption {
	for i := range s.PaymentOptions {
		if s.PaymentOptions[i].IsDefault {
			return &s.PaymentOptions[i]
		}
	}
	return nil
}

// SupplierPaymentOption is one of the payment terms a supplier accepts.
type SupplierPaymentOption struct {
	ID          uint   `gorm:"primaryKey" json:"id"`
	SupplierID  uint   `gorm:"index;not null" json:"supplier_id"`
	Description string `gorm:"size:100;not null" json:"description"`
	DaysToPay   *int   `json:"days_to_pay,omitempty"`
	IsDefault   bool   `gorm:"not null" json:"is_default"`
}
