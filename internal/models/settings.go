package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// PaymentType is the customer-facing payment method of a quote.
type PaymentType string

const (
	PaymentPix        PaymentType = "PIX"
	PaymentCash       PaymentType = "CASH"
	PaymentDebitCard  PaymentType = "DEBIT_CARD"
	PaymentCreditCard PaymentType = "CREDIT_CARD"
	PaymentBoleto     PaymentType = "BOLETO"
	PaymentCheck      PaymentType = "CHECK"
)

var paymentTypeLabels = map[PaymentType]string{
	PaymentPix:        "Pix",
	PaymentCash:       "Dinheiro",
	PaymentDebitCard:  "Cartão de débito",
	PaymentCreditCard: "Cartão de crédito",
	PaymentBoleto:     "Boleto",
	PaymentCheck:      "Cheque",
}

// PaymentTypes lists the known payment types in display order.
func PaymentTypes() []PaymentType {
	return []PaymentType{PaymentPix, PaymentCash, PaymentDebitCard, PaymentCreditCard, PaymentBoleto, PaymentCheck}
}

// Valid reports whether t is a known payment type.
func (t PaymentType) Valid() bool {
	_, ok := paymentTypeLabels[t]
	return ok
}

// Label returns the Portuguese label, or the raw value for unknown types.
func (t PaymentType) Label() string {
	if l, ok := paymentTypeLabels[t]; ok {
		return l
	}
	return string(t)
}

// PaymentTariff is the surcharge applied for a payment type split into N installments.
type PaymentTariff struct {
	ID           uint            `gorm:"primaryKey" json:"id"`
	PaymentType  PaymentType     `gorm:"size:20;not null;uniqueIndex:uniq_tariff_type_installments" json:"payment_type"`
	Installments int             `gorm:"not null;uniqueIndex:uniq_tariff_type_installments;check:chk_tariff_installments,installments >= 1" json:"installments"`
	FeePercent   decimal.Decimal `gorm:"type:decimal(5,1);not null" json:"fee_percent"`
}

// Setting is a named configuration entry. Values are stored as text.
type Setting struct {
	Name      string    `gorm:"primaryKey;size:100" json:"name"`
	Value     string    `gorm:"type:text;not null" json:"value"`
	UpdatedAt time.Time `json:"updated_at"`
}

// SettingArchitectCommission holds the global architect commission percentage.
const SettingArchitectCommission = "architect_commission_percent"
