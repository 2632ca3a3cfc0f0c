package models

import (
	"fmt"
	"strconv"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// QuoteStatus represents the lifecycle state of a quote.
type QuoteStatus string

const (
	QuoteStatusDraft     QuoteStatus = "DRAFT"
	QuoteStatusSent      QuoteStatus = "SENT"
	QuoteStatusApproved  QuoteStatus = "APPROVED"
	QuoteStatusConverted QuoteStatus = "CONVERTED"
	QuoteStatusCanceled  QuoteStatus = "CANCELED"
)

var quoteTransitions = map[QuoteStatus][]QuoteStatus{
	QuoteStatusDraft:    {QuoteStatusSent, QuoteStatusCanceled},
	QuoteStatusSent:     {QuoteStatusApproved, QuoteStatusDraft, QuoteStatusCanceled},
	QuoteStatusApproved: {QuoteStatusConverted, QuoteStatusSent, QuoteStatusCanceled},
}

// Valid reports whether s is a known quote status.
func (s QuoteStatus) Valid() bool {
	switch s {
	case QuoteStatusDraft, QuoteStatusSent, QuoteStatusApproved, QuoteStatusConverted, QuoteStatusCanceled:
		return true
	}
	return false
}

// Terminal reports whether no transition leaves s.
func (s QuoteStatus) Terminal() bool {
	return s == QuoteStatusConverted || s == QuoteStatusCanceled
}

// CanTransitionTo reports whether a quote may move from s to next.
func (s QuoteStatus) CanTransitionTo(next QuoteStatus) bool {
	for _, allowed := range quoteTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// FreightResponsible says who pays for the delivery.
type FreightResponsible string

const (
	FreightStore    FreightResponsible = "STORE"
	FreightCustomer FreightResponsible = "CUSTOMER"
	FreightCarrier  FreightResponsible = "CARRIER"
)

// Valid reports whether f is a known freight responsible party.
func (f FreightResponsible) Valid() bool {
	return f == FreightStore || f == FreightCustomer || f == FreightCarrier
}

// DefaultDiscountThreshold is the discount percentage above which an authorization is required.
var DefaultDiscountThreshold = decimal.NewFromInt(15)

// Quote is a priced proposal sent to a customer.
type Quote struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Number string      `gorm:"size:50;not null;uniqueIndex" json:"number"`
	Status QuoteStatus `gorm:"size:20;not null;index" json:"status"`

	CustomerID uint      `gorm:"index;not null" json:"customer_id"`
	Customer   *Customer `gorm:"foreignKey:CustomerID;constraint:OnDelete:RESTRICT" json:"customer,omitempty"`
	SellerID   uint      `gorm:"index;not null" json:"seller_id"`
	Seller     *User     `gorm:"foreignKey:SellerID;constraint:OnDelete:RESTRICT" json:"seller,omitempty"`

	QuoteDate        time.Time  `gorm:"not null" json:"quote_date"`
	DeliveryDeadline *time.Time `json:"delivery_deadline,omitempty"`

	FreightValue          decimal.Decimal    `gorm:"type:decimal(12,2);not null" json:"freight_value"`
	FreightResponsible    FreightResponsible `gorm:"size:20;not null" json:"freight_responsible"`
	ShippingCompanyID     *uint              `gorm:"index" json:"shipping_company_id,omitempty"`
	ShippingCompany       *ShippingCompany   `gorm:"foreignKey:ShippingCompanyID;constraint:OnDelete:SET NULL" json:"shipping_company,omitempty"`
	ShippingPaymentMethod string             `gorm:"size:100" json:"shipping_payment_method,omitempty"`

	DiscountPercent        decimal.Decimal `gorm:"type:decimal(5,1);not null;check:chk_quote_discount_range,discount_percent >= 0 AND discount_percent <= 100" json:"discount_percent"`
	DiscountAuthorizedByID *uint           `gorm:"index" json:"discount_authorized_by_id,omitempty"`
	DiscountAuthorizedBy   *User           `gorm:"foreignKey:DiscountAuthorizedByID;constraint:OnDelete:SET NULL" json:"discount_authorized_by,omitempty"`
	DiscountAuthorizedAt   *time.Time      `json:"discount_authorized_at,omitempty"`

	HasArchitect bool `gorm:"not null" json:"has_architect"`

	PaymentType         PaymentType     `gorm:"size:20" json:"payment_type,omitempty"`
	PaymentInstallments int             `gorm:"not null;check:chk_quote_installments,payment_installments >= 1" json:"payment_installments"`
	PaymentFeePercent   decimal.Decimal `gorm:"type:decimal(5,1);not null" json:"payment_fee_percent"`

	TotalValueSnapshot decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"total_value_snapshot"`
	Notes              string          `gorm:"type:text" json:"notes,omitempty"`

	Items  []QuoteItem `gorm:"foreignKey:QuoteID;constraint:OnDelete:CASCADE" json:"items,omitempty"`
	Orders []Order     `gorm:"foreignKey:QuoteID;constraint:OnDelete:RESTRICT" json:"orders,omitempty"`
}

// BeforeSave fills the defaults a zero value would violate.
func (q *Quote) BeforeSave(tx *gorm.DB) error {
	if q.Status == "" {
		q.Status = QuoteStatusDraft
	}
	if q.FreightResponsible == "" {
		q.FreightResponsible = FreightCustomer
	}
	if q.PaymentInstallments < 1 {
		q.PaymentInstallments = 1
	}
	if q.QuoteDate.IsZero() {
		q.QuoteDate = time.Now()
	}
	return nil
}

// IsDraft returns true if the quote is still a draft.
func (q *Quote) IsDraft() bool { return q.Status == QuoteStatusDraft }

// CanEdit returns true while the quote content may still change.
func (q *Quote) CanEdit() bool { return !q.Status.Terminal() }

// HasOrders reports whether orders were loaded for this quote.
func (q *Quote) HasOrders() bool { return len(q.Orders) > 0 }

// NeedsDiscountAuthorization reports whether the discount exceeds threshold.
func (q *Quote) NeedsDiscountAuthorization(threshold decimal.Decimal) bool {
	return q.DiscountPercent.GreaterThan(threshold)
}

// HasDiscountAuthorization reports whether an authorizer and timestamp are recorded.
func (q *Quote) HasDiscountAuthorization() bool {
	return q.DiscountAuthorizedByID != nil && q.DiscountAuthorizedAt != nil
}

// PaymentDescription renders e.g. "Cartão de crédito - 3x" or "Pix - À vista".
func (q *Quote) PaymentDescription() string {
	if q.PaymentType == "" {
		return "Não definido"
	}
	if q.PaymentInstallments <= 1 {
		return q.PaymentType.Label() + " - À vista"
	}
	return q.PaymentType.Label() + " - " + strconv.Itoa(q.PaymentInstallments) + "x"
}

// QuoteItem is one line of a quote.
type QuoteItem struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	QuoteID  uint `gorm:"index;not null" json:"quote_id"`
	Position int  `gorm:"not null" json:"position"`

	SupplierID *uint     `gorm:"index" json:"supplier_id,omitempty"`
	Supplier   *Supplier `gorm:"foreignKey:SupplierID;constraint:OnDelete:RESTRICT" json:"supplier,omitempty"`

	ProductName   string          `gorm:"size:255;not null" json:"product_name"`
	Description   string          `gorm:"type:text" json:"description,omitempty"`
	Quantity      int             `gorm:"not null;check:chk_quote_item_quantity,quantity > 0" json:"quantity"`
	UnitValue     decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"unit_value"`
	ConditionText string          `gorm:"type:text" json:"condition_text,omitempty"`

	// Internal only: never printed on customer or supplier documents.
	ArchitectPercent decimal.NullDecimal `gorm:"type:decimal(4,1)" json:"architect_percent"`

	Images []QuoteItemImage `gorm:"foreignKey:QuoteItemID;constraint:OnDelete:CASCADE" json:"images,omitempty"`
}

// LineTotal returns quantity x unit value.
func (i *QuoteItem) LineTotal() decimal.Decimal {
	return i.UnitValue.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// DefaultImageTTL is how long a staged item image is kept.
const DefaultImageTTL = 7 * 24 * time.Hour

// QuoteItemImage is a temporary picture attached to a quote item until conversion.
type QuoteItemImage struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	QuoteItemID uint      `gorm:"index;not null" json:"quote_item_id"`
	Path        string    `gorm:"size:500;not null" json:"path"`
	Caption     string    `gorm:"size:255" json:"caption,omitempty"`
	UploadedAt  time.Time `gorm:"not null" json:"uploaded_at"`
	ExpiresAt   time.Time `gorm:"not null;index" json:"expires_at"`
}

// BeforeCreate stamps upload time and expiry when missing.
func (img *QuoteItemImage) BeforeCreate(tx *gorm.DB) error {
	if img.UploadedAt.IsZero() {
		img.UploadedAt = time.Now()
	}
	if img.ExpiresAt.IsZero() {
		img.ExpiresAt = img.UploadedAt.Add(DefaultImageTTL)
	}
	return nil
}

// Expired reports whether the image is past its expiry at now.
func (img *QuoteItemImage) Expired(now time.Time) bool {
	return !now.Before(img.ExpiresAt)
}

// ImagePath builds the storage key of an item image.
func ImagePath(quoteNumber string, itemID uint, fileName string) string {
	return fmt.Sprintf("tmp/quotes/%s/items/%d/%s", quoteNumber, itemID, fileName)
}

// NextQuoteNumber formats the sequential quote number following count existing quotes.
func NextQuoteNumber(count int64) string {
	return fmt.Sprintf("ORC-%04d", count+1)
}
