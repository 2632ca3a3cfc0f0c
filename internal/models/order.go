package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// OrderStatus represents the lifecycle state of a purchase order.
type OrderStatus string

const (
	OrderStatusOpen     OrderStatus = "OPEN"
	OrderStatusSent     OrderStatus = "SENT"
	OrderStatusDone     OrderStatus = "DONE"
	OrderStatusCanceled OrderStatus = "CANCELED"
)

var orderTransitions = map[OrderStatus][]OrderStatus{
	OrderStatusOpen: {OrderStatusSent, OrderStatusCanceled},
	OrderStatusSent: {OrderStatusDone, OrderStatusCanceled},
}

// Valid reports whether s is a known order status.
func (s OrderStatus) Valid() bool {
	switch s {
	case OrderStatusOpen, OrderStatusSent, OrderStatusDone, OrderStatusCanceled:
		return true
	}
	return false
}

// CanTransitionTo reports whether an order may move from s to next.
func (s OrderStatus) CanTransitionTo(next OrderStatus) bool {
	for _, allowed := range orderTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Order is a purchase order derived from a converted quote. A per-supplier order always
// references its supplier; the single total-conference order of a quote never does.
type Order struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Number string `gorm:"size:50;not null;index" json:"number"`

	QuoteID           uint      `gorm:"not null;index;uniqueIndex:uniq_total_order_per_quote,where:is_total_conference;uniqueIndex:uniq_supplier_order_per_quote,where:NOT is_total_conference" json:"quote_id"`
	SupplierID        *uint     `gorm:"index;uniqueIndex:uniq_supplier_order_per_quote,where:NOT is_total_conference" json:"supplier_id,omitempty"`
	Supplier          *Supplier `gorm:"foreignKey:SupplierID;constraint:OnDelete:RESTRICT" json:"supplier,omitempty"`
	IsTotalConference bool      `gorm:"not null;check:chk_order_supplier,(is_total_conference AND supplier_id IS NULL) OR (NOT is_total_conference AND supplier_id IS NOT NULL)" json:"is_total_conference"`

	Status                OrderStatus `gorm:"size:20;not null;index" json:"status"`
	PurchaseConditionText string      `gorm:"type:text" json:"purchase_condition_text,omitempty"`
	Notes                 string      `gorm:"type:text" json:"notes,omitempty"`

	Items []OrderItem `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE" json:"items,omitempty"`
}

// Kind returns "total" for the total-conference order and "supplier" otherwise.
func (o *Order) Kind() string {
	if o.IsTotalConference {
		return "total"
	}
	return "supplier"
}

// Total sums the line totals of the loaded items.
func (o *Order) Total() decimal.Decimal {
	total := decimal.Zero
	for i := range o.Items {
		total = total.Add(o.Items[i].LineTotal())
	}
	return total
}

// OrderItem is a snapshot of a quote item inside a purchase order. QuoteItemID is a weak
// reference: it is cleared when the source quote item is deleted.
type OrderItem struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`

	OrderID          uint            `gorm:"index;not null" json:"order_id"`
	ProductName      string          `gorm:"size:255;not null" json:"product_name"`
	Description      string          `gorm:"type:text" json:"description,omitempty"`
	Quantity         int             `gorm:"not null;check:chk_order_item_quantity,quantity > 0" json:"quantity"`
	PurchaseUnitCost decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"purchase_unit_cost"`

	QuoteItemID *uint      `gorm:"index" json:"quote_item_id,omitempty"`
	QuoteItem   *QuoteItem `gorm:"foreignKey:QuoteItemID;constraint:OnDelete:SET NULL" json:"-"`
}

// LineTotal returns quantity x purchase unit cost.
func (i *OrderItem) LineTotal() decimal.Decimal {
	return i.PurchaseUnitCost.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// All returns every model in migration order.
func All() []any {
	return []any{
		&User{}, &Customer{}, &Supplier{}, &SupplierPaymentOption{}, &ShippingCompany{},
		&PaymentTariff{}, &Setting{}, &Quote{}, &QuoteItem{}, &QuoteItemImage{}, &Order{}, &OrderItem{},
	}
}
