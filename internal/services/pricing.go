package services

import (
	"context"

	"github.com/diewo77/go-orcamentos/internal/models"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

var hundred = decimal.NewFromInt(100)

// Pricing holds the derived totals of a quote. Values are unrounded; call Rounded for presentation.
type Pricing struct {
	Subtotal                    decimal.Decimal `json:"subtotal"`
	TotalWithFreightAndDiscount decimal.Decimal `json:"total_with_freight_and_discount"`
	PaymentFeeValue             decimal.Decimal `json:"payment_fee_value"`
	FinalTotal                  decimal.Decimal `json:"final_total"`
}

// Rounded returns the totals rounded to cents.
func (p Pricing) Rounded() Pricing {
	return Pricing{
		Subtotal:                    p.Subtotal.Round(2),
		TotalWithFreightAndDiscount: p.TotalWithFreightAndDiscount.Round(2),
		PaymentFeeValue:             p.PaymentFeeValue.Round(2),
		FinalTotal:                  p.FinalTotal.Round(2),
	}
}

// Subtotal sums unit value x quantity over items.
func Subtotal(items []models.QuoteItem) decimal.Decimal {
	total := decimal.Zero
	for i := range items {
		total = total.Add(items[i].LineTotal())
	}
	return total
}

// CalculatePricing derives the quote totals. The discount applies to subtotal plus freight and
// the payment fee applies to the discounted amount.
func CalculatePricing(q *models.Quote, items []models.QuoteItem) Pricing {
	subtotal := Subtotal(items)
	discounted := subtotal.Add(q.FreightValue).Mul(hundred.Sub(q.DiscountPercent)).Div(hundred)
	fee := discounted.Mul(q.PaymentFeePercent).Div(hundred)
	return Pricing{
		Subtotal:                    subtotal,
		TotalWithFreightAndDiscount: discounted,
		PaymentFeeValue:             fee,
		FinalTotal:                  discounted.Add(fee),
	}
}

// PricingService answers pricing queries for stored quotes.
type PricingService struct{ DB *gorm.DB }

func NewPricingService(db *gorm.DB) *PricingService { return &PricingService{DB: db} }

// ForQuote loads the quote with its items and prices it.
func (s *PricingService) ForQuote(ctx context.Context, quoteID uint) (Pricing, error) {
	var q models.Quote
	err := s.DB.WithContext(ctx).Preload("Items", func(db *gorm.DB) *gorm.DB {
		return db.Order("position, id")
	}).First(&q, quoteID).Error
	if err != nil {
		return Pricing{}, translateDBError(err)
	}
	return CalculatePricing(&q, q.Items), nil
}
