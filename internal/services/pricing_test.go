package services

import (
	"context"
	"testing"

	"github.com/diewo77/go-orcamentos/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSubtotal(t *testing.T) {
	items := []models.QuoteItem{
		{Quantity: 10, UnitValue: dec("5.00")},
		{Quantity: 3, UnitValue: dec("2.00")},
	}
	assert.Equal(t, "56.00", Subtotal(items).StringFixed(2))
	assert.True(t, Subtotal(nil).IsZero())
}

func TestCalculatePricing(t *testing.T) {
	tests := []struct {
		name                          string
		freight, discount, fee        string
		wantDiscounted, wantFee, want string
	}{
		{"discount applies after freight", "10", "10", "0", "99.00", "0.00", "99.00"},
		{"no freight no discount", "0", "0", "0", "100.00", "0.00", "100.00"},
		{"fee on discounted amount", "10", "10", "2.5", "99.00", "2.48", "101.48"},
		{"full discount", "10", "100", "3", "0.00", "0.00", "0.00"},
	}
	items := []models.QuoteItem{{Quantity: 4, UnitValue: dec("25")}}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := &models.Quote{FreightValue: dec(tt.freight), DiscountPercent: dec(tt.discount), PaymentFeePercent: dec(tt.fee)}
			p := CalculatePricing(q, items).Rounded()
			assert.Equal(t, "100.00", p.Subtotal.StringFixed(2))
			assert.Equal(t, tt.wantDiscounted, p.TotalWithFreightAndDiscount.StringFixed(2))
			assert.Equal(t, tt.wantFee, p.PaymentFeeValue.StringFixed(2))
			assert.Equal(t, tt.want, p.FinalTotal.StringFixed(2))
		})
	}
}

func TestPricingServiceForQuote(t *testing.T) {
	f := newFixture(t)
	q := f.createQuote(t, QuoteInput{
		FreightValue:    dec("10"),
		DiscountPercent: dec("10"),
		Items:           []QuoteItemInput{item("Mesa", f.supA, 2, "30"), item("Cadeira", f.supB, 8, "5")},
	})

	p, err := NewPricingService(f.db).ForQuote(context.Background(), q.ID)
	require.NoError(t, err)
	assert.Equal(t, "100.00", p.Subtotal.StringFixed(2))
	assert.Equal(t, "99.00", p.Rounded().FinalTotal.StringFixed(2))
	assert.Equal(t, "99.00", q.TotalValueSnapshot.StringFixed(2))

	_, err = NewPricingService(f.db).ForQuote(context.Background(), 9999)
	assert.ErrorIs(t, err, ErrNotFound)
}
