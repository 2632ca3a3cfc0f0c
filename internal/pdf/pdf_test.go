package pdf

import (
	"bytes"
	"testing"
	"time"

	"github.com/diewo77/go-orcamentos/internal/models"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMoney(t *testing.T) {
	tests := map[string]string{
		"0":          "R$ 0,00",
		"5":          "R$ 5,00",
		"1234.5":     "R$ 1.234,50",
		"1234567.89": "R$ 1.234.567,89",
		"-99.999":    "-R$ 100,00",
		"100":        "R$ 100,00",
	}
	for in, want := range tests {
		assert.Equal(t, want, Money(decimal.RequireFromString(in)), in)
	}
}

func sampleQuote() *models.Quote {
	sup := uint(1)
	return &models.Quote{
		Number:      "ORC-0042",
		QuoteDate:   time.Date(2026, 5, 4, 0, 0, 0, 0, time.UTC),
		Customer:    &models.Customer{Name: "Maria", CPF: "52998224725"},
		Seller:      &models.User{Username: "vendedor"},
		PaymentType: models.PaymentPix,
		Items: []models.QuoteItem{
			{ProductName: "Mesa", Quantity: 1, UnitValue: decimal.NewFromInt(800), SupplierID: &sup,
				ArchitectPercent: decimal.NewNullDecimal(decimal.NewFromInt(10))},
			{ProductName: "Cadeira", Description: "Carvalho", Quantity: 4, UnitValue: decimal.NewFromInt(200)},
		},
	}
}

func TestRenderers(t *testing.T) {
	q := sampleQuote()
	client, err := ClientQuote(q, Totals{Subtotal: decimal.NewFromInt(1600), Final: decimal.NewFromInt(1600)})
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(client, []byte("%PDF")))

	supplier, err := SupplierQuote(q, &models.Supplier{ID: 1, Name: "Alfa", SupplierNumber: "FORN-001"})
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(supplier, []byte("%PDF")))

	order := &models.Order{
		Number: "ORC-0042", IsTotalConference: true, Status: models.OrderStatusOpen,
		Items: []models.OrderItem{{ProductName: "Mesa", Quantity: 1, PurchaseUnitCost: decimal.NewFromInt(800)}},
	}
	out, err := Order(order)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF")))
}
