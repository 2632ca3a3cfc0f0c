package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/diewo77/go-orcamentos/auth"
	"github.com/diewo77/go-orcamentos/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQuoteCreateDefaults(t *testing.T) {
	f := newFixture(t)
	q := f.createQuote(t, QuoteInput{Items: []QuoteItemInput{item("Mesa", f.supA, 1, "800")}})

	assert.Equal(t, "ORC-0001", q.Number)
	assert.Equal(t, models.QuoteStatusDraft, q.Status)
	assert.Equal(t, models.FreightCustomer, q.FreightResponsible)
	assert.Equal(t, 1, q.PaymentInstallments)
	assert.False(t, q.QuoteDate.IsZero())
	assert.Equal(t, f.seller.ID, q.SellerID)
	require.Len(t, q.Items, 1)
	assert.Equal(t, 1, q.Items[0].Position)
	assert.False(t, q.Items[0].ArchitectPercent.Valid)
	assert.Equal(t, "Não definido", q.PaymentDescription())

	second := f.createQuote(t, QuoteInput{Number: "ESP-7"})
	assert.Equal(t, "ESP-7", second.Number)
	third := f.createQuote(t, QuoteInput{})
	assert.Equal(t, "ORC-0003", third.Number)
}

func TestQuoteCreateValidation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	missing := uint(9999)

	tests := []struct {
		name  string
		in    QuoteInput
		field string
	}{
		{"zero quantity", QuoteInput{CustomerID: f.customer.ID, Items: []QuoteItemInput{item("Mesa", f.supA, 0, "1")}}, "items.quantity"},
		{"negative unit value", QuoteInput{CustomerID: f.customer.ID, Items: []QuoteItemInput{item("Mesa", f.supA, 1, "-1")}}, "items.unit_value"},
		{"discount above 100", QuoteInput{CustomerID: f.customer.ID, DiscountPercent: dec("100.5")}, "discount_percent"},
		{"negative freight", QuoteInput{CustomerID: f.customer.ID, FreightValue: dec("-5")}, "freight_value"},
		{"unknown payment type", QuoteInput{CustomerID: f.customer.ID, PaymentType: "BITCOIN"}, "payment_type"},
		{"missing customer", QuoteInput{}, "customer_id"},
		{"unknown customer", QuoteInput{CustomerID: 9999}, "customer_id"},
		{"unknown supplier", QuoteInput{CustomerID: f.customer.ID, Items: []QuoteItemInput{{ProductName: "Mesa", Quantity: 1, SupplierID: &missing}}}, "items.supplier_id"},
		{"unknown carrier", QuoteInput{CustomerID: f.customer.ID, ShippingCompanyID: &missing}, "shipping_company_id"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.quotes.Create(ctx, f.seller.ID, tt.in)
			require.ErrorIs(t, err, ErrValidation)
			var de *DomainError
			require.True(t, errors.As(err, &de))
			assert.Contains(t, de.Fields, tt.field)
		})
	}
	assert.Zero(t, countRows(t, f.db, &models.Quote{}))
}

func TestQuotePaymentFeeAndArchitect(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, err := f.settings.UpsertTariff(ctx, models.PaymentTariff{PaymentType: models.PaymentCreditCard, Installments: 3, FeePercent: dec("4.5")})
	require.NoError(t, err)

	q := f.createQuote(t, QuoteInput{
		HasArchitect:        true,
		PaymentType:         models.PaymentCreditCard,
		PaymentInstallments: 3,
		Items: []QuoteItemInput{
			item("Mesa", f.supA, 1, "1000"),
			{ProductName: "Cadeira", Quantity: 1, UnitValue: dec("0"), ArchitectPercent: decimalNull("5")},
		},
	})
	assert.Equal(t, "4.5", q.PaymentFeePercent.String())
	assert.Equal(t, "1045.00", q.TotalValueSnapshot.StringFixed(2))
	assert.Equal(t, "Cartão de crédito - 3x", q.PaymentDescription())
	require.Len(t, q.Items, 2)
	assert.Equal(t, "10", q.Items[0].ArchitectPercent.Decimal.String())
	assert.Equal(t, "5", q.Items[1].ArchitectPercent.Decimal.String())

	noTariff := f.createQuote(t, QuoteInput{PaymentType: models.PaymentPix})
	assert.True(t, noTariff.PaymentFeePercent.IsZero())
	assert.Equal(t, "Pix - À vista", noTariff.PaymentDescription())
}

func TestQuoteUpdateReplacesItems(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	q := f.createQuote(t, QuoteInput{Items: []QuoteItemInput{
		item("Mesa", f.supA, 1, "800"),
		item("Cadeira", f.supA, 4, "200"),
	}})
	keep := q.Items[0].ID
	keepIn := item("Mesa redonda", f.supB, 2, "750")
	keepIn.ID = &keep

	updated, err := f.quotes.Update(ctx, q.ID, QuoteInput{
		CustomerID:   f.customer.ID,
		FreightValue: dec("50"),
		Items:        []QuoteItemInput{keepIn, item("Banco", f.supA, 1, "300")},
	})
	require.NoError(t, err)
	require.Len(t, updated.Items, 2)
	assert.Equal(t, keep, updated.Items[0].ID)
	assert.Equal(t, "Mesa redonda", updated.Items[0].ProductName)
	assert.Equal(t, "Banco", updated.Items[1].ProductName)
	assert.Equal(t, "1850.00", updated.TotalValueSnapshot.StringFixed(2))
	assert.Zero(t, countRows(t, f.db, &models.QuoteItem{}, "product_name = ?", "Cadeira"))

	foreign := uint(9999)
	bad := item("Outro", f.supA, 1, "1")
	bad.ID = &foreign
	_, err = f.quotes.Update(ctx, q.ID, QuoteInput{CustomerID: f.customer.ID, Items: []QuoteItemInput{bad}})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestQuoteUpdateRejectedAfterConversion(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	q := f.createQuote(t, QuoteInput{Items: []QuoteItemInput{item("Mesa", f.supA, 1, "800")}})
	_, err := NewConverter(f.db, nil, nil, nil).Convert(ctx, q.ID)
	require.NoError(t, err)

	_, err = f.quotes.Update(ctx, q.ID, QuoteInput{CustomerID: f.customer.ID})
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestQuoteStatusTransitions(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	q := f.createQuote(t, QuoteInput{Items: []QuoteItemInput{item("Mesa", f.supA, 1, "800")}})

	_, err := f.quotes.ChangeStatus(ctx, q.ID, models.QuoteStatusApproved)
	assert.ErrorIs(t, err, ErrInvalidTransition)
	_, err = f.quotes.ChangeStatus(ctx, q.ID, models.QuoteStatusConverted)
	assert.ErrorIs(t, err, ErrInvalidTransition)

	for _, to := range []models.QuoteStatus{models.QuoteStatusSent, models.QuoteStatusApproved} {
		q, err = f.quotes.ChangeStatus(ctx, q.ID, to)
		require.NoError(t, err)
		assert.Equal(t, to, q.Status)
	}
	q, err = f.quotes.ChangeStatus(ctx, q.ID, models.QuoteStatusCanceled)
	require.NoError(t, err)
	_, err = f.quotes.ChangeStatus(ctx, q.ID, models.QuoteStatusDraft)
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestQuoteDiscountAuthorization(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	q := f.createQuote(t, QuoteInput{DiscountPercent: dec("20"), Items: []QuoteItemInput{item("Mesa", f.supA, 1, "800")}})

	_, err := f.quotes.ChangeStatus(ctx, q.ID, models.QuoteStatusSent)
	assert.ErrorIs(t, err, ErrDiscountNotAuthorized)

	small, _, err := NewStaffService(f.db, time.Hour).AuthorizeDiscount(ctx, "gerente", "segredo", dec("18"))
	require.NoError(t, err)
	_, err = f.quotes.Update(ctx, q.ID, QuoteInput{CustomerID: f.customer.ID, DiscountPercent: dec("20"), DiscountAuthorization: small})
	assert.ErrorIs(t, err, ErrInvalidAuthorization)

	_, err = f.quotes.Update(ctx, q.ID, QuoteInput{CustomerID: f.customer.ID, DiscountPercent: dec("20"), DiscountAuthorization: "garbage"})
	assert.ErrorIs(t, err, ErrInvalidAuthorization)

	forged, err := auth.IssueDiscountGrant(auth.DiscountGrant{AuthorizerID: 4242, MaxDiscount: dec("50")}, time.Hour)
	require.NoError(t, err)
	_, err = f.quotes.Update(ctx, q.ID, QuoteInput{CustomerID: f.customer.ID, DiscountPercent: dec("20"), DiscountAuthorization: forged})
	assert.ErrorIs(t, err, ErrInvalidAuthorization)

	token, _, err := NewStaffService(f.db, time.Hour).AuthorizeDiscount(ctx, "gerente", "segredo", dec("20"))
	require.NoError(t, err)
	q, err = f.quotes.Update(ctx, q.ID, QuoteInput{
		CustomerID: f.customer.ID, DiscountPercent: dec("20"), DiscountAuthorization: token,
		Items: []QuoteItemInput{item("Mesa", f.supA, 1, "800")},
	})
	require.NoError(t, err)
	require.True(t, q.HasDiscountAuthorization())
	require.NotNil(t, q.DiscountAuthorizedBy)
	assert.Equal(t, "gerente", q.DiscountAuthorizedBy.Username)

	q, err = f.quotes.ChangeStatus(ctx, q.ID, models.QuoteStatusSent)
	require.NoError(t, err)

	// Raising the discount afterwards drops the authorization.
	_, err = f.quotes.Update(ctx, q.ID, QuoteInput{CustomerID: f.customer.ID, DiscountPercent: dec("30")})
	assert.ErrorIs(t, err, ErrDiscountNotAuthorized)
}

func TestQuoteDeleteItemKeepsOrderSnapshot(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	q := f.createQuote(t, QuoteInput{Items: []QuoteItemInput{item("Mesa", f.supA, 1, "800"), item("Cadeira", f.supA, 2, "100")}})
	_, err := NewConverter(f.db, nil, nil, nil).Convert(ctx, q.ID)
	require.NoError(t, err)

	require.NoError(t, f.quotes.DeleteItem(ctx, q.ID, q.Items[0].ID))

	var snap []models.OrderItem
	require.NoError(t, f.db.Where("product_name = ?", "Mesa").Find(&snap).Error)
	require.Len(t, snap, 2)
	for _, it := range snap {
		assert.Nil(t, it.QuoteItemID)
		assert.Equal(t, "800.00", it.PurchaseUnitCost.StringFixed(2))
	}
	assert.ErrorIs(t, f.quotes.DeleteItem(ctx, q.ID, q.Items[0].ID), ErrNotFound)
}

func TestQuoteList(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.createQuote(t, QuoteInput{})
	second := f.createQuote(t, QuoteInput{})
	_, err := f.quotes.ChangeStatus(ctx, second.ID, models.QuoteStatusSent)
	require.NoError(t, err)

	all, total, err := f.quotes.List(ctx, QuoteFilter{Limit: 10})
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
	require.Len(t, all, 2)
	assert.Equal(t, second.ID, all[0].ID)
	require.NotNil(t, all[0].Customer)

	sent, total, err := f.quotes.List(ctx, QuoteFilter{Status: models.QuoteStatusSent, Limit: 10})
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	assert.Equal(t, second.ID, sent[0].ID)

	byName, total, err := f.quotes.List(ctx, QuoteFilter{Query: "maria", Limit: 10})
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
	assert.Len(t, byName, 2)
}
