package services

import (
	"context"
	"errors"
	"testing"

	"github.com/diewo77/go-orcamentos/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCustomerCreate(t *testing.T) {
	db := newTestDB(t)
	svc := NewCustomerService(db)
	ctx := context.Background()

	c, err := svc.Create(ctx, CustomerInput{Name: "João", CPF: "529.982.247-25"})
	require.NoError(t, err)
	assert.Equal(t, "52998224725", c.CPF)
	assert.Empty(t, c.CNPJ)

	company, err := svc.Create(ctx, CustomerInput{Name: "Construtora X", CNPJ: "11.222.333/0001-81"})
	require.NoError(t, err)
	assert.Equal(t, "11222333000181", company.CNPJ)
	assert.True(t, company.IsCompany())

	_, err = svc.Create(ctx, CustomerInput{Name: "Outro João", CPF: "52998224725"})
	require.ErrorIs(t, err, ErrDuplicateDocument)
	var de *DomainError
	require.True(t, errors.As(err, &de))
	assert.Equal(t, "cpf", de.Field)

	_, err = svc.Create(ctx, CustomerInput{Name: "Inválido", CPF: "529.982.247-26"})
	assert.ErrorIs(t, err, ErrInvalidDocument)

	_, err = svc.Create(ctx, CustomerInput{Name: "Ambos", CPF: "12345678909", CNPJ: "11222333000181"})
	require.ErrorIs(t, err, ErrValidation)
	require.True(t, errors.As(err, &de))
	assert.Equal(t, "exactly_one_document", de.Fields["document"])

	_, err = svc.Create(ctx, CustomerInput{Name: "Nenhum"})
	assert.ErrorIs(t, err, ErrValidation)

	assert.EqualValues(t, 2, countRows(t, db, &models.Customer{}))
}

func TestCustomerSearch(t *testing.T) {
	db := newTestDB(t)
	svc := NewCustomerService(db)
	ctx := context.Background()
	for _, in := range []CustomerInput{
		{Name: "Ana Lima", CPF: "529.982.247-25"},
		{Name: "Mariana Costa", CPF: "123.456.789-09"},
		{Name: "Juliana_Rocha", CNPJ: "11.222.333/0001-81"},
		{Name: "Anabela", Phone: "1", CPF: "111.444.777-35"},
	} {
		_, err := svc.Create(ctx, in)
		require.NoError(t, err)
	}

	c, err := svc.SearchByDocument(ctx, "123.456.789-09")
	require.NoError(t, err)
	assert.Equal(t, "Mariana Costa", c.Name)
	c, err = svc.SearchByDocument(ctx, "11222333000181")
	require.NoError(t, err)
	assert.Equal(t, "Juliana_Rocha", c.Name)
	_, err = svc.SearchByDocument(ctx, "000.000.000-00")
	assert.ErrorIs(t, err, ErrNotFound)

	found, err := svc.SearchByName(ctx, "ANA")
	require.NoError(t, err)
	assert.Len(t, found, NameSearchLimit)

	found, err = svc.SearchByName(ctx, "a")
	require.NoError(t, err)
	assert.Empty(t, found)

	found, err = svc.SearchByName(ctx, "a_r")
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, "Juliana_Rocha", found[0].Name)

	page, total, err := svc.List(ctx, "", 2, 0)
	require.NoError(t, err)
	assert.EqualValues(t, 4, total)
	assert.Len(t, page, 2)
}

func TestCustomerUpdateAndDelete(t *testing.T) {
	f := newFixture(t)
	svc := NewCustomerService(f.db)
	ctx := context.Background()

	_, err := svc.Update(ctx, f.customer.ID, CustomerInput{Name: "Maria", CPF: "123.456.789-09"})
	assert.ErrorIs(t, err, ErrValidation)

	c, err := svc.Update(ctx, f.customer.ID, CustomerInput{Name: "Maria S.", Email: "maria@example.com", CPF: "529.982.247-25"})
	require.NoError(t, err)
	assert.Equal(t, "Maria S.", c.Name)
	assert.Equal(t, "52998224725", c.CPF)

	f.createQuote(t, QuoteInput{})
	assert.ErrorIs(t, svc.Delete(ctx, f.customer.ID), ErrReferenced)

	other, err := svc.Create(ctx, CustomerInput{Name: "Sem orçamento", CPF: "123.456.789-09"})
	require.NoError(t, err)
	require.NoError(t, svc.Delete(ctx, other.ID))
	assert.ErrorIs(t, svc.Delete(ctx, other.ID), ErrNotFound)
}

func TestSupplierPaymentOptions(t *testing.T) {
	db := newTestDB(t)
	svc := NewSupplierService(db)
	ctx := context.Background()

	_, err := svc.Create(ctx, SupplierInput{
		Name: "Gama", SupplierNumber: "FORN-010", Email: "gama@example.com",
		PaymentOptions: []PaymentOptionInput{{Description: "30 dias", IsDefault: true}, {Description: "60 dias", IsDefault: true}},
	})
	require.ErrorIs(t, err, ErrValidation)
	var de *DomainError
	require.True(t, errors.As(err, &de))
	assert.Equal(t, "multiple_default_payment_options", de.Fields["payment_options"])

	days := 30
	sup, err := svc.Create(ctx, SupplierInput{
		Name: "Gama", SupplierNumber: "FORN-010", Email: "Gama@Example.com",
		PaymentOptions: []PaymentOptionInput{{Description: "À vista"}, {Description: "30 dias", DaysToPay: &days, IsDefault: true}},
	})
	require.NoError(t, err)
	assert.Equal(t, "gama@example.com", sup.Email)
	require.Len(t, sup.PaymentOptions, 2)
	require.NotNil(t, sup.DefaultPaymentOption())
	assert.Equal(t, "30 dias", sup.DefaultPaymentOption().Description)

	_, err = svc.Create(ctx, SupplierInput{Name: "Outro", SupplierNumber: "FORN-010", Email: "outro@example.com"})
	assert.ErrorIs(t, err, ErrDuplicateSupplier)

	sup, err = svc.Update(ctx, sup.ID, SupplierInput{
		Name: "Gama Ltda", SupplierNumber: "FORN-010", Email: "gama@example.com",
		PaymentOptions: []PaymentOptionInput{{Description: "45 dias", IsDefault: true}},
	})
	require.NoError(t, err)
	assert.Equal(t, "Gama Ltda", sup.Name)
	require.Len(t, sup.PaymentOptions, 1)
	assert.Equal(t, "45 dias", sup.PaymentOptions[0].Description)
	assert.EqualValues(t, 1, countRows(t, db, &models.SupplierPaymentOption{}))

	require.NoError(t, svc.Delete(ctx, sup.ID))
	assert.Zero(t, countRows(t, db, &models.SupplierPaymentOption{}))
}

func TestSupplierDeleteBlockedWhileReferenced(t *testing.T) {
	f := newFixture(t)
	f.createQuote(t, QuoteInput{Items: []QuoteItemInput{item("Mesa", f.supA, 1, "800")}})
	assert.ErrorIs(t, NewSupplierService(f.db).Delete(context.Background(), f.supA.ID), ErrReferenced)
	assert.NoError(t, NewSupplierService(f.db).Delete(context.Background(), f.supB.ID))
}

func TestShippingCompanies(t *testing.T) {
	db := newTestDB(t)
	svc := NewShippingService(db)
	ctx := context.Background()

	_, err := svc.Create(ctx, ShippingCompanyInput{Name: "Rápido", CNPJ: "11.222.333/0001-80", IsActive: true})
	assert.ErrorIs(t, err, ErrInvalidDocument)

	fast, err := svc.Create(ctx, ShippingCompanyInput{Name: "Rápido", CNPJ: "11.222.333/0001-81", PaymentMethods: "Pix\nBoleto\n", IsActive: true})
	require.NoError(t, err)
	slow, err := svc.Create(ctx, ShippingCompanyInput{Name: "Lento", IsActive: true})
	require.NoError(t, err)

	methods, err := svc.PaymentMethods(ctx, fast.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"Pix", "Boleto"}, methods)

	require.NoError(t, svc.SetActive(ctx, slow.ID, false))
	active, err := svc.ListActive(ctx)
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, fast.ID, active[0].ID)

	_, err = svc.PaymentMethods(ctx, slow.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, svc.SetActive(ctx, 9999, true), ErrNotFound)
}
