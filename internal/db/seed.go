package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/diewo77/go-orcamentos/internal/models"
	"github.com/diewo77/go-orcamentos/internal/services"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// SeedOptions controls the demo data.
type SeedOptions struct {
	DefaultPassword            string
	ArchitectCommissionDefault decimal.Decimal
}

// Seed inserts demo staff, customers, suppliers, carriers, tariffs and a first quote.
// Rows are looked up by their natural key first, so running it twice changes nothing.
func Seed(ctx context.Context, conn *gorm.DB, opts SeedOptions) error {
	if opts.DefaultPassword == "" {
		opts.DefaultPassword = "changeme"
	}
	steps := []struct {
		name string
		fn   func(context.Context, *gorm.DB, SeedOptions) error
	}{
		{"users", seedUsers},
		{"customers", seedCustomers},
		{"suppliers", seedSuppliers},
		{"carriers", seedCarriers},
		{"settings", seedSettings},
		{"quote", seedQuote},
	}
	for _, s := range steps {
		if err := s.fn(ctx, conn, opts); err != nil {
			return fmt.Errorf("seed %s: %w", s.name, err)
		}
	}
	return nil
}

func exists(conn *gorm.DB, model any, query string, args ...any) (bool, error) {
	var n int64
	err := conn.Model(model).Where(query, args...).Count(&n).Error
	return n > 0, err
}

func seedUsers(ctx context.Context, conn *gorm.DB, opts SeedOptions) error {
	staff := services.NewStaffService(conn, 0)
	users := []services.UserInput{
		{Username: "dono", Name: "Proprietário", Email: "dono@example.com", Role: models.RoleOwner},
		{Username: "gerente", Name: "Gerente da Loja", Email: "gerente@example.com", Role: models.RoleAdmin},
		{Username: "vendedor", Name: "Vendedor Demo", Email: "vendedor@example.com", Role: models.RoleSeller,
			IndividualTargetValue: decimal.NewFromInt(50000)},
	}
	for _, u := range users {
		ok, err := exists(conn.WithContext(ctx), &models.User{}, "username = ?", u.Username)
		if err != nil {
			return err
		}
		if ok {
			continue
		}
		u.Password = opts.DefaultPassword
		if _, err := staff.CreateUser(ctx, u); err != nil {
			return err
		}
	}
	return nil
}

func seedCustomers(ctx context.Context, conn *gorm.DB, _ SeedOptions) error {
	svc := services.NewCustomerService(conn)
	for _, c := range []services.CustomerInput{
		{Name: "Maria Silva", CPF: "529.982.247-25", Phone: "(11) 98888-0001", Email: "maria@example.com"},
		{Name: "Construtora Horizonte", CNPJ: "11.222.333/0001-81", Phone: "(11) 3333-0002"},
	} {
		_, err := svc.Create(ctx, c)
		if err != nil && !errors.Is(err, services.ErrDuplicateDocument) {
			return err
		}
	}
	return nil
}

func seedSuppliers(ctx context.Context, conn *gorm.DB, _ SeedOptions) error {
	svc := services.NewSupplierService(conn)
	thirty := 30
	for _, s := range []services.SupplierInput{
		{Name: "Móveis Alfa", SupplierNumber: "FORN-001", Email: "pedidos@alfa.example.com",
			PaymentOptions: []services.PaymentOptionInput{{Description: "30 dias", DaysToPay: &thirty, IsDefault: true}, {Description: "À vista"}}},
		{Name: "Iluminação Beta", SupplierNumber: "FORN-002", Email: "vendas@beta.example.com",
			PaymentOptions: []services.PaymentOptionInput{{Description: "30 dias", DaysToPay: &thirty, IsDefault: true}}},
	} {
		_, err := svc.Create(ctx, s)
		if err != nil && !errors.Is(err, services.ErrDuplicateSupplier) {
			return err
		}
	}
	return nil
}

func seedCarriers(ctx context.Context, conn *gorm.DB, _ SeedOptions) error {
	svc := services.NewShippingService(conn)
	for _, c := range []services.ShippingCompanyInput{
		{Name: "Transportadora Rápida", Phone: "(11) 4000-1000", PaymentMethods: "Pix\nBoleto", IsActive: true},
		{Name: "Entrega Expressa", PaymentMethods: "Dinheiro\nCartão de crédito", IsActive: true},
	} {
		ok, err := exists(conn.WithContext(ctx), &models.ShippingCompany{}, "name = ?", c.Name)
		if err != nil {
			return err
		}
		if ok {
			continue
		}
		if _, err := svc.Create(ctx, c); err != nil {
			return err
		}
	}
	return nil
}

func seedSettings(ctx context.Context, conn *gorm.DB, opts SeedOptions) error {
	svc := services.NewSettingsService(conn, opts.ArchitectCommissionDefault)
	if _, err := svc.ArchitectCommission(ctx); err != nil {
		return err
	}
	tariffs := []models.PaymentTariff{
		{PaymentType: models.PaymentDebitCard, Installments: 1, FeePercent: decimal.RequireFromString("1.5")},
		{PaymentType: models.PaymentCreditCard, Installments: 1, FeePercent: decimal.RequireFromString("2.5")},
		{PaymentType: models.PaymentCreditCard, Installments: 3, FeePercent: decimal.RequireFromString("4.5")},
		{PaymentType: models.PaymentCreditCard, Installments: 6, FeePercent: decimal.RequireFromString("7.0")},
		{PaymentType: models.PaymentCreditCard, Installments: 10, FeePercent: decimal.RequireFromString("10.0")},
	}
	for _, t := range tariffs {
		ok, err := exists(conn.WithContext(ctx), &models.PaymentTariff{}, "payment_type = ? AND installments = ?", t.PaymentType, t.Installments)
		if err != nil {
			return err
		}
		if ok {
			continue
		}
		if _, err := svc.UpsertTariff(ctx, t); err != nil {
			return err
		}
	}
	return nil
}

func seedQuote(ctx context.Context, conn *gorm.DB, opts SeedOptions) error {
	const number = "ORC-0001"
	ok, err := exists(conn.WithContext(ctx), &models.Quote{}, "number = ?", number)
	if err != nil || ok {
		return err
	}
	var (
		seller   models.User
		customer models.Customer
		supA     models.Supplier
		supB     models.Supplier
	)
	db := conn.WithContext(ctx)
	if err := db.Where("username = ?", "vendedor").Take(&seller).Error; err != nil {
		return err
	}
	if err := db.Where("cpf = ?", "52998224725").Take(&customer).Error; err != nil {
		return err
	}
	if err := db.Where("supplier_number = ?", "FORN-001").Take(&supA).Error; err != nil {
		return err
	}
	if err := db.Where("supplier_number = ?", "FORN-002").Take(&supB).Error; err != nil {
		return err
	}
	quotes := services.NewQuoteService(conn, services.NewSettingsService(conn, opts.ArchitectCommissionDefault), nil, nil, nil)
	_, err = quotes.Create(ctx, seller.ID, services.QuoteInput{
		Number:              number,
		CustomerID:          customer.ID,
		FreightValue:        decimal.NewFromInt(120),
		PaymentType:         models.PaymentCreditCard,
		PaymentInstallments: 3,
		Items: []services.QuoteItemInput{
			{SupplierID: &supA.ID, ProductName: "Mesa de jantar", Quantity: 1, UnitValue: decimal.NewFromInt(2400)},
			{SupplierID: &supA.ID, ProductName: "Cadeira estofada", Quantity: 6, UnitValue: decimal.NewFromInt(380)},
			{SupplierID: &supB.ID, ProductName: "Pendente de vidro", Quantity: 2, UnitValue: decimal.NewFromInt(450)},
		},
	})
	return err
}
