package services

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/diewo77/go-orcamentos/internal/models"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", name)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, db.AutoMigrate(models.All()...))
	return db
}

type fixture struct {
	db       *gorm.DB
	seller   *models.User
	admin    *models.User
	customer *models.Customer
	supA     *models.Supplier
	supB     *models.Supplier
	settings *SettingsService
	quotes   *QuoteService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()
	db := newTestDB(t)
	staff := NewStaffService(db, time.Hour)
	seller, err := staff.CreateUser(ctx, UserInput{Username: "vendedor", Name: "Vendedor", Password: "segredo", Role: models.RoleSeller})
	require.NoError(t, err)
	admin, err := staff.CreateUser(ctx, UserInput{Username: "gerente", Name: "Gerente", Password: "segredo", Role: models.RoleAdmin})
	require.NoError(t, err)
	customer, err := NewCustomerService(db).Create(ctx, CustomerInput{Name: "Maria Souza", CPF: "529.982.247-25"})
	require.NoError(t, err)
	sups := NewSupplierService(db)
	supA, err := sups.Create(ctx, SupplierInput{
		Name: "Alfa Móveis", SupplierNumber: "FORN-001", Email: "alfa@example.com",
		PaymentOptions: []PaymentOptionInput{{Description: "À vista"}, {Description: "30 dias", IsDefault: true}},
	})
	require.NoError(t, err)
	supB, err := sups.Create(ctx, SupplierInput{Name: "Beta Iluminação", SupplierNumber: "FORN-002", Email: "beta@example.com"})
	require.NoError(t, err)
	settings := NewSettingsService(db, decimal.NewFromInt(10))
	return &fixture{
		db: db, seller: seller, admin: admin, customer: customer, supA: supA, supB: supB,
		settings: settings,
		quotes:   NewQuoteService(db, settings, nil, nil, nil),
	}
}

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func item(name string, supplier *models.Supplier, qty int, unit string) QuoteItemInput {
	in := QuoteItemInput{ProductName: name, Quantity: qty, UnitValue: dec(unit)}
	if supplier != nil {
		id := supplier.ID
		in.SupplierID = &id
	}
	return in
}

func (f *fixture) createQuote(t *testing.T, in QuoteInput) *models.Quote {
	t.Helper()
	if in.CustomerID == 0 {
		in.CustomerID = f.customer.ID
	}
	q, err := f.quotes.Create(context.Background(), f.seller.ID, in)
	require.NoError(t, err)
	return q
}

func countRows(t *testing.T, db *gorm.DB, model any, where ...any) int64 {
	t.Helper()
	var n int64
	q := db.Model(model)
	if len(where) > 0 {
		q = q.Where(where[0], where[1:]...)
	}
	require.NoError(t, q.Count(&n).Error)
	return n
}

func decimalNull(s string) decimal.NullDecimal { return decimal.NewNullDecimal(dec(s)) }
