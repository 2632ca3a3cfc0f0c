package services

import (
	"context"
	"strings"
	"time"

	"github.com/diewo77/go-orcamentos/auth"
	"github.com/diewo77/go-orcamentos/internal/metrics"
	"github.com/diewo77/go-orcamentos/internal/models"
	"github.com/diewo77/go-orcamentos/internal/storage"
	"github.com/diewo77/go-orcamentos/validation"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type QuoteItemInput struct {
	ID               *uint               `json:"id"`
	SupplierID       *uint               `json:"supplier_id"`
	ProductName      string              `json:"product_name"`
	Description      string              `json:"description"`
	Quantity         int                 `json:"quantity"`
	UnitValue        decimal.Decimal     `json:"unit_value"`
	ConditionText    string              `json:"condition_text"`
	ArchitectPercent decimal.NullDecimal `json:"architect_percent"`
}

type QuoteInput struct {
	Number                string                    `json:"number"`
	CustomerID            uint                      `json:"customer_id"`
	QuoteDate             *time.Time                `json:"quote_date"`
	DeliveryDeadline      *time.Time                `json:"delivery_deadline"`
	FreightValue          decimal.Decimal           `json:"freight_value"`
	FreightResponsible    models.FreightResponsible `json:"freight_responsible"`
	ShippingCompanyID     *uint                     `json:"shipping_company_id"`
	ShippingPaymentMethod string                    `json:"shipping_payment_method"`
	DiscountPercent       decimal.Decimal           `json:"discount_percent"`
	DiscountAuthorization string                    `json:"discount_authorization"`
	HasArchitect          bool                      `json:"has_architect"`
	PaymentType           models.PaymentType        `json:"payment_type"`
	PaymentInstallments   int                       `json:"payment_installments"`
	Notes                 string                    `json:"notes"`
	Items                 []QuoteItemInput          `json:"items"`
}

func (in *QuoteInput) validate() validation.Violations {
	v := validation.Violations{}
	if in.CustomerID == 0 {
		v["customer_id"] = "required"
	}
	validation.NonNegative("freight_value", in.FreightValue, v)
	validation.Percent("discount_percent", in.DiscountPercent, v)
	if in.FreightResponsible != "" && !in.FreightResponsible.Valid() {
		v["freight_responsible"] = "invalid_choice"
	}
	if in.PaymentType != "" && !in.PaymentType.Valid() {
		v["payment_type"] = "invalid_choice"
	}
	if in.PaymentInstallments < 0 {
		v["payment_installments"] = "must_be_positive"
	}
	for _, it := range in.Items {
		validation.Required("items.product_name", it.ProductName, v)
		validation.PositiveInt("items.quantity", it.Quantity, v)
		validation.NonNegative("items.unit_value", it.UnitValue, v)
		if it.ArchitectPercent.Valid {
			validation.Percent("items.architect_percent", it.ArchitectPercent.Decimal, v)
		}
	}
	return v
}

// QuoteFilter narrows List results.
type QuoteFilter struct {
	Status     models.QuoteStatus
	CustomerID uint
	SellerID   uint
	Query      string
	Limit      int
	Offset     int
}

// QuoteService creates and edits quotes and moves them through their statuses.
type QuoteService struct {
	DB                *gorm.DB
	Settings          *SettingsService
	Files             storage.FileStore
	Log               *zap.Logger
	Metrics           *metrics.Metrics
	DiscountThreshold decimal.Decimal
	Now               func() time.Time
}

func NewQuoteService(db *gorm.DB, settings *SettingsService, files storage.FileStore, log *zap.Logger, m *metrics.Metrics) *QuoteService {
	if log == nil {
		log = zap.NewNop()
	}
	return &QuoteService{
		DB: db, Settings: settings, Files: files, Log: log, Metrics: m,
		DiscountThreshold: models.DefaultDiscountThreshold,
		Now:               time.Now,
	}
}

// Create stores a new draft quote with its items.
func (s *QuoteService) Create(ctx context.Context, sellerID uint, in QuoteInput) (*models.Quote, error) {
	if v := in.validate(); !v.Empty() {
		return nil, violationsError(v)
	}
	rates, err := s.rates(ctx, &in)
	if err != nil {
		return nil, err
	}
	q := models.Quote{SellerID: sellerID, Status: models.QuoteStatusDraft}
	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.checkReferences(tx, &in); err != nil {
			return err
		}
		if err := s.apply(tx, &q, &in, rates); err != nil {
			return err
		}
		if q.Number == "" {
			var count int64
			if err := tx.Model(&models.Quote{}).Count(&count).Error; err != nil {
				return translateDBError(err)
			}
			q.Number = models.NextQuoteNumber(count)
		}
		items, err := buildItems(&q, nil, in.Items, rates)
		if err != nil {
			return err
		}
		q.TotalValueSnapshot = CalculatePricing(&q, items).FinalTotal.Round(2)
		if err := tx.Omit(clause.Associations).Create(&q).Error; err != nil {
			return translateDBError(err)
		}
		for i := range items {
			items[i].QuoteID = q.ID
		}
		if len(items) > 0 {
			if err := tx.Omit(clause.Associations).Create(&items).Error; err != nil {
				return translateDBError(err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.Get(ctx, q.ID)
}

// Update replaces the quote's fields and items. Items missing from the input are deleted.
// Converted and canceled quotes cannot be edited.
func (s *QuoteService) Update(ctx context.Context, id uint, in QuoteInput) (*models.Quote, error) {
	if v := in.validate(); !v.Empty() {
		return nil, violationsError(v)
	}
	rates, err := s.rates(ctx, &in)
	if err != nil {
		return nil, err
	}
	var removed []models.QuoteItemImage
	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		q, err := lockQuote(tx, id)
		if err != nil {
			return err
		}
		if !q.CanEdit() {
			return ErrInvalidTransition
		}
		if err := s.checkReferences(tx, &in); err != nil {
			return err
		}
		previousDiscount := q.DiscountPercent
		if err := s.apply(tx, q, &in, rates); err != nil {
			return err
		}
		if in.DiscountAuthorization == "" && !q.DiscountPercent.Equal(previousDiscount) {
			q.DiscountAuthorizedByID, q.DiscountAuthorizedAt = nil, nil
		}
		if !q.IsDraft() && q.NeedsDiscountAuthorization(s.DiscountThreshold) && !q.HasDiscountAuthorization() {
			return ErrDiscountNotAuthorized
		}

		var current []models.QuoteItem
		if err := tx.Where("quote_id = ?", q.ID).Find(&current).Error; err != nil {
			return translateDBError(err)
		}
		items, err := buildItems(q, current, in.Items, rates)
		if err != nil {
			return err
		}
		keep := map[uint]bool{}
		for _, it := range items {
			if it.ID != 0 {
				keep[it.ID] = true
			}
		}
		var drop []uint
		for _, it := range current {
			if !keep[it.ID] {
				drop = append(drop, it.ID)
			}
		}
		if removed, err = deleteQuoteItems(tx, drop); err != nil {
			return err
		}
		for i := range items {
			items[i].QuoteID = q.ID
			if items[i].ID == 0 {
				if err := tx.Omit(clause.Associations).Create(&items[i]).Error; err != nil {
					return translateDBError(err)
				}
				continue
			}
			if err := tx.Model(&models.QuoteItem{ID: items[i].ID}).Select(quoteItemColumns).Updates(&items[i]).Error; err != nil {
				return translateDBError(err)
			}
		}
		q.TotalValueSnapshot = CalculatePricing(q, items).FinalTotal.Round(2)
		return translateDBError(tx.Model(&models.Quote{ID: q.ID}).Select(quoteColumns).Updates(q).Error)
	})
	if err != nil {
		return nil, err
	}
	removeStagedFiles(ctx, s.Files, s.Log, s.Metrics, removed)
	return s.Get(ctx, id)
}

var quoteColumns = []string{
	"number", "customer_id", "quote_date", "delivery_deadline", "freight_value", "freight_responsible",
	"shipping_company_id", "shipping_payment_method", "discount_percent", "discount_authorized_by_id",
	"discount_authorized_at", "has_architect", "payment_type", "payment_installments", "payment_fee_percent",
	"total_value_snapshot", "notes", "updated_at",
}

var quoteItemColumns = []string{
	"position", "supplier_id", "product_name", "description", "quantity", "unit_value",
	"condition_text", "architect_percent", "updated_at",
}

// ChangeStatus moves a quote along its lifecycle. CONVERTED is only reachable through conversion,
// and leaving DRAFT with a discount above the threshold requires an authorization.
func (s *QuoteService) ChangeStatus(ctx context.Context, id uint, to models.QuoteStatus) (*models.Quote, error) {
	if !to.Valid() || to == models.QuoteStatusConverted {
		return nil, ErrInvalidTransition
	}
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		q, err := lockQuote(tx, id)
		if err != nil {
			return err
		}
		if !q.Status.CanTransitionTo(to) {
			return ErrInvalidTransition
		}
		if to != models.QuoteStatusDraft && to != models.QuoteStatusCanceled &&
			q.NeedsDiscountAuthorization(s.DiscountThreshold) && !q.HasDiscountAuthorization() {
			return ErrDiscountNotAuthorized
		}
		return translateDBError(tx.Model(&models.Quote{}).Where("id = ?", id).
			Updates(map[string]any{"status": to, "updated_at": s.Now()}).Error)
	})
	if err != nil {
		return nil, err
	}
	return s.Get(ctx, id)
}

// DeleteItem removes one item. Order items copied from it keep their snapshot and lose the reference.
func (s *QuoteService) DeleteItem(ctx context.Context, quoteID, itemID uint) error {
	var removed []models.QuoteItemImage
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		q, err := lockQuote(tx, quoteID)
		if err != nil {
			return err
		}
		if q.Status == models.QuoteStatusCanceled {
			return ErrInvalidTransition
		}
		var item models.QuoteItem
		if err := tx.Where("id = ? AND quote_id = ?", itemID, quoteID).Take(&item).Error; err != nil {
			return translateDBError(err)
		}
		if removed, err = deleteQuoteItems(tx, []uint{item.ID}); err != nil {
			return err
		}
		if !q.CanEdit() {
			return nil
		}
		var items []models.QuoteItem
		if err := tx.Where("quote_id = ?", quoteID).Find(&items).Error; err != nil {
			return translateDBError(err)
		}
		return translateDBError(tx.Model(&models.Quote{}).Where("id = ?", quoteID).
			UpdateColumn("total_value_snapshot", CalculatePricing(q, items).FinalTotal.Round(2)).Error)
	})
	if err != nil {
		return err
	}
	removeStagedFiles(ctx, s.Files, s.Log, s.Metrics, removed)
	return nil
}

// Get loads a quote with everything needed to display it.
func (s *QuoteService) Get(ctx context.Context, id uint) (*models.Quote, error) {
	var q models.Quote
	err := s.DB.WithContext(ctx).
		Preload("Customer").Preload("Seller").Preload("ShippingCompany").Preload("DiscountAuthorizedBy").
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("position, id") }).
		Preload("Items.Supplier").Preload("Items.Images").
		Preload("Orders", func(db *gorm.DB) *gorm.DB { return db.Order("is_total_conference, id") }).
		First(&q, id).Error
	if err != nil {
		return nil, translateDBError(err)
	}
	return &q, nil
}

// List returns a page of quotes, newest first.
func (s *QuoteService) List(ctx context.Context, f QuoteFilter) ([]models.Quote, int64, error) {
	db := s.DB.WithContext(ctx).Model(&models.Quote{})
	if f.Status != "" {
		db = db.Where("status = ?", f.Status)
	}
	if f.CustomerID != 0 {
		db = db.Where("customer_id = ?", f.CustomerID)
	}
	if f.SellerID != 0 {
		db = db.Where("seller_id = ?", f.SellerID)
	}
	if q := strings.TrimSpace(f.Query); q != "" {
		like := "%" + strings.ToLower(escapeLike(q)) + "%"
		db = db.Where("LOWER(number) LIKE ? ESCAPE '\\' OR customer_id IN (?)", like,
			s.DB.Model(&models.Customer{}).Select("id").Where("LOWER(name) LIKE ? ESCAPE '\\'", like))
	}
	db = db.Session(&gorm.Session{})
	var total int64
	if err := db.Count(&total).Error; err != nil {
		return nil, 0, translateDBError(err)
	}
	var out []models.Quote
	if err := db.Preload("Customer").Order("id desc").Limit(f.Limit).Offset(f.Offset).Find(&out).Error; err != nil {
		return nil, 0, translateDBError(err)
	}
	return out, total, nil
}

func lockQuote(tx *gorm.DB, id uint) (*models.Quote, error) {
	var q models.Quote
	if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&q, id).Error; err != nil {
		return nil, translateDBError(err)
	}
	return &q, nil
}

// checkReferences verifies the customer, suppliers and carrier named by the input.
func (s *QuoteService) checkReferences(tx *gorm.DB, in *QuoteInput) error {
	v := validation.Violations{}
	var n int64
	if err := tx.Model(&models.Customer{}).Where("id = ?", in.CustomerID).Count(&n).Error; err != nil {
		return translateDBError(err)
	}
	if n == 0 {
		v["customer_id"] = "not_found"
	}
	seen := map[uint]bool{}
	var ids []uint
	for _, it := range in.Items {
		if it.SupplierID != nil && !seen[*it.SupplierID] {
			seen[*it.SupplierID] = true
			ids = append(ids, *it.SupplierID)
		}
	}
	if len(ids) > 0 {
		if err := tx.Model(&models.Supplier{}).Where("id IN ?", ids).Count(&n).Error; err != nil {
			return translateDBError(err)
		}
		if int(n) != len(ids) {
			v["items.supplier_id"] = "not_found"
		}
	}
	if in.ShippingCompanyID != nil {
		if err := tx.Model(&models.ShippingCompany{}).Where("id = ? AND is_active = ?", *in.ShippingCompanyID, true).Count(&n).Error; err != nil {
			return translateDBError(err)
		}
		if n == 0 {
			v["shipping_company_id"] = "not_found"
		}
	}
	if !v.Empty() {
		return violationsError(v)
	}
	return nil
}

// quoteRates holds the configured values a quote save depends on.
type quoteRates struct {
	fee        decimal.Decimal
	commission decimal.NullDecimal
}

// rates reads the tariff and commission before any transaction is opened.
func (s *QuoteService) rates(ctx context.Context, in *QuoteInput) (quoteRates, error) {
	var r quoteRates
	if in.PaymentType != "" {
		fee, err := s.Settings.LookupFee(ctx, in.PaymentType, max(in.PaymentInstallments, 1))
		if err != nil {
			return r, err
		}
		r.fee = fee
	}
	if in.HasArchitect {
		pct, err := s.Settings.ArchitectCommission(ctx)
		if err != nil {
			return r, err
		}
		r.commission = decimal.NewNullDecimal(pct)
	}
	return r, nil
}

// apply copies header fields and verifies a supplied discount grant.
func (s *QuoteService) apply(tx *gorm.DB, q *models.Quote, in *QuoteInput, rates quoteRates) error {
	if n := strings.TrimSpace(in.Number); n != "" {
		q.Number = n
	}
	q.CustomerID = in.CustomerID
	if in.QuoteDate != nil {
		q.QuoteDate = *in.QuoteDate
	}
	q.DeliveryDeadline = in.DeliveryDeadline
	q.FreightValue = in.FreightValue.Round(2)
	q.FreightResponsible = in.FreightResponsible
	if q.FreightResponsible == "" {
		q.FreightResponsible = models.FreightCustomer
	}
	q.ShippingCompanyID = in.ShippingCompanyID
	q.ShippingPaymentMethod = strings.TrimSpace(in.ShippingPaymentMethod)
	q.DiscountPercent = in.DiscountPercent.Round(1)
	q.HasArchitect = in.HasArchitect
	q.PaymentType = in.PaymentType
	q.PaymentInstallments = max(in.PaymentInstallments, 1)
	q.Notes = in.Notes

	q.PaymentFeePercent = rates.fee

	if in.DiscountAuthorization != "" {
		grant, err := auth.ParseDiscountGrant(in.DiscountAuthorization)
		if err != nil || !grant.Covers(q.DiscountPercent) {
			return ErrInvalidAuthorization
		}
		var n int64
		if err := tx.Model(&models.User{}).Where("id = ?", grant.AuthorizerID).Count(&n).Error; err != nil {
			return translateDBError(err)
		}
		if n == 0 {
			return ErrInvalidAuthorization
		}
		at := grant.AuthorizedAt
		q.DiscountAuthorizedByID, q.DiscountAuthorizedAt = &grant.AuthorizerID, &at
	}
	return nil
}

// buildItems turns inputs into items, keeping ids only for items that already belong to q.
// Items of a quote with an architect default to the global commission.
func buildItems(q *models.Quote, current []models.QuoteItem, in []QuoteItemInput, rates quoteRates) ([]models.QuoteItem, error) {
	owned := map[uint]bool{}
	for _, it := range current {
		owned[it.ID] = true
	}
	items := make([]models.QuoteItem, 0, len(in))
	for i, it := range in {
		item := models.QuoteItem{
			Position:         i + 1,
			SupplierID:       it.SupplierID,
			ProductName:      strings.TrimSpace(it.ProductName),
			Description:      it.Description,
			Quantity:         it.Quantity,
			UnitValue:        it.UnitValue.Round(2),
			ConditionText:    it.ConditionText,
			ArchitectPercent: it.ArchitectPercent,
		}
		if it.ID != nil {
			if !owned[*it.ID] {
				return nil, fieldError(ErrNotFound, "items.id")
			}
			item.ID = *it.ID
		}
		switch {
		case !q.HasArchitect:
			item.ArchitectPercent = decimal.NullDecimal{}
		case !item.ArchitectPercent.Valid:
			item.ArchitectPercent = rates.commission
		}
		items = append(items, item)
	}
	return items, nil
}

// deleteQuoteItems clears order item back references, drops staged image rows and deletes the
// items. The image rows are returned so their files can be removed after commit.
func deleteQuoteItems(tx *gorm.DB, ids []uint) ([]models.QuoteItemImage, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	if err := tx.Model(&models.OrderItem{}).Where("quote_item_id IN ?", ids).
		UpdateColumn("quote_item_id", nil).Error; err != nil {
		return nil, translateDBError(err)
	}
	var imgs []models.QuoteItemImage
	if err := tx.Where("quote_item_id IN ?", ids).Find(&imgs).Error; err != nil {
		return nil, translateDBError(err)
	}
	if err := tx.Where("quote_item_id IN ?", ids).Delete(&models.QuoteItemImage{}).Error; err != nil {
		return nil, translateDBError(err)
	}
	if err := tx.Delete(&models.QuoteItem{}, ids).Error; err != nil {
		return nil, translateDBError(err)
	}
	return imgs, nil
}
