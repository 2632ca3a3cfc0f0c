package services

import (
	"context"
	"errors"

	"github.com/diewo77/go-orcamentos/internal/logger"
	"github.com/diewo77/go-orcamentos/internal/metrics"
	"github.com/diewo77/go-orcamentos/internal/models"
	"github.com/diewo77/go-orcamentos/internal/storage"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ConversionResult describes the orders created for a quote.
type ConversionResult struct {
	QuoteID          uint               `json:"quote_id"`
	Status           models.QuoteStatus `json:"status"`
	OrderIDs         []uint             `json:"order_ids"`
	SupplierOrderIDs []uint             `json:"supplier_order_ids"`
	TotalOrderID     uint               `json:"total_order_id"`
}

// OrdersCreated returns the number of orders created, the total-conference order included.
func (r *ConversionResult) OrdersCreated() int { return len(r.OrderIDs) }

// Converter turns a quote into one purchase order per supplier plus a total-conference order.
type Converter struct {
	DB                *gorm.DB
	Files             storage.FileStore
	Log               *zap.Logger
	Metrics           *metrics.Metrics
	DiscountThreshold decimal.Decimal
}

func NewConverter(db *gorm.DB, files storage.FileStore, log *zap.Logger, m *metrics.Metrics) *Converter {
	if log == nil {
		log = zap.NewNop()
	}
	return &Converter{DB: db, Files: files, Log: log, Metrics: m, DiscountThreshold: models.DefaultDiscountThreshold}
}

type supplierGroup struct {
	supplierID uint
	items      []models.QuoteItem
}

// groupBySupplier keeps suppliers in order of first appearance and items in their original order.
func groupBySupplier(items []models.QuoteItem) []supplierGroup {
	index := map[uint]int{}
	var groups []supplierGroup
	for _, it := range items {
		sid := *it.SupplierID
		i, ok := index[sid]
		if !ok {
			i = len(groups)
			index[sid] = i
			groups = append(groups, supplierGroup{supplierID: sid})
		}
		groups[i].items = append(groups[i].items, it)
	}
	return groups
}

func snapshotItems(orderID uint, items []models.QuoteItem) []models.OrderItem {
	out := make([]models.OrderItem, 0, len(items))
	for _, it := range items {
		src := it.ID
		out = append(out, models.OrderItem{
			OrderID:          orderID,
			ProductName:      it.ProductName,
			Description:      it.Description,
			Quantity:         it.Quantity,
			PurchaseUnitCost: it.UnitValue,
			QuoteItemID:      &src,
		})
	}
	return out
}

// Convert runs the conversion in one transaction holding the quote row lock. Preconditions are
// checked in order: existing orders, canceled status, no items, items without supplier, and an
// unauthorized discount. Staged image files are removed after commit; failures there are logged only.
func (c *Converter) Convert(ctx context.Context, quoteID uint) (*ConversionResult, error) {
	log := logger.FromContext(ctx, c.Log).With(zap.Uint("quote_id", quoteID))
	var (
		result *ConversionResult
		staged []models.QuoteItemImage
	)
	err := c.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var q models.Quote
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&q, quoteID).Error; err != nil {
			return translateDBError(err)
		}

		var existing int64
		if err := tx.Model(&models.Order{}).Where("quote_id = ?", q.ID).Count(&existing).Error; err != nil {
			return translateDBError(err)
		}
		if existing > 0 {
			return ErrAlreadyConverted
		}
		if q.Status == models.QuoteStatusCanceled {
			return ErrQuoteCanceled
		}

		var items []models.QuoteItem
		if err := tx.Where("quote_id = ?", q.ID).Order("position, id").Find(&items).Error; err != nil {
			return translateDBError(err)
		}
		if len(items) == 0 {
			return ErrEmptyQuote
		}
		var missing []string
		for _, it := range items {
			if it.SupplierID == nil {
				missing = append(missing, it.ProductName)
			}
		}
		if len(missing) > 0 {
			return missingSupplierError(missing)
		}
		if q.NeedsDiscountAuthorization(c.DiscountThreshold) && !q.HasDiscountAuthorization() {
			return ErrDiscountNotAuthorized
		}

		groups := groupBySupplier(items)
		conditions, err := defaultPurchaseConditions(tx, groups)
		if err != nil {
			return err
		}
		result = &ConversionResult{QuoteID: q.ID}
		for _, g := range groups {
			sid := g.supplierID
			order := models.Order{
				Number:                q.Number,
				QuoteID:               q.ID,
				SupplierID:            &sid,
				Status:                models.OrderStatusOpen,
				PurchaseConditionText: conditions[sid],
			}
			if err := createOrder(tx, &order, g.items); err != nil {
				return err
			}
			result.SupplierOrderIDs = append(result.SupplierOrderIDs, order.ID)
			result.OrderIDs = append(result.OrderIDs, order.ID)
		}

		total := models.Order{
			Number:            q.Number,
			QuoteID:           q.ID,
			IsTotalConference: true,
			Status:            models.OrderStatusOpen,
		}
		if err := createOrder(tx, &total, items); err != nil {
			return err
		}
		result.TotalOrderID = total.ID
		result.OrderIDs = append(result.OrderIDs, total.ID)

		if err := tx.Model(&models.Quote{}).Where("id = ?", q.ID).
			UpdateColumn("status", models.QuoteStatusConverted).Error; err != nil {
			return translateDBError(err)
		}
		result.Status = models.QuoteStatusConverted

		itemIDs := make([]uint, len(items))
		for i := range items {
			itemIDs[i] = items[i].ID
		}
		if err := tx.Where("quote_item_id IN ?", itemIDs).Find(&staged).Error; err != nil {
			return translateDBError(err)
		}
		if len(staged) > 0 {
			if err := tx.Where("quote_item_id IN ?", itemIDs).Delete(&models.QuoteItemImage{}).Error; err != nil {
				return translateDBError(err)
			}
		}
		return nil
	})
	if err != nil {
		c.Metrics.ConversionOutcome(conversionOutcome(err))
		log.Info("quote conversion rejected", zap.Error(err))
		return nil, err
	}

	removeStagedFiles(ctx, c.Files, log, c.Metrics, staged)
	c.Metrics.ConversionOutcome("success")
	c.Metrics.OrderCreated("supplier", len(result.SupplierOrderIDs))
	c.Metrics.OrderCreated("total", 1)
	log.Info("quote converted",
		zap.Int("supplier_orders", len(result.SupplierOrderIDs)),
		zap.Uint("total_order_id", result.TotalOrderID),
		zap.Int("images_removed", len(staged)))
	return result, nil
}

func createOrder(tx *gorm.DB, order *models.Order, items []models.QuoteItem) error {
	if err := tx.Omit(clause.Associations).Create(order).Error; err != nil {
		return translateDBError(err)
	}
	rows := snapshotItems(order.ID, items)
	if err := tx.Omit(clause.Associations).Create(&rows).Error; err != nil {
		return translateDBError(err)
	}
	order.Items = rows
	return nil
}

// defaultPurchaseConditions maps each supplier to the description of its default payment option.
func defaultPurchaseConditions(tx *gorm.DB, groups []supplierGroup) (map[uint]string, error) {
	ids := make([]uint, len(groups))
	for i, g := range groups {
		ids[i] = g.supplierID
	}
	var opts []models.SupplierPaymentOption
	if err := tx.Where("supplier_id IN ? AND is_default = ?", ids, true).Order("id").Find(&opts).Error; err != nil {
		return nil, translateDBError(err)
	}
	out := make(map[uint]string, len(opts))
	for _, o := range opts {
		if _, seen := out[o.SupplierID]; !seen {
			out[o.SupplierID] = o.Description
		}
	}
	return out, nil
}

func conversionOutcome(err error) string {
	for _, kind := range []error{ErrAlreadyConverted, ErrQuoteCanceled, ErrEmptyQuote, ErrMissingSupplier, ErrDiscountNotAuthorized, ErrNotFound} {
		if errors.Is(err, kind) {
			return kind.Error()
		}
	}
	return "error"
}
