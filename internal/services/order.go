package services

import (
	"context"
	"time"

	"github.com/diewo77/go-orcamentos/internal/models"
	"gorm.io/gorm"
)

// OrderFilter narrows List results. Kind is "supplier", "total" or empty for both.
type OrderFilter struct {
	QuoteID    uint
	SupplierID uint
	Status     models.OrderStatus
	Kind       string
	Limit      int
	Offset     int
}

type OrderService struct {
	DB  *gorm.DB
	Now func() time.Time
}

func NewOrderService(db *gorm.DB) *OrderService { return &OrderService{DB: db, Now: time.Now} }

// List returns a page of orders with their supplier, newest first.
func (s *OrderService) List(ctx context.Context, f OrderFilter) ([]models.Order, int64, error) {
	db := s.DB.WithContext(ctx).Model(&models.Order{})
	if f.QuoteID != 0 {
		db = db.Where("quote_id = ?", f.QuoteID)
	}
	if f.SupplierID != 0 {
		db = db.Where("supplier_id = ?", f.SupplierID)
	}
	if f.Status != "" {
		db = db.Where("status = ?", f.Status)
	}
	switch f.Kind {
	case "total":
		db = db.Where("is_total_conference = ?", true)
	case "supplier":
		db = db.Where("is_total_conference = ?", false)
	}
	db = db.Session(&gorm.Session{})
	var total int64
	if err := db.Count(&total).Error; err != nil {
		return nil, 0, translateDBError(err)
	}
	var out []models.Order
	if err := db.Preload("Supplier").Order("id desc").Limit(f.Limit).Offset(f.Offset).Find(&out).Error; err != nil {
		return nil, 0, translateDBError(err)
	}
	return out, total, nil
}

// Get loads an order with its items and supplier.
func (s *OrderService) Get(ctx context.Context, id uint) (*models.Order, error) {
	var o models.Order
	err := s.DB.WithContext(ctx).Preload("Supplier").
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("id") }).
		First(&o, id).Error
	if err != nil {
		return nil, translateDBError(err)
	}
	return &o, nil
}

// UpdateStatus moves an order along OPEN -> SENT -> DONE; CANCELED is reachable until DONE.
func (s *OrderService) UpdateStatus(ctx context.Context, id uint, to models.OrderStatus) (*models.Order, error) {
	if !to.Valid() {
		return nil, ErrInvalidTransition
	}
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var o models.Order
		if err := tx.Select("id", "status").First(&o, id).Error; err != nil {
			return translateDBError(err)
		}
		if !o.Status.CanTransitionTo(to) {
			return ErrInvalidTransition
		}
		return translateDBError(tx.Model(&models.Order{}).Where("id = ?", id).
			Updates(map[string]any{"status": to, "updated_at": s.Now()}).Error)
	})
	if err != nil {
		return nil, err
	}
	return s.Get(ctx, id)
}

// UpdateNotes replaces the free-text fields of an order.
func (s *OrderService) UpdateNotes(ctx context.Context, id uint, conditions, notes string) (*models.Order, error) {
	res := s.DB.WithContext(ctx).Model(&models.Order{}).Where("id = ?", id).
		Updates(map[string]any{"purchase_condition_text": conditions, "notes": notes, "updated_at": s.Now()})
	if res.Error != nil {
		return nil, translateDBError(res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, ErrNotFound
	}
	return s.Get(ctx, id)
}
