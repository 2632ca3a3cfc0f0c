package services

import (
	"context"
	"strings"

	"github.com/diewo77/go-orcamentos/internal/models"
	"github.com/diewo77/go-orcamentos/validation"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type PaymentOptionInput struct {
	Description string `json:"description"`
	DaysToPay   *int   `json:"days_to_pay"`
	IsDefault   bool   `json:"is_default"`
}

type SupplierInput struct {
	Name           string               `json:"name"`
	SupplierNumber string               `json:"supplier_number"`
	Email          string               `json:"email"`
	Phone          string               `json:"phone"`
	Notes          string               `json:"notes"`
	PaymentOptions []PaymentOptionInput `json:"payment_options"`
}

func (in SupplierInput) validate() validation.Violations {
	v := validation.Violations{}
	validation.Required("name", in.Name, v)
	validation.Required("supplier_number", in.SupplierNumber, v)
	validation.Required("email", in.Email, v)
	validation.Email("email", in.Email, v)
	defaults := 0
	for _, o := range in.PaymentOptions {
		if strings.TrimSpace(o.Description) == "" {
			v["payment_options"] = "required"
		}
		if o.DaysToPay != nil && *o.DaysToPay < 0 {
			v["payment_options"] = "must_not_be_negative"
		}
		if o.IsDefault {
			defaults++
		}
	}
	// More than one default is ambiguous for order conditions, so it is rejected rather than guessed.
	if defaults > 1 {
		v["payment_options"] = "multiple_default_payment_options"
	}
	return v
}

// SupplierService manages suppliers and their payment options.
type SupplierService struct{ DB *gorm.DB }

func NewSupplierService(db *gorm.DB) *SupplierService { return &SupplierService{DB: db} }

func (s *SupplierService) Create(ctx context.Context, in SupplierInput) (*models.Supplier, error) {
	return s.save(ctx, 0, in)
}

// Update replaces the supplier's fields and its whole set of payment options.
func (s *SupplierService) Update(ctx context.Context, id uint, in SupplierInput) (*models.Supplier, error) {
	if _, err := s.Get(ctx, id); err != nil {
		return nil, err
	}
	return s.save(ctx, id, in)
}

func (s *SupplierService) save(ctx context.Context, id uint, in SupplierInput) (*models.Supplier, error) {
	if v := in.validate(); !v.Empty() {
		return nil, violationsError(v)
	}
	sup := models.Supplier{
		ID:             id,
		Name:           strings.TrimSpace(in.Name),
		SupplierNumber: strings.TrimSpace(in.SupplierNumber),
		Email:          strings.ToLower(strings.TrimSpace(in.Email)),
		Phone:          strings.TrimSpace(in.Phone),
		Notes:          in.Notes,
	}
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var dup int64
		if err := tx.Model(&models.Supplier{}).
			Where("(supplier_number = ? OR email = ?) AND id <> ?", sup.SupplierNumber, sup.Email, id).
			Count(&dup).Error; err != nil {
			return translateDBError(err)
		}
		if dup > 0 {
			return ErrDuplicateSupplier
		}
		if id == 0 {
			if err := tx.Omit(clause.Associations).Create(&sup).Error; err != nil {
				return translateDBError(err)
			}
		} else {
			err := tx.Model(&models.Supplier{ID: id}).Updates(map[string]any{
				"name":            sup.Name,
				"supplier_number": sup.SupplierNumber,
				"email":           sup.Email,
				"phone":           sup.Phone,
				"notes":           sup.Notes,
			}).Error
			if err != nil {
				return translateDBError(err)
			}
		}
		if err := tx.Where("supplier_id = ?", sup.ID).Delete(&models.SupplierPaymentOption{}).Error; err != nil {
			return translateDBError(err)
		}
		if len(in.PaymentOptions) == 0 {
			return nil
		}
		opts := make([]models.SupplierPaymentOption, 0, len(in.PaymentOptions))
		for _, o := range in.PaymentOptions {
			opts = append(opts, models.SupplierPaymentOption{
				SupplierID:  sup.ID,
				Description: strings.TrimSpace(o.Description),
				DaysToPay:   o.DaysToPay,
				IsDefault:   o.IsDefault,
			})
		}
		return translateDBError(tx.Create(&opts).Error)
	})
	if err != nil {
		return nil, err
	}
	return s.Get(ctx, sup.ID)
}

func (s *SupplierService) Get(ctx context.Context, id uint) (*models.Supplier, error) {
	var sup models.Supplier
	err := s.DB.WithContext(ctx).Preload("PaymentOptions", func(db *gorm.DB) *gorm.DB {
		return db.Order("id")
	}).First(&sup, id).Error
	if err != nil {
		return nil, translateDBError(err)
	}
	return &sup, nil
}

func (s *SupplierService) List(ctx context.Context) ([]models.Supplier, error) {
	var out []models.Supplier
	if err := s.DB.WithContext(ctx).Preload("PaymentOptions").Order("name").Find(&out).Error; err != nil {
		return nil, translateDBError(err)
	}
	return out, nil
}

// Delete removes a supplier no quote item or order references.
func (s *SupplierService) Delete(ctx context.Context, id uint) error {
	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var sup models.Supplier
		if err := tx.First(&sup, id).Error; err != nil {
			return translateDBError(err)
		}
		var items, orders int64
		if err := tx.Model(&models.QuoteItem{}).Where("supplier_id = ?", id).Count(&items).Error; err != nil {
			return translateDBError(err)
		}
		if err := tx.Model(&models.Order{}).Where("supplier_id = ?", id).Count(&orders).Error; err != nil {
			return translateDBError(err)
		}
		if items+orders > 0 {
			return ErrReferenced
		}
		if err := tx.Where("supplier_id = ?", id).Delete(&models.SupplierPaymentOption{}).Error; err != nil {
			return translateDBError(err)
		}
		return translateDBError(tx.Delete(&sup).Error)
	})
}
