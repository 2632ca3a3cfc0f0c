package services

import (
	"context"
	"strings"

	"github.com/diewo77/go-orcamentos/internal/models"
	"github.com/diewo77/go-orcamentos/validation"
	"gorm.io/gorm"
)

type ShippingCompanyInput struct {
	Name           string `json:"name"`
	CNPJ           string `json:"cnpj"`
	Phone          string `json:"phone"`
	Email          string `json:"email"`
	ContactPerson  string `json:"contact_person"`
	Address        string `json:"address"`
	PaymentMethods string `json:"payment_methods"`
	Notes          string `json:"notes"`
	IsActive       bool   `json:"is_active"`
}

// ShippingService manages carriers.
type ShippingService struct{ DB *gorm.DB }

func NewShippingService(db *gorm.DB) *ShippingService { return &ShippingService{DB: db} }

func (s *ShippingService) Create(ctx context.Context, in ShippingCompanyInput) (*models.ShippingCompany, error) {
	v := validation.Violations{}
	validation.Required("name", in.Name, v)
	validation.Email("email", in.Email, v)
	if !v.Empty() {
		return nil, violationsError(v)
	}
	sc := models.ShippingCompany{
		Name:           strings.TrimSpace(in.Name),
		Phone:          in.Phone,
		Email:          strings.TrimSpace(in.Email),
		ContactPerson:  in.ContactPerson,
		Address:        in.Address,
		PaymentMethods: in.PaymentMethods,
		Notes:          in.Notes,
		IsActive:       in.IsActive,
	}
	if strings.TrimSpace(in.CNPJ) != "" {
		d, err := validation.ValidateCNPJ(in.CNPJ)
		if err != nil {
			return nil, fieldError(ErrInvalidDocument, "cnpj")
		}
		sc.CNPJ = d
	}
	if err := s.DB.WithContext(ctx).Create(&sc).Error; err != nil {
		return nil, translateDBError(err)
	}
	return &sc, nil
}

// SetActive toggles whether the carrier can be chosen on new quotes.
func (s *ShippingService) SetActive(ctx context.Context, id uint, active bool) error {
	res := s.DB.WithContext(ctx).Model(&models.ShippingCompany{}).Where("id = ?", id).Update("is_active", active)
	if res.Error != nil {
		return translateDBError(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// ListActive returns active carriers ordered by name.
func (s *ShippingService) ListActive(ctx context.Context) ([]models.ShippingCompany, error) {
	var out []models.ShippingCompany
	if err := s.DB.WithContext(ctx).Where("is_active = ?", true).Order("name").Find(&out).Error; err != nil {
		return nil, translateDBError(err)
	}
	return out, nil
}

// PaymentMethods returns the payment methods of an active carrier.
func (s *ShippingService) PaymentMethods(ctx context.Context, id uint) ([]string, error) {
	var sc models.ShippingCompany
	if err := s.DB.WithContext(ctx).Where("id = ? AND is_active = ?", id, true).Take(&sc).Error; err != nil {
		return nil, translateDBError(err)
	}
	return sc.PaymentMethodList(), nil
}
