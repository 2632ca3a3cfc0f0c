package services

import (
	"context"
	"strings"

	"github.com/diewo77/go-orcamentos/internal/models"
	"github.com/diewo77/go-orcamentos/validation"
	"gorm.io/gorm"
)

// CustomerInput is the data accepted when registering or editing a customer.
type CustomerInput struct {
	Name  string `json:"name"`
	CPF   string `json:"cpf"`
	CNPJ  string `json:"cnpj"`
	Phone string `json:"phone"`
	Email string `json:"email"`
	Notes string `json:"notes"`
}

// CustomerService manages the customer registry.
type CustomerService struct{ DB *gorm.DB }

func NewCustomerService(db *gorm.DB) *CustomerService { return &CustomerService{DB: db} }

// NameSearchLimit caps the results of SearchByName.
const NameSearchLimit = 3

// Create validates and stores a customer. Exactly one of CPF and CNPJ must be given.
func (s *CustomerService) Create(ctx context.Context, in CustomerInput) (*models.Customer, error) {
	v := validation.Violations{}
	validation.Required("name", in.Name, v)
	validation.Email("email", in.Email, v)
	hasCPF, hasCNPJ := strings.TrimSpace(in.CPF) != "", strings.TrimSpace(in.CNPJ) != ""
	if hasCPF == hasCNPJ {
		v["document"] = "exactly_one_document"
	}
	if !v.Empty() {
		return nil, violationsError(v)
	}

	c := models.Customer{
		Name:  strings.TrimSpace(in.Name),
		Phone: strings.TrimSpace(in.Phone),
		Email: strings.TrimSpace(in.Email),
		Notes: in.Notes,
	}
	field := "cpf"
	if hasCPF {
		d, err := validation.ValidateCPF(in.CPF)
		if err != nil {
			return nil, fieldError(ErrInvalidDocument, "cpf")
		}
		c.CPF = d
	} else {
		field = "cnpj"
		d, err := validation.ValidateCNPJ(in.CNPJ)
		if err != nil {
			return nil, fieldError(ErrInvalidDocument, "cnpj")
		}
		c.CNPJ = d
	}

	db := s.DB.WithContext(ctx)
	var dup int64
	if err := db.Model(&models.Customer{}).Where(field+" = ?", c.CPF+c.CNPJ).Count(&dup).Error; err != nil {
		return nil, translateDBError(err)
	}
	if dup > 0 {
		return nil, fieldError(ErrDuplicateDocument, field)
	}
	if err := db.Create(&c).Error; err != nil {
		return nil, translateDBError(err)
	}
	return &c, nil
}

// Update changes contact fields. Documents cannot be changed after registration.
func (s *CustomerService) Update(ctx context.Context, id uint, in CustomerInput) (*models.Customer, error) {
	c, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	v := validation.Violations{}
	validation.Required("name", in.Name, v)
	validation.Email("email", in.Email, v)
	if d := validation.Digits(in.CPF); in.CPF != "" && d != c.CPF {
		v["cpf"] = "immutable"
	}
	if d := validation.Digits(in.CNPJ); in.CNPJ != "" && d != c.CNPJ {
		v["cnpj"] = "immutable"
	}
	if !v.Empty() {
		return nil, violationsError(v)
	}
	err = s.DB.WithContext(ctx).Model(c).Updates(map[string]any{
		"name":  strings.TrimSpace(in.Name),
		"phone": strings.TrimSpace(in.Phone),
		"email": strings.TrimSpace(in.Email),
		"notes": in.Notes,
	}).Error
	if err != nil {
		return nil, translateDBError(err)
	}
	return s.Get(ctx, id)
}

func (s *CustomerService) Get(ctx context.Context, id uint) (*models.Customer, error) {
	var c models.Customer
	if err := s.DB.WithContext(ctx).First(&c, id).Error; err != nil {
		return nil, translateDBError(err)
	}
	return &c, nil
}

// Delete removes a customer that no quote references.
func (s *CustomerService) Delete(ctx context.Context, id uint) error {
	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var c models.Customer
		if err := tx.First(&c, id).Error; err != nil {
			return translateDBError(err)
		}
		var refs int64
		if err := tx.Model(&models.Quote{}).Where("customer_id = ?", id).Count(&refs).Error; err != nil {
			return translateDBError(err)
		}
		if refs > 0 {
			return ErrReferenced
		}
		return translateDBError(tx.Delete(&c).Error)
	})
}

// SearchByDocument finds the customer whose CPF or CNPJ equals the digits of raw.
func (s *CustomerService) SearchByDocument(ctx context.Context, raw string) (*models.Customer, error) {
	d := validation.Digits(raw)
	if d == "" {
		return nil, ErrNotFound
	}
	var c models.Customer
	err := s.DB.WithContext(ctx).Where("cpf = ? OR cnpj = ?", d, d).Take(&c).Error
	if err != nil {
		return nil, translateDBError(err)
	}
	return &c, nil
}

// SearchByName returns up to NameSearchLimit customers whose name contains query, ignoring case.
// Queries shorter than two characters return nothing.
func (s *CustomerService) SearchByName(ctx context.Context, query string) ([]models.Customer, error) {
	query = strings.TrimSpace(query)
	out := []models.Customer{}
	if len([]rune(query)) < 2 {
		return out, nil
	}
	like := "%" + strings.ToLower(escapeLike(query)) + "%"
	err := s.DB.WithContext(ctx).Where("LOWER(name) LIKE ? ESCAPE '\\'", like).
		Order("name").Limit(NameSearchLimit).Find(&out).Error
	if err != nil {
		return nil, translateDBError(err)
	}
	return out, nil
}

// List returns a page of customers ordered by name.
func (s *CustomerService) List(ctx context.Context, query string, limit, offset int) ([]models.Customer, int64, error) {
	db := s.DB.WithContext(ctx).Model(&models.Customer{})
	if q := strings.TrimSpace(query); q != "" {
		like := "%" + strings.ToLower(escapeLike(q)) + "%"
		digits := validation.Digits(q)
		if digits != "" {
			db = db.Where("LOWER(name) LIKE ? ESCAPE '\\' OR cpf LIKE ? OR cnpj LIKE ?", like, digits+"%", digits+"%")
		} else {
			db = db.Where("LOWER(name) LIKE ? ESCAPE '\\'", like)
		}
	}
	db = db.Session(&gorm.Session{})
	var total int64
	if err := db.Count(&total).Error; err != nil {
		return nil, 0, translateDBError(err)
	}
	var out []models.Customer
	if err := db.Order("name").Limit(limit).Offset(offset).Find(&out).Error; err != nil {
		return nil, 0, translateDBError(err)
	}
	return out, total, nil
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}
