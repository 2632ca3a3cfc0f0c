package models

import (
	"time"

	"github.com/diewo77/go-orcamentos/validation"
)

// Customer is a person (CPF) or company (CNPJ) buying from the store.
// Documents are stored as digits only; exactly one of CPF and CNPJ is set.
type Customer struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Name  string `gorm:"size:255;not null" json:"name"`
	CPF   string `gorm:"size:11;not null;uniqueIndex:uniq_customer_cpf,where:cpf <> ''" json:"cpf"`
	CNPJ  string `gorm:"size:14;not null;uniqueIndex:uniq_customer_cnpj,where:cnpj <> '';check:chk_customer_one_document,(cpf = '') <> (cnpj = '')" json:"cnpj"`
	Phone string `gorm:"size:20" json:"phone,omitempty"`
	Email string `gorm:"size:255" json:"email,omitempty"`
	Notes string `gorm:"type:text" json:"notes,omitempty"`
}

// IsCompany reports whether the customer is identified by a CNPJ.
func (c *Customer) IsCompany() bool { return c.CNPJ != "" }

// Document returns the formatted document and its kind label ("PF" or "PJ").
func (c *Customer) Document() (kind, doc string) {
	if c.IsCompany() {
		return "PJ", validation.FormatCNPJ(c.CNPJ)
	}
	return "PF", validation.FormatCPF(c.CPF)
}

// DisplayName renders "Name (PF - 000.000.000-00)" as used by the search endpoints.
func (c *Customer) DisplayName() string {
	kind, doc := c.Document()
	if doc == "" {
		return c.Name
	}
	return c.Name + " (" + kind + " - " + doc + ")"
}
