package services

import (
	"errors"
	"fmt"
	"strings"

	"github.com/diewo77/go-orcamentos/validation"
	"gorm.io/gorm"
)

// Domain error kinds. Callers match them with errors.Is; the message is a stable code.
var (
	ErrInvalidDocument       = validation.ErrInvalidDocument
	ErrDuplicateDocument     = errors.New("duplicate_document")
	ErrAlreadyConverted      = errors.New("already_converted")
	ErrQuoteCanceled         = errors.New("quote_canceled")
	ErrEmptyQuote            = errors.New("empty_quote")
	ErrMissingSupplier       = errors.New("missing_supplier")
	ErrDiscountNotAuthorized = errors.New("discount_not_authorized")
	ErrInvalidTransition     = errors.New("invalid_transition")
	ErrNotFound              = errors.New("not_found")
	ErrReferenced            = errors.New("referenced")
	ErrValidation            = errors.New("validation_failed")
	ErrDuplicateSupplier     = errors.New("duplicate_supplier")
	ErrPersistence           = errors.New("persistence_failure")
	ErrInvalidCredentials    = errors.New("invalid_credentials")
	ErrForbidden             = errors.New("forbidden")
	ErrInvalidAuthorization  = errors.New("invalid_authorization")
)

// DomainError carries the failing field or a human readable detail alongside an error kind.
type DomainError struct {
	Err     error
	Field   string
	Details string
	Fields  map[string]string
}

func (e *DomainError) Error() string {
	switch {
	case e.Details != "":
		return e.Err.Error() + ": " + e.Details
	case e.Field != "":
		return e.Err.Error() + ": " + e.Field
	}
	return e.Err.Error()
}

func (e *DomainError) Unwrap() error { return e.Err }

func fieldError(kind error, field string) error {
	return &DomainError{Err: kind, Field: field}
}

func violationsError(v validation.Violations) error {
	return &DomainError{Err: ErrValidation, Fields: v}
}

// missingSupplierError names up to five offending items and counts the rest.
func missingSupplierError(names []string) error {
	const shown = 5
	details := strings.Join(names[:min(len(names), shown)], ", ")
	if rest := len(names) - shown; rest > 0 {
		details += fmt.Sprintf(" (+%d)", rest)
	}
	return &DomainError{Err: ErrMissingSupplier, Details: details}
}

// translateDBError maps storage failures onto domain errors. Unknown failures become ErrPersistence.
func translateDBError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	msg := strings.ToLower(err.Error())
	unique := errors.Is(err, gorm.ErrDuplicatedKey) || strings.Contains(msg, "unique") || strings.Contains(msg, "duplicate")
	switch {
	case unique && strings.Contains(msg, "cpf"):
		return fieldError(ErrDuplicateDocument, "cpf")
	case unique && strings.Contains(msg, "cnpj"):
		return fieldError(ErrDuplicateDocument, "cnpj")
	case unique && (strings.Contains(msg, "order_per_quote") || strings.Contains(msg, "orders.quote_id")):
		return ErrAlreadyConverted
	case unique && (strings.Contains(msg, "supplier_number") || strings.Contains(msg, "suppliers")):
		return ErrDuplicateSupplier
	case unique && strings.Contains(msg, "number"):
		return fieldError(ErrValidation, "number")
	case strings.Contains(msg, "chk_customer_one_document"):
		return fieldError(ErrInvalidDocument, "document")
	case strings.Contains(msg, "foreign key"):
		return ErrReferenced
	}
	return fmt.Errorf("%w: %v", ErrPersistence, err)
}
