// Package handlers exposes the quote, order and registry services over JSON.
package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/diewo77/go-orcamentos/auth"
	"github.com/diewo77/go-orcamentos/httpx"
	"github.com/diewo77/go-orcamentos/internal/logger"
	"github.com/diewo77/go-orcamentos/internal/middleware"
	"github.com/diewo77/go-orcamentos/internal/services"
	"go.uber.org/zap"
)

const (
	defaultPageSize = 50
	maxPageSize     = 200
)

var errorStatus = []struct {
	kind   error
	status int
}{
	{services.ErrAlreadyConverted, http.StatusConflict},
	{services.ErrDuplicateDocument, http.StatusConflict},
	{services.ErrDuplicateSupplier, http.StatusConflict},
	{services.ErrReferenced, http.StatusConflict},
	{services.ErrNotFound, http.StatusNotFound},
	{services.ErrInvalidCredentials, http.StatusUnauthorized},
	{services.ErrForbidden, http.StatusForbidden},
	{services.ErrValidation, http.StatusUnprocessableEntity},
	{services.ErrInvalidDocument, http.StatusUnprocessableEntity},
	{services.ErrMissingSupplier, http.StatusUnprocessableEntity},
	{services.ErrEmptyQuote, http.StatusUnprocessableEntity},
	{services.ErrQuoteCanceled, http.StatusUnprocessableEntity},
	{services.ErrDiscountNotAuthorized, http.StatusUnprocessableEntity},
	{services.ErrInvalidTransition, http.StatusUnprocessableEntity},
	{services.ErrInvalidAuthorization, http.StatusUnprocessableEntity},
}

// writeError maps a service error onto a status code and a localized, stable error code.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	lang := middleware.LangFrom(r)
	for _, e := range errorStatus {
		if errors.Is(err, e.kind) {
			httpx.LocalizedError(w, lang, e.status, e.kind.Error(), errorDetails(err))
			return
		}
	}
	logger.FromContext(r.Context(), nil).Error("request failed", zap.Error(err))
	httpx.LocalizedError(w, lang, http.StatusInternalServerError, services.ErrPersistence.Error(), nil)
}

func errorDetails(err error) any {
	var de *services.DomainError
	if !errors.As(err, &de) {
		return nil
	}
	switch {
	case len(de.Fields) > 0:
		return de.Fields
	case de.Details != "":
		return de.Details
	case de.Field != "":
		return map[string]string{"field": de.Field}
	}
	return nil
}

// pathID parses the named path value as a positive id, answering 400 when it is not one.
func pathID(w http.ResponseWriter, r *http.Request, name string) (uint, bool) {
	id, err := strconv.ParseUint(r.PathValue(name), 10, 64)
	if err != nil || id == 0 {
		httpx.LocalizedError(w, middleware.LangFrom(r), http.StatusBadRequest, "invalid_id", nil)
		return 0, false
	}
	return uint(id), true
}

// queryID parses an optional id filter; missing or malformed values yield 0.
func queryID(r *http.Request, name string) uint {
	id, err := strconv.ParseUint(r.URL.Query().Get(name), 10, 64)
	if err != nil {
		return 0
	}
	return uint(id)
}

func decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := httpx.DecodeJSON(r.Body, dst); err != nil {
		httpx.LocalizedError(w, middleware.LangFrom(r), http.StatusBadRequest, "invalid_json", nil)
		return false
	}
	return true
}

// page reads limit and offset query parameters.
func page(r *http.Request) (limit, offset int) {
	limit = defaultPageSize
	if n, err := strconv.Atoi(r.URL.Query().Get("limit")); err == nil && n > 0 && n <= maxPageSize {
		limit = n
	}
	if n, err := strconv.Atoi(r.URL.Query().Get("offset")); err == nil && n > 0 {
		offset = n
	}
	return limit, offset
}

func listResponse(items any, total int64, limit, offset int) map[string]any {
	return map[string]any{"items": items, "total": total, "limit": limit, "offset": offset}
}

func currentUser(r *http.Request) uint {
	uid, _ := auth.UserIDFromContext(r.Context())
	return uid
}

func writePDF(w http.ResponseWriter, name string, body []byte) {
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", `inline; filename="`+name+`.pdf"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(body)
}
