package handlers

import (
	"net/http"

	"github.com/diewo77/go-orcamentos/httpx"
	"github.com/diewo77/go-orcamentos/internal/models"
	"github.com/diewo77/go-orcamentos/internal/services"
	"github.com/shopspring/decimal"
)

type SettingsHandler struct {
	settings *services.SettingsService
}

func NewSettingsHandler(settings *services.SettingsService) *SettingsHandler {
	return &SettingsHandler{settings: settings}
}

// PaymentMethodFees lists the tariffs grouped by payment type.
func (h *SettingsHandler) PaymentMethodFees(w http.ResponseWriter, r *http.Request) {
	groups, err := h.settings.ListTariffs(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, groups)
}

func (h *SettingsHandler) UpsertTariff(w http.ResponseWriter, r *http.Request) {
	var in models.PaymentTariff
	if !decode(w, r, &in) {
		return
	}
	t, err := h.settings.UpsertTariff(r.Context(), in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, t)
}

func (h *SettingsHandler) DeleteTariff(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	if err := h.settings.DeleteTariff(r.Context(), id); err != nil {
		writeError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"deleted": id})
}

type commissionPayload struct {
	CommissionPercent decimal.Decimal `json:"commission_percent"`
}

func (h *SettingsHandler) ArchitectCommission(w http.ResponseWriter, r *http.Request) {
	pct, err := h.settings.ArchitectCommission(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, commissionPayload{CommissionPercent: pct})
}

func (h *SettingsHandler) SetArchitectCommission(w http.ResponseWriter, r *http.Request) {
	var in commissionPayload
	if !decode(w, r, &in) {
		return
	}
	pct, err := h.settings.SetArchitectCommission(r.Context(), in.CommissionPercent)
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, commissionPayload{CommissionPercent: pct})
}
