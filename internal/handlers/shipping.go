package handlers

import (
	"net/http"

	"github.com/diewo77/go-orcamentos/httpx"
	"github.com/diewo77/go-orcamentos/internal/services"
)

type ShippingHandler struct {
	shipping *services.ShippingService
}

func NewShippingHandler(shipping *services.ShippingService) *ShippingHandler {
	return &ShippingHandler{shipping: shipping}
}

// List returns the active carriers.
func (h *ShippingHandler) List(w http.ResponseWriter, r *http.Request) {
	items, err := h.shipping.ListActive(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, items)
}

func (h *ShippingHandler) Create(w http.ResponseWriter, r *http.Request) {
	var in services.ShippingCompanyInput
	if !decode(w, r, &in) {
		return
	}
	sc, err := h.shipping.Create(r.Context(), in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, sc)
}

func (h *ShippingHandler) SetActive(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var in struct {
		IsActive bool `json:"is_active"`
	}
	if !decode(w, r, &in) {
		return
	}
	if err := h.shipping.SetActive(r.Context(), id, in.IsActive); err != nil {
		writeError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"id": id, "is_active": in.IsActive})
}

// PaymentMethods lists how an active carrier accepts payment, one entry per line of its setup.
func (h *ShippingHandler) PaymentMethods(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	methods, err := h.shipping.PaymentMethods(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"payment_methods": methods})
}
