package handlers

import (
	"net/http"

	"github.com/diewo77/go-orcamentos/httpx"
	"github.com/diewo77/go-orcamentos/internal/models"
	"github.com/diewo77/go-orcamentos/internal/pdf"
	"github.com/diewo77/go-orcamentos/internal/services"
	"github.com/shopspring/decimal"
)

type OrderHandler struct {
	orders *services.OrderService
}

func NewOrderHandler(orders *services.OrderService) *OrderHandler {
	return &OrderHandler{orders: orders}
}

// orderView adds the derived total to an order.
type orderView struct {
	*models.Order
	Kind  string          `json:"kind"`
	Total decimal.Decimal `json:"total"`
}

func viewOf(o *models.Order) orderView {
	return orderView{Order: o, Kind: o.Kind(), Total: o.Total().Round(2)}
}

func (h *OrderHandler) List(w http.ResponseWriter, r *http.Request) {
	limit, offset := page(r)
	f := services.OrderFilter{
		QuoteID:    queryID(r, "quote_id"),
		SupplierID: queryID(r, "supplier_id"),
		Status:     models.OrderStatus(r.URL.Query().Get("status")),
		Kind:       r.URL.Query().Get("kind"),
		Limit:      limit,
		Offset:     offset,
	}
	items, total, err := h.orders.List(r.Context(), f)
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, listResponse(items, total, limit, offset))
}

// Get returns an order with its items and total.
func (h *OrderHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	o, err := h.orders.Get(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, viewOf(o))
}

func (h *OrderHandler) ChangeStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var in struct {
		Status models.OrderStatus `json:"status"`
	}
	if !decode(w, r, &in) {
		return
	}
	o, err := h.orders.UpdateStatus(r.Context(), id, in.Status)
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, viewOf(o))
}

func (h *OrderHandler) UpdateNotes(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var in struct {
		PurchaseConditionText string `json:"purchase_condition_text"`
		Notes                 string `json:"notes"`
	}
	if !decode(w, r, &in) {
		return
	}
	o, err := h.orders.UpdateNotes(r.Context(), id, in.PurchaseConditionText, in.Notes)
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, viewOf(o))
}

func (h *OrderHandler) PDF(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	o, err := h.orders.Get(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	body, err := pdf.Order(o)
	if err != nil {
		writeError(w, r, err)
		return
	}
	name := o.Number + "-" + o.Kind()
	if o.Supplier != nil {
		name = o.Number + "-" + o.Supplier.SupplierNumber
	}
	writePDF(w, name, body)
}
