package handlers

import (
	"fmt"
	"net/http"

	"github.com/diewo77/go-orcamentos/httpx"
	"github.com/diewo77/go-orcamentos/i18n"
	"github.com/diewo77/go-orcamentos/internal/middleware"
	"github.com/diewo77/go-orcamentos/internal/models"
	"github.com/diewo77/go-orcamentos/internal/pdf"
	"github.com/diewo77/go-orcamentos/internal/services"
	"github.com/shopspring/decimal"
)

const maxImageUpload = 10 << 20

type QuoteHandler struct {
	quotes    *services.QuoteService
	converter *services.Converter
	images    *services.ImageService
	suppliers *services.SupplierService
}

func NewQuoteHandler(quotes *services.QuoteService, converter *services.Converter, images *services.ImageService, suppliers *services.SupplierService) *QuoteHandler {
	return &QuoteHandler{quotes: quotes, converter: converter, images: images, suppliers: suppliers}
}

func (h *QuoteHandler) List(w http.ResponseWriter, r *http.Request) {
	limit, offset := page(r)
	f := services.QuoteFilter{
		Status:     models.QuoteStatus(r.URL.Query().Get("status")),
		CustomerID: queryID(r, "customer_id"),
		SellerID:   queryID(r, "seller_id"),
		Query:      r.URL.Query().Get("q"),
		Limit:      limit,
		Offset:     offset,
	}
	items, total, err := h.quotes.List(r.Context(), f)
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, listResponse(items, total, limit, offset))
}

func (h *QuoteHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	q, err := h.quotes.Get(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, q)
}

// Create stores a draft quote owned by the logged-in seller.
func (h *QuoteHandler) Create(w http.ResponseWriter, r *http.Request) {
	var in services.QuoteInput
	if !decode(w, r, &in) {
		return
	}
	q, err := h.quotes.Create(r.Context(), currentUser(r), in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, q)
}

func (h *QuoteHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var in services.QuoteInput
	if !decode(w, r, &in) {
		return
	}
	q, err := h.quotes.Update(r.Context(), id, in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, q)
}

func (h *QuoteHandler) ChangeStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var in struct {
		Status models.QuoteStatus `json:"status"`
	}
	if !decode(w, r, &in) {
		return
	}
	q, err := h.quotes.ChangeStatus(r.Context(), id, in.Status)
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, q)
}

func (h *QuoteHandler) DeleteItem(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	itemID, ok := pathID(w, r, "itemID")
	if !ok {
		return
	}
	if err := h.quotes.DeleteItem(r.Context(), id, itemID); err != nil {
		writeError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"deleted": itemID})
}

// Convert turns the quote into purchase orders.
func (h *QuoteHandler) Convert(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	res, err := h.converter.Convert(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	msg := fmt.Sprintf(i18n.T(middleware.LangFrom(r), "quote_converted"), res.OrdersCreated())
	httpx.JSON(w, http.StatusCreated, map[string]any{"result": res, "message": msg})
}

func (h *QuoteHandler) Pricing(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	q, err := h.quotes.Get(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, services.CalculatePricing(q, q.Items).Rounded())
}

type pricingRequest struct {
	FreightValue      decimal.Decimal `json:"freight_value"`
	DiscountPercent   decimal.Decimal `json:"discount_percent"`
	PaymentFeePercent decimal.Decimal `json:"payment_fee_percent"`
	Items             []struct {
		Quantity  int             `json:"quantity"`
		UnitValue decimal.Decimal `json:"unit_value"`
	} `json:"items"`
}

// Simulate prices an unsaved quote so the editor can show live totals.
func (h *QuoteHandler) Simulate(w http.ResponseWriter, r *http.Request) {
	var in pricingRequest
	if !decode(w, r, &in) {
		return
	}
	q := models.Quote{FreightValue: in.FreightValue, DiscountPercent: in.DiscountPercent, PaymentFeePercent: in.PaymentFeePercent}
	items := make([]models.QuoteItem, 0, len(in.Items))
	for _, it := range in.Items {
		items = append(items, models.QuoteItem{Quantity: it.Quantity, UnitValue: it.UnitValue})
	}
	httpx.JSON(w, http.StatusOK, services.CalculatePricing(&q, items).Rounded())
}

// PDF renders the customer copy of the quote.
func (h *QuoteHandler) PDF(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	q, err := h.quotes.Get(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	p := services.CalculatePricing(q, q.Items).Rounded()
	body, err := pdf.ClientQuote(q, pdf.Totals{
		Subtotal:   p.Subtotal,
		Freight:    q.FreightValue,
		Discount:   p.Subtotal.Add(q.FreightValue).Sub(p.TotalWithFreightAndDiscount),
		PaymentFee: p.PaymentFeeValue,
		Final:      p.FinalTotal,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writePDF(w, q.Number, body)
}

// SupplierPDF renders the items of one supplier for a price check.
func (h *QuoteHandler) SupplierPDF(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	supplierID, ok := pathID(w, r, "supplierID")
	if !ok {
		return
	}
	q, err := h.quotes.Get(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	s, err := h.suppliers.Get(r.Context(), supplierID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	body, err := pdf.SupplierQuote(q, s)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writePDF(w, q.Number+"-"+s.SupplierNumber, body)
}

// UploadImage stages a picture for a quote item. The multipart form carries "file" and an optional "caption".
func (h *QuoteHandler) UploadImage(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	itemID, ok := pathID(w, r, "itemID")
	if !ok {
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, maxImageUpload)
	file, header, err := r.FormFile("file")
	if err != nil {
		httpx.LocalizedError(w, middleware.LangFrom(r), http.StatusBadRequest, "validation_failed", map[string]string{"file": "required"})
		return
	}
	defer file.Close()
	img, err := h.images.Stage(r.Context(), id, itemID, header.Filename, r.FormValue("caption"), file)
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, img)
}
