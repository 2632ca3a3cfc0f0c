package handlers

import (
	"net/http"
	"strings"

	"github.com/diewo77/go-orcamentos/httpx"
	"github.com/diewo77/go-orcamentos/internal/middleware"
	"github.com/diewo77/go-orcamentos/internal/models"
	"github.com/diewo77/go-orcamentos/internal/services"
)

type CustomerHandler struct {
	customers *services.CustomerService
}

func NewCustomerHandler(customers *services.CustomerService) *CustomerHandler {
	return &CustomerHandler{customers: customers}
}

type customerMatch struct {
	ID      uint   `json:"id"`
	Name    string `json:"name"`
	Display string `json:"display"`
}

func matchOf(c *models.Customer) customerMatch {
	return customerMatch{ID: c.ID, Name: c.Name, Display: c.DisplayName()}
}

func (h *CustomerHandler) List(w http.ResponseWriter, r *http.Request) {
	limit, offset := page(r)
	items, total, err := h.customers.List(r.Context(), r.URL.Query().Get("q"), limit, offset)
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, listResponse(items, total, limit, offset))
}

// SearchByDocument finds a customer by exact CPF or CNPJ, formatted or not.
func (h *CustomerHandler) SearchByDocument(w http.ResponseWriter, r *http.Request) {
	c, err := h.customers.SearchByDocument(r.Context(), r.URL.Query().Get("document"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, matchOf(c))
}

func (h *CustomerHandler) SearchByName(w http.ResponseWriter, r *http.Request) {
	query := strings.TrimSpace(r.URL.Query().Get("query"))
	if len([]rune(query)) < 2 {
		httpx.LocalizedError(w, middleware.LangFrom(r), http.StatusBadRequest, "query_too_short", nil)
		return
	}
	found, err := h.customers.SearchByName(r.Context(), query)
	if err != nil {
		writeError(w, r, err)
		return
	}
	out := make([]customerMatch, 0, len(found))
	for i := range found {
		out = append(out, matchOf(&found[i]))
	}
	httpx.JSON(w, http.StatusOK, out)
}

func (h *CustomerHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	c, err := h.customers.Get(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, c)
}

func (h *CustomerHandler) Create(w http.ResponseWriter, r *http.Request) {
	var in services.CustomerInput
	if !decode(w, r, &in) {
		return
	}
	c, err := h.customers.Create(r.Context(), in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, c)
}

func (h *CustomerHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var in services.CustomerInput
	if !decode(w, r, &in) {
		return
	}
	c, err := h.customers.Update(r.Context(), id, in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, c)
}

func (h *CustomerHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	if err := h.customers.Delete(r.Context(), id); err != nil {
		writeError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"deleted": id})
}
