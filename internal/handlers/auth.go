package handlers

import (
	"net/http"

	"github.com/diewo77/go-orcamentos/auth"
	"github.com/diewo77/go-orcamentos/httpx"
	"github.com/diewo77/go-orcamentos/internal/services"
	"github.com/shopspring/decimal"
)

type AuthHandler struct {
	staff *services.StaffService
}

func NewAuthHandler(staff *services.StaffService) *AuthHandler {
	return &AuthHandler{staff: staff}
}

type credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Login checks the credentials and sets the session cookie.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var in credentials
	if !decode(w, r, &in) {
		return
	}
	u, err := h.staff.Authenticate(r.Context(), in.Username, in.Password)
	if err != nil {
		writeError(w, r, err)
		return
	}
	auth.CreateSession(w, u.ID)
	httpx.JSON(w, http.StatusOK, u)
}

func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	auth.ClearSession(w)
	w.WriteHeader(http.StatusNoContent)
}

// Me returns the logged-in user.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	u, err := h.staff.Get(r.Context(), currentUser(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, u)
}

// CreateUser registers a staff member.
func (h *AuthHandler) CreateUser(w http.ResponseWriter, r *http.Request) {
	var in services.UserInput
	if !decode(w, r, &in) {
		return
	}
	u, err := h.staff.CreateUser(r.Context(), in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, u)
}

type discountRequest struct {
	credentials
	DiscountPercent decimal.Decimal `json:"discount_percent"`
}

// AuthorizeDiscount re-authenticates a manager and hands back a signed grant that the quote save
// path accepts as discount_authorization.
func (h *AuthHandler) AuthorizeDiscount(w http.ResponseWriter, r *http.Request) {
	var in discountRequest
	if !decode(w, r, &in) {
		return
	}
	token, grant, err := h.staff.AuthorizeDiscount(r.Context(), in.Username, in.Password, in.DiscountPercent)
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{
		"authorization":    token,
		"authorized_by_id": grant.AuthorizerID,
		"authorized_by":    grant.AuthorizerName,
		"authorized_at":    grant.AuthorizedAt,
		"max_discount":     grant.MaxDiscount,
	})
}
