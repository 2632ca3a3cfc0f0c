package auth

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func TestSessionRoundTrip(t *testing.T) {
	SetSecret("test-secret")
	defer SetSecret("")

	w := httptest.NewRecorder()
	CreateSession(w, 42)
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	for _, c := range w.Result().Cookies() {
		req.AddCookie(c)
	}
	uid, ok := ParseSession(req)
	if !ok || uid != 42 {
		t.Fatalf("expected uid 42, got %d ok=%v", uid, ok)
	}

	tampered := httptest.NewRequest(http.MethodGet, "/", nil)
	tampered.AddCookie(&http.Cookie{Name: sessionCookieName, Value: "43." + strings.Split(w.Result().Cookies()[0].Value, ".")[1]})
	if _, ok := ParseSession(tampered); ok {
		t.Fatalf("tampered session must be rejected")
	}
}

func TestRequireAuthJSON(t *testing.T) {
	h := RequireAuth(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusNoContent) }))

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/quotes", nil))
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", w.Code)
	}

	w = httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/quotes", nil)
	req = req.WithContext(WithUserID(req.Context(), 1))
	h.ServeHTTP(w, req)
	if w.Code != http.StatusNoContent {
		t.Fatalf("expected 204 got %d", w.Code)
	}
}

func TestRequireAuthVerifierRejectsUnknownUser(t *testing.T) {
	SetUserVerifier(func(ctx context.Context, uid uint) bool { return uid == 1 })
	defer SetUserVerifier(nil)
	h := RequireAuth(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	h.ServeHTTP(w, req.WithContext(WithUserID(req.Context(), 2)))
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for unknown user, got %d", w.Code)
	}
}

func TestDiscountGrantRoundTrip(t *testing.T) {
	SetSecret("grant-secret")
	defer SetSecret("")

	at := time.Now().Add(-time.Minute).Truncate(time.Second)
	tok, err := IssueDiscountGrant(DiscountGrant{AuthorizerID: 9, AuthorizerName: "Dona", MaxDiscount: decimal.RequireFromString("20.0"), AuthorizedAt: at}, time.Hour)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	g, err := ParseDiscountGrant(tok)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if g.AuthorizerID != 9 || g.AuthorizerName != "Dona" || !g.AuthorizedAt.Equal(at) {
		t.Fatalf("unexpected grant %+v", g)
	}
	if !g.Covers(decimal.RequireFromString("20")) || g.Covers(decimal.RequireFromString("20.1")) {
		t.Fatalf("coverage mismatch for max %s", g.MaxDiscount)
	}
}

func TestDiscountGrantRejectsExpiredAndForeignTokens(t *testing.T) {
	SetSecret("grant-secret")
	defer SetSecret("")

	expired, _ := IssueDiscountGrant(DiscountGrant{AuthorizerID: 1, MaxDiscount: decimal.NewFromInt(30), AuthorizedAt: time.Now().Add(-2 * time.Hour)}, time.Hour)
	if _, err := ParseDiscountGrant(expired); !errors.Is(err, ErrInvalidGrant) {
		t.Fatalf("expected ErrInvalidGrant for expired token, got %v", err)
	}

	tok, _ := IssueDiscountGrant(DiscountGrant{AuthorizerID: 1, MaxDiscount: decimal.NewFromInt(30)}, time.Hour)
	SetSecret("other-secret")
	if _, err := ParseDiscountGrant(tok); !errors.Is(err, ErrInvalidGrant) {
		t.Fatalf("expected ErrInvalidGrant for foreign signature, got %v", err)
	}
	if _, err := ParseDiscountGrant("not-a-token"); !errors.Is(err, ErrInvalidGrant) {
		t.Fatalf("expected ErrInvalidGrant for garbage")
	}
}
