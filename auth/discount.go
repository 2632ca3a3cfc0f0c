package auth

import (
	"errors"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/shopspring/decimal"
)

// ErrInvalidGrant is returned for tampered, expired or malformed discount grants.
var ErrInvalidGrant = errors.New("invalid_authorization")

const discountAudience = "quote-discount"

// DiscountGrant records which staff member allowed a discount, up to which percentage and when.
type DiscountGrant struct {
	AuthorizerID   uint
	AuthorizerName string
	MaxDiscount    decimal.Decimal
	AuthorizedAt   time.Time
}

// Covers reports whether the grant allows pct.
func (g *DiscountGrant) Covers(pct decimal.Decimal) bool {
	return pct.LessThanOrEqual(g.MaxDiscount)
}

type discountClaims struct {
	Name        string `json:"name"`
	MaxDiscount string `json:"max_discount"`
	jwt.RegisteredClaims
}

// IssueDiscountGrant signs g into a token valid for ttl.
func IssueDiscountGrant(g DiscountGrant, ttl time.Duration) (string, error) {
	if g.AuthorizedAt.IsZero() {
		g.AuthorizedAt = time.Now()
	}
	claims := discountClaims{
		Name:        g.AuthorizerName,
		MaxDiscount: g.MaxDiscount.String(),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatUint(uint64(g.AuthorizerID), 10),
			Audience:  jwt.ClaimStrings{discountAudience},
			IssuedAt:  jwt.NewNumericDate(g.AuthorizedAt),
			ExpiresAt: jwt.NewNumericDate(g.AuthorizedAt.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(Secret()))
}

// ParseDiscountGrant verifies a token produced by IssueDiscountGrant.
func ParseDiscountGrant(token string) (*DiscountGrant, error) {
	var claims discountClaims
	_, err := jwt.ParseWithClaims(token, &claims, func(*jwt.Token) (any, error) {
		return []byte(Secret()), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithAudience(discountAudience), jwt.WithIssuedAt())
	if err != nil {
		return nil, errors.Join(ErrInvalidGrant, err)
	}
	id, err := strconv.ParseUint(claims.Subject, 10, 64)
	if err != nil || id == 0 || claims.IssuedAt == nil {
		return nil, ErrInvalidGrant
	}
	maxDiscount, err := decimal.NewFromString(claims.MaxDiscount)
	if err != nil {
		return nil, ErrInvalidGrant
	}
	return &DiscountGrant{
		AuthorizerID:   uint(id),
		AuthorizerName: claims.Name,
		MaxDiscount:    maxDiscount,
		AuthorizedAt:   claims.IssuedAt.Time,
	}, nil
}
