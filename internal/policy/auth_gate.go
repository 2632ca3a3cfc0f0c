package policy

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/diewo77/go-orcamentos/auth"
	"github.com/diewo77/go-orcamentos/gate"
	"github.com/diewo77/go-orcamentos/httpx"
	"github.com/diewo77/go-orcamentos/internal/models"
	"gorm.io/gorm"
)

// RoleResolver resolves an active user id to the profile of its role.
type RoleResolver struct {
	DB *gorm.DB
}

func (r *RoleResolver) Resolve(ctx context.Context, userID uint) (gate.Profile, error) {
	var u models.User
	err := r.DB.WithContext(ctx).Select("id", "role", "is_active").First(&u, userID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if !u.IsActive {
		return nil, nil
	}
	return ProfileFor(u.Role), nil
}

// AuthGate checks permissions of the user in the request context.
type AuthGate struct {
	Resolver *gate.CachedResolver[uint]
}

// NewAuthGate caches role lookups for cacheTTL.
func NewAuthGate(db *gorm.DB, cacheTTL time.Duration) *AuthGate {
	return &AuthGate{Resolver: gate.NewCachedResolver[uint](&RoleResolver{DB: db}, cacheTTL)}
}

// Authorize returns nil when the current user holds resource:action.
func (ag *AuthGate) Authorize(ctx context.Context, resource string, action gate.Action) error {
	uid, ok := auth.UserIDFromContext(ctx)
	if !ok {
		return gate.ErrUnauthorized
	}
	return gate.Authorize[uint](ctx, ag.Resolver, uid, resource, action)
}

// RequirePermission wraps h so that it only runs for users holding resource:action.
func (ag *AuthGate) RequirePermission(resource string, action gate.Action, h http.HandlerFunc) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch err := ag.Authorize(r.Context(), resource, action); {
		case err == nil:
			h(w, r)
		case errors.Is(err, gate.ErrUnauthorized):
			httpx.JSONError(w, http.StatusUnauthorized, "unauthorized", nil)
		case errors.Is(err, gate.ErrForbidden):
			httpx.JSONError(w, http.StatusForbidden, "forbidden", nil)
		default:
			httpx.JSONError(w, http.StatusInternalServerError, "persistence_failure", nil)
		}
	})
}
