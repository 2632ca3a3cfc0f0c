// Package policy maps staff roles to gate profiles and guards routes with them.
package policy

import (
	"github.com/diewo77/go-orcamentos/gate"
	"github.com/diewo77/go-orcamentos/internal/models"
)

// Resource names used in permissions.
const (
	ResourceQuote    = "quote"
	ResourceOrder    = "order"
	ResourceCustomer = "customer"
	ResourceSupplier = "supplier"
	ResourceShipping = "shipping"
	ResourceSettings = "settings"
	ResourceDiscount = "discount"
	ResourceUser     = "user"
)

var (
	sellerProfile = gate.NewStaticProfile("seller",
		"quote:view", "quote:list", "quote:create", "quote:update", "quote:convert",
		"customer:*",
		"order:view", "order:list",
		"supplier:view", "supplier:list",
		"shipping:view", "shipping:list",
		"settings:view",
	)
	adminProfile = gate.NewStaticProfile("admin", gate.PermissionSuperAdmin)
	ownerProfile = gate.NewStaticProfile("owner", gate.PermissionSuperAdmin)
)

// ProfileFor returns the permission profile of a role, or nil for unknown roles.
func ProfileFor(role models.Role) gate.Profile {
	switch role {
	case models.RoleSeller:
		return sellerProfile
	case models.RoleAdmin:
		return adminProfile
	case models.RoleOwner:
		return ownerProfile
	}
	return nil
}

// CanAuthorizeDiscount reports whether role may approve discounts above the threshold.
func CanAuthorizeDiscount(role models.Role) bool {
	p := ProfileFor(role)
	return p != nil && p.HasPermission(gate.NewPermission(ResourceDiscount, gate.ActionAuthorize))
}
