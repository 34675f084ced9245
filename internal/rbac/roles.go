package rbac

import (
	"context"

	"github.com/kirinyoku/cartodesk/internal/auth"
)

const (
	RoleAdmin        = auth.RoleAdmin
	RolePractitioner = auth.RolePractitioner
)

// NoPractitioner scopes a caller to no games at all.
const NoPractitioner = "\x00"

func IsAdmin(role string) bool { return role == RoleAdmin }

// OwnPractitioner returns the practitioner a caller is bound to. It returns
// "" for admins and for calls without an identity, which may act on every
// practitioner. A non-admin identity that names no valid practitioner gets
// NoPractitioner.
func OwnPractitioner(ctx context.Context) string {
	id, err := auth.IdentityFrom(ctx)
	if err != nil {
		return ""
	}
	if IsAdmin(id.Role) {
		return ""
	}
	if id.Role != RolePractitioner || id.PractitionerID == "" {
		return NoPractitioner
	}
	return id.PractitionerID
}
