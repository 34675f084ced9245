package auth

import (
	"context"
	"errors"
	"fmt"
)

// Role names carried in access tokens.
const (
	RoleAdmin        = "admin"
	RolePractitioner = "practitioner"
)

var (
	ErrNoIdentity      = errors.New("identity not in context")
	ErrInvalidIdentity = errors.New("invalid identity")
)

// Identity is the authenticated operator of a request.
type Identity struct {
	UserID         string
	Role           string
	PractitionerID string
}

// Validate requires a user id and a known role. A practitioner must name the
// practitioner it acts for.
func (id Identity) Validate() error {
	switch {
	case id.UserID == "":
		return fmt.Errorf("%w: user id missing", ErrInvalidIdentity)
	case id.Role != RoleAdmin && id.Role != RolePractitioner:
		return fmt.Errorf("%w: unknown role %q", ErrInvalidIdentity, id.Role)
	case id.Role == RolePractitioner && id.PractitionerID == "":
		return fmt.Errorf("%w: practitioner id missing", ErrInvalidIdentity)
	}
	return nil
}

type ctxKey struct{}

func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, ctxKey{}, id)
}

func IdentityFrom(ctx context.Context) (Identity, error) {
	if id, ok := ctx.Value(ctxKey{}).(Identity); ok && id.UserID != "" {
		return id, nil
	}
	return Identity{}, ErrNoIdentity
}

func Role(ctx context.Context) (string, error) {
	id, err := IdentityFrom(ctx)
	if err != nil {
		return "", err
	}
	if id.Role == "" {
		return "", errors.New("role not in context")
	}
	return id.Role, nil
}
