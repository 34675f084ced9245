package rbac

import (
	"context"
	"testing"

	"github.com/kirinyoku/cartodesk/internal/auth"
	"github.com/stretchr/testify/assert"
)

func TestOwnPractitioner(t *testing.T) {
	with := func(id auth.Identity) context.Context {
		return auth.WithIdentity(context.Background(), id)
	}

	assert.Equal(t, "", OwnPractitioner(context.Background()))
	assert.Equal(t, "", OwnPractitioner(with(auth.Identity{UserID: "a", Role: RoleAdmin})))
	assert.Equal(t, "7", OwnPractitioner(with(auth.Identity{UserID: "p", Role: RolePractitioner, PractitionerID: "7"})))

	assert.Equal(t, NoPractitioner, OwnPractitioner(with(auth.Identity{UserID: "p", Role: RolePractitioner})))
	assert.Equal(t, NoPractitioner, OwnPractitioner(with(auth.Identity{UserID: "g", Role: "guest"})))
	assert.Equal(t, NoPractitioner, OwnPractitioner(with(auth.Identity{UserID: "g"})))
}
