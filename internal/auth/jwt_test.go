package auth

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/kirinyoku/cartodesk/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newManager(t *testing.T) *Manager {
	t.Helper()
	m, err := NewManager(config.AuthConfig{
		JWTSecret:      "secret",
		JWTIssuer:      "cartodesk",
		AccessTokenTTL: 15 * time.Minute,
	})
	require.NoError(t, err)
	return m
}

func TestIssueAndVerify(t *testing.T) {
	m := newManager(t)
	now := time.Unix(1700000000, 0).UTC()

	tok, err := m.Issue(now, Identity{UserID: "u1", Role: "practitioner", PractitionerID: "2"})
	require.NoError(t, err)

	id, err := m.Verify(tok, now.Add(time.Minute))
	require.NoError(t, err)
	assert.Equal(t, Identity{UserID: "u1", Role: "practitioner", PractitionerID: "2"}, id)
}

func TestVerifyRejects(t *testing.T) {
	m := newManager(t)
	now := time.Unix(1700000000, 0).UTC()

	tok, err := m.Issue(now, Identity{UserID: "u1", Role: "admin"})
	require.NoError(t, err)

	_, err = m.Verify(tok, now.Add(time.Hour))
	assert.Error(t, err, "expired")

	other, err := NewManager(config.AuthConfig{JWTSecret: "other", JWTIssuer: "cartodesk"})
	require.NoError(t, err)
	_, err = other.Verify(tok, now)
	assert.Error(t, err, "wrong secret")

	foreign, err := NewManager(config.AuthConfig{JWTSecret: "secret", JWTIssuer: "someone-else"})
	require.NoError(t, err)
	_, err = foreign.Verify(tok, now)
	assert.Error(t, err, "wrong issuer")

	_, err = m.Issue(now, Identity{UserID: "u1"})
	assert.Error(t, err)

	_, err = NewManager(config.AuthConfig{})
	assert.Error(t, err)
}

func TestIdentityMustCarryValidRole(t *testing.T) {
	m := newManager(t)
	now := time.Unix(1700000000, 0).UTC()

	bad := []Identity{
		{UserID: "u1", Role: "guest"},
		{UserID: "u1", Role: RolePractitioner},
		{Role: RoleAdmin},
	}

	for _, id := range bad {
		_, err := m.Issue(now, id)
		assert.ErrorIs(t, err, ErrInvalidIdentity, "issue %+v", id)

		claims := Claims{
			RegisteredClaims: jwt.RegisteredClaims{
				Issuer:    "cartodesk",
				Subject:   id.UserID,
				IssuedAt:  jwt.NewNumericDate(now),
				ExpiresAt: jwt.NewNumericDate(now.Add(time.Minute)),
			},
			UserID:         id.UserID,
			Role:           id.Role,
			PractitionerID: id.PractitionerID,
		}
		tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("secret"))
		require.NoError(t, err)

		_, err = m.Verify(tok, now)
		assert.ErrorIs(t, err, ErrInvalidIdentity, "verify %+v", id)
	}
}

func TestIdentityContext(t *testing.T) {
	_, err := IdentityFrom(context.Background())
	assert.ErrorIs(t, err, ErrNoIdentity)

	ctx := WithIdentity(context.Background(), Identity{UserID: "u", Role: "admin"})
	role, err := Role(ctx)
	require.NoError(t, err)
	assert.Equal(t, "admin", role)
}
