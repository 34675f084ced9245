package auth

import "github.com/golang-jwt/jwt/v5"

// Claims carry the operator identity. PractitionerID is set for practitioner
// accounts and limits them to their own games.
type Claims struct {
	jwt.RegisteredClaims

	UserID         string `json:"user_id"`
	Role           string `json:"role"`
	PractitionerID string `json:"practitioner_id,omitempty"`
}
