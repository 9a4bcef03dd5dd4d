package domain

import (
	"github.com/golang-jwt/jwt/v5"
)

// OwnerClaims are the JWT claims identifying the user whose subscriptions are accessed.
// Tokens are issued by the external auth provider; this service only verifies them.
type OwnerClaims struct {
	UserID string `json:"user_id"`
	Email  string `json:"email,omitempty"`
	jwt.RegisteredClaims
}
