package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/mansoorceksport/subtrack/internal/domain"
)

// Context keys for storing owner info
const (
	UserIDKey = "userID"
	EmailKey  = "email"
)

// VerifyOwnerToken validates the bearer JWT and stores the owner id in the context
func VerifyOwnerToken(jwtSecret string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get("Authorization")
		if authHeader == "" {
			return unauthorized(c, "Missing authorization token")
		}

		// Extract token (format: "Bearer <token>")
		tokenString := authHeader
		if len(authHeader) > 7 && strings.EqualFold(authHeader[:7], "Bearer ") {
			tokenString = authHeader[7:]
		}

		token, err := jwt.ParseWithClaims(tokenString, &domain.OwnerClaims{}, func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fiber.NewError(fiber.StatusUnauthorized, "Invalid signing method")
			}
			return []byte(jwtSecret), nil
		})
		if err != nil {
			return unauthorized(c, "Invalid or expired token")
		}

		claims, ok := token.Claims.(*domain.OwnerClaims)
		if !ok || !token.Valid {
			return unauthorized(c, "Invalid token claims")
		}

		// Tokens from some providers only carry the subject
		ownerID := claims.UserID
		if ownerID == "" {
			ownerID = claims.Subject
		}
		if ownerID == "" {
			return unauthorized(c, "Missing user context")
		}

		c.Locals(UserIDKey, ownerID)
		c.Locals(EmailKey, claims.Email)

		return c.Next()
	}
}

// GetOwnerID returns the owner id stored by VerifyOwnerToken
func GetOwnerID(c *fiber.Ctx) string {
	if id, ok := c.Locals(UserIDKey).(string); ok {
		return id
	}
	return ""
}

func unauthorized(c *fiber.Ctx, msg string) error {
	return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
		"success": false,
		"error":   msg,
	})
}
