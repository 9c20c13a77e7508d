package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const UserContextKey = "userID"

// TokenValidator resolves a bearer token to the user it was issued for.
type TokenValidator interface {
	ValidateAccessToken(tokenStr string) (uuid.UUID, error)
}

// AuthMiddleware authenticates the caller from an "Authorization: Bearer"
// token. When trustGatewayHeaders is set, the X-User-ID header injected by the
// API gateway (or its user_id cookie) is accepted as well. The identity must
// be a UUID.
func AuthMiddleware(tokens TokenValidator, trustGatewayHeaders bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		if header := c.GetHeader("Authorization"); header != "" {
			tokenStr, ok := strings.CutPrefix(header, "Bearer ")
			if !ok || tokenStr == "" {
				unauthorized(c, "Invalid authorization header")
				return
			}
			userID, err := tokens.ValidateAccessToken(tokenStr)
			if err != nil {
				unauthorized(c, "Invalid or expired token")
				return
			}
			c.Set(UserContextKey, userID)
			c.Next()
			return
		}

		if trustGatewayHeaders {
			raw := c.GetHeader("X-User-ID")
			if raw == "" {
				if v, err := c.Cookie("user_id"); err == nil {
					raw = v
				}
			}
			if raw != "" {
				userID, err := uuid.Parse(raw)
				if err != nil {
					unauthorized(c, "Unauthorized")
					return
				}
				c.Set(UserContextKey, userID)
				c.Next()
				return
			}
		}

		unauthorized(c, "Unauthorized")
	}
}

func unauthorized(c *gin.Context, msg string) {
	c.JSON(http.StatusUnauthorized, gin.H{"error": msg})
	c.Abort()
}

// GetUserID extracts the authenticated user ID from the Gin context.
func GetUserID(c *gin.Context) (uuid.UUID, error) {
	if val, ok := c.Get(UserContextKey); ok {
		if id, ok := val.(uuid.UUID); ok && id != uuid.Nil {
			return id, nil
		}
	}
	return uuid.Nil, errors.New("user ID not found in context")
}
