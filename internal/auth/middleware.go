package auth

import (
	"crop-auction/utils"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

const (
	userIDKey   = "user_id"
	usernameKey = "username"
)

// Middleware resolves a bearer token to the caller identity and rejects unauthenticated requests
func Middleware(tokens *TokenManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			abort(c, errors.New("authorization header required"))
			return
		}

		// Extract token from "Bearer <token>" format
		scheme, tokenString, ok := strings.Cut(authHeader, " ")
		if !ok || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(tokenString) == "" {
			abort(c, errors.New("invalid authorization header format, expected: Bearer <token>"))
			return
		}

		claims, err := tokens.ValidateToken(strings.TrimSpace(tokenString))
		if err != nil {
			utils.Warn("auth: token validation failed", map[string]any{
				"path":  c.Request.URL.Path,
				"error": err.Error(),
			})
			abort(c, err)
			return
		}

		c.Set(userIDKey, claims.UserID)
		c.Set(usernameKey, claims.Username)
		c.Next()
	}
}

func abort(c *gin.Context, err error) {
	utils.JSONErrorWithFields(c, http.StatusUnauthorized, err, "authentication required", gin.H{"reason": "unauthenticated"})
	c.Abort()
}

// GetUserID retrieves the authenticated user id from the context
func GetUserID(c *gin.Context) (string, bool) {
	id := c.GetString(userIDKey)
	return id, id != ""
}
