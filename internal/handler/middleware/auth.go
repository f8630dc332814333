package middleware

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"academy-api/internal/pkg/jwt"
)

const (
	ctxReviewerIDKey   = "reviewer_id"
	ctxReviewerRoleKey = "reviewer_role"
)

type AuthMiddleware struct {
	tokens *jwt.Service
}

func NewAuthMiddleware(tokens *jwt.Service) *AuthMiddleware {
	return &AuthMiddleware{tokens: tokens}
}

// RequireAuth guards reviewer operations: decisions, promotion changes
// and back-office listings.
func (m *AuthMiddleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		var token string
		authHeader := c.GetHeader("Authorization")
		if authHeader != "" && strings.HasPrefix(authHeader, "Bearer ") {
			token = strings.TrimSpace(authHeader[len("Bearer "):])
		}

		if token == "" {
			c.JSON(http.StatusUnauthorized, gin.H{
				"error": "Access token required",
			})
			c.Abort()
			return
		}

		claims, err := m.tokens.ValidateToken(token)
		if err != nil {
			slog.Warn("Token validation failed in auth middleware", "error", err.Error())
			c.JSON(http.StatusUnauthorized, gin.H{
				"error": "Invalid or expired token",
			})
			c.Abort()
			return
		}

		c.Set(ctxReviewerIDKey, claims.ReviewerID)
		c.Set(ctxReviewerRoleKey, claims.Role)
		c.Next()
	}
}

func GetReviewerID(c *gin.Context) (uuid.UUID, bool) {
	reviewerID, exists := c.Get(ctxReviewerIDKey)
	if !exists {
		return uuid.Nil, false
	}

	id, ok := reviewerID.(uuid.UUID)
	return id, ok
}

func GetReviewerRole(c *gin.Context) (string, bool) {
	role, exists := c.Get(ctxReviewerRoleKey)
	if !exists {
		return "", false
	}

	r, ok := role.(string)
	return r, ok
}
