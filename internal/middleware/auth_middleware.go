package middleware

import (
	"net/http"
	"strings"
	"time"

	"meal_care_backend/internal/cache"
	"meal_care_backend/internal/policy"
	"meal_care_backend/pkg/utils"

	"github.com/gin-gonic/gin"
)

// Context keys set by AuthMiddleware.
const (
	ContextUserID         = "userID"
	ContextUsername       = "username"
	ContextUserRole       = "userRole"
	ContextTokenID        = "tokenID"
	ContextTokenExpiresAt = "tokenExpiresAt"
)

// AuthMiddleware creates a Gin middleware for JWT authentication.
// Revoked access tokens are rejected like expired ones.
func AuthMiddleware(jwtManager *utils.JWTManager, blocklist cache.TokenBlocklist) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusUnauthorized, utils.ErrCodeUnauthorized, "Authorization header required", ""))
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusUnauthorized, utils.ErrCodeUnauthorized, "Invalid authorization header format. Use Bearer <token>", ""))
			return
		}

		claims, err := jwtManager.ValidateToken(parts[1], utils.TokenTypeAccess)
		if err != nil {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusUnauthorized, utils.ErrCodeUnauthorized, "Invalid or expired token", err.Error()))
			return
		}

		revoked, err := blocklist.IsRevoked(c.Request.Context(), claims.ID)
		if err != nil {
			utils.LogError(err, "AuthMiddleware: revocation check failed")
			utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to verify token", ""))
			return
		}
		if revoked {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusUnauthorized, utils.ErrCodeUnauthorized, "Token has been revoked", ""))
			return
		}

		var expiresAt time.Time
		if claims.ExpiresAt != nil {
			expiresAt = claims.ExpiresAt.Time
		}

		c.Set(ContextUserID, claims.UserID)
		c.Set(ContextUsername, claims.Username)
		c.Set(ContextUserRole, claims.Role)
		c.Set(ContextTokenID, claims.ID)
		c.Set(ContextTokenExpiresAt, expiresAt)

		c.Next()
	}
}

// RequirePermission lets the request through only when the caller's role holds perm.
// AuthMiddleware must run first.
func RequirePermission(pol *policy.Policy, perm string) gin.HandlerFunc {
	return func(c *gin.Context) {
		role := c.GetString(ContextUserRole)
		if role == "" {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusUnauthorized, utils.ErrCodeUnauthorized, "User not authenticated", ""))
			return
		}
		if !pol.Allows(role, perm) {
			utils.LogWarn("Permission denied", map[string]interface{}{"role": role, "permission": perm, "path": c.FullPath()})
			utils.RespondWithError(c, utils.NewAPIError(http.StatusForbidden, utils.ErrCodeForbidden, "You do not have permission to access this resource", "required permission: "+perm))
			return
		}
		c.Next()
	}
}
