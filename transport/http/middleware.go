package http

import (
	"errors"
	"net/http"
	"strings"

	"github.com/fanclash/gatekeeper/core"
	"github.com/fanclash/gatekeeper/service"
	"github.com/gin-gonic/gin"
)

// identityKey is where RequireAuth stores the verified identity in the
// gin context.
const identityKey = "gatekeeper.identity"

// bearerToken extracts a bearer token from an Authorization header value.
func bearerToken(header string) (string, bool) {
	if !strings.HasPrefix(header, "Bearer ") {
		return "", false
	}
	token := strings.TrimPrefix(header, "Bearer ")
	if token == "" {
		return "", false
	}
	return token, true
}

// IdentityFromContext returns the identity attached by RequireAuth.
func IdentityFromContext(c *gin.Context) (*core.Identity, bool) {
	v, ok := c.Get(identityKey)
	if !ok {
		return nil, false
	}
	identity, ok := v.(*core.Identity)
	return identity, ok
}

// RequireAuth verifies the bearer token, re-resolves the role, and
// attaches the identity to the request. Any failure short-circuits with
// 401 before the protected handler runs.
func RequireAuth(authService *service.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := bearerToken(c.GetHeader("Authorization"))
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing_token"})
			return
		}

		resolved, err := authService.Authenticate(c.Request.Context(), token)
		if err != nil {
			if errors.Is(err, core.ErrTokenExpired) {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "token_expired"})
			} else {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid_token"})
			}
			return
		}

		c.Set(identityKey, resolved)
		c.Next()
	}
}

// RequireAdmin checks the resolved role. Must run after RequireAuth.
// Authenticated non-admins get 403, distinct from the 401 of RequireAuth.
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		identity, ok := IdentityFromContext(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing_token"})
			return
		}

		if identity.Role != core.RoleAdmin {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "admin_required"})
			return
		}

		c.Next()
	}
}
