package http

import (
	"errors"
	"net/http"
	"strings"

	"github.com/fanclash/gatekeeper/core"
	"github.com/fanclash/gatekeeper/service"
	"github.com/gin-gonic/gin"
)

// AuthHandlers contains HTTP handlers for auth endpoints.
type AuthHandlers struct {
	authService *service.AuthService
}

// NewAuthHandlers creates new auth handlers.
func NewAuthHandlers(authService *service.AuthService) *AuthHandlers {
	return &AuthHandlers{authService: authService}
}

// Challenge handles POST /auth/challenge (alias /auth/nonce).
func (h *AuthHandlers) Challenge(c *gin.Context) {
	var req struct {
		WalletAddress string `json:"walletAddress" binding:"required"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "missing_address"})
		return
	}

	challenge, message, err := h.authService.CreateChallenge(c.Request.Context(), strings.TrimSpace(req.WalletAddress))
	if err != nil {
		if errors.Is(err, core.ErrInvalidAddress) {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "invalid_address"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "server_error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"nonce":   challenge.Nonce,
		"message": message,
	})
}

// Verify handles POST /auth/verify.
func (h *AuthHandlers) Verify(c *gin.Context) {
	var req struct {
		WalletAddress string `json:"walletAddress" binding:"required"`
		Signature     string `json:"signature" binding:"required"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "missing_params"})
		return
	}

	result, err := h.authService.VerifyAndIssue(c.Request.Context(), strings.TrimSpace(req.WalletAddress), req.Signature)
	if err != nil {
		switch {
		case errors.Is(err, core.ErrInvalidAddress):
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "invalid_address"})
		case errors.Is(err, core.ErrChallengeMissing):
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "nonce_missing"})
		case errors.Is(err, core.ErrChallengeExpired):
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "nonce_expired"})
		case errors.Is(err, core.ErrInvalidSignature):
			c.JSON(http.StatusUnauthorized, gin.H{"success": false, "error": "invalid_signature"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "server_error"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"token":   result.Token,
		"wallet":  result.Address,
		"role":    result.Role,
	})
}

// Introspect handles POST /auth/introspect. A missing bearer header is a
// 401; a present but invalid or expired token is a 200 with active=false
// so callers can use the endpoint as a boolean probe.
func (h *AuthHandlers) Introspect(c *gin.Context) {
	token, ok := bearerToken(c.GetHeader("Authorization"))
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing_token"})
		return
	}

	identity, err := h.authService.Authenticate(c.Request.Context(), token)
	if err != nil {
		if errors.Is(err, core.ErrTokenExpired) || errors.Is(err, core.ErrInvalidToken) {
			c.JSON(http.StatusOK, gin.H{"active": false})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "server_error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"active": true,
		"wallet": identity.Address,
		"role":   identity.Role,
	})
}

// Me returns the authenticated identity. Protected by RequireAuth.
func (h *AuthHandlers) Me(c *gin.Context) {
	identity, ok := IdentityFromContext(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "identity not found in context"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"wallet": identity.Address,
		"role":   identity.Role,
	})
}

// ListAccounts returns all known accounts. Protected by RequireAdmin.
func (h *AuthHandlers) ListAccounts(c *gin.Context) {
	accounts, err := h.authService.Accounts().List(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "server_error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"accounts": accounts})
}
