package http

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/layer-3/walletauth/adapters/tokenizer"
	"github.com/layer-3/walletauth/core"
	"github.com/layer-3/walletauth/ports"
	"github.com/layer-3/walletauth/service"
)

// Authenticator runs the sign-in handshake
type Authenticator interface {
	PerformAuth(ctx context.Context, sessions ports.SessionLayer) (*service.AuthSession, error)
}

// SessionManager is the session layer plus token validation and logout
type SessionManager interface {
	ports.SessionLayer
	Validate(ctx context.Context, token string) (core.SessionHandle, error)
	Logout(ctx context.Context, token string) error
}

// AuthHandlers contains HTTP handlers for auth endpoints
type AuthHandlers struct {
	auth     Authenticator
	sessions SessionManager
}

// NewAuthHandlers creates new auth handlers
func NewAuthHandlers(auth Authenticator, sessions SessionManager) *AuthHandlers {
	return &AuthHandlers{
		auth:     auth,
		sessions: sessions,
	}
}

// Session runs the handshake for the requesting origin
func (h *AuthHandlers) Session(c *gin.Context) {
	ctx := c.Request.Context()
	// Without an environment the orchestrator fails fast with WRONG_EXECUTION_CONTEXT
	if env, ok := EnvironmentFromRequest(c.Request); ok {
		ctx = core.WithEnvironment(ctx, env)
	}

	session, err := h.auth.PerformAuth(ctx, h.sessions)
	if err != nil {
		if !core.IsClassified(err) {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Authentication failed"})
			return
		}
		c.JSON(statusFor(core.CodeOf(err)), gin.H{
			"error": core.PublicMessage(err),
			"code":  core.CodeOf(err),
			"stage": core.StageOf(err),
		})
		return
	}

	c.JSON(http.StatusOK, session)
}

// Logout handles session logout
func (h *AuthHandlers) Logout(c *gin.Context) {
	var req struct {
		Token string `json:"token" binding:"required"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	if err := h.sessions.Logout(c.Request.Context(), req.Token); err != nil {
		if errors.Is(err, tokenizer.ErrInvalidToken) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid session token"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to logout"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Logged out"})
}

// Me returns the authenticated session
func (h *AuthHandlers) Me(c *gin.Context) {
	value, exists := c.Get(sessionKey)
	handle, ok := value.(core.SessionHandle)
	if !exists || !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Session not found in context"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"address":    handle.Address,
		"session_id": handle.ID,
		"expires_at": handle.ExpiresAt,
	})
}

func statusFor(code string) int {
	switch code {
	case core.CodeWrongContext, core.CodeInvalidAddress:
		return http.StatusBadRequest
	case core.CodeSigningRejected:
		return http.StatusForbidden
	case core.CodeSessionInit:
		return http.StatusUnauthorized
	case core.CodeNoAddress:
		return http.StatusConflict
	case core.CodeHostUnavailable:
		return http.StatusServiceUnavailable
	case core.CodeAddressRetrieval, core.CodeMessageGeneration, core.CodeSigningFailure:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
