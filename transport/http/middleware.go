package http

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/layer-3/walletauth/adapters/tokenizer"
	"github.com/layer-3/walletauth/core"
)

const sessionKey = "session"

// AuthMiddleware creates middleware that validates session tokens
func AuthMiddleware(sessions SessionManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := strings.CutPrefix(c.GetHeader("Authorization"), "Bearer ")
		if !ok || token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid authorization header"})
			return
		}

		handle, err := sessions.Validate(c.Request.Context(), token)
		if err != nil {
			if errors.Is(err, tokenizer.ErrTokenExpired) {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Session expired"})
			} else {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid session"})
			}
			return
		}

		c.Set(sessionKey, handle)

		c.Next()
	}
}

// EnvironmentFromRequest derives the execution context from the Origin header,
// falling back to the request's own scheme and host.
func EnvironmentFromRequest(r *http.Request) (core.Environment, bool) {
	if origin := r.Header.Get("Origin"); origin != "" {
		return core.EnvironmentFromOrigin(origin)
	}
	if r.Host == "" {
		return core.Environment{}, false
	}
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	return core.EnvironmentFromOrigin(scheme + "://" + r.Host)
}
