package auth

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

const passkeyContextKey = "auth_passkey"

// Middleware requires the passkey header and stores its value in the context.
// It does not consult the registry: unknown passkeys simply have no history.
func (s *Service) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		passkeyID := c.GetHeader(s.headerName)
		if passkeyID == "" {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "passkeyId required in " + s.headerName + " header"})
			return
		}
		c.Set(passkeyContextKey, passkeyID)
		c.Next()
	}
}

// PasskeyFromContext retrieves the passkey captured by the middleware.
func PasskeyFromContext(c *gin.Context) (string, bool) {
	val, ok := c.Get(passkeyContextKey)
	if !ok {
		return "", false
	}
	passkeyID, ok := val.(string)
	return passkeyID, ok && passkeyID != ""
}
