package auth

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

const identityKey = "auth.identity"

// RequireUser authenticates REST requests via an Authorization bearer token
// (or the token query parameter) and rejects anonymous callers with 401.
// The resolved identity is stored on the gin context for handlers.
func RequireUser(a *Authenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		ident := a.Resolve(c.Request.Context(), bearerToken(c.Request))
		if ident.IsAnonymous() {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
			return
		}
		c.Set(identityKey, ident)
		c.Next()
	}
}

// CurrentUser returns the identity stored by RequireUser, or Anonymous.
func CurrentUser(c *gin.Context) Identity {
	if v, ok := c.Get(identityKey); ok {
		if ident, ok := v.(Identity); ok {
			return ident
		}
	}
	return Anonymous
}

func bearerToken(r *http.Request) string {
	if h := r.Header.Get("Authorization"); strings.HasPrefix(h, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(h, "Bearer "))
	}
	return r.URL.Query().Get("token")
}
