package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// CtxUserIDKey holds the uid resolved from the session cookie.
const CtxUserIDKey = "sessionUID"

// SessionResolver maps a session cookie value to the uid it was issued for.
type SessionResolver interface {
	Resolve(token string) (string, error)
}

// RequireSession rejects requests without a valid session cookie.
func RequireSession(resolver SessionResolver, cookieName string) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := c.Cookie(cookieName)
		if err != nil || token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}

		uid, err := resolver.Resolve(token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}

		c.Set(CtxUserIDKey, uid)
		c.Next()
	}
}
