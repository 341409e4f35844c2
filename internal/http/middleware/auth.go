// README: Firebase ID-token auth and caller identification.
package middleware

import (
	"log"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"tripgen/internal/infra"
)

const callerUIDKey = "caller_uid"

// Auth verifies the "Authorization: Bearer <Firebase ID token>" header and
// stores the caller's UID on the context.
func Auth(verifier infra.TokenVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || strings.TrimSpace(token) == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing bearer token"})
			return
		}

		ft, err := verifier.VerifyIDToken(c.Request.Context(), strings.TrimSpace(token))
		if err != nil {
			log.Printf("auth: verify token: %v", err)
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}

		c.Set(callerUIDKey, ft.UID)
		c.Next()
	}
}

// CallerUID returns the verified Firebase UID, or "" when the request was not authenticated.
func CallerUID(c *gin.Context) string {
	return c.GetString(callerUIDKey)
}

// Caller identifies who is making the request for quota and rate limiting:
// the Firebase UID when authenticated, the client IP otherwise.
func Caller(c *gin.Context) string {
	if uid := CallerUID(c); uid != "" {
		return "uid:" + uid
	}
	return "ip:" + c.ClientIP()
}
