// Package middleware provides HTTP authentication middleware.
package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/kart-io/logger"

	"github.com/kart-io/bloggy/pkg/security/auth"
)

const bearerPrefix = "Bearer "

// ExtractBearerToken returns the bearer token from the Authorization header,
// or an empty string when the header is missing or malformed.
func ExtractBearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if header == "" {
		return ""
	}
	if !strings.HasPrefix(header, bearerPrefix) {
		return ""
	}
	return strings.TrimPrefix(header, bearerPrefix)
}

// GinAuthn returns a Gin middleware that verifies the bearer token and
// injects the resulting claims into the request context. Requests without a
// valid token are rejected with 401.
func GinAuthn(authn auth.Authenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := ExtractBearerToken(c.Request)
		if tokenString == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing bearer token"})
			return
		}

		claims, err := authn.Verify(c.Request.Context(), tokenString)
		if err != nil {
			logger.Warnw("token verification failed",
				"error", err.Error(),
				"remote_addr", c.ClientIP(),
				"path", c.Request.URL.Path,
			)
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}

		ctx := auth.InjectAuth(c.Request.Context(), claims, tokenString)
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}
