package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"natgpt/internal/pkg/ctxutil"
	httputil "natgpt/internal/pkg/http"
	"natgpt/internal/pkg/jwt"
)

// Auth verifies the bearer token and stores the caller id in the request context.
// With required false, requests without a token pass through anonymously; a token
// that is present but invalid is always rejected. A nil verifier admits everyone.
func Auth(verifier *jwt.Verifier, required bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		if verifier == nil {
			c.Next()
			return
		}

		tokenString := bearerToken(c)
		if tokenString == "" {
			if required {
				c.AbortWithStatusJSON(http.StatusUnauthorized, httputil.NewErrorResponse(40101, "Unauthorized"))
				return
			}
			c.Next()
			return
		}

		claims, err := verifier.ValidateToken(tokenString)
		if err != nil {
			message := "Invalid token"
			if errors.Is(err, jwt.ErrExpiredToken) {
				message = "Token expired"
			}
			c.AbortWithStatusJSON(http.StatusUnauthorized, httputil.NewErrorResponse(40102, message))
			return
		}

		ctx := ctxutil.WithUserID(c.Request.Context(), claims.Identity())
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

// bearerToken reads the Authorization header, or the token query parameter used by
// browser websocket clients that cannot set headers.
func bearerToken(c *gin.Context) string {
	if header := c.GetHeader("Authorization"); header != "" {
		parts := strings.SplitN(header, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
			return strings.TrimSpace(parts[1])
		}
		return ""
	}
	return c.Query("token")
}
