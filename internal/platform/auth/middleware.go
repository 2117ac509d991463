package auth

import (
	"strings"

	"github.com/gin-gonic/gin"

	"library-backend/internal/platform/apperr"
)

// Identify resolves the caller from "Authorization: Bearer <token>" and
// stores it on the context. Requests without the header continue as guest;
// a header that does not verify is rejected with 401.
func Identify(issuer *Issuer) gin.HandlerFunc {
	return func(c *gin.Context) {
		h := c.GetHeader("Authorization")
		if h == "" {
			c.Set(ctxIdentityKey, Guest())
			c.Next()
			return
		}

		parts := strings.SplitN(h, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			apperr.Respond(c, apperr.ErrUnauthorized("invalid Authorization header"))
			return
		}
		tokenStr := strings.TrimSpace(parts[1])
		if tokenStr == "" {
			apperr.Respond(c, apperr.ErrUnauthorized("empty token"))
			return
		}

		id, err := issuer.Parse(tokenStr)
		if err != nil {
			apperr.Respond(c, apperr.ErrUnauthorized("Invalid authentication token"))
			return
		}
		c.Set(ctxIdentityKey, id)
		c.Next()
	}
}

// RequireAdmin must run after Identify.
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !FromContext(c).IsAdmin {
			apperr.Respond(c, apperr.ErrForbidden("Admin access required."))
			return
		}
		c.Next()
	}
}
