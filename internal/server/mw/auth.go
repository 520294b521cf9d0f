package mw

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/Abin-1409/fuel-swift/internal/domain"
	"github.com/Abin-1409/fuel-swift/internal/security"
	"github.com/Abin-1409/fuel-swift/internal/server/resp"
)

const ctxPrincipal = "principal"

type AccessParser interface {
	ParseAccess(tokenStr string) (security.Principal, error)
}

// bearer reads "Authorization: Bearer <jwt>". Browsers cannot set headers on a
// websocket handshake, so the token query parameter is accepted as well.
func bearer(c *gin.Context) string {
	h := strings.TrimSpace(c.GetHeader("Authorization"))
	if len(h) > 7 && strings.EqualFold(h[:7], "bearer ") {
		return strings.TrimSpace(h[7:])
	}
	return strings.TrimSpace(c.Query("token"))
}

// RequireAuth rejects requests without a valid access token.
func RequireAuth(jwtm AccessParser) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := bearer(c)
		if raw == "" {
			resp.Abort(c, http.StatusUnauthorized, "Authentication credentials were not provided")
			return
		}
		p, err := jwtm.ParseAccess(raw)
		if err != nil {
			resp.Abort(c, http.StatusUnauthorized, "Invalid or expired token")
			return
		}
		c.Set(ctxPrincipal, p)
		c.Next()
	}
}

// RequireRole must run after RequireAuth.
func RequireRole(roles ...domain.UserType) gin.HandlerFunc {
	return func(c *gin.Context) {
		p, ok := Principal(c)
		if !ok {
			resp.Abort(c, http.StatusUnauthorized, "Authentication credentials were not provided")
			return
		}
		for _, r := range roles {
			if p.Role == string(r) {
				c.Next()
				return
			}
		}
		resp.Abort(c, http.StatusForbidden, "You do not have permission to perform this action")
	}
}

func Principal(c *gin.Context) (security.Principal, bool) {
	v, ok := c.Get(ctxPrincipal)
	if !ok {
		return security.Principal{}, false
	}
	p, ok := v.(security.Principal)
	return p, ok
}

// SetPrincipal is used by tests and by routes that authenticate on their own.
func SetPrincipal(c *gin.Context, p security.Principal) {
	c.Set(ctxPrincipal, p)
}

func IsAdmin(c *gin.Context) bool {
	p, ok := Principal(c)
	return ok && p.Role == string(domain.UserAdmin)
}
