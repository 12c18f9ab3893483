package middleware

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"bijouterie/internal/auth"
)

// ClaimsKey is the gin context key the verified session is stored under.
const ClaimsKey = "claims"

// SessionToken returns the raw session from the cookie, falling back to a
// Bearer Authorization header.
func SessionToken(c *gin.Context) string {
	if cookie, err := c.Cookie(auth.CookieName); err == nil && strings.TrimSpace(cookie) != "" {
		return strings.TrimSpace(cookie)
	}

	raw := strings.TrimSpace(c.GetHeader("Authorization"))
	parts := strings.Split(raw, " ")
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

// CurrentSession parses the request's session without aborting.
func CurrentSession(c *gin.Context, issuer *auth.Issuer) (auth.Claims, bool) {
	if claims, ok := c.Get(ClaimsKey); ok {
		if typed, ok := claims.(auth.Claims); ok {
			return typed, true
		}
	}

	raw := SessionToken(c)
	if raw == "" {
		return auth.Claims{}, false
	}
	claims, err := issuer.Parse(raw)
	if err != nil {
		return auth.Claims{}, false
	}
	c.Set(ClaimsKey, claims)
	return claims, true
}

// Claims returns the session stored by RequireSession or RequireAdmin.
func Claims(c *gin.Context) (auth.Claims, bool) {
	value, ok := c.Get(ClaimsKey)
	if !ok {
		return auth.Claims{}, false
	}
	claims, ok := value.(auth.Claims)
	return claims, ok
}

// RequireSession answers 401 unless the request carries a valid session.
func RequireSession(issuer *auth.Issuer) gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := CurrentSession(c, issuer); !ok {
			slog.Warn("session missing or invalid", "path", c.Request.URL.Path)
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"success": false, "error": "unauthorized"})
			return
		}
		c.Next()
	}
}

// RequireAdmin answers 401 without a valid session and 403 for a session
// that does not belong to an admin.
func RequireAdmin(issuer *auth.Issuer) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := CurrentSession(c, issuer)
		if !ok {
			slog.Warn("session missing or invalid", "path", c.Request.URL.Path)
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"success": false, "error": "unauthorized"})
			return
		}
		if !claims.IsAdmin {
			slog.Warn("non-admin session rejected", "path", c.Request.URL.Path, "userId", claims.UserID)
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"success": false, "error": "forbidden"})
			return
		}
		c.Next()
	}
}
