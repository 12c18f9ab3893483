package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"bijouterie/internal/auth"
)

const (
	AdminHome       = "/admin"
	AdminLoginPage  = "/admin/login"
	AdminFirstLogin = "/admin/first-login"
)

// AdminGate guards the admin pages. The login page is always reachable; a
// missing session redirects to it, and a session that still has to rotate
// its password is held on the first-login page until it does.
func AdminGate(issuer *auth.Issuer) gin.HandlerFunc {
	return func(c *gin.Context) {
		path := strings.TrimSuffix(c.Request.URL.Path, "/")
		if path == "" {
			path = "/"
		}
		if path == AdminLoginPage {
			c.Next()
			return
		}

		claims, ok := CurrentSession(c, issuer)
		switch {
		case !ok || !claims.IsAdmin:
			c.Redirect(http.StatusFound, AdminLoginPage)
			c.Abort()
		case claims.MustChangePassword && path != AdminFirstLogin:
			c.Redirect(http.StatusFound, AdminFirstLogin)
			c.Abort()
		case !claims.MustChangePassword && path == AdminFirstLogin:
			c.Redirect(http.StatusFound, AdminHome)
			c.Abort()
		default:
			c.Next()
		}
	}
}
