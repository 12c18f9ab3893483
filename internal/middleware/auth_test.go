package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"bijouterie/internal/auth"
	"bijouterie/internal/models"
)

func newIssuer() *auth.Issuer {
	return auth.NewIssuer("test-secret", time.Hour)
}

func sessionFor(t *testing.T, issuer *auth.Issuer, isAdmin, mustChange bool) string {
	t.Helper()
	token, err := issuer.Issue(models.User{
		ID:                 primitive.NewObjectID(),
		Email:              "admin@bijouterie.local",
		IsAdmin:            isAdmin,
		MustChangePassword: mustChange,
	})
	require.NoError(t, err)
	return token
}

func gateRouter(issuer *auth.Issuer) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	admin := r.Group("/admin", AdminGate(issuer))
	for _, path := range []string{"", "/login", "/first-login", "/collections", "/products", "/orders"} {
		admin.GET(path, func(c *gin.Context) { c.String(http.StatusOK, "page") })
	}
	return r
}

func get(r *gin.Engine, path, cookie string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if cookie != "" {
		req.AddCookie(&http.Cookie{Name: auth.CookieName, Value: cookie})
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestAdminGateWithoutSession(t *testing.T) {
	r := gateRouter(newIssuer())

	rec := get(r, "/admin/login", "")
	assert.Equal(t, http.StatusOK, rec.Code)

	for _, path := range []string{"/admin", "/admin/orders", "/admin/first-login"} {
		rec := get(r, path, "")
		assert.Equal(t, http.StatusFound, rec.Code, path)
		assert.Equal(t, AdminLoginPage, rec.Header().Get("Location"), path)
	}

	rec = get(r, "/admin/orders", "garbage")
	assert.Equal(t, AdminLoginPage, rec.Header().Get("Location"))
}

func TestAdminGateFirstLogin(t *testing.T) {
	issuer := newIssuer()
	r := gateRouter(issuer)
	pending := sessionFor(t, issuer, true, true)

	for _, path := range []string{"/admin", "/admin/collections", "/admin/products", "/admin/orders"} {
		rec := get(r, path, pending)
		assert.Equal(t, http.StatusFound, rec.Code, path)
		assert.Equal(t, AdminFirstLogin, rec.Header().Get("Location"), path)
	}
	assert.Equal(t, http.StatusOK, get(r, "/admin/first-login", pending).Code)
	assert.Equal(t, http.StatusOK, get(r, "/admin/login", pending).Code)

	rotated := sessionFor(t, issuer, true, false)
	assert.Equal(t, http.StatusOK, get(r, "/admin/orders", rotated).Code)

	rec := get(r, "/admin/first-login", rotated)
	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, AdminHome, rec.Header().Get("Location"))
}

func TestRequireAdmin(t *testing.T) {
	issuer := newIssuer()
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/api/stats", RequireAdmin(issuer), func(c *gin.Context) {
		claims, ok := Claims(c)
		require.True(t, ok)
		c.JSON(http.StatusOK, gin.H{"success": true, "data": claims.UserID})
	})

	assert.Equal(t, http.StatusUnauthorized, get(r, "/api/stats", "").Code)
	assert.Equal(t, http.StatusForbidden, get(r, "/api/stats", sessionFor(t, issuer, false, false)).Code)
	assert.Equal(t, http.StatusOK, get(r, "/api/stats", sessionFor(t, issuer, true, false)).Code)

	req := httptest.NewRequest(http.MethodGet, "/api/stats", nil)
	req.Header.Set("Authorization", "Bearer "+sessionFor(t, issuer, true, true))
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRequestIDKeepsValidIncomingID(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(RequestID())
	r.GET("/", func(c *gin.Context) { c.String(http.StatusOK, c.GetString(RequestIDKey)) })

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, "8d7c2f3e-52a4-4b6e-9a51-3f1d2c0e9b11")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	assert.Equal(t, "8d7c2f3e-52a4-4b6e-9a51-3f1d2c0e9b11", rec.Body.String())

	rec = get(r, "/", "")
	assert.Len(t, rec.Header().Get(RequestIDHeader), 36)
}
