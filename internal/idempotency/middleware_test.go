package idempotency

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

type memorySeener struct {
	mu   sync.Mutex
	keys map[string]bool
	err  error
}

func (m *memorySeener) Seen(_ context.Context, key string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return false, m.err
	}
	if m.keys[key] {
		return true, nil
	}
	m.keys[key] = true
	return false, nil
}

func (m *memorySeener) Release(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.keys, key)
	return nil
}

func newRouter(seen Seener) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.POST("/orders", Middleware(seen, "orders"), func(c *gin.Context) {
		if c.Query("fail") != "" {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "insufficient stock"})
			return
		}
		c.JSON(http.StatusCreated, gin.H{"success": true})
	})
	return r
}

func post(r *gin.Engine, key string) int {
	return postTo(r, "/orders", key)
}

func postTo(r *gin.Engine, path, key string) int {
	req := httptest.NewRequest(http.MethodPost, path, nil)
	if key != "" {
		req.Header.Set(Header, key)
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec.Code
}

func TestMiddlewareRejectsReplay(t *testing.T) {
	seen := &memorySeener{keys: map[string]bool{}}
	r := newRouter(seen)

	assert.Equal(t, http.StatusCreated, post(r, "abc"))
	assert.Equal(t, http.StatusConflict, post(r, "abc"))
	assert.Equal(t, http.StatusCreated, post(r, "def"))
	assert.True(t, seen.keys["idem:orders:abc"])
}

func TestMiddlewareWithoutHeaderPassesThrough(t *testing.T) {
	r := newRouter(&memorySeener{keys: map[string]bool{}})

	assert.Equal(t, http.StatusCreated, post(r, ""))
	assert.Equal(t, http.StatusCreated, post(r, ""))
}

func TestMiddlewareFailsOpen(t *testing.T) {
	r := newRouter(&memorySeener{keys: map[string]bool{}, err: errors.New("connection refused")})

	assert.Equal(t, http.StatusCreated, post(r, "abc"))
	assert.Equal(t, http.StatusCreated, post(r, "abc"))
}

func TestMiddlewareReleasesKeyOfFailedRequest(t *testing.T) {
	seen := &memorySeener{keys: map[string]bool{}}
	r := newRouter(seen)

	assert.Equal(t, http.StatusBadRequest, postTo(r, "/orders?fail=1", "abc"))
	assert.False(t, seen.keys["idem:orders:abc"])

	assert.Equal(t, http.StatusCreated, post(r, "abc"))
	assert.Equal(t, http.StatusConflict, post(r, "abc"))
}
