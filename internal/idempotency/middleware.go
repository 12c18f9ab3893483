package idempotency

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
)

const Header = "Idempotency-Key"

// Middleware answers 409 when the request repeats a key already seen under
// scope. Requests without the header pass through, and so do requests made
// while the backing store is unreachable. A key whose request did not succeed
// is released so the client can retry with it.
func Middleware(seen Seener, scope string) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := strings.TrimSpace(c.GetHeader(Header))
		if key == "" {
			c.Next()
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		stored := "idem:" + scope + ":" + key
		replay, err := seen.Seen(ctx, stored)
		if err != nil {
			slog.Error("idempotency check failed", "scope", scope, "err", err)
			c.Next()
			return
		}
		if replay {
			slog.Warn("duplicate request rejected", "scope", scope, "key", key)
			c.AbortWithStatusJSON(http.StatusConflict, gin.H{"success": false, "error": "duplicate request"})
			return
		}
		cancel()

		c.Next()

		if status := c.Writer.Status(); status < 200 || status >= 300 {
			releaseCtx, releaseCancel := context.WithTimeout(context.WithoutCancel(c.Request.Context()), 2*time.Second)
			defer releaseCancel()
			if err := seen.Release(releaseCtx, stored); err != nil {
				slog.Error("idempotency release failed", "scope", scope, "key", key, "err", err)
			}
		}
	}
}
