package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// Health pings the store. ping is nil-safe so a store without a connection
// reports connected.
func Health(driver string, ping func(ctx context.Context) error) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /api/health"
		defer handlePanic(c, route)

		if ping != nil {
			ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
			defer cancel()

			if err := ping(ctx); err != nil {
				respondWithError(c, http.StatusServiceUnavailable, route, "database unavailable")
				return
			}
		}
		respondOK(c, http.StatusOK, gin.H{"status": "connected", "store": driver})
	}
}
