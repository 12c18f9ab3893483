package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"bijouterie/internal/auth"
	"bijouterie/internal/middleware"
	"bijouterie/internal/repository"
)

type changePasswordRequest struct {
	NewPassword string `json:"newPassword" binding:"required,min=4"`
}

// ChangePassword stores a new hash for the session's user, clears the
// first-login flag and reissues the session cookie so the admin gate sees
// the cleared flag immediately. It runs behind middleware.RequireSession.
func ChangePassword(users repository.UserStore, cookies SessionCookies) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /api/user/change-password"
		defer handlePanic(c, route)

		claims, ok := middleware.Claims(c)
		if !ok {
			respondWithError(c, http.StatusUnauthorized, route, "unauthorized")
			return
		}
		userID, err := claims.ObjectID()
		if err != nil {
			respondWithError(c, http.StatusUnauthorized, route, "unauthorized")
			return
		}

		var req changePasswordRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondWithError(c, http.StatusBadRequest, route, "password too short")
			return
		}

		hash, err := auth.HashPassword(req.NewPassword)
		if err != nil {
			respondInternal(c, route, "error changing password", err)
			return
		}

		ctx, cancel := dbContext(c)
		defer cancel()

		if err := users.UpdatePassword(ctx, userID, hash, false); err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				respondWithError(c, http.StatusUnauthorized, route, "unauthorized")
				return
			}
			respondInternal(c, route, "error changing password", err)
			return
		}

		user, err := users.FindByID(ctx, userID)
		if err != nil {
			respondInternal(c, route, "error changing password", err)
			return
		}
		if _, err := cookies.issue(c, user); err != nil {
			respondInternal(c, route, "error changing password", err)
			return
		}

		c.JSON(http.StatusOK, gin.H{"success": true, "message": "password updated"})
	}
}
