package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"bijouterie/internal/auth"
	"bijouterie/internal/middleware"
	"bijouterie/internal/models"
	"bijouterie/internal/repository"
)

type loginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type sessionResponse struct {
	Token              string `json:"token,omitempty"`
	UserID             string `json:"userId"`
	Email              string `json:"email"`
	IsAdmin            bool   `json:"isAdmin"`
	MustChangePassword bool   `json:"mustChangePassword"`
}

// SessionCookies writes and clears the session cookie.
type SessionCookies struct {
	Issuer *auth.Issuer
	Secure bool
}

func (s SessionCookies) set(c *gin.Context, token string) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(auth.CookieName, token, int(s.Issuer.TTL().Seconds()), "/", "", s.Secure, true)
}

func (s SessionCookies) clear(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(auth.CookieName, "", -1, "/", "", s.Secure, true)
}

// issue signs a session for user and sets it as the cookie.
func (s SessionCookies) issue(c *gin.Context, user models.User) (sessionResponse, error) {
	token, err := s.Issuer.Issue(user)
	if err != nil {
		return sessionResponse{}, err
	}
	s.set(c, token)
	return sessionResponse{
		Token:              token,
		UserID:             user.ID.Hex(),
		Email:              user.Email,
		IsAdmin:            user.IsAdmin,
		MustChangePassword: user.MustChangePassword,
	}, nil
}

func Login(users repository.UserStore, cookies SessionCookies) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /api/auth/login"
		defer handlePanic(c, route)

		var req loginRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, route, err)
			return
		}

		ctx, cancel := dbContext(c)
		defer cancel()

		user, err := auth.Authenticate(ctx, users, req.Email, req.Password)
		switch {
		case errors.Is(err, auth.ErrUserNotFound):
			respondWithError(c, http.StatusNotFound, route, err.Error())
			return
		case errors.Is(err, auth.ErrIncorrectPassword):
			respondWithError(c, http.StatusUnauthorized, route, err.Error())
			return
		case err != nil:
			respondInternal(c, route, "error during login", err)
			return
		}

		session, err := cookies.issue(c, user)
		if err != nil {
			respondInternal(c, route, "error during login", err)
			return
		}
		respondOK(c, http.StatusOK, session)
	}
}

func Logout(cookies SessionCookies) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /api/auth/logout"
		defer handlePanic(c, route)

		cookies.clear(c)
		respondOK(c, http.StatusOK, gin.H{})
	}
}

// GetSession returns the claims of the current session. It runs behind
// middleware.RequireSession.
func GetSession() gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /api/auth/session"
		defer handlePanic(c, route)

		claims, ok := middleware.Claims(c)
		if !ok {
			respondWithError(c, http.StatusUnauthorized, route, "unauthorized")
			return
		}
		respondOK(c, http.StatusOK, sessionResponse{
			UserID:             claims.UserID,
			Email:              claims.Email,
			IsAdmin:            claims.IsAdmin,
			MustChangePassword: claims.MustChangePassword,
		})
	}
}
