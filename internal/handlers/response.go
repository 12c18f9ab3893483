package handlers

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

const dbTimeout = 5 * time.Second

func handlePanic(c *gin.Context, route string) {
	if r := recover(); r != nil {
		slog.Error("panic recovered", "route", route, "panic", r)
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"success": false, "error": "internal server error"})
	}
}

func dbContext(c *gin.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Request.Context(), dbTimeout)
}

func respondOK(c *gin.Context, status int, data any) {
	c.JSON(status, gin.H{"success": true, "data": data})
}

func respondWithError(c *gin.Context, status int, route string, message string) {
	if status >= http.StatusInternalServerError {
		slog.Error("request failed", "route", route, "status", status, "error", message)
	} else {
		slog.Warn("request rejected", "route", route, "status", status, "error", message)
	}
	c.AbortWithStatusJSON(status, gin.H{"success": false, "error": message})
}

// respondInternal logs err and answers with a generic message.
func respondInternal(c *gin.Context, route string, message string, err error) {
	slog.Error(message, "route", route, "err", err)
	c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"success": false, "error": message})
}

func respondValidationError(c *gin.Context, route string, err error) {
	var validationErrors validator.ValidationErrors
	if errors.As(err, &validationErrors) {
		details := make([]string, 0, len(validationErrors))
		for _, fieldError := range validationErrors {
			field := lowerCamel(fieldError.Field())
			switch fieldError.Tag() {
			case "required":
				details = append(details, fmt.Sprintf("%s is required", field))
			case "gte":
				details = append(details, fmt.Sprintf("%s must be at least %s", field, fieldError.Param()))
			case "min":
				details = append(details, fmt.Sprintf("%s must be at least %s characters", field, fieldError.Param()))
			case "dive", "gt":
				details = append(details, fmt.Sprintf("%s must not be empty", field))
			default:
				details = append(details, fmt.Sprintf("%s is invalid", field))
			}
		}
		respondWithError(c, http.StatusBadRequest, route, strings.Join(details, ", "))
		return
	}

	respondWithError(c, http.StatusBadRequest, route, "invalid request body")
}

func lowerCamel(field string) string {
	if field == "" {
		return field
	}
	return strings.ToLower(field[:1]) + field[1:]
}
