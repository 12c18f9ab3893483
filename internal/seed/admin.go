// Package seed creates the first admin account and the sample catalog.
package seed

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"bijouterie/internal/auth"
	"bijouterie/internal/models"
	"bijouterie/internal/repository"
)

type AdminResult string

const (
	AdminCreated AdminResult = "created"
	AdminExists  AdminResult = "exists"
	AdminReset   AdminResult = "reset"
)

// Admin creates the admin account with a temporary password that must be
// changed at first login. An existing account is left alone unless force is
// set, in which case its password and first-login flag are reset.
func Admin(ctx context.Context, users repository.UserStore, email, password string, force bool) (AdminResult, error) {
	email = auth.NormalizeEmail(email)
	if email == "" || password == "" {
		return "", errors.New("admin email and password are required")
	}

	existing, err := users.FindByEmail(ctx, email)
	switch {
	case err == nil:
		if !force {
			slog.Info("admin already exists, use -force to reset the password", "email", email)
			return AdminExists, nil
		}
		hash, err := auth.HashPassword(password)
		if err != nil {
			return "", err
		}
		if err := users.UpdatePassword(ctx, existing.ID, hash, true); err != nil {
			return "", fmt.Errorf("reset admin: %w", err)
		}
		slog.Info("admin password reset", "email", email)
		return AdminReset, nil
	case !errors.Is(err, repository.ErrNotFound):
		return "", fmt.Errorf("find admin: %w", err)
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return "", err
	}
	user := models.User{
		Email:              email,
		PasswordHash:       hash,
		MustChangePassword: true,
		IsAdmin:            true,
	}
	if err := users.Create(ctx, &user); err != nil {
		return "", fmt.Errorf("create admin: %w", err)
	}
	slog.Info("admin created", "email", email)
	return AdminCreated, nil
}
