package api

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"merchant-kyc-portal/auth"
	"merchant-kyc-portal/shared"
	"merchant-kyc-portal/store"
)

// BootstrapAdmin creates the configured administrator unless a user with that
// email already exists. It reports whether a user was created.
func BootstrapAdmin(ctx context.Context, users UserStore, email, password string) (bool, error) {
	if email == "" {
		return false, nil
	}
	if len(password) < auth.MinPasswordLength {
		return false, fmt.Errorf("admin password must be at least %d characters", auth.MinPasswordLength)
	}

	_, err := users.GetByEmail(ctx, email)
	if err == nil {
		return false, nil
	}
	if !errors.Is(err, store.ErrUserNotFound) {
		return false, err
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return false, err
	}
	err = users.Create(ctx, store.User{
		ID:           uuid.NewString(),
		Email:        store.NormalizeEmail(email),
		Name:         "Administrator",
		FullName:     "Administrator",
		PasswordHash: hash,
		Role:         shared.RoleAdmin,
		CreatedAt:    time.Now().UTC(),
	})
	if errors.Is(err, store.ErrEmailTaken) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}
