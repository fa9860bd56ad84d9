// Package users holds the credential records the session store checks logins
// against.
package users

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"stockroom/models"
)

// ErrUserNotFound is returned by FindUser when the username is unknown.
var ErrUserNotFound = errors.New("user not found")

// Directory looks up and registers users.
type Directory interface {
	FindUser(ctx context.Context, username string) (models.User, error)
	// AddUser reports false without error when the username is taken.
	AddUser(ctx context.Context, username, password, role string) (bool, error)
}

type options struct {
	cost int
}

// Option configures a directory.
type Option func(*options)

// WithCost sets the bcrypt cost used for new password hashes.
func WithCost(cost int) Option {
	return func(o *options) { o.cost = cost }
}

func buildOptions(opts []Option) options {
	o := options{cost: bcrypt.DefaultCost}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

func hashPassword(password string, cost int) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hash), nil
}

var defaultAccounts = []struct {
	username, password, role string
}{
	{"admin", "admin123", "admin"},
	{"user", "user123", "user"},
}

// SeedDefaults registers the built-in admin and user accounts. Accounts that
// already exist are left alone.
func SeedDefaults(ctx context.Context, dir Directory) error {
	for _, a := range defaultAccounts {
		if _, err := dir.AddUser(ctx, a.username, a.password, a.role); err != nil {
			return fmt.Errorf("seed user %q: %w", a.username, err)
		}
	}
	return nil
}
