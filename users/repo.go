package users

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrNotFound is returned by stores when no user matches.
	ErrNotFound = errors.New("user not found")
	// ErrUsernameTaken is returned by Create for a duplicate username.
	ErrUsernameTaken = errors.New("username already exists")
	// ErrTempSecretChanged is returned by PromoteTempSecret when the provisional
	// secret is no longer the one that was verified.
	ErrTempSecretChanged = errors.New("temporary 2FA secret changed")
)

// StatusStore persists user accounts and their 2FA state. Implementations must
// serialize writes for a single user; callers hold no locks.
type StatusStore interface {
	GetByID(ctx context.Context, id string) (*User, error)
	GetByUsername(ctx context.Context, username string) (*User, error)

	// Create inserts a new account, assigning ID and CreatedAt when empty.
	Create(ctx context.Context, user *User) error

	// SetTempSecret stores a provisional 2FA secret. The committed secret is untouched.
	SetTempSecret(ctx context.Context, id, secret string) error

	// PromoteTempSecret atomically moves tempSecret to the committed secret,
	// clears the provisional one and marks the user set up and verified. It
	// fails with ErrTempSecretChanged when the stored provisional secret differs.
	PromoteTempSecret(ctx context.Context, id, tempSecret string, at time.Time) error

	// MarkVerified sets Is2FAVerified and LastLoginAt.
	MarkVerified(ctx context.Context, id string, at time.Time) error

	// ClearVerified resets Is2FAVerified at the start and end of a login session.
	ClearVerified(ctx context.Context, id string) error

	SetTwoFactorEnabled(ctx context.Context, id string, enabled bool) error

	// ResetTwoFactor drops both secrets and the setup/verified flags.
	ResetTwoFactor(ctx context.Context, id string) error
}
