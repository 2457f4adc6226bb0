package users

import (
	"fmt"
	"strings"
	"time"
	"unicode"

	"golang.org/x/crypto/bcrypt"
)

// User is a dashboard account together with its 2FA enrollment state.
type User struct {
	ID            string    `json:"id,omitempty"`        // Unique identifier for the user
	Username      string    `json:"username,omitempty"`  // Unique login name
	PasswordHash  string    `json:"-"`                   // bcrypt hash - never serialize
	IsActive      bool      `json:"isActive"`            // Inactive accounts cannot log in
	CreatedAt     time.Time `json:"createdAt,omitempty"` // When the account was created
	LastLoginAt   time.Time `json:"lastLoginAt,omitempty"`

	Is2FAEnabled  bool   `json:"is2FAEnabled"`  // 2FA is required for this user
	HasSetup2FA   bool   `json:"hasSetup2FA"`   // Enrollment has been confirmed at least once
	Is2FAVerified bool   `json:"is2FAVerified"` // A code was verified for the current login
	Secret2FA     string `json:"-"`             // Committed TOTP secret
	TempSecret2FA string `json:"-"`             // Provisional secret awaiting confirmation
}

// Status is the read projection of a user's 2FA state.
type Status struct {
	UserID        string
	Username      string
	Is2FAEnabled  bool
	HasSetup2FA   bool
	Is2FAVerified bool
	Secret2FA     string
	TempSecret2FA string
}

// Status projects the user onto its 2FA status.
func (u *User) Status() Status {
	return Status{
		UserID:        u.ID,
		Username:      u.Username,
		Is2FAEnabled:  u.Is2FAEnabled,
		HasSetup2FA:   u.HasSetup2FA,
		Is2FAVerified: u.Is2FAVerified,
		Secret2FA:     u.Secret2FA,
		TempSecret2FA: u.TempSecret2FA,
	}
}

// HasAnySecret reports whether either the committed or the provisional secret is set.
func (s Status) HasAnySecret() bool {
	return s.Secret2FA != "" || s.TempSecret2FA != ""
}

// NormalizeUsername is applied before every lookup and insert.
func NormalizeUsername(username string) string {
	return strings.ToLower(strings.TrimSpace(username))
}

// ValidatePasswordStrength checks if password meets security requirements:
// - At least 8 characters long
// - Contains uppercase and lowercase letters
// - Contains at least one number
func ValidatePasswordStrength(password string) error {
	if len(password) < 8 {
		return fmt.Errorf("password must be at least 8 characters long")
	}

	var (
		hasUpper  bool
		hasLower  bool
		hasNumber bool
	)

	for _, char := range password {
		if unicode.IsUpper(char) {
			hasUpper = true
		} else if unicode.IsLower(char) {
			hasLower = true
		} else if unicode.IsDigit(char) {
			hasNumber = true
		}
	}

	if !hasUpper {
		return fmt.Errorf("password must contain at least one uppercase letter")
	}
	if !hasLower {
		return fmt.Errorf("password must contain at least one lowercase letter")
	}
	if !hasNumber {
		return fmt.Errorf("password must contain at least one number")
	}

	return nil
}

func CheckPasswordHash(password, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	return err == nil
}

// PasswordHasher is the hashing primitive consumed by the login step.
type PasswordHasher interface {
	Hash(password string) (string, error)
	Compare(password, hash string) bool
}

// BcryptHasher implements PasswordHasher with bcrypt at the given cost.
type BcryptHasher struct {
	Cost int
}

var _ PasswordHasher = BcryptHasher{}

func (b BcryptHasher) Hash(password string) (string, error) {
	cost := b.Cost
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	return string(bytes), err
}

func (BcryptHasher) Compare(password, hash string) bool {
	return CheckPasswordHash(password, hash)
}
