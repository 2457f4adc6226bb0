package auth

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"

	autherrors "github.com/jrsteele09/go-db-admin/internal/errors"
	"github.com/jrsteele09/go-db-admin/users"
	"github.com/rs/zerolog/log"
)

const dummyPassword = "dummy-password-for-timing"

// BootstrapAdmin describes the account created on the first successful login
// with the configured admin credentials.
type BootstrapAdmin struct {
	Username         string
	Password         string
	TwoFactorEnabled bool
}

func (b BootstrapAdmin) matches(username, password string) bool {
	if b.Username == "" || b.Password == "" {
		return false
	}
	if users.NormalizeUsername(b.Username) != username {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(b.Password), []byte(password)) == 1
}

// LoginStrategy verifies username and password and decides the next step.
type LoginStrategy struct {
	store     users.StatusStore
	hasher    users.PasswordHasher
	limiter   AttemptLimiter
	bootstrap BootstrapAdmin
	dummyHash string
}

// NewLoginStrategy builds the login step. A nil limiter disables throttling.
func NewLoginStrategy(store users.StatusStore, hasher users.PasswordHasher, limiter AttemptLimiter, bootstrap BootstrapAdmin) (*LoginStrategy, error) {
	if store == nil {
		return nil, errors.New("[NewLoginStrategy] store is required")
	}
	if hasher == nil {
		return nil, errors.New("[NewLoginStrategy] hasher is required")
	}
	if limiter == nil {
		limiter = NoopLimiter{}
	}
	dummyHash, err := hasher.Hash(dummyPassword)
	if err != nil {
		return nil, fmt.Errorf("[NewLoginStrategy] dummy hash: %w", err)
	}
	return &LoginStrategy{
		store:     store,
		hasher:    hasher,
		limiter:   limiter,
		bootstrap: bootstrap,
		dummyHash: dummyHash,
	}, nil
}

func (s *LoginStrategy) Execute(ctx context.Context, in LoginInput) Result {
	username := users.NormalizeUsername(in.Username)
	if username == "" || in.Password == "" {
		return fail(autherrors.ErrInvalidCredentials)
	}

	keys := []string{loginUserKey(username)}
	if in.RemoteAddr != "" {
		keys = append(keys, loginAddrKey(in.RemoteAddr))
	}
	for _, key := range keys {
		allowed, err := s.limiter.Attempt(ctx, key)
		if err != nil {
			return internalFailure(StepLogin, err, "login limiter check")
		}
		if !allowed {
			log.Warn().Str("username", username).Str("remoteAddr", in.RemoteAddr).Msg("login rate limited")
			return fail(autherrors.ErrRateLimited)
		}
	}

	user, err := s.store.GetByUsername(ctx, username)
	if errors.Is(err, users.ErrNotFound) && s.bootstrap.matches(username, in.Password) {
		user, err = s.provisionAdmin(ctx, username, in.Password)
	}
	if err != nil {
		if !errors.Is(err, users.ErrNotFound) {
			return internalFailure(StepLogin, err, "login user lookup")
		}
		s.hasher.Compare(in.Password, s.dummyHash)
		return s.rejected(username)
	}

	if !s.hasher.Compare(in.Password, user.PasswordHash) || !user.IsActive {
		return s.rejected(username)
	}

	for _, key := range keys {
		if err := s.limiter.Reset(ctx, key); err != nil {
			log.Err(err).Str("username", username).Msg("failed to reset login limiter")
		}
	}

	data := LoginData{UserID: user.ID, Username: user.Username}
	if !user.Is2FAEnabled {
		return success(StepComplete, data)
	}
	if user.HasSetup2FA {
		return success(StepVerify2FA, data)
	}
	return success(StepSetup2FA, data)
}

func (s *LoginStrategy) rejected(username string) Result {
	log.Info().Str("username", username).Msg("login rejected")
	return fail(autherrors.ErrInvalidCredentials)
}

// provisionAdmin creates the bootstrap admin. A concurrent login may have
// created it first, in which case the stored account is used.
func (s *LoginStrategy) provisionAdmin(ctx context.Context, username, password string) (*users.User, error) {
	hash, err := s.hasher.Hash(password)
	if err != nil {
		return nil, fmt.Errorf("[LoginStrategy provisionAdmin] hash: %w", err)
	}
	admin := &users.User{
		Username:     username,
		PasswordHash: hash,
		IsActive:     true,
		Is2FAEnabled: s.bootstrap.TwoFactorEnabled,
	}
	err = s.store.Create(ctx, admin)
	if errors.Is(err, users.ErrUsernameTaken) {
		return s.store.GetByUsername(ctx, username)
	}
	if err != nil {
		return nil, fmt.Errorf("[LoginStrategy provisionAdmin] create: %w", err)
	}
	log.Info().Str("username", username).Bool("2fa", admin.Is2FAEnabled).Msg("bootstrap admin created")
	return admin, nil
}
