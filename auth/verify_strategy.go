package auth

import (
	"context"
	"errors"
	"strings"
	"time"

	autherrors "github.com/jrsteele09/go-db-admin/internal/errors"
	"github.com/jrsteele09/go-db-admin/twofactor"
	"github.com/jrsteele09/go-db-admin/users"
	"github.com/rs/zerolog/log"
)

// Verify2FAStrategy checks a one-time code. A pending provisional secret takes
// precedence over the committed one: a match confirms enrollment.
type Verify2FAStrategy struct {
	store    users.StatusStore
	provider twofactor.Provider
	limiter  AttemptLimiter
	nowTime  func() time.Time
}

// VerifyOption configures a Verify2FAStrategy.
type VerifyOption func(*Verify2FAStrategy)

// WithNowTime sets the clock recorded as LastLoginAt (primarily for testing).
func WithNowTime(nowFunc func() time.Time) VerifyOption {
	return func(s *Verify2FAStrategy) {
		s.nowTime = nowFunc
	}
}

// NewVerify2FAStrategy builds the verification step. A nil limiter disables throttling.
func NewVerify2FAStrategy(store users.StatusStore, provider twofactor.Provider, limiter AttemptLimiter, options ...VerifyOption) (*Verify2FAStrategy, error) {
	if store == nil {
		return nil, errors.New("[NewVerify2FAStrategy] store is required")
	}
	if provider == nil {
		return nil, errors.New("[NewVerify2FAStrategy] provider is required")
	}
	if limiter == nil {
		limiter = NoopLimiter{}
	}
	s := &Verify2FAStrategy{
		store:    store,
		provider: provider,
		limiter:  limiter,
		nowTime:  time.Now,
	}
	for _, opt := range options {
		opt(s)
	}
	return s, nil
}

func (s *Verify2FAStrategy) Execute(ctx context.Context, in Verify2FAInput) Result {
	user, err := s.store.GetByID(ctx, in.UserID)
	if err != nil {
		if errors.Is(err, users.ErrNotFound) {
			return fail(autherrors.ErrUserNotFound)
		}
		return internalFailure(StepVerify2FA, err, "verify user lookup")
	}

	status := user.Status()
	if !status.HasAnySecret() {
		return fail(autherrors.ErrNotSetup)
	}

	key := totpLimiterKey(user.ID)
	allowed, err := s.limiter.Attempt(ctx, key)
	if err != nil {
		return internalFailure(StepVerify2FA, err, "2FA limiter check")
	}
	if !allowed {
		log.Warn().Str("userId", user.ID).Msg("2FA verification rate limited")
		return fail(autherrors.ErrRateLimited)
	}

	code := normalizeCode(in.Code)

	if status.TempSecret2FA != "" {
		if !s.provider.Validate(code, status.TempSecret2FA) {
			return s.rejected(user.ID)
		}
		err := s.store.PromoteTempSecret(ctx, user.ID, status.TempSecret2FA, s.nowTime())
		if errors.Is(err, users.ErrTempSecretChanged) {
			log.Info().Str("userId", user.ID).Msg("2FA enrollment superseded by a newer secret")
			return fail(autherrors.ErrInvalidCode)
		}
		if err != nil {
			return internalFailure(StepVerify2FA, err, "promote 2FA secret")
		}
		log.Info().Str("userId", user.ID).Msg("2FA enrollment confirmed")
		return s.verified(ctx, key, user.ID)
	}

	if !s.provider.Validate(code, status.Secret2FA) {
		return s.rejected(user.ID)
	}
	if err := s.store.MarkVerified(ctx, user.ID, s.nowTime()); err != nil {
		return internalFailure(StepVerify2FA, err, "mark 2FA verified")
	}
	return s.verified(ctx, key, user.ID)
}

func (s *Verify2FAStrategy) verified(ctx context.Context, key, userID string) Result {
	if err := s.limiter.Reset(ctx, key); err != nil {
		log.Err(err).Str("userId", userID).Msg("failed to reset 2FA limiter")
	}
	return success(StepComplete, nil)
}

func (s *Verify2FAStrategy) rejected(userID string) Result {
	log.Info().Str("userId", userID).Msg("2FA code rejected")
	return fail(autherrors.ErrInvalidCode)
}

// normalizeCode strips the separators users commonly type into a code.
func normalizeCode(code string) string {
	return strings.NewReplacer(" ", "", "-", "").Replace(code)
}
