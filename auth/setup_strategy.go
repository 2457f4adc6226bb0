package auth

import (
	"context"
	"errors"

	autherrors "github.com/jrsteele09/go-db-admin/internal/errors"
	"github.com/jrsteele09/go-db-admin/twofactor"
	"github.com/jrsteele09/go-db-admin/users"
	"github.com/rs/zerolog/log"
)

// Setup2FAStrategy issues a provisional TOTP secret. The committed secret and
// HasSetup2FA are left alone until Verify2FA confirms a code.
type Setup2FAStrategy struct {
	store    users.StatusStore
	provider twofactor.Provider
}

func NewSetup2FAStrategy(store users.StatusStore, provider twofactor.Provider) (*Setup2FAStrategy, error) {
	if store == nil {
		return nil, errors.New("[NewSetup2FAStrategy] store is required")
	}
	if provider == nil {
		return nil, errors.New("[NewSetup2FAStrategy] provider is required")
	}
	return &Setup2FAStrategy{store: store, provider: provider}, nil
}

func (s *Setup2FAStrategy) Execute(ctx context.Context, in Setup2FAInput) Result {
	user, err := s.store.GetByID(ctx, in.UserID)
	if err != nil {
		if errors.Is(err, users.ErrNotFound) {
			return fail(autherrors.ErrUserNotFound)
		}
		return internalFailure(StepSetup2FA, err, "setup user lookup")
	}

	if user.HasSetup2FA && user.Secret2FA != "" {
		return fail(autherrors.ErrAlreadySetUp)
	}

	enrollment, err := s.provider.Generate(user.Username)
	if err != nil {
		return internalFailure(StepSetup2FA, err, "generate 2FA secret")
	}
	if err := s.store.SetTempSecret(ctx, user.ID, enrollment.Secret); err != nil {
		return internalFailure(StepSetup2FA, err, "store temporary 2FA secret")
	}

	log.Info().Str("userId", user.ID).Msg("2FA enrollment started")
	return success(StepSetup2FA, SetupData{
		QRCode: enrollment.QRCode,
		Secret: enrollment.Secret,
		URL:    enrollment.URL,
	})
}
