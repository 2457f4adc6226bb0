package auth

import (
	"context"
	"errors"

	autherrors "github.com/jrsteele09/go-db-admin/internal/errors"
	"github.com/jrsteele09/go-db-admin/users"
	"github.com/rs/zerolog/log"
)

// Manager dispatches a step to its strategy.
type Manager struct {
	store  users.StatusStore
	login  *LoginStrategy
	setup  *Setup2FAStrategy
	verify *Verify2FAStrategy
}

func NewManager(store users.StatusStore, login *LoginStrategy, setup *Setup2FAStrategy, verify *Verify2FAStrategy) (*Manager, error) {
	if store == nil {
		return nil, errors.New("[NewManager] store is required")
	}
	if login == nil {
		return nil, errors.New("[NewManager] login strategy is required")
	}
	if setup == nil {
		return nil, errors.New("[NewManager] setup strategy is required")
	}
	if verify == nil {
		return nil, errors.New("[NewManager] verify strategy is required")
	}
	return &Manager{store: store, login: login, setup: setup, verify: verify}, nil
}

// ExecuteStep runs step with data, which must be the step's input type (value
// or pointer). Unknown steps, StepComplete and mismatched payloads fail with
// ErrInvalidStep.
func (m *Manager) ExecuteStep(ctx context.Context, step Step, data any) Result {
	switch step {
	case StepLogin:
		switch in := data.(type) {
		case LoginInput:
			return m.login.Execute(ctx, in)
		case *LoginInput:
			if in != nil {
				return m.login.Execute(ctx, *in)
			}
		}
	case StepSetup2FA:
		switch in := data.(type) {
		case Setup2FAInput:
			return m.setup.Execute(ctx, in)
		case *Setup2FAInput:
			if in != nil {
				return m.setup.Execute(ctx, *in)
			}
		}
	case StepVerify2FA:
		switch in := data.(type) {
		case Verify2FAInput:
			return m.verify.Execute(ctx, in)
		case *Verify2FAInput:
			if in != nil {
				return m.verify.Execute(ctx, *in)
			}
		}
	}
	return fail(autherrors.ErrInvalidStep)
}

// DetermineInitialStep is where a user with no live session progress resumes.
// It reads the store and never writes.
func (m *Manager) DetermineInitialStep(ctx context.Context, userID string) Step {
	user, err := m.store.GetByID(ctx, userID)
	if err != nil {
		if !errors.Is(err, users.ErrNotFound) {
			log.Err(err).Str("userId", userID).Msg("DetermineInitialStep: user lookup failed")
		}
		return StepLogin
	}
	if !user.Is2FAEnabled {
		return StepComplete
	}
	if user.HasSetup2FA {
		return StepVerify2FA
	}
	return StepSetup2FA
}
