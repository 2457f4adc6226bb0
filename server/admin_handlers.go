package server

import (
	"errors"
	"net/http"

	"github.com/jrsteele09/go-db-admin/auth"
	autherrors "github.com/jrsteele09/go-db-admin/internal/errors"
	"github.com/jrsteele09/go-db-admin/users"
	"github.com/rs/zerolog/log"
)

type twoFactorToggle struct {
	Enabled *bool `json:"enabled"`
}

// SetTwoFactorEnabledHandler turns the 2FA requirement on or off for a user.
func (s *Server) SetTwoFactorEnabledHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body twoFactorToggle
		if err := decodeInput(w, r, &body, nil); err != nil || body.Enabled == nil {
			writeResult(w, r, failed(autherrors.ErrBadRequest), "", "")
			return
		}
		userID := r.PathValue("id")

		err := s.store.SetTwoFactorEnabled(r.Context(), userID, *body.Enabled)
		if res, done := s.adminOutcome(w, r, userID, err); done {
			writeResult(w, r, res, "", "")
			return
		}
		log.Info().Str("userId", userID).Bool("enabled", *body.Enabled).Msg("2FA requirement changed")
		writeResult(w, r, auth.Result{Success: true}, "", "")
	}
}

// ResetTwoFactorHandler drops a user's enrollment so they set up 2FA again.
func (s *Server) ResetTwoFactorHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := r.PathValue("id")

		err := s.store.ResetTwoFactor(r.Context(), userID)
		if res, done := s.adminOutcome(w, r, userID, err); done {
			writeResult(w, r, res, "", "")
			return
		}
		log.Info().Str("userId", userID).Msg("2FA enrollment reset")
		writeResult(w, r, auth.Result{Success: true}, "", "")
	}
}

// adminOutcome maps a store error to a failed Result. When the caller changed
// their own account the session is re-minted so the guard sees the new state.
func (s *Server) adminOutcome(w http.ResponseWriter, r *http.Request, userID string, err error) (auth.Result, bool) {
	switch {
	case errors.Is(err, users.ErrNotFound):
		return failed(autherrors.ErrUserNotFound), true
	case err != nil:
		log.Err(err).Str("userId", userID).Msg("admin 2FA update failed")
		return failed(autherrors.ErrInternal), true
	}
	if flags, ok := currentFlags(r); ok && flags.UserID == userID {
		if _, err := s.mintSession(r.Context(), w, r, userID, flags.Is2FAVerified); err != nil {
			log.Err(err).Str("userId", userID).Msg("failed to refresh own session")
		}
	}
	return auth.Result{}, false
}
