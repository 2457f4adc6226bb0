package server

import (
	"net/http"

	"github.com/jrsteele09/go-db-admin/auth"
	autherrors "github.com/jrsteele09/go-db-admin/internal/errors"
	"github.com/jrsteele09/go-db-admin/session"
	"github.com/rs/zerolog/log"
)

// statusData is the body of a successful check-2fa-status call.
type statusData struct {
	Status      session.Flags `json:"status"`
	InitialStep auth.Step     `json:"initialStep"`
}

// LoginHandler checks credentials and mints a session carrying the user's 2FA state.
func (s *Server) LoginHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var in auth.LoginInput
		if err := decodeInput(w, r, &in, map[string]*string{"username": &in.Username, "password": &in.Password}); err != nil {
			writeResult(w, r, failed(autherrors.ErrBadRequest), "", RouteLogin)
			return
		}
		in.RemoteAddr = s.clientIP(r)

		res := s.manager.ExecuteStep(r.Context(), auth.StepLogin, in)
		if !res.Success {
			writeResult(w, r, res, "", RouteLogin)
			return
		}
		data := res.Data.(auth.LoginData)

		// Verification is per login: a previous session's code does not carry over.
		if res.NextStep != auth.StepComplete {
			if err := s.store.ClearVerified(r.Context(), data.UserID); err != nil {
				log.Err(err).Str("userId", data.UserID).Msg("Login: failed to reset 2FA verification")
				writeResult(w, r, failed(autherrors.ErrInternal), "", RouteLogin)
				return
			}
		}

		if _, err := s.mintSession(r.Context(), w, r, data.UserID, false); err != nil {
			log.Err(err).Str("userId", data.UserID).Msg("Login: failed to mint session")
			writeResult(w, r, failed(autherrors.ErrInternal), "", RouteLogin)
			return
		}
		session.ClearTempMarker(w, r)

		log.Info().Str("userId", data.UserID).Str("nextStep", res.NextStep.String()).Msg("login succeeded")
		writeResult(w, r, res, pageForStep(res.NextStep), RouteLogin)
	}
}

// Setup2FAHandler issues a provisional secret for the session's user.
func (s *Server) Setup2FAHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		flags, ok := currentFlags(r)
		if !ok {
			writeResult(w, r, failed(autherrors.ErrSessionRequired), "", "")
			return
		}

		res := s.runSetup(w, r, flags)
		writeResult(w, r, res, "", "")
	}
}

// runSetup executes Setup2FA for the session's user and, on success, marks
// the pending enrollment in both cookies.
func (s *Server) runSetup(w http.ResponseWriter, r *http.Request, flags session.Flags) auth.Result {
	res := s.manager.ExecuteStep(r.Context(), auth.StepSetup2FA, auth.Setup2FAInput{UserID: flags.UserID})
	if !res.Success {
		return res
	}
	if _, err := s.mintSession(r.Context(), w, r, flags.UserID, flags.Is2FAVerified); err != nil {
		log.Err(err).Str("userId", flags.UserID).Msg("Setup2FA: failed to mint session")
		return failed(autherrors.ErrInternal)
	}
	session.SetTempMarker(w, r, s.codec.TTL())
	return res
}

// Verify2FAHandler checks a code for the session's user.
func (s *Server) Verify2FAHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		flags, ok := currentFlags(r)
		if !ok {
			writeResult(w, r, failed(autherrors.ErrSessionRequired), "", RouteLogin)
			return
		}

		var in auth.Verify2FAInput
		if err := decodeInput(w, r, &in, map[string]*string{"code": &in.Code}); err != nil {
			writeResult(w, r, failed(autherrors.ErrBadRequest), "", RouteVerify2FA)
			return
		}
		in.UserID = flags.UserID

		res := s.manager.ExecuteStep(r.Context(), auth.StepVerify2FA, in)
		if !res.Success {
			writeResult(w, r, res, "", RouteVerify2FA)
			return
		}

		// The code was just proven by this session.
		if _, err := s.mintSession(r.Context(), w, r, flags.UserID, true); err != nil {
			log.Err(err).Str("userId", flags.UserID).Msg("Verify2FA: failed to mint session")
			writeResult(w, r, failed(autherrors.ErrInternal), "", RouteVerify2FA)
			return
		}
		session.ClearTempMarker(w, r)
		writeResult(w, r, res, pageForStep(res.NextStep), RouteVerify2FA)
	}
}

// Check2FAStatusHandler reports the live 2FA state and refreshes the session
// with it. Verification never rises above what the presented token carries.
func (s *Server) Check2FAStatusHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		flags, ok := currentFlags(r)
		if !ok {
			writeResult(w, r, failed(autherrors.ErrSessionRequired), "", "")
			return
		}

		live, err := s.mintSession(r.Context(), w, r, flags.UserID, flags.Is2FAVerified)
		if err != nil {
			session.ClearCookies(w, r)
			writeResult(w, r, failed(autherrors.ErrSessionRequired), "", "")
			return
		}

		initial := s.manager.DetermineInitialStep(r.Context(), flags.UserID)
		next := initial
		if live.Complete() {
			next = auth.StepComplete
		}
		writeResult(w, r, auth.Result{
			Success:  true,
			NextStep: next,
			Data:     statusData{Status: live, InitialStep: initial},
		}, "", "")
	}
}

func (s *Server) LogoutHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.endSession(w, r)
		writeResult(w, r, auth.Result{Success: true, NextStep: auth.StepLogin}, RouteLogin, "")
	}
}

func (s *Server) HealthHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}

func (s *Server) NotFoundHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "404 - Page Not Found", http.StatusNotFound)
	}
}
