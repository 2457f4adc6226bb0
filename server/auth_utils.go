package server

import (
	"context"
	"encoding/json"
	"errors"
	"mime"
	"net"
	"net/http"
	"net/netip"
	"net/url"
	"strings"

	"github.com/jrsteele09/go-db-admin/auth"
	autherrors "github.com/jrsteele09/go-db-admin/internal/errors"
	"github.com/jrsteele09/go-db-admin/session"
	"github.com/jrsteele09/go-db-admin/users"
	"github.com/rs/zerolog/log"
)

const maxBodyBytes = 1 << 16

// pageForStep is the page a browser is sent to for step.
func pageForStep(step auth.Step) string {
	switch step {
	case auth.StepSetup2FA:
		return RouteSetup2FA
	case auth.StepVerify2FA:
		return RouteVerify2FA
	case auth.StepComplete:
		return "/"
	default:
		return RouteLogin
	}
}

// statusForError maps a step error onto an HTTP status.
func statusForError(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, autherrors.ErrInvalidCredentials),
		errors.Is(err, autherrors.ErrInvalidCode),
		errors.Is(err, autherrors.ErrInvalidOrExpiredToken),
		errors.Is(err, autherrors.ErrSessionRequired):
		return http.StatusUnauthorized
	case errors.Is(err, autherrors.ErrUserNotFound):
		return http.StatusNotFound
	case errors.Is(err, autherrors.ErrAlreadySetUp), errors.Is(err, autherrors.ErrNotSetup):
		return http.StatusConflict
	case errors.Is(err, autherrors.ErrInvalidStep), errors.Is(err, autherrors.ErrBadRequest):
		return http.StatusBadRequest
	case errors.Is(err, autherrors.ErrRateLimited):
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

func failed(err error) auth.Result {
	return auth.Result{Success: false, Error: err.Error(), Err: err}
}

// isFormPost reports whether the request came from an HTML form rather than a JSON client.
func isFormPost(r *http.Request) bool {
	ct, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	return ct == "application/x-www-form-urlencoded" || ct == "multipart/form-data"
}

// decodeInput reads a JSON body, or form values for HTML form posts.
func decodeInput(w http.ResponseWriter, r *http.Request, dst any, formFields map[string]*string) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if isFormPost(r) {
		if err := r.ParseForm(); err != nil {
			return autherrors.Wrapf(autherrors.ErrBadRequest, "parse form: %v", err)
		}
		for field, target := range formFields {
			*target = r.PostFormValue(field)
		}
		return nil
	}
	if r.ContentLength == 0 {
		return nil
	}
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return autherrors.Wrapf(autherrors.ErrBadRequest, "decode json: %v", err)
	}
	return nil
}

// writeResult answers a JSON client with the Result, or sends a form/HTMX
// client on to the next page. failurePage receives the error message.
func writeResult(w http.ResponseWriter, r *http.Request, res auth.Result, successPage, failurePage string) {
	if isFormPost(r) || (isHTMXRequest(r) && successPage != "") {
		if res.Success && successPage != "" {
			redirectSuccess(w, r, successPage)
			return
		}
		if !res.Success && failurePage != "" {
			redirectWithError(w, r, failurePage, res.Error)
			return
		}
	}
	status := http.StatusOK
	if !res.Success {
		status = statusForError(res.Err)
	}
	writeJSON(w, status, res)
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.Err(err).Msg("Failed to write JSON response")
	}
}

// mintSession re-reads the user's live 2FA state and stores it in a fresh
// auth-token. Is2FAVerified is stored per user, so the token only carries it
// when verified is true: the caller's own session proved a code, either in
// the presented token or in this request.
func (s *Server) mintSession(ctx context.Context, w http.ResponseWriter, r *http.Request, userID string, verified bool) (session.Flags, error) {
	u, err := s.store.GetByID(ctx, userID)
	if err != nil {
		return session.Flags{}, err
	}
	status := u.Status()
	status.Is2FAVerified = status.Is2FAVerified && verified
	flags := session.FlagsFromStatus(status)
	token, err := s.codec.Encode(flags)
	if err != nil {
		return session.Flags{}, err
	}
	session.SetTokenCookie(w, r, token, s.codec.TTL())
	return flags, nil
}

// currentFlags returns the caller's session as resolved by the guard.
func currentFlags(r *http.Request) (session.Flags, bool) {
	return session.FromContext(r.Context())
}

// endSession clears the per-login verification and both cookies.
func (s *Server) endSession(w http.ResponseWriter, r *http.Request) {
	if flags, ok := currentFlags(r); ok {
		err := s.store.ClearVerified(r.Context(), flags.UserID)
		if err != nil && !errors.Is(err, users.ErrNotFound) {
			log.Err(err).Str("userId", flags.UserID).Msg("Logout: failed to clear 2FA verification")
		}
		log.Info().Str("userId", flags.UserID).Msg("logged out")
	}
	session.ClearCookies(w, r)
}

// clientIP is the peer address, or when the peer is a trusted proxy, the
// right-most X-Forwarded-For hop that is not itself a trusted proxy.
func (s *Server) clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		host = r.RemoteAddr
	}
	peer, err := netip.ParseAddr(host)
	if err != nil || !s.trustedProxies.Contains(peer) {
		return host
	}

	hops := strings.Split(r.Header.Get("X-Forwarded-For"), ",")
	for i := len(hops) - 1; i >= 0; i-- {
		hop := strings.TrimSpace(hops[i])
		if hop == "" {
			continue
		}
		addr, err := netip.ParseAddr(hop)
		if err != nil || !s.trustedProxies.Contains(addr) {
			return hop
		}
		host = hop
	}
	return host
}

// redirectSuccess helper for htmx-aware success redirects
func redirectSuccess(w http.ResponseWriter, r *http.Request, path string) {
	if isHTMXRequest(r) {
		w.Header().Set("HX-Redirect", path)
		w.WriteHeader(http.StatusNoContent) // 204 - no content, just redirect instruction
		return
	}
	http.Redirect(w, r, path, http.StatusSeeOther)
}

// redirectWithError helper for htmx-aware error redirects
func redirectWithError(w http.ResponseWriter, r *http.Request, path, errorMsg string) {
	fullPath := path + "?error=" + url.QueryEscape(errorMsg)

	if isHTMXRequest(r) {
		w.Header().Set("HX-Redirect", fullPath)
		w.WriteHeader(http.StatusNoContent)
		return
	}
	http.Redirect(w, r, fullPath, http.StatusSeeOther)
}

// isHTMXRequest checks if the request was initiated by HTMX
func isHTMXRequest(r *http.Request) bool {
	return r.Header.Get("HX-Request") == "true"
}
