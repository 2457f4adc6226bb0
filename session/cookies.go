package session

import (
	"net/http"
	"time"
)

const (
	// AuthCookieName holds the signed session token.
	AuthCookieName = "auth-token"
	// TempMarkerCookieName is present while a 2FA enrollment is pending.
	TempMarkerCookieName = "temp-2fa-secret"
)

// IsSecureRequest reports whether r arrived over HTTPS, directly or via a proxy.
func IsSecureRequest(r *http.Request) bool {
	if r.TLS != nil {
		return true
	}
	return r.Header.Get("X-Forwarded-Proto") == "https"
}

// SetTokenCookie stores token in the auth cookie for ttl.
func SetTokenCookie(w http.ResponseWriter, r *http.Request, token string, ttl time.Duration) {
	http.SetCookie(w, &http.Cookie{
		Name:     AuthCookieName,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		Secure:   IsSecureRequest(r),
		SameSite: http.SameSiteLaxMode,
		MaxAge:   int(ttl.Seconds()),
	})
}

// SetTempMarker flags a pending enrollment for the edge guard.
func SetTempMarker(w http.ResponseWriter, r *http.Request, ttl time.Duration) {
	http.SetCookie(w, &http.Cookie{
		Name:     TempMarkerCookieName,
		Value:    "1",
		Path:     "/",
		HttpOnly: true,
		Secure:   IsSecureRequest(r),
		SameSite: http.SameSiteLaxMode,
		MaxAge:   int(ttl.Seconds()),
	})
}

// ClearTempMarker removes the pending enrollment marker.
func ClearTempMarker(w http.ResponseWriter, r *http.Request) {
	expire(w, r, TempMarkerCookieName)
}

// ClearCookies removes both session cookies.
func ClearCookies(w http.ResponseWriter, r *http.Request) {
	expire(w, r, AuthCookieName)
	expire(w, r, TempMarkerCookieName)
}

func expire(w http.ResponseWriter, r *http.Request, name string) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		Secure:   IsSecureRequest(r),
		SameSite: http.SameSiteLaxMode,
		MaxAge:   -1,
	})
}
