package guard

import (
	"context"
	"encoding/json"
	"net/http"

	autherrors "github.com/jrsteele09/go-db-admin/internal/errors"
	"github.com/jrsteele09/go-db-admin/session"
	"github.com/jrsteele09/go-db-admin/users"
	"github.com/rs/zerolog/log"
)

// LegacyResolver turns a pre-JWT raw token into flags.
type LegacyResolver interface {
	ResolveLegacy(ctx context.Context, token string) (session.Flags, bool)
}

// StoreResolver treats a legacy token as a raw user ID and reads the
// user's live status.
type StoreResolver struct {
	Store users.StatusStore
}

var _ LegacyResolver = StoreResolver{}

func (s StoreResolver) ResolveLegacy(ctx context.Context, token string) (session.Flags, bool) {
	if token == "" {
		return session.Flags{}, false
	}
	u, err := s.Store.GetByID(ctx, token)
	if err != nil || !u.IsActive {
		return session.Flags{}, false
	}
	return session.FlagsFromStatus(u.Status()), true
}

// Guard enforces the routing table on every request. It keeps no state
// between requests.
type Guard struct {
	codec  *session.Codec
	legacy LegacyResolver
}

// Option configures a Guard.
type Option func(*Guard)

// WithLegacyResolver accepts unsigned legacy tokens through r.
func WithLegacyResolver(r LegacyResolver) Option {
	return func(g *Guard) {
		g.legacy = r
	}
}

func New(codec *session.Codec, options ...Option) *Guard {
	g := &Guard{codec: codec}
	for _, opt := range options {
		opt(g)
	}
	return g
}

// Resolution is what the request's cookies say about the caller.
type Resolution struct {
	Flags   *session.Flags // nil without a valid session
	Present bool           // an auth-token cookie was sent
	Legacy  bool           // Flags came from a legacy token
}

// Resolve decodes the auth cookie. Signed tokens are verified by the codec;
// anything else goes to the legacy resolver when one is installed.
func (g *Guard) Resolve(r *http.Request) Resolution {
	c, err := r.Cookie(session.AuthCookieName)
	if err != nil || c.Value == "" {
		return Resolution{}
	}
	res := Resolution{Present: true}

	if session.IsSignedFormat(c.Value) {
		if flags, ok := g.codec.Decode(c.Value); ok {
			res.Flags = &flags
		}
		return res
	}

	if g.legacy != nil {
		if flags, ok := g.legacy.ResolveLegacy(r.Context(), c.Value); ok {
			res.Flags = &flags
			res.Legacy = true
		}
	}
	return res
}

// Middleware redirects requests the routing table rejects and stores the
// caller's flags in the request context for the rest.
func (g *Guard) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		res := g.Resolve(r)
		d := Decide(Input{
			Path:          r.URL.Path,
			Flags:         res.Flags,
			HasTempMarker: hasCookie(r, session.TempMarkerCookieName),
		})

		switch {
		case d.ClearCookies || (res.Present && res.Flags == nil):
			session.ClearCookies(w, r)
		case res.Legacy:
			g.reissue(w, r, *res.Flags)
		}

		if !d.Allow {
			log.Debug().Str("path", r.URL.Path).Str("rule", d.Rule).Str("location", d.Location).Msg("guard redirect")
			writeRedirect(w, r, d.Location)
			return
		}

		if res.Flags != nil {
			r = r.WithContext(session.WithFlags(r.Context(), *res.Flags))
		}
		next.ServeHTTP(w, r)
	})
}

// RequireComplete applies the protected-route rules to API handlers,
// answering 401 instead of redirecting.
func (g *Guard) RequireComplete(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var flags *session.Flags
		if f, ok := session.FromContext(r.Context()); ok {
			flags = &f
		} else if res := g.Resolve(r); res.Flags != nil {
			flags = res.Flags
			r = r.WithContext(session.WithFlags(r.Context(), *flags))
		}

		if d := protectedDecision(flags); !d.Allow {
			log.Debug().Str("path", r.URL.Path).Str("rule", d.Rule).Msg("guard rejected API request")
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusUnauthorized)
			_ = json.NewEncoder(w).Encode(map[string]any{
				"success": false,
				"error":   autherrors.ErrSessionRequired.Error(),
			})
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (g *Guard) reissue(w http.ResponseWriter, r *http.Request, flags session.Flags) {
	token, err := g.codec.Encode(flags)
	if err != nil {
		log.Err(err).Str("userId", flags.UserID).Msg("failed to reissue legacy session token")
		return
	}
	session.SetTokenCookie(w, r, token, g.codec.TTL())
	log.Info().Str("userId", flags.UserID).Msg("legacy session token reissued")
}

func hasCookie(r *http.Request, name string) bool {
	c, err := r.Cookie(name)
	return err == nil && c.Value != ""
}

// writeRedirect is htmx aware
func writeRedirect(w http.ResponseWriter, r *http.Request, path string) {
	if r.Header.Get("HX-Request") == "true" {
		w.Header().Set("HX-Redirect", path)
		w.WriteHeader(http.StatusNoContent)
		return
	}
	http.Redirect(w, r, path, http.StatusSeeOther)
}
