package server

import (
	"errors"
	"fmt"
	"html/template"
	"net/http"

	"github.com/jrsteele09/go-db-admin/auth"
	"github.com/jrsteele09/go-db-admin/guard"
	"github.com/jrsteele09/go-db-admin/internal/config"
	"github.com/jrsteele09/go-db-admin/session"
	"github.com/jrsteele09/go-db-admin/users"
)

// Deps are the collaborators the HTTP layer drives.
type Deps struct {
	Store   users.StatusStore
	Manager *auth.Manager
	Codec   *session.Codec
	Guard   *guard.Guard
}

type Server struct {
	env     string // Environment (e.g., "DEV", "PROD")
	mux     *http.ServeMux
	handler http.Handler
	routes  []string
	config  config.Config
	store   users.StatusStore
	manager *auth.Manager
	codec   *session.Codec
	guard   *guard.Guard
	pages   *template.Template

	trustedProxies config.TrustedProxies
}

func New(config config.Config, deps Deps) (*Server, error) {
	if deps.Store == nil {
		return nil, errors.New("[Server New] store is required")
	}
	if deps.Manager == nil {
		return nil, errors.New("[Server New] auth manager is required")
	}
	if deps.Codec == nil {
		return nil, errors.New("[Server New] session codec is required")
	}
	if deps.Guard == nil {
		return nil, errors.New("[Server New] guard is required")
	}

	pages, err := ParseTemplates()
	if err != nil {
		return nil, fmt.Errorf("[Server New] failed to parse templates: %w", err)
	}

	s := &Server{
		env:     config.GetEnv(),
		mux:     http.NewServeMux(),
		config:  config,
		store:   deps.Store,
		manager: deps.Manager,
		codec:   deps.Codec,
		guard:   deps.Guard,
		pages:   pages,

		trustedProxies: config.GetTrustedProxies(),
	}

	s.initRoutes()
	s.logRoutes()
	s.handler = s.guard.Middleware(s.mux)

	return s, nil
}

// NewGuard builds the edge guard. Legacy raw-ID tokens are accepted only when
// LEGACY_TOKENS_ENABLED is set.
func NewGuard(c config.SecurityConfig, codec *session.Codec, store users.StatusStore) *guard.Guard {
	var options []guard.Option
	if c.GetLegacyTokensEnabled() {
		options = append(options, guard.WithLegacyResolver(guard.StoreResolver{Store: store}))
	}
	return guard.New(codec, options...)
}

// ServeHTTP runs every request through the edge guard before routing it.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.handler.ServeHTTP(w, r)
}

func (s *Server) RegisterRouteHandler(pattern string, handler http.Handler) {
	s.routes = append(s.routes, pattern)
	s.mux.Handle(pattern, handler)
}

func (s *Server) RegisterRouteFunc(pattern string, handler func(http.ResponseWriter, *http.Request)) {
	s.routes = append(s.routes, pattern)
	s.mux.HandleFunc(pattern, handler)
}
