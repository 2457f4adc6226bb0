package server

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/rs/zerolog/log"
)

const (
	green      = "\033[32m"
	blue       = "\033[34m"
	yellow     = "\033[33m"
	gray       = "\033[90m"
	resetColor = "\033[0m"
)

var methodColors = map[string]string{
	"GET":    green,
	"POST":   blue,
	"DELETE": yellow,
}

func (s *Server) initRoutes() {
	// Auth pages
	s.RegisterRouteFunc("GET "+RouteLogin, ChainMiddleware(s.LoginPageHandler(), s.HTMLMiddleWare()...))
	s.RegisterRouteFunc("GET "+RouteSetup2FA, ChainMiddleware(s.Setup2FAPageHandler(), s.HTMLMiddleWare()...))
	s.RegisterRouteFunc("GET "+RouteVerify2FA, ChainMiddleware(s.Verify2FAPageHandler(), s.HTMLMiddleWare()...))
	s.RegisterRouteFunc("GET "+RouteAuthLogout, ChainMiddleware(s.LogoutPageHandler(), s.HTMLMiddleWare()...))
	s.RegisterRouteFunc("POST "+RouteAuthLogout, ChainMiddleware(s.LogoutFormHandler(), s.HTMLMiddleWare()...))

	// Dashboard
	s.RegisterRouteFunc("GET "+RouteIndex, ChainMiddleware(s.DashboardHandler("Overview"), s.HTMLMiddleWare()...))
	s.RegisterRouteFunc("GET "+RouteUsers, ChainMiddleware(s.DashboardHandler("Users"), s.HTMLMiddleWare()...))
	s.RegisterRouteFunc("GET "+RouteRoles, ChainMiddleware(s.DashboardHandler("Roles"), s.HTMLMiddleWare()...))
	s.RegisterRouteFunc("GET "+RouteScreens, ChainMiddleware(s.DashboardHandler("Screens"), s.HTMLMiddleWare()...))
	s.RegisterRouteFunc("GET "+RouteConnections, ChainMiddleware(s.DashboardHandler("Connections"), s.HTMLMiddleWare()...))

	// Auth API
	s.RegisterRouteFunc("POST "+RouteAPILogin, ChainMiddleware(s.LoginHandler(), s.APIMiddleware()...))
	s.RegisterRouteFunc("POST "+RouteAPISetup2FA, ChainMiddleware(s.Setup2FAHandler(), s.APIMiddleware()...))
	s.RegisterRouteFunc("POST "+RouteAPIVerify2FA, ChainMiddleware(s.Verify2FAHandler(), s.APIMiddleware()...))
	s.RegisterRouteFunc("GET "+RouteAPICheckStatus, ChainMiddleware(s.Check2FAStatusHandler(), s.APIMiddleware()...))
	s.RegisterRouteFunc("POST "+RouteAPILogout, ChainMiddleware(s.LogoutHandler(), s.APIMiddleware()...))
	s.RegisterRouteFunc("OPTIONS /api/", ChainMiddleware(s.NotFoundHandler(), s.APIMiddleware()...))
	s.RegisterRouteFunc("GET "+RouteAPIHealth, ChainMiddleware(s.HealthHandler(), s.APIMiddleware()...))

	// Admin API, only for fully authenticated callers
	s.RegisterRouteFunc("POST "+RouteAPIUserTwoFactor, ChainMiddleware(s.SetTwoFactorEnabledHandler(), s.APIMiddleware(s.RequireComplete)...))
	s.RegisterRouteFunc("DELETE "+RouteAPIUserTwoFactor, ChainMiddleware(s.ResetTwoFactorHandler(), s.APIMiddleware(s.RequireComplete)...))

	s.RegisterRouteFunc("GET "+RouteStatic, ChainMiddleware(s.serveFileHandler(), s.HTMLMiddleWare()...))
	s.RegisterRouteFunc("/", ChainMiddleware(s.NotFoundHandler(), s.HTMLMiddleWare()...))
}

func (s *Server) serveFileHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		fileName := r.PathValue("file")
		if fileName == "" {
			http.Error(w, "404 - Page Not Found", http.StatusNotFound)
			return
		}
		if err := StreamFile(w, r, fileName); err != nil {
			log.Warn().Err(err).Str("file", fileName).Msg("static file not found")
			http.Error(w, "404 - Page Not Found", http.StatusNotFound)
		}
	}
}

func (s *Server) logRoutes() {
	if s.env != "DEV" {
		return // Skip logging in non-development environments
	}
	for _, route := range s.routes {
		parts := strings.SplitN(route, " ", 2)

		if len(parts) > 1 {
			logRoute(parts[0], parts[1])
		} else {
			logRoute("", parts[0])
		}
	}
}

func logRoute(method, path string) {
	paddedMethod := fmt.Sprintf(" %-7s", method)
	color, ok := methodColors[method]
	if !ok {
		color = gray
	}
	log.Info().Msgf("[%s] %s", color+paddedMethod+resetColor, path)
}
