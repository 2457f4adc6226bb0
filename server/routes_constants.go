package server

import "github.com/jrsteele09/go-db-admin/guard"

// Route path constants
// All application routes are defined here to ensure consistency and prevent typos
const (
	// Auth pages
	RouteLogin      = guard.LoginPath
	RouteSetup2FA   = guard.SetupPath
	RouteVerify2FA  = guard.VerifyPath
	RouteAuthLogout = guard.LogoutPath

	// Dashboard pages (protected)
	RouteIndex       = "/{$}"
	RouteUsers       = "/users"
	RouteRoles       = "/roles"
	RouteScreens     = "/screens"
	RouteConnections = "/connections"

	// Auth API
	RouteAPILogin       = "/api/auth/login"
	RouteAPISetup2FA    = "/api/auth/setup-2fa"
	RouteAPIVerify2FA   = "/api/auth/verify-2fa"
	RouteAPICheckStatus = "/api/auth/check-2fa-status"
	RouteAPILogout      = "/api/auth/logout"

	// Admin API
	RouteAPIUserTwoFactor = "/api/users/{id}/2fa"

	RouteAPIHealth = "/api/health"

	// Static Asset Routes (patterns)
	RouteStatic = "/static/{file}"
)
