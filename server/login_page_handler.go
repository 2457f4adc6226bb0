package server

import (
	"errors"
	"html/template"
	"net/http"

	"github.com/jrsteele09/go-db-admin/auth"
	autherrors "github.com/jrsteele09/go-db-admin/internal/errors"
	"github.com/rs/zerolog/log"
)

type pageData struct {
	AppName  string
	Title    string
	Error    string
	Username string
	Section  string
	Sections []navLink

	QRCode template.URL
	Secret string
}

type navLink struct {
	Name string
	Path string
}

var dashboardSections = []navLink{
	{"Overview", "/"},
	{"Users", RouteUsers},
	{"Roles", RouteRoles},
	{"Screens", RouteScreens},
	{"Connections", RouteConnections},
}

func (s *Server) newPageData(r *http.Request, title string) pageData {
	d := pageData{
		AppName: s.config.GetAppName(),
		Title:   title,
		Error:   r.URL.Query().Get("error"),
	}
	if flags, ok := currentFlags(r); ok {
		d.Username = flags.Username
	}
	return d
}

func (s *Server) render(w http.ResponseWriter, name string, data pageData) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := s.pages.ExecuteTemplate(w, name, data); err != nil {
		log.Err(err).Str("template", name).Msg("Failed to render template")
		http.Error(w, "500 - Internal Server Error", http.StatusInternalServerError)
	}
}

func (s *Server) LoginPageHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.render(w, "login.html", s.newPageData(r, "Sign in"))
	}
}

// Setup2FAPageHandler starts an enrollment and shows the QR code. Users who
// already have a committed secret are sent to verification instead.
func (s *Server) Setup2FAPageHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		flags, ok := currentFlags(r)
		if !ok {
			redirectSuccess(w, r, RouteLogin)
			return
		}

		res := s.runSetup(w, r, flags)
		if !res.Success {
			if errors.Is(res.Err, autherrors.ErrAlreadySetUp) {
				redirectSuccess(w, r, RouteVerify2FA)
				return
			}
			redirectWithError(w, r, RouteLogin, res.Error)
			return
		}

		setup := res.Data.(auth.SetupData)
		data := s.newPageData(r, "Set up two-factor authentication")
		data.QRCode = template.URL(setup.QRCode)
		data.Secret = setup.Secret
		s.render(w, "setup.html", data)
	}
}

func (s *Server) Verify2FAPageHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.render(w, "verify.html", s.newPageData(r, "Two-factor verification"))
	}
}

// LogoutPageHandler only asks for confirmation; the sign-out form posts to LogoutFormHandler.
func (s *Server) LogoutPageHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.render(w, "logout.html", s.newPageData(r, "Sign out"))
	}
}

func (s *Server) LogoutFormHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.endSession(w, r)
		redirectSuccess(w, r, RouteLogin)
	}
}

// DashboardHandler renders a placeholder page for one dashboard section.
func (s *Server) DashboardHandler(section string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		data := s.newPageData(r, section)
		data.Section = section
		data.Sections = dashboardSections
		s.render(w, "dashboard.html", data)
	}
}
