package server

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/jrsteele09/go-school-gateway/authapi"
	"github.com/jrsteele09/go-school-gateway/backend"
	apperrors "github.com/jrsteele09/go-school-gateway/internal/errors"
	"github.com/jrsteele09/go-school-gateway/session"
	"github.com/jrsteele09/go-school-gateway/users"
	"github.com/rs/zerolog"
)

const (
	msgInvalidCredentials = "Invalid email or password"
	msgMissingCredentials = "Email and password are required"
	msgLoginUnavailable   = "Sign in is temporarily unavailable"
)

// LoginPageData contains data for rendering the login page
type LoginPageData struct {
	AppName    string
	SchoolName string // set when the page is opened on a school subdomain
	Error      string
	Email      string // Preserve email on error
}

// loginResult is the JSON reply to a successful API login
type loginResult struct {
	User     users.User `json:"user"`
	Redirect string     `json:"redirect"`
}

// LoginPageHandler displays the login page (GET /auth/login)
func (s *Server) LoginPageHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		data := LoginPageData{
			AppName: s.config.GetAppName(),
			Error:   r.URL.Query().Get("error"),
			Email:   r.URL.Query().Get("email"),
		}

		// /auth is outside tenant routing, so look the school up here; an unknown
		// school still gets a login page.
		if subdomain := s.domains.ExtractSubdomain(r.Host); subdomain != "" {
			if school, err := s.backend.GetBySubdomain(r.Context(), subdomain); err == nil && school.IsActive {
				data.SchoolName = school.Name
			}
		}

		w.Header().Set("Content-Type", contentTypeHTML)
		if err := s.loginTmpl.Execute(w, data); err != nil {
			zerolog.Ctx(r.Context()).Err(err).Msg("Failed to render login template")
			http.Error(w, "Failed to render login page", http.StatusInternalServerError)
		}
	}
}

// LoginSubmissionHandler processes the login form or JSON submission (POST /auth/login)
func (s *Server) LoginSubmissionHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		logger := zerolog.Ctx(ctx)
		isJSON := wantsJSON(r)

		var req authapi.LoginRequest
		if isJSON {
			if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20)).Decode(&req); err != nil {
				writeJSONError(w, r, http.StatusBadRequest, "invalid request body")
				return
			}
		} else {
			if err := r.ParseForm(); err != nil {
				redirectWithError(w, r, RouteLogin, "Invalid form data")
				return
			}
			req.Email = r.FormValue("email")
			req.Password = r.FormValue("password")
		}

		if err := req.Validate(); err != nil {
			if isJSON {
				writeJSONError(w, r, http.StatusBadRequest, msgMissingCredentials)
				return
			}
			redirectWithError(w, r, RouteLogin, msgMissingCredentials)
			return
		}

		login, err := s.backend.Login(ctx, req.Email, req.Password)
		if err != nil {
			status, msg := loginFailure(err)
			logger.Info().Err(err).Str("email", req.Email).Msg("Login rejected")
			if isJSON {
				writeJSONError(w, r, status, msg)
				return
			}
			redirectWithError(w, r, RouteLogin, msg)
			return
		}

		sessions := s.sessionFor(w, r)
		if err := sessions.Create(ctx, login); err != nil {
			logger.Err(err).Str("user_id", login.User.ID).Msg("Failed to create session")
			if isJSON {
				writeJSONError(w, r, http.StatusInternalServerError, msgLoginUnavailable)
				return
			}
			redirectWithError(w, r, RouteLogin, msgLoginUnavailable)
			return
		}

		target := s.landingAfterLogin(ctx, r, sessions, &login.User)
		logger.Info().Str("user_id", login.User.ID).Str("redirect", target).Msg("User signed in")

		if isJSON {
			writeJSON(w, r, http.StatusOK, loginResult{User: login.User, Redirect: target})
			return
		}
		redirectSuccess(w, r, target)
	}
}

// landingAfterLogin caches the user's school and decides where the browser goes next.
func (s *Server) landingAfterLogin(ctx context.Context, r *http.Request, sessions *session.Manager, user *users.User) string {
	if user.IsSuperAdmin() {
		return RouteSuperAdmin
	}
	if user.SchoolID == "" {
		return RouteDashboard
	}

	school, err := s.backend.GetByID(ctx, user.SchoolID)
	if err != nil || !school.IsActive {
		zerolog.Ctx(ctx).Warn().Err(err).Str("school_id", user.SchoolID).Msg("User's school is unavailable")
		return RouteDashboard
	}
	if err := sessions.CacheSchool(ctx, school); err != nil {
		zerolog.Ctx(ctx).Warn().Err(err).Msg("Failed to cache school after login")
	}

	if strings.EqualFold(s.domains.ExtractSubdomain(r.Host), school.Subdomain) {
		return RouteDashboard
	}
	return s.domains.SchoolURL(s.scheme(), school.Subdomain, RouteDashboard)
}

func loginFailure(err error) (int, string) {
	var statusErr *backend.StatusError
	if apperrors.As(err, &statusErr) {
		switch statusErr.StatusCode {
		case http.StatusBadRequest, http.StatusUnauthorized, http.StatusForbidden:
			return http.StatusUnauthorized, msgInvalidCredentials
		}
	}
	return http.StatusBadGateway, msgLoginUnavailable
}

// LogoutHandler ends the session (GET|POST /auth/logout)
func (s *Server) LogoutHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := s.sessionFor(w, r).Destroy(r.Context()); err != nil {
			zerolog.Ctx(r.Context()).Err(err).Msg("Failed to clear session cookies")
		}
		redirectSuccess(w, r, RouteLogin)
	}
}
