package server

import (
	"net/http"

	"github.com/jrsteele09/go-school-gateway/schools"
	"github.com/jrsteele09/go-school-gateway/users"
	"github.com/rs/zerolog"
)

// DashboardData is the payload behind the dashboard pages
type DashboardData struct {
	User   *users.User     `json:"user"`
	School *schools.School `json:"school,omitempty"`
	State  string          `json:"state,omitempty"`
}

// DashboardHandler serves the signed-in user's dashboard (GET /dashboard)
func (s *Server) DashboardHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		sessions := s.sessionFor(w, r)

		user, ok := sessions.GetCurrentUser(ctx)
		if !ok {
			redirectSuccess(w, r, RouteLogin)
			return
		}

		school, onSubdomain := SchoolFromContext(ctx)
		if !onSubdomain {
			school, _ = sessions.CachedSchool(ctx)
		}
		if onSubdomain && !user.BelongsTo(school.ID) {
			zerolog.Ctx(ctx).Warn().Str("user_id", user.ID).Str("school_id", school.ID).Msg("User opened another school's dashboard")
			writeJSONError(w, r, http.StatusForbidden, "this account does not belong to this school")
			return
		}

		writeJSON(w, r, http.StatusOK, DashboardData{User: user, School: school})
	}
}

// SuperAdminDashboardHandler is the platform dashboard (GET /dashboard/super-admin).
// The session is verified with the backend before anything is shown.
func (s *Server) SuperAdminDashboardHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, err := s.sessionFor(w, r).ValidateSession(r.Context())
		if err != nil {
			zerolog.Ctx(r.Context()).Info().Err(err).Msg("Super admin session rejected")
			redirectWithError(w, r, RouteLogin, "Please sign in again")
			return
		}
		if !user.IsSuperAdmin() {
			redirectSuccess(w, r, RouteDashboard)
			return
		}
		writeJSON(w, r, http.StatusOK, DashboardData{User: user})
	}
}

// SessionAPIHandler reports the current session (GET /api/session)
func (s *Server) SessionAPIHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		sessions := s.sessionFor(w, r)

		user, ok := sessions.GetCurrentUser(ctx)
		if !ok {
			writeJSONError(w, r, http.StatusUnauthorized, "not signed in")
			return
		}
		school, _ := sessions.CachedSchool(ctx)
		writeJSON(w, r, http.StatusOK, DashboardData{
			User:   user,
			School: school,
			State:  sessions.State(ctx).String(),
		})
	}
}

func (s *Server) HealthHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, r, http.StatusOK, map[string]string{"status": "ok"})
	}
}
