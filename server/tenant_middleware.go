package server

import (
	"context"
	"net/http"
	"strings"

	"github.com/jrsteele09/go-school-gateway/schools"
	"github.com/jrsteele09/go-school-gateway/session"
	"github.com/rs/zerolog"
)

const (
	HeaderSchoolID        = "X-School-Id"
	HeaderSchoolSubdomain = "X-School-Subdomain"
)

type schoolKey struct{}

// SchoolFromContext returns the school resolved for a subdomain request
func SchoolFromContext(ctx context.Context) (*schools.School, bool) {
	school, ok := ctx.Value(schoolKey{}).(*schools.School)
	return school, ok && school != nil
}

// TenantRoutingMiddleware maps the request host onto a school before any handler runs.
//
// School subdomains must resolve to an active school or the browser is sent to the
// login page. On the root domain, a signed-in user landing on "/" is sent to where
// they belong: super admins to their dashboard, everyone else to their school.
func (s *Server) TenantRoutingMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		// Only this middleware may assert which school a request belongs to.
		r.Header.Del(HeaderSchoolID)
		r.Header.Del(HeaderSchoolSubdomain)

		if !tenantRoutingApplies(r.URL.Path) {
			next(w, r)
			return
		}

		logger := zerolog.Ctx(r.Context())
		sessions := s.sessionFor(w, r)

		res, err := s.resolverFor(sessions).Resolve(r.Context(), r.Host)
		if err != nil {
			logger.Info().Err(err).Str("host", r.Host).Msg("tenant resolution failed")
			redirectSuccess(w, r, RouteLogin)
			return
		}

		if res.Root {
			if r.URL.Path == RouteRoot {
				if target, ok := s.rootLanding(r.Context(), sessions); ok {
					redirectSuccess(w, r, target)
					return
				}
			}
			next(w, r)
			return
		}

		if r.URL.Path == RouteRoot {
			redirectSuccess(w, r, RouteDashboard)
			return
		}

		r.Header.Set(HeaderSchoolID, res.School.ID)
		r.Header.Set(HeaderSchoolSubdomain, res.Subdomain)
		ctx := context.WithValue(r.Context(), schoolKey{}, res.School)
		ctx = logger.With().Str("school_id", res.School.ID).Logger().WithContext(ctx)
		next(w, r.WithContext(ctx))
	}
}

// rootLanding picks the redirect for a signed-in user opening the root domain.
func (s *Server) rootLanding(ctx context.Context, sessions *session.Manager) (string, bool) {
	user, ok := sessions.PeekUser(ctx)
	if !ok {
		return "", false
	}
	if user.IsSuperAdmin() {
		return RouteSuperAdmin, true
	}

	school, ok := sessions.CachedSchool(ctx)
	if !ok {
		return "", false
	}
	return s.domains.SchoolURL(s.scheme(), school.Subdomain, RouteDashboard), true
}

func tenantRoutingApplies(path string) bool {
	for _, prefix := range tenantRoutingSkipPrefixes {
		if path == prefix || strings.HasPrefix(path, prefix+"/") {
			return false
		}
	}
	lower := strings.ToLower(path)
	for _, ext := range tenantRoutingSkipExtensions {
		if strings.HasSuffix(lower, ext) {
			return false
		}
	}
	return true
}
