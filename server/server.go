package server

import (
	"fmt"
	"html/template"
	"net/http"
	"strings"

	"github.com/jrsteele09/go-school-gateway/backend"
	"github.com/jrsteele09/go-school-gateway/internal/config"
	"github.com/jrsteele09/go-school-gateway/session"
	"github.com/jrsteele09/go-school-gateway/tenants"
	"github.com/rs/zerolog/log"
)

type Server struct {
	env       string // Environment (e.g., "DEV", "PROD")
	mux       *http.ServeMux
	handler   http.HandlerFunc
	routes    []string
	config    config.Config
	backend   *backend.Client
	domains   tenants.Domains
	loginTmpl *template.Template
}

func New(config config.Config, client *backend.Client) (*Server, error) {
	loginTmpl, err := ParseTemplate("login.html")
	if err != nil {
		return nil, fmt.Errorf("[Server New] failed to parse login template: %w", err)
	}

	s := &Server{
		env:       config.GetEnv(),
		mux:       http.NewServeMux(),
		config:    config,
		backend:   client,
		domains:   tenants.DomainsFromConfig(config),
		loginTmpl: loginTmpl,
	}

	s.initRoutes()
	s.logRoutes()

	// Every request passes tenant routing, including ones the mux will 404.
	s.handler = ChainMiddleware(s.mux.ServeHTTP, s.GlobalMiddleware()...)
	return s, nil
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.handler(w, r)
}

func (s *Server) RegisterRouteHandler(pattern string, handler http.Handler) {
	s.routes = append(s.routes, pattern)
	s.mux.Handle(pattern, handler)
}

func (s *Server) RegisterRouteFunc(pattern string, handler func(http.ResponseWriter, *http.Request)) {
	s.routes = append(s.routes, pattern)
	s.mux.HandleFunc(pattern, handler)
}

// sessionFor builds the session manager for one request. The manager and its
// cookie jar live only as long as the request.
func (s *Server) sessionFor(w http.ResponseWriter, r *http.Request) *session.Manager {
	jar := session.NewCookieJar(w, r, session.CookieOptions{
		Domain: s.config.GetCookieDomain(),
		Secure: s.config.IsProduction(),
	})
	return session.NewManager(jar, s.backend, session.OptionsFromConfig(s.config))
}

func (s *Server) resolverFor(sessions *session.Manager) *tenants.Resolver {
	return tenants.NewResolver(s.domains, s.backend, sessions)
}

// scheme used for absolute redirects between the root domain and school subdomains
func (s *Server) scheme() string {
	if s.config.IsProduction() {
		return "https"
	}
	return "http"
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
	var displayMethod string
	paddedMethod := fmt.Sprintf(" %-7s", method)
	if color, ok := methodColors[method]; ok {
		displayMethod = color + paddedMethod + ResetColor
	} else {
		displayMethod = Gray + paddedMethod + ResetColor
	}
	log.Debug().Msgf("[%-19s] %s", displayMethod, path)
}
