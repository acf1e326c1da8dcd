package server

func (s *Server) initRoutes() {
	// LOGIN
	s.RegisterRouteHandler("GET "+RouteLogin, ChainMiddleware(s.LoginPageHandler(), s.HTMLMiddleware()...))
	s.RegisterRouteFunc("POST "+RouteLogin, s.LoginSubmissionHandler())
	s.RegisterRouteFunc("GET "+RouteLogout, s.LogoutHandler())
	s.RegisterRouteFunc("POST "+RouteLogout, s.LogoutHandler())

	// Dashboards
	s.RegisterRouteHandler("GET "+RouteDashboard, ChainMiddleware(s.DashboardHandler(), s.HTMLMiddleware()...))
	s.RegisterRouteHandler("GET "+RouteSuperAdmin, ChainMiddleware(s.SuperAdminDashboardHandler(), s.HTMLMiddleware()...))

	// API routes
	s.RegisterRouteFunc("GET "+RouteAPISession, s.SessionAPIHandler())
	s.RegisterRouteFunc(RouteAPIBackend, s.BackendProxyHandler())

	s.RegisterRouteFunc("GET "+RouteHealth, s.HealthHandler())
}
