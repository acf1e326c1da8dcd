package server

// Route path constants
// All gateway routes are defined here to keep redirects and registrations in step
const (
	RouteRoot = "/"

	// Auth Routes - Login & Logout
	RouteLogin  = "/auth/login"
	RouteLogout = "/auth/logout"

	// Dashboard Routes
	RouteDashboard  = "/dashboard"
	RouteSuperAdmin = "/dashboard/super-admin"

	// API Routes
	RouteAPISession = "/api/session"
	RouteAPIBackend = "/api/backend/{path...}"

	RouteHealth = "/healthz"
)

// Path prefixes the tenant routing middleware leaves alone. Health checks must
// answer without reaching the backend.
var tenantRoutingSkipPrefixes = []string{"/api", "/_next", "/auth", RouteHealth}

// Static image extensions the tenant routing middleware leaves alone
var tenantRoutingSkipExtensions = []string{".svg", ".png", ".jpg", ".jpeg", ".gif", ".webp", ".ico"}
