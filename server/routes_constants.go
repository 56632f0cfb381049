package server

// Route path constants
// All application routes are defined here to ensure consistency and prevent typos
const (
	RouteStatus       = "/{$}"
	RouteAuthStart    = "/auth/start"
	RouteAuthCallback = "/auth/callback"
	RouteAuthSession  = "/auth/session"
)
