package server

import "net/http"

func (s *Server) initRoutes() {
	s.RegisterRouteFunc("GET "+RouteStatus, ChainMiddleware(s.StatusHandler(), s.APIMiddleware()...))

	// Authorization relay flow
	s.RegisterRouteFunc("GET "+RouteAuthStart, ChainMiddleware(s.AuthStartHandler(), s.APIMiddleware()...))
	s.RegisterRouteFunc("GET "+RouteAuthCallback, ChainMiddleware(s.AuthCallbackHandler(), s.APIMiddleware()...))
	s.RegisterRouteFunc("GET "+RouteAuthSession, ChainMiddleware(s.SessionHandler(), s.APIMiddleware()...))
	s.RegisterRouteFunc("OPTIONS /", ChainMiddleware(s.preflightHandler(), s.APIMiddleware()...))
}

func (s *Server) preflightHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		// CORS headers are written by the middleware chain.
		w.WriteHeader(http.StatusNoContent)
	}
}
