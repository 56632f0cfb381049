package server

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"strings"

	"github.com/jrsteele09/go-auth-relay/internal/config"
	"github.com/jrsteele09/go-auth-relay/provider"
	"github.com/jrsteele09/go-auth-relay/server/authstate"
	"github.com/jrsteele09/go-auth-relay/sessions"
	"github.com/jrsteele09/go-auth-relay/statetoken"
)

// IdentityProvider is the slice of the exchange client the flow
// controller needs. Tests substitute a fake.
type IdentityProvider interface {
	AuthCodeURL(state string) string
	Exchange(ctx context.Context, code string) (provider.Token, error)
	FetchProfile(ctx context.Context, accessToken string) (provider.Profile, error)
}

type Server struct {
	env         string // Environment (e.g., "DEV", "PROD")
	appName     string
	frontendURL string
	mux         *http.ServeMux
	routes      []string

	idp        IdentityProvider
	sessions   *sessions.Store
	authStates *authstate.Registry
	stateCodec *statetoken.Codec
}

func New(cfg config.Config, idp IdentityProvider, store *sessions.Store, states *authstate.Registry) *Server {
	s := &Server{
		env:         cfg.Env,
		appName:     cfg.AppName,
		frontendURL: strings.TrimRight(cfg.FrontendURL, "/"),
		mux:         http.NewServeMux(),
		idp:         idp,
		sessions:    store,
		authStates:  states,
		stateCodec:  statetoken.NewCodec(cfg.StateSigningSecret),
	}

	s.initRoutes()
	s.logRoutes()

	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

func (s *Server) RegisterRouteFunc(pattern string, handler func(http.ResponseWriter, *http.Request)) {
	s.routes = append(s.routes, pattern)
	s.mux.HandleFunc(pattern, handler)
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
	log.Printf("[%-19s] %s\n", displayMethod, path)
}
