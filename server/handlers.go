package server

import (
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog/log"
)

type statusResponse struct {
	Message   string            `json:"message"`
	Endpoints map[string]string `json:"endpoints"`
	Sessions  int               `json:"sessions"`
}

// StatusHandler reports service health, the endpoint catalogue and the
// current session count.
func (s *Server) StatusHandler() http.HandlerFunc {
	endpoints := map[string]string{
		RouteAuthStart:                   "Start the provider authorization flow",
		RouteAuthCallback:                "Provider OAuth callback",
		RouteAuthSession + "?sessionId=": "Exchange a session id for the access token",
	}

	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, statusResponse{
			Message:   s.appName + " is running",
			Endpoints: endpoints,
			Sessions:  s.sessions.Size(),
		})
	}
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", contentTypeJSON)
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Err(err).Msg("Failed to encode JSON response")
	}
}
