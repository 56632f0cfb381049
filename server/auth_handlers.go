package server

import (
	"errors"
	"html/template"
	"net/http"
	"net/url"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/jrsteele09/go-auth-relay/provider"
	"github.com/jrsteele09/go-auth-relay/sessions"
	"github.com/jrsteele09/go-auth-relay/statetoken"
)

const (
	// Query parameters understood by the relay and its frontend.
	contextQueryParam = "context"
	sessionQueryParam = "sessionId"

	// embeddedContext marks flows started from the messaging-app webview.
	embeddedContext = "app"

	// Error codes surfaced to the frontend via the redirect channel.
	errCodeMissingCode  = "missing_code"
	errCodeInvalidState = "invalid_state"
	errCodeAuthFailed   = "auth_failed"

	// deepLinkURL hands the embedded webview back to the messaging app.
	deepLinkURL = "tg://resolve?domain=calendar_relay_bot"
)

// AuthStartHandler generates and registers a state token, then redirects
// the client to the provider's authorization endpoint.
func (s *Server) AuthStartHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		kind := statetoken.KindBrowser
		if r.URL.Query().Get(contextQueryParam) == embeddedContext {
			kind = statetoken.KindEmbedded
		}

		nonce := uuid.NewString()
		if err := s.authStates.Issue(nonce); err != nil {
			log.Err(err).Msg("Failed to register authorization state")
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal_error"})
			return
		}

		state, err := s.stateCodec.Sign(statetoken.State{Nonce: nonce, Context: kind})
		if err != nil {
			log.Err(err).Msg("Failed to sign authorization state")
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal_error"})
			return
		}

		log.Info().Str("context", string(kind)).Msg("Starting authorization flow")
		http.Redirect(w, r, s.idp.AuthCodeURL(state), http.StatusFound)
	}
}

// AuthCallbackHandler is the single provider callback for both client
// contexts. It validates the callback, performs the two exchange round
// trips, stores the session and shapes the response for the context the
// flow started from.
func (s *Server) AuthCallbackHandler() http.HandlerFunc {
	tmpl, err := ParseTemplate("interstitial.html")
	if err != nil {
		panic("Failed to parse interstitial template: " + err.Error())
	}

	return func(w http.ResponseWriter, r *http.Request) {
		query := r.URL.Query()

		if errParam := query.Get("error"); errParam != "" {
			log.Warn().Str("error", errParam).Msg("Provider reported an authorization error")
			s.redirectFrontendError(w, r, errParam, "")
			return
		}

		code := query.Get("code")
		if code == "" {
			log.Warn().Msg("Callback without authorization code")
			s.redirectFrontendError(w, r, errCodeMissingCode, "")
			return
		}

		state, err := s.stateCodec.Verify(query.Get("state"))
		if err != nil {
			log.Warn().Err(err).Msg("Callback with unverifiable state")
			s.redirectFrontendError(w, r, errCodeInvalidState, "")
			return
		}
		if !s.authStates.Consume(state.Nonce) {
			log.Warn().Msg("Callback state was not issued here or was already used")
			s.redirectFrontendError(w, r, errCodeInvalidState, "")
			return
		}

		token, err := s.idp.Exchange(r.Context(), code)
		if err != nil {
			s.failExchange(w, r, err)
			return
		}

		profile, err := s.idp.FetchProfile(r.Context(), token.AccessToken)
		if err != nil {
			s.failExchange(w, r, err)
			return
		}

		sessionID := s.sessions.Create(sessions.Data{
			AccessToken:  token.AccessToken,
			RefreshToken: token.RefreshToken,
			User: sessions.User{
				ID:      profile.ID,
				Email:   profile.Email,
				Name:    profile.Name,
				Picture: profile.Picture,
			},
			ExpiresIn: token.ExpiresIn,
		})

		log.Info().
			Str("email", profile.Email).
			Int("sessions", s.sessions.Size()).
			Msg("Session created")

		if state.Context == statetoken.KindEmbedded {
			s.renderInterstitial(w, tmpl, sessionID)
			return
		}

		http.Redirect(w, r, s.frontendURL+"?"+sessionQueryParam+"="+url.QueryEscape(sessionID), http.StatusFound)
	}
}

type sessionResponse struct {
	AccessToken string        `json:"access_token"`
	User        sessions.User `json:"user"`
	ExpiresAt   time.Time     `json:"expires_at"`
}

// SessionHandler trades an opaque session id for the stored token
// payload. Unknown and expired sessions are indistinguishable to the
// caller.
func (s *Server) SessionHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sessionID := r.URL.Query().Get(sessionQueryParam)
		if sessionID == "" {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "missing_session_id"})
			return
		}

		session, err := s.sessions.Get(sessionID)
		if err != nil {
			log.Warn().Err(err).Msg("Session lookup failed")
			writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "invalid_session"})
			return
		}

		log.Info().Str("email", session.User.Email).Msg("Session found")
		writeJSON(w, http.StatusOK, sessionResponse{
			AccessToken: session.AccessToken,
			User:        session.User,
			ExpiresAt:   session.ExpiresAt,
		})
	}
}

// failExchange logs the full provider failure, raw response body
// included, and sends the client a sanitized summary.
func (s *Server) failExchange(w http.ResponseWriter, r *http.Request, err error) {
	event := log.Error().Err(err)
	details := "authorization failed"

	var exchangeErr *provider.ExchangeError
	if errors.As(err, &exchangeErr) {
		event = event.Str("provider_body", exchangeErr.Body)
		details = exchangeErr.Error()
	}
	event.Msg("Authorization exchange failed")

	s.redirectFrontendError(w, r, errCodeAuthFailed, details)
}

func (s *Server) redirectFrontendError(w http.ResponseWriter, r *http.Request, code, details string) {
	params := url.Values{"error": {code}}
	if details != "" {
		params.Set("details", details)
	}
	http.Redirect(w, r, s.frontendURL+"?"+params.Encode(), http.StatusFound)
}

type interstitialData struct {
	AppName   string
	SessionID string
	ReturnURL string
	DeepLink  string
}

// renderInterstitial serves the embedded-app hand-off page: the session
// id for manual copy, a link back to the frontend, and a deferred jump
// to the messaging app's deep link.
func (s *Server) renderInterstitial(w http.ResponseWriter, tmpl *template.Template, sessionID string) {
	data := interstitialData{
		AppName:   s.appName,
		SessionID: sessionID,
		ReturnURL: s.frontendURL + "?" + sessionQueryParam + "=" + url.QueryEscape(sessionID),
		DeepLink:  deepLinkURL,
	}

	w.Header().Set("Content-Type", contentTypeHTML)
	if err := tmpl.Execute(w, data); err != nil {
		log.Err(err).Msg("Failed to render interstitial template")
	}
}
