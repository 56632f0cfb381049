package provider

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/coreos/go-oidc/v3/oidc"
	"golang.org/x/oauth2"
)

const defaultTimeout = 10 * time.Second

// Scopes granted to every session: read-only calendar access plus the
// profile and email needed to identify the user.
var relayScopes = []string{
	"https://www.googleapis.com/auth/calendar.readonly",
	"https://www.googleapis.com/auth/userinfo.profile",
	"https://www.googleapis.com/auth/userinfo.email",
}

// promptConsent forces the consent screen on every authorization so the
// provider issues a refresh token each time, at the cost of user friction.
var promptConsent = oauth2.SetAuthURLParam("prompt", "consent")

// Token is the relevant subset of a provider token response. ExpiresIn
// of zero means the provider did not report a lifetime.
type Token struct {
	AccessToken  string
	RefreshToken string
	ExpiresIn    time.Duration
}

// Profile is the minimal identity fetched after a successful exchange.
type Profile struct {
	ID      string
	Email   string
	Name    string
	Picture string
}

// Options configures a Client. IssuerURL, ClientID, ClientSecret and
// RedirectURL are mandatory; Timeout defaults to 10s. HTTPClient, when
// set, is used for every provider round trip (tests point it at a fake).
type Options struct {
	IssuerURL    string
	ClientID     string
	ClientSecret string
	RedirectURL  string
	Timeout      time.Duration
	HTTPClient   *http.Client
}

// Client talks to the external identity provider. It holds no request
// state: every method is a pure request/response round trip, bounded by
// the configured timeout. No retries are performed.
type Client struct {
	oauth      *oauth2.Config
	provider   *oidc.Provider
	timeout    time.Duration
	httpClient *http.Client
}

// New discovers the provider's endpoints via OIDC discovery and builds
// the exchange client.
func New(ctx context.Context, opts Options) (*Client, error) {
	if opts.HTTPClient != nil {
		ctx = oidc.ClientContext(ctx, opts.HTTPClient)
	}

	oidcProvider, err := oidc.NewProvider(ctx, opts.IssuerURL)
	if err != nil {
		return nil, fmt.Errorf("[provider New] failed to discover issuer %q: %w", opts.IssuerURL, err)
	}

	timeout := opts.Timeout
	if timeout == 0 {
		timeout = defaultTimeout
	}

	return &Client{
		oauth: &oauth2.Config{
			ClientID:     opts.ClientID,
			ClientSecret: opts.ClientSecret,
			Endpoint:     oidcProvider.Endpoint(),
			RedirectURL:  opts.RedirectURL,
			Scopes:       relayScopes,
		},
		provider:   oidcProvider,
		timeout:    timeout,
		httpClient: opts.HTTPClient,
	}, nil
}

// AuthCodeURL builds the provider authorization URL for the given state.
// access_type=offline plus prompt=consent requests a refresh token on
// every authorization.
func (c *Client) AuthCodeURL(state string) string {
	return c.oauth.AuthCodeURL(state, oauth2.AccessTypeOffline, promptConsent)
}

// Exchange trades an authorization code for a token set. A response
// without an access token is an *ExchangeError carrying the raw provider
// body for diagnostics.
func (c *Client) Exchange(ctx context.Context, code string) (Token, error) {
	ctx, cancel := c.boundContext(ctx)
	defer cancel()

	oauth2Token, err := c.oauth.Exchange(ctx, code)
	if err != nil {
		return Token{}, exchangeError("token exchange", err)
	}
	if oauth2Token.AccessToken == "" {
		return Token{}, &ExchangeError{Op: "token exchange", Err: errors.New("no access token in response")}
	}

	var expiresIn time.Duration
	if !oauth2Token.Expiry.IsZero() {
		expiresIn = time.Until(oauth2Token.Expiry)
	}

	return Token{
		AccessToken:  oauth2Token.AccessToken,
		RefreshToken: oauth2Token.RefreshToken,
		ExpiresIn:    expiresIn,
	}, nil
}

// FetchProfile retrieves the user profile associated with an access
// token from the provider's userinfo endpoint.
func (c *Client) FetchProfile(ctx context.Context, accessToken string) (Profile, error) {
	ctx, cancel := c.boundContext(ctx)
	defer cancel()

	tokenSource := oauth2.StaticTokenSource(&oauth2.Token{
		AccessToken: accessToken,
		TokenType:   "Bearer",
	})

	userInfo, err := c.provider.UserInfo(ctx, tokenSource)
	if err != nil {
		return Profile{}, exchangeError("userinfo fetch", err)
	}

	var claims struct {
		Name    string `json:"name"`
		Picture string `json:"picture"`
	}
	if err := userInfo.Claims(&claims); err != nil {
		return Profile{}, &ExchangeError{Op: "userinfo fetch", Err: fmt.Errorf("malformed userinfo payload: %w", err)}
	}
	if userInfo.Email == "" {
		return Profile{}, &ExchangeError{Op: "userinfo fetch", Err: errors.New("userinfo payload has no email")}
	}

	return Profile{
		ID:      userInfo.Subject,
		Email:   userInfo.Email,
		Name:    claims.Name,
		Picture: claims.Picture,
	}, nil
}

func (c *Client) boundContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if c.httpClient != nil {
		ctx = context.WithValue(ctx, oauth2.HTTPClient, c.httpClient)
	}
	return context.WithTimeout(ctx, c.timeout)
}
