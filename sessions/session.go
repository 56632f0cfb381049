package sessions

import "time"

// DefaultTTL is used when the provider response omits expires_in.
const DefaultTTL = time.Hour

// User is the minimal profile captured from the identity provider at
// session creation. Immutable for the lifetime of the session.
type User struct {
	ID      string `json:"id,omitempty"`
	Email   string `json:"email"`
	Name    string `json:"name,omitempty"`
	Picture string `json:"picture,omitempty"`
}

// Session correlates an opaque identifier with a token set and profile,
// so the access token itself never travels through client-side redirects.
type Session struct {
	ID           string
	AccessToken  string
	RefreshToken string
	User         User
	ExpiresAt    time.Time
	CreatedAt    time.Time
}

// Data carries the fields needed to create a session. ExpiresIn of zero
// means DefaultTTL.
type Data struct {
	AccessToken  string
	RefreshToken string
	User         User
	ExpiresIn    time.Duration
}
