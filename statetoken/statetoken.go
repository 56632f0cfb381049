// Package statetoken serializes the OAuth state parameter as a compact
// signed token so the relay can authenticate that a callback originated
// from a flow it started, and so the client-context flag cannot collide
// with or be spoofed into the nonce.
package statetoken

import (
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"

	"github.com/jrsteele09/go-auth-relay/internal/errors"
)

// NowTimeFunc returns the current time. It can be overridden in tests.
var NowTimeFunc = time.Now

// TTL bounds how long an issued state stays redeemable.
const TTL = 10 * time.Minute

// Kind identifies the client context that initiated the flow.
type Kind string

const (
	KindBrowser  Kind = "web"
	KindEmbedded Kind = "app"
)

// State is the tagged value threaded through the provider redirect.
type State struct {
	Nonce   string
	Context Kind
}

type stateClaims struct {
	Nonce   string `json:"nonce"`
	Context Kind   `json:"ctx"`
	jwtlib.RegisteredClaims
}

// Codec signs and verifies state tokens with an HMAC secret.
type Codec struct {
	secret []byte
}

// NewCodec creates a codec around the configured signing secret.
func NewCodec(secret string) *Codec {
	return &Codec{secret: []byte(secret)}
}

// Sign serializes a state value into a signed compact token.
func (c *Codec) Sign(state State) (string, error) {
	now := NowTimeFunc()
	token := jwtlib.NewWithClaims(jwtlib.SigningMethodHS256, stateClaims{
		Nonce:   state.Nonce,
		Context: state.Context,
		RegisteredClaims: jwtlib.RegisteredClaims{
			IssuedAt:  jwtlib.NewNumericDate(now),
			ExpiresAt: jwtlib.NewNumericDate(now.Add(TTL)),
		},
	})

	signed, err := token.SignedString(c.secret)
	if err != nil {
		return "", errors.Wrapf(err, "statetoken.Sign")
	}
	return signed, nil
}

// Verify checks the signature and expiry of a state token and returns
// the embedded state value. Every failure mode collapses into
// ErrInvalidState so callers cannot leak why a state was rejected.
func (c *Codec) Verify(raw string) (State, error) {
	var claims stateClaims
	_, err := jwtlib.ParseWithClaims(raw, &claims,
		func(*jwtlib.Token) (any, error) { return c.secret, nil },
		jwtlib.WithValidMethods([]string{jwtlib.SigningMethodHS256.Alg()}),
		jwtlib.WithExpirationRequired(),
		jwtlib.WithTimeFunc(func() time.Time { return NowTimeFunc() }),
	)
	if err != nil {
		return State{}, errors.Wrapf(errors.ErrInvalidState, "statetoken.Verify: %v", err)
	}

	if claims.Nonce == "" {
		return State{}, errors.Wrapf(errors.ErrInvalidState, "statetoken.Verify: empty nonce")
	}
	if claims.Context != KindBrowser && claims.Context != KindEmbedded {
		return State{}, errors.Wrapf(errors.ErrInvalidState, "statetoken.Verify: unknown context %q", claims.Context)
	}

	return State{Nonce: claims.Nonce, Context: claims.Context}, nil
}
