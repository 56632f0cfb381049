package provider

import (
	"errors"
	"fmt"

	"golang.org/x/oauth2"
)

// ExchangeError reports a failed round trip to the identity provider.
// Error() is a safe summary suitable for surfacing to end users; the raw
// provider response body, when available, is kept in Body for logs.
type ExchangeError struct {
	Op   string
	Body string
	Err  error
}

func (e *ExchangeError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *ExchangeError) Unwrap() error {
	return e.Err
}

// exchangeError converts any provider-side failure into an *ExchangeError,
// splitting the raw response body out of the visible message.
func exchangeError(op string, err error) *ExchangeError {
	var retrieveErr *oauth2.RetrieveError
	if errors.As(err, &retrieveErr) {
		summary := errors.New("provider rejected the request")
		if retrieveErr.Response != nil {
			summary = fmt.Errorf("provider returned %s", retrieveErr.Response.Status)
		}
		return &ExchangeError{Op: op, Body: string(retrieveErr.Body), Err: summary}
	}
	return &ExchangeError{Op: op, Err: err}
}
