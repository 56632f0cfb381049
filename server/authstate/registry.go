package authstate

import (
	"context"
	"errors"
	"sync"
	"time"
)

// Registry is a thread-safe short-lived record of state nonces this
// server has issued. A callback must consume its nonce exactly once:
// unknown, expired and replayed nonces all fail the same way.
type Registry struct {
	mu     sync.Mutex
	ttl    time.Duration
	issued map[string]time.Time // nonce -> expiry
}

// NewRegistry creates a registry whose entries live for ttl.
func NewRegistry(ttl time.Duration) *Registry {
	return &Registry{
		ttl:    ttl,
		issued: make(map[string]time.Time),
	}
}

// Issue records a freshly generated nonce.
func (r *Registry) Issue(nonce string) error {
	if nonce == "" {
		return errors.New("nonce cannot be empty")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.issued[nonce] = time.Now().Add(r.ttl)
	return nil
}

// Consume removes the nonce and reports whether it was live. A second
// Consume with the same nonce always returns false.
func (r *Registry) Consume(nonce string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	expiry, ok := r.issued[nonce]
	if !ok {
		return false
	}
	delete(r.issued, nonce)

	return expiry.After(time.Now())
}

// Sweep removes entries that expired before now and returns the count.
func (r *Registry) Sweep(now time.Time) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	removed := 0
	for nonce, expiry := range r.issued {
		if expiry.Before(now) {
			delete(r.issued, nonce)
			removed++
		}
	}
	return removed
}

// Size reports the number of outstanding nonces. Diagnostics only.
func (r *Registry) Size() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.issued)
}

// RunSweeper sweeps the registry on a fixed interval until ctx is
// cancelled. Abandoned flows expire here instead of accumulating.
func (r *Registry) RunSweeper(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			r.Sweep(now)
		}
	}
}
