package sessions

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/jrsteele09/go-auth-relay/internal/errors"
)

// Store is a thread-safe in-memory session table with time-based expiry.
// Expired entries are removed lazily on lookup and by a periodic sweep.
type Store struct {
	mu       sync.RWMutex
	sessions map[string]Session
}

// NewStore creates an empty session store.
func NewStore() *Store {
	return &Store{
		sessions: make(map[string]Session),
	}
}

// Create stores a fully populated session under a fresh identifier and
// returns the identifier. The session only becomes visible to readers
// once every field is set.
func (s *Store) Create(data Data) string {
	ttl := data.ExpiresIn
	if ttl == 0 {
		ttl = DefaultTTL
	}

	now := time.Now()
	session := Session{
		ID:           uuid.NewString(),
		AccessToken:  data.AccessToken,
		RefreshToken: data.RefreshToken,
		User:         data.User,
		ExpiresAt:    now.Add(ttl),
		CreatedAt:    now,
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.sessions[session.ID] = session
	return session.ID
}

// Get retrieves a live session by identifier. A present-but-expired
// session is deleted as a side effect and reported as ErrSessionExpired;
// an unknown identifier is reported as ErrSessionNotFound. Callers treat
// both the same externally, the distinction exists for logging and tests.
func (s *Store) Get(id string) (Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	session, ok := s.sessions[id]
	if !ok {
		return Session{}, errors.ErrSessionNotFound
	}

	if !session.ExpiresAt.After(time.Now()) {
		delete(s.sessions, id)
		return Session{}, errors.ErrSessionExpired
	}

	return session, nil
}

// Sweep removes every session whose expiry is before now and returns the
// number removed. Safe to call concurrently with Create and Get, and
// idempotent for a fixed now.
func (s *Store) Sweep(now time.Time) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for id, session := range s.sessions {
		if session.ExpiresAt.Before(now) {
			delete(s.sessions, id)
			removed++
		}
	}
	return removed
}

// Size reports the number of stored sessions, including expired ones
// not yet swept. Diagnostics only.
func (s *Store) Size() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

// RunSweeper sweeps the store on a fixed interval until ctx is cancelled.
func (s *Store) RunSweeper(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			if removed := s.Sweep(now); removed > 0 {
				log.Info().Int("removed", removed).Msg("Swept expired sessions")
			}
		}
	}
}
