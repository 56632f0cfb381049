package sessions_test

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/jrsteele09/go-auth-relay/internal/errors"
	"github.com/jrsteele09/go-auth-relay/sessions"
)

const (
	testAccessToken  = "ya29.test-access-token"
	testRefreshToken = "1//test-refresh-token"
	testUserEmail    = "john.doe@example.com"
	testUserName     = "John Doe"
)

func testData(expiresIn time.Duration) sessions.Data {
	return sessions.Data{
		AccessToken:  testAccessToken,
		RefreshToken: testRefreshToken,
		User: sessions.User{
			Email: testUserEmail,
			Name:  testUserName,
		},
		ExpiresIn: expiresIn,
	}
}

func TestCreateAndGet(t *testing.T) {
	store := sessions.NewStore()

	before := time.Now()
	id := store.Create(testData(30 * time.Minute))
	after := time.Now()

	require.NotEmpty(t, id)

	session, err := store.Get(id)
	require.NoError(t, err)
	require.Equal(t, id, session.ID)
	require.Equal(t, testAccessToken, session.AccessToken)
	require.Equal(t, testRefreshToken, session.RefreshToken)
	require.Equal(t, testUserEmail, session.User.Email)

	require.False(t, session.CreatedAt.Before(before))
	require.False(t, session.CreatedAt.After(after))
	require.Equal(t, session.CreatedAt.Add(30*time.Minute), session.ExpiresAt)
}

func TestCreateDefaultExpiry(t *testing.T) {
	store := sessions.NewStore()

	id := store.Create(testData(0))

	session, err := store.Get(id)
	require.NoError(t, err)
	require.Equal(t, session.CreatedAt.Add(sessions.DefaultTTL), session.ExpiresAt)
}

func TestGetUnknownSession(t *testing.T) {
	store := sessions.NewStore()

	_, err := store.Get("no-such-session")
	require.ErrorIs(t, err, errors.ErrSessionNotFound)
}

func TestExpiredSessionIsDeletedOnGet(t *testing.T) {
	store := sessions.NewStore()

	id := store.Create(testData(-time.Second))
	require.Equal(t, 1, store.Size())

	_, err := store.Get(id)
	require.ErrorIs(t, err, errors.ErrSessionExpired)
	require.Equal(t, 0, store.Size())

	// Deletion is permanent: the identifier never resurrects.
	_, err = store.Get(id)
	require.ErrorIs(t, err, errors.ErrSessionNotFound)
}

func TestSweepRemovesOnlyExpired(t *testing.T) {
	store := sessions.NewStore()

	expired1 := store.Create(testData(-time.Minute))
	expired2 := store.Create(testData(-time.Second))
	live := store.Create(testData(time.Hour))

	now := time.Now()
	require.Equal(t, 2, store.Sweep(now))
	require.Equal(t, 0, store.Sweep(now))
	require.Equal(t, 1, store.Size())

	_, err := store.Get(expired1)
	require.ErrorIs(t, err, errors.ErrSessionNotFound)
	_, err = store.Get(expired2)
	require.ErrorIs(t, err, errors.ErrSessionNotFound)

	session, err := store.Get(live)
	require.NoError(t, err)
	require.Equal(t, testAccessToken, session.AccessToken)
}

func TestConcurrentCreateProducesUniqueIDs(t *testing.T) {
	const workers = 50
	const perWorker = 20

	store := sessions.NewStore()
	ids := make(chan string, workers*perWorker)

	var wg sync.WaitGroup
	for range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range perWorker {
				ids <- store.Create(testData(time.Hour))
			}
		}()
	}
	wg.Wait()
	close(ids)

	seen := make(map[string]struct{}, workers*perWorker)
	for id := range ids {
		_, dup := seen[id]
		require.False(t, dup, "duplicate session id %s", id)
		seen[id] = struct{}{}
	}
	require.Len(t, seen, workers*perWorker)
	require.Equal(t, workers*perWorker, store.Size())
}

func TestConcurrentGetAndSweep(t *testing.T) {
	store := sessions.NewStore()

	ids := make([]string, 0, 100)
	for i := range 100 {
		if i%2 == 0 {
			ids = append(ids, store.Create(testData(time.Hour)))
		} else {
			ids = append(ids, store.Create(testData(-time.Second)))
		}
	}

	var wg sync.WaitGroup
	for _, id := range ids {
		wg.Add(1)
		go func() {
			defer wg.Done()
			session, err := store.Get(id)
			if err != nil {
				// The sweeper may win the race, so either report is valid.
				require.True(t, errors.Is(err, errors.ErrSessionExpired) || errors.Is(err, errors.ErrSessionNotFound))
				return
			}
			// No partially written session is ever visible.
			require.Equal(t, testAccessToken, session.AccessToken)
			require.NotEmpty(t, session.User.Email)
		}()
	}
	wg.Add(1)
	go func() {
		defer wg.Done()
		store.Sweep(time.Now())
	}()
	wg.Wait()

	require.Equal(t, 50, store.Size())
}
