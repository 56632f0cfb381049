package statetoken_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/jrsteele09/go-auth-relay/internal/errors"
	"github.com/jrsteele09/go-auth-relay/statetoken"
)

const testSecret = "test-signing-secret"

func TestSignAndVerify(t *testing.T) {
	codec := statetoken.NewCodec(testSecret)

	tests := []struct {
		name  string
		state statetoken.State
	}{
		{name: "browser context", state: statetoken.State{Nonce: "nonce-1", Context: statetoken.KindBrowser}},
		{name: "embedded context", state: statetoken.State{Nonce: "nonce-2", Context: statetoken.KindEmbedded}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			raw, err := codec.Sign(tc.state)
			require.NoError(t, err)
			require.NotEmpty(t, raw)

			state, err := codec.Verify(raw)
			require.NoError(t, err)
			require.Equal(t, tc.state, state)
		})
	}
}

func TestVerifyRejectsForeignSignature(t *testing.T) {
	raw, err := statetoken.NewCodec("other-secret").Sign(statetoken.State{
		Nonce:   "nonce-1",
		Context: statetoken.KindBrowser,
	})
	require.NoError(t, err)

	_, err = statetoken.NewCodec(testSecret).Verify(raw)
	require.ErrorIs(t, err, errors.ErrInvalidState)
}

func TestVerifyRejectsGarbage(t *testing.T) {
	codec := statetoken.NewCodec(testSecret)

	for _, raw := range []string{"", "not-a-token", "a.b.c"} {
		_, err := codec.Verify(raw)
		require.ErrorIs(t, err, errors.ErrInvalidState)
	}
}

func TestVerifyRejectsEmptyNonce(t *testing.T) {
	codec := statetoken.NewCodec(testSecret)

	raw, err := codec.Sign(statetoken.State{Context: statetoken.KindBrowser})
	require.NoError(t, err)

	_, err = codec.Verify(raw)
	require.ErrorIs(t, err, errors.ErrInvalidState)
}

func TestVerifyRejectsExpiredToken(t *testing.T) {
	codec := statetoken.NewCodec(testSecret)

	raw, err := codec.Sign(statetoken.State{Nonce: "nonce-1", Context: statetoken.KindBrowser})
	require.NoError(t, err)

	originalNow := statetoken.NowTimeFunc
	statetoken.NowTimeFunc = func() time.Time { return originalNow().Add(statetoken.TTL + time.Minute) }
	defer func() { statetoken.NowTimeFunc = originalNow }()

	_, err = codec.Verify(raw)
	require.ErrorIs(t, err, errors.ErrInvalidState)
}
