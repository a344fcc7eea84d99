package token

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIssueAndVerify_Roundtrip(t *testing.T) {
	t.Parallel()

	codec := NewCodec([]byte("super-secret"))

	for _, kind := range []string{KindSession, KindVerify} {
		tokenString, err := codec.Issue(kind, 42, time.Hour)
		require.NoError(t, err)

		userID, err := codec.Verify(kind, tokenString)
		require.NoError(t, err)
		assert.Equal(t, int64(42), userID)
	}
}

func TestVerify_Expired(t *testing.T) {
	t.Parallel()

	codec := NewCodec([]byte("super-secret"))

	tokenString, err := codec.Issue(KindSession, 7, -time.Minute)
	require.NoError(t, err)

	// A stale but well-signed token must report expiry, never a
	// signature problem.
	_, err = codec.Verify(KindSession, tokenString)
	assert.ErrorIs(t, err, ErrExpired)
	assert.NotErrorIs(t, err, ErrSignatureInvalid)
}

func TestVerify_WrongSecret(t *testing.T) {
	t.Parallel()

	tokenString, err := NewCodec([]byte("right-secret")).Issue(KindSession, 7, time.Hour)
	require.NoError(t, err)

	_, err = NewCodec([]byte("wrong-secret")).Verify(KindSession, tokenString)
	assert.ErrorIs(t, err, ErrSignatureInvalid)
}

func TestVerify_KindMismatch(t *testing.T) {
	t.Parallel()

	codec := NewCodec([]byte("super-secret"))

	verifyToken, err := codec.Issue(KindVerify, 7, time.Hour)
	require.NoError(t, err)

	// A verification token must never pass as a session token, even
	// though both kinds share the signing secret.
	_, err = codec.Verify(KindSession, verifyToken)
	assert.ErrorIs(t, err, ErrMalformed)

	sessionToken, err := codec.Issue(KindSession, 7, time.Hour)
	require.NoError(t, err)

	_, err = codec.Verify(KindVerify, sessionToken)
	assert.ErrorIs(t, err, ErrMalformed)
}

func TestVerify_Malformed(t *testing.T) {
	t.Parallel()

	codec := NewCodec([]byte("super-secret"))

	for _, input := range []string{"", "not.a.jwt", "garbage"} {
		_, err := codec.Verify(KindSession, input)
		assert.ErrorIs(t, err, ErrMalformed, "input %q", input)
	}
}
