package signer

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFeedSignerRoundTrip(t *testing.T) {
	s := NewFeedSigner("secret", time.Hour)

	token, expiresAt, err := s.Sign("t1")
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Hour), expiresAt, 2*time.Second)

	assert.NoError(t, s.Verify(token, "t1"))
	assert.ErrorIs(t, s.Verify(token, "t2"), ErrInvalidToken)
	assert.ErrorIs(t, NewFeedSigner("other", time.Hour).Verify(token, "t1"), ErrInvalidToken)
}

func TestFeedSignerExpired(t *testing.T) {
	s := NewFeedSigner("secret", time.Minute)
	token, _, err := s.Sign("t1")
	require.NoError(t, err)

	s.now = func() time.Time { return time.Now().Add(2 * time.Minute) }

	assert.ErrorIs(t, s.Verify(token, "t1"), ErrExpiredToken)
}

func TestFeedSignerMalformed(t *testing.T) {
	s := NewFeedSigner("secret", time.Hour)
	for _, token := range []string{"", "abc", "123.", ".deadbeef", "notanumber.deadbeef"} {
		assert.ErrorIs(t, s.Verify(token, "t1"), ErrInvalidToken, token)
	}

	_, _, err := NewFeedSigner("", time.Hour).Sign("t1")
	assert.Error(t, err)
	_, _, err = s.Sign("")
	assert.Error(t, err)
}
