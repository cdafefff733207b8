package signer

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

var (
	// ErrInvalidToken covers malformed tokens, bad signatures and subject mismatches.
	ErrInvalidToken = errors.New("invalid feed token")
	// ErrExpiredToken is returned for a well-signed token past its expiry.
	ErrExpiredToken = errors.New("feed token expired")
)

// FeedSigner issues and checks HMAC tokens that let calendar clients fetch a
// feed without a bearer token. A token is bound to one subject, typically a
// teacher id: "<expiry unix>.<hex hmac>".
type FeedSigner struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewFeedSigner constructs a signer. ttl defaults to 90 days.
func NewFeedSigner(secret string, ttl time.Duration) *FeedSigner {
	if ttl <= 0 {
		ttl = 90 * 24 * time.Hour
	}
	return &FeedSigner{secret: []byte(secret), ttl: ttl, now: time.Now}
}

// Sign returns a token for subject and its expiry.
func (s *FeedSigner) Sign(subject string) (string, time.Time, error) {
	if subject == "" {
		return "", time.Time{}, fmt.Errorf("subject required")
	}
	if len(s.secret) == 0 {
		return "", time.Time{}, fmt.Errorf("signing secret missing")
	}
	expiresAt := s.now().Add(s.ttl).UTC().Truncate(time.Second)
	ts := strconv.FormatInt(expiresAt.Unix(), 10)
	return ts + "." + s.mac(subject, ts), expiresAt, nil
}

// Verify checks that token was issued for subject and has not expired.
func (s *FeedSigner) Verify(token, subject string) error {
	ts, signature, ok := strings.Cut(token, ".")
	if !ok || ts == "" || signature == "" || len(s.secret) == 0 {
		return ErrInvalidToken
	}
	expUnix, err := strconv.ParseInt(ts, 10, 64)
	if err != nil {
		return ErrInvalidToken
	}
	if !hmac.Equal([]byte(s.mac(subject, ts)), []byte(signature)) {
		return ErrInvalidToken
	}
	if s.now().After(time.Unix(expUnix, 0)) {
		return ErrExpiredToken
	}
	return nil
}

func (s *FeedSigner) mac(subject, ts string) string {
	m := hmac.New(sha256.New, s.secret)
	_, _ = m.Write([]byte(subject + "|" + ts))
	return hex.EncodeToString(m.Sum(nil))
}
