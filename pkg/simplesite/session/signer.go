package session

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// clockSkew is how far in the future an issued-at time may lie
const clockSkew = time.Minute

// Signer issues and checks admin session tokens. A token is
// value.hex(HMAC-SHA256(secret, value)) where value is username:issuedAtMillis.
type Signer struct {
	keyring *Keyring
	secret  string
	maxAge  time.Duration
	now     func() time.Time
}

// Option is a functional option for configuring a Signer
type Option func(*Signer)

// WithSecretKey sets the HMAC secret
func WithSecretKey(secret string) Option {
	return func(s *Signer) {
		s.secret = secret
	}
}

// WithKeyring shares a key cache between signers
func WithKeyring(k *Keyring) Option {
	return func(s *Signer) {
		if k != nil {
			s.keyring = k
		}
	}
}

// WithMaxAge sets how long an issued session stays valid
func WithMaxAge(d time.Duration) Option {
	return func(s *Signer) {
		if d > 0 {
			s.maxAge = d
		}
	}
}

// WithClock sets the time source
func WithClock(now func() time.Time) Option {
	return func(s *Signer) {
		if now != nil {
			s.now = now
		}
	}
}

// New creates a new Signer with the given options
func New(opts ...Option) *Signer {
	s := &Signer{
		maxAge: DefaultMaxAge,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.keyring == nil {
		s.keyring = NewKeyring()
	}
	return s
}

// IsEnabled returns true if a secret is configured
func (s *Signer) IsEnabled() bool {
	return s.secret != ""
}

// MaxAge returns the session lifetime
func (s *Signer) MaxAge() time.Duration {
	return s.maxAge
}

// Sign signs an arbitrary value
func (s *Signer) Sign(value string) (string, error) {
	if !s.IsEnabled() {
		return "", ErrNoSecretKey
	}
	return s.keyring.Sign(s.secret, value), nil
}

// Verify checks the signature of token and returns the signed value
func (s *Signer) Verify(token string) (string, bool) {
	if !s.IsEnabled() {
		return "", false
	}
	return s.keyring.Verify(s.secret, token)
}

// Issue creates a session token for username
func (s *Signer) Issue(username string) (string, error) {
	if username == "" {
		return "", fmt.Errorf("username is required")
	}
	return s.Sign(username + ":" + strconv.FormatInt(s.now().UnixMilli(), 10))
}

// Authenticate verifies token and returns the username it was issued for
func (s *Signer) Authenticate(token string) (string, error) {
	value, ok := s.Verify(token)
	if !ok {
		return "", ErrUnauthorized
	}

	idx := strings.LastIndex(value, ":")
	if idx <= 0 {
		return "", ErrUnauthorized
	}
	millis, err := strconv.ParseInt(value[idx+1:], 10, 64)
	if err != nil {
		return "", ErrUnauthorized
	}

	issuedAt := time.UnixMilli(millis)
	now := s.now()
	if issuedAt.After(now.Add(clockSkew)) || now.Sub(issuedAt) > s.maxAge {
		return "", ErrUnauthorized
	}
	return value[:idx], nil
}
