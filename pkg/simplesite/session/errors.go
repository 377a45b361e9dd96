package session

import "errors"

// Session errors
var (
	// ErrNoSecretKey is returned when signing without a configured secret
	ErrNoSecretKey = errors.New("session: no secret key configured")

	// ErrUnauthorized is returned when a session token is missing, malformed,
	// expired or carries a bad signature
	ErrUnauthorized = errors.New("session: unauthorized")

	// ErrInvalidCredentials is returned when a login does not match the
	// configured admin credentials
	ErrInvalidCredentials = errors.New("session: invalid credentials")
)

// IsAuthError returns true if the error is a session or login failure
func IsAuthError(err error) bool {
	return errors.Is(err, ErrUnauthorized) || errors.Is(err, ErrInvalidCredentials)
}
