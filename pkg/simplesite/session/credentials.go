package session

import (
	"crypto/sha256"
	"crypto/subtle"
)

// Credentials is the single admin login
type Credentials struct {
	Username string
	Password string
}

// Configured reports whether both username and password are set
func (c Credentials) Configured() bool {
	return c.Username != "" && c.Password != ""
}

// Check compares a login attempt against c in constant time
func (c Credentials) Check(username, password string) error {
	if !c.Configured() {
		return ErrInvalidCredentials
	}
	userOK := constantTimeEqual(username, c.Username)
	passOK := constantTimeEqual(password, c.Password)
	if userOK&passOK != 1 {
		return ErrInvalidCredentials
	}
	return nil
}

// constantTimeEqual hashes both sides first so that the comparison time does
// not depend on the input lengths
func constantTimeEqual(a, b string) int {
	ha := sha256.Sum256([]byte(a))
	hb := sha256.Sum256([]byte(b))
	return subtle.ConstantTimeCompare(ha[:], hb[:])
}
