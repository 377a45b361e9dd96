package session

import (
	"net/http"
	"time"
)

const (
	// CookieName is the admin session cookie
	CookieName = "lush_admin_session"

	// DefaultMaxAge is the admin session lifetime
	DefaultMaxAge = 2 * time.Hour
)

// NewCookie builds the cookie carrying token
func NewCookie(token string, maxAge time.Duration) *http.Cookie {
	return &http.Cookie{
		Name:     CookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(maxAge / time.Second),
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteStrictMode,
	}
}

// ClearCookie builds a cookie that removes the session from the browser
func ClearCookie() *http.Cookie {
	c := NewCookie("", 0)
	c.MaxAge = -1
	return c
}

// TokenFromRequest returns the session token sent with r
func TokenFromRequest(r *http.Request) (string, bool) {
	c, err := r.Cookie(CookieName)
	if err != nil || c.Value == "" {
		return "", false
	}
	return c.Value, true
}
