package session_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tendant/simple-site/pkg/simplesite/session"
)

func TestKeyring_SignVerify(t *testing.T) {
	k := session.NewKeyring()

	token := k.Sign("s3cret", "admin:1700000000000")
	parts := strings.Split(token, ".")
	require.Len(t, parts, 2)
	assert.Equal(t, "admin:1700000000000", parts[0])
	assert.Len(t, parts[1], 64)

	value, ok := k.Verify("s3cret", token)
	assert.True(t, ok)
	assert.Equal(t, "admin:1700000000000", value)

	assert.True(t, k.VerifySession(token, "s3cret"))
	assert.False(t, k.VerifySession(token, "other"))
	assert.False(t, k.VerifySession(token, ""))

	tests := []struct {
		name  string
		token string
	}{
		{name: "empty", token: ""},
		{name: "no dot", token: "admin"},
		{name: "empty value", token: "." + parts[1]},
		{name: "empty mac", token: parts[0] + "."},
		{name: "tampered value", token: "root:1700000000000." + parts[1]},
		{name: "tampered mac", token: parts[0] + "." + strings.Repeat("0", 64)},
		{name: "truncated mac", token: parts[0] + "." + parts[1][:10]},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, ok := k.Verify("s3cret", tt.token)
			assert.False(t, ok)
		})
	}
}

func TestKeyring_ValuesMayContainDots(t *testing.T) {
	k := session.NewKeyring()
	token := k.Sign("s", "a.b.c")
	value, ok := k.Verify("s", token)
	assert.True(t, ok)
	assert.Equal(t, "a.b.c", value)
}

func TestKeyring_Concurrent(t *testing.T) {
	k := session.NewKeyring()
	expected := k.Sign("shared", "value")

	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				assert.Equal(t, expected, k.Sign("shared", "value"))
				assert.True(t, k.VerifySession(expected, "shared"))
			}
		}()
	}
	wg.Wait()
}

func TestSigner_IssueAuthenticate(t *testing.T) {
	now := time.Date(2025, 1, 1, 10, 0, 0, 0, time.UTC)
	clock := func() time.Time { return now }
	signer := session.New(session.WithSecretKey("s3cret"), session.WithClock(clock))

	token, err := signer.Issue("admin")
	require.NoError(t, err)

	username, err := signer.Authenticate(token)
	require.NoError(t, err)
	assert.Equal(t, "admin", username)

	now = now.Add(session.DefaultMaxAge + time.Second)
	_, err = signer.Authenticate(token)
	assert.ErrorIs(t, err, session.ErrUnauthorized)

	other := session.New(session.WithSecretKey("different"))
	_, err = other.Authenticate(token)
	assert.ErrorIs(t, err, session.ErrUnauthorized)

	signed, err := signer.Sign("no-timestamp")
	require.NoError(t, err)
	_, err = signer.Authenticate(signed)
	assert.ErrorIs(t, err, session.ErrUnauthorized)

	_, err = signer.Issue("")
	assert.Error(t, err)
}

func TestSigner_Disabled(t *testing.T) {
	signer := session.New()
	assert.False(t, signer.IsEnabled())

	_, err := signer.Sign("x")
	assert.ErrorIs(t, err, session.ErrNoSecretKey)

	_, err = signer.Authenticate("x.abc")
	assert.ErrorIs(t, err, session.ErrUnauthorized)
}

func TestCredentials_Check(t *testing.T) {
	creds := session.Credentials{Username: "admin", Password: "hunter2"}

	tests := []struct {
		name     string
		username string
		password string
		wantErr  bool
	}{
		{name: "match", username: "admin", password: "hunter2"},
		{name: "wrong password", username: "admin", password: "hunter3", wantErr: true},
		{name: "wrong user", username: "root", password: "hunter2", wantErr: true},
		{name: "empty", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := creds.Check(tt.username, tt.password)
			if tt.wantErr {
				assert.ErrorIs(t, err, session.ErrInvalidCredentials)
				assert.True(t, session.IsAuthError(err))
			} else {
				assert.NoError(t, err)
			}
		})
	}

	assert.ErrorIs(t, session.Credentials{}.Check("", ""), session.ErrInvalidCredentials)
}

func TestCookies(t *testing.T) {
	c := session.NewCookie("tok", session.DefaultMaxAge)
	assert.Equal(t, session.CookieName, c.Name)
	assert.Equal(t, "/", c.Path)
	assert.Equal(t, 7200, c.MaxAge)
	assert.True(t, c.HttpOnly)
	assert.True(t, c.Secure)
	assert.Equal(t, http.SameSiteStrictMode, c.SameSite)

	header := session.ClearCookie().String()
	assert.Contains(t, header, "Max-Age=0")

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	_, ok := session.TokenFromRequest(req)
	assert.False(t, ok)

	req.AddCookie(c)
	token, ok := session.TokenFromRequest(req)
	assert.True(t, ok)
	assert.Equal(t, "tok", token)
}

func TestRequireSession(t *testing.T) {
	signer := session.New(session.WithSecretKey("s3cret"))
	token, err := signer.Issue("admin")
	require.NoError(t, err)

	handler := session.RequireSession(signer)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(session.UsernameFromContext(r.Context())))
	}))

	tests := []struct {
		name       string
		cookie     *http.Cookie
		wantStatus int
		wantBody   string
	}{
		{name: "valid", cookie: session.NewCookie(token, time.Hour), wantStatus: http.StatusOK, wantBody: "admin"},
		{name: "missing", wantStatus: http.StatusUnauthorized},
		{name: "tampered", cookie: session.NewCookie("root"+token[5:], time.Hour), wantStatus: http.StatusUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/admin", nil)
			if tt.cookie != nil {
				req.AddCookie(tt.cookie)
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)
			if tt.wantStatus == http.StatusUnauthorized {
				var body map[string]any
				require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
				assert.Equal(t, map[string]any{"success": false, "error": "Unauthorized"}, body)
				return
			}
			assert.Equal(t, tt.wantBody, rec.Body.String())
		})
	}

	assert.Empty(t, session.UsernameFromContext(httptest.NewRequest(http.MethodGet, "/", nil).Context()))
}
