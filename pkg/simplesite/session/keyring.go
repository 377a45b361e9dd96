package session

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"hash"
	"strings"
	"sync"
)

// Keyring caches prepared HMAC-SHA256 state per secret. It is safe for
// concurrent use; share one Keyring between every Signer of a process.
type Keyring struct {
	keys sync.Map // secret -> *sync.Pool of hash.Hash
}

// NewKeyring creates an empty keyring
func NewKeyring() *Keyring {
	return &Keyring{}
}

func (k *Keyring) pool(secret string) *sync.Pool {
	if p, ok := k.keys.Load(secret); ok {
		return p.(*sync.Pool)
	}
	key := []byte(secret)
	p, _ := k.keys.LoadOrStore(secret, &sync.Pool{
		New: func() any { return hmac.New(sha256.New, key) },
	})
	return p.(*sync.Pool)
}

// Sum returns the hex-encoded HMAC-SHA256 of value under secret
func (k *Keyring) Sum(secret, value string) string {
	p := k.pool(secret)
	h := p.Get().(hash.Hash)
	defer p.Put(h)

	h.Reset()
	h.Write([]byte(value))
	return hex.EncodeToString(h.Sum(nil))
}

// Sign returns value.hex(hmac) for value under secret
func (k *Keyring) Sign(secret, value string) string {
	return value + "." + k.Sum(secret, value)
}

// Verify checks a signed token and returns the value it carries
func (k *Keyring) Verify(secret, token string) (string, bool) {
	idx := strings.LastIndex(token, ".")
	if idx <= 0 || idx == len(token)-1 {
		return "", false
	}
	value, mac := token[:idx], token[idx+1:]

	expected := k.Sum(secret, value)
	if !hmac.Equal([]byte(mac), []byte(expected)) {
		return "", false
	}
	return value, true
}

// VerifySession reports whether token carries a valid signature for secret
func (k *Keyring) VerifySession(token, secret string) bool {
	if secret == "" {
		return false
	}
	_, ok := k.Verify(secret, token)
	return ok
}
