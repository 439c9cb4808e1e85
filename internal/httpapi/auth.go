package httpapi

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/hex"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"
)

const tokenTTL = 24 * time.Hour

// TokenAuth validates the single operator credential pair and issues
// opaque bearer tokens held in process memory. Restarting the service
// invalidates all sessions.
type TokenAuth struct {
	username string
	password string

	mu     sync.RWMutex
	tokens map[string]time.Time
	nowFn  func() time.Time
}

// NewTokenAuth creates an authenticator for one credential pair.
func NewTokenAuth(username, password string) *TokenAuth {
	return &TokenAuth{
		username: username,
		password: password,
		tokens:   make(map[string]time.Time),
		nowFn:    time.Now,
	}
}

// Login checks the credentials and returns a fresh bearer token.
func (a *TokenAuth) Login(username, password string) (string, error) {
	userOK := subtle.ConstantTimeCompare([]byte(username), []byte(a.username)) == 1
	passOK := subtle.ConstantTimeCompare([]byte(password), []byte(a.password)) == 1
	if !userOK || !passOK {
		return "", fmt.Errorf("invalid credentials")
	}
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	token := hex.EncodeToString(buf)
	a.mu.Lock()
	a.tokens[token] = a.nowFn().Add(tokenTTL)
	a.mu.Unlock()
	return token, nil
}

// Valid reports whether token is a live session.
func (a *TokenAuth) Valid(token string) bool {
	a.mu.RLock()
	expiry, ok := a.tokens[token]
	a.mu.RUnlock()
	if !ok {
		return false
	}
	if a.nowFn().After(expiry) {
		a.mu.Lock()
		delete(a.tokens, token)
		a.mu.Unlock()
		return false
	}
	return true
}

// Middleware rejects requests without a live bearer token.
func (a *TokenAuth) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || !a.Valid(token) {
			writeError(w, http.StatusUnauthorized, "authentication required")
			return
		}
		next.ServeHTTP(w, r)
	})
}
