package middleware

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"net/http"
	"sync"
	"time"
)

const (
	csrfTokenLength = 32
	csrfCookieName  = "csrf_token"
	csrfHeaderName  = "X-CSRF-Token"
	csrfTokenExpiry = 24 * time.Hour
)

type csrfToken struct {
	value     string
	expiresAt time.Time
}

// CSRFStore keeps one token per cookie session in memory.
type CSRFStore struct {
	tokens map[string]csrfToken
	mu     sync.RWMutex
	now    func() time.Time
}

func NewCSRFStore() *CSRFStore {
	store := &CSRFStore{
		tokens: make(map[string]csrfToken),
		now:    time.Now,
	}
	go store.cleanup()
	return store
}

func (s *CSRFStore) cleanup() {
	ticker := time.NewTicker(time.Hour)
	for range ticker.C {
		s.mu.Lock()
		now := s.now()
		for sessionID, token := range s.tokens {
			if now.After(token.expiresAt) {
				delete(s.tokens, sessionID)
			}
		}
		s.mu.Unlock()
	}
}

// GetOrCreate returns the session's live token, minting one if needed.
func (s *CSRFStore) GetOrCreate(sessionID string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if token, ok := s.tokens[sessionID]; ok && s.now().Before(token.expiresAt) {
		return token.value, nil
	}

	buf := make([]byte, csrfTokenLength)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	value := base64.URLEncoding.EncodeToString(buf)

	s.tokens[sessionID] = csrfToken{value: value, expiresAt: s.now().Add(csrfTokenExpiry)}
	return value, nil
}

func (s *CSRFStore) Validate(sessionID, provided string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	token, ok := s.tokens[sessionID]
	if !ok || s.now().After(token.expiresAt) {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(token.value), []byte(provided)) == 1
}

// CSRF protects cookie-authenticated state-changing requests. Requests
// carrying a bearer token, or no session cookie at all, pass through; the
// auth middleware decides what those may do.
func CSRF(store *CSRFStore) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sessionID := getSessionID(r)

			switch r.Method {
			case http.MethodGet, http.MethodHead, http.MethodOptions, http.MethodTrace:
				if sessionID != "" {
					ensureCSRFCookie(w, r, store, sessionID)
				}
				next.ServeHTTP(w, r)
				return
			}

			if r.Header.Get("Authorization") != "" || sessionID == "" {
				next.ServeHTTP(w, r)
				return
			}

			provided := r.Header.Get(csrfHeaderName)
			if provided == "" {
				writeError(w, http.StatusForbidden, "CSRF token missing")
				return
			}
			if !store.Validate(sessionID, provided) {
				writeError(w, http.StatusForbidden, "Invalid CSRF token")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func ensureCSRFCookie(w http.ResponseWriter, r *http.Request, store *CSRFStore, sessionID string) {
	if _, err := r.Cookie(csrfCookieName); err == nil {
		return
	}

	token, err := store.GetOrCreate(sessionID)
	if err != nil {
		return
	}
	http.SetCookie(w, &http.Cookie{
		Name:     csrfCookieName,
		Value:    token,
		Path:     "/",
		HttpOnly: false, // read by the front-end and echoed in the header
		Secure:   r.TLS != nil,
		SameSite: http.SameSiteStrictMode,
		MaxAge:   int(csrfTokenExpiry.Seconds()),
	})
}

// getSessionID derives a session key from the JWT cookie.
func getSessionID(r *http.Request) string {
	cookie, err := r.Cookie("token")
	if err != nil || cookie.Value == "" {
		return ""
	}
	if len(cookie.Value) > 16 {
		return cookie.Value[len(cookie.Value)-16:]
	}
	return cookie.Value
}
