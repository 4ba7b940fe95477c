// Package session holds logged-in user identity in a process-local store
// keyed by an opaque cookie value.
package session

import (
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/Ivan-Lazz/thePayRoll/internal/token"
)

const CookieName = "payroll_session"

// Identity is the caller identity carried by a session or bearer token.
type Identity struct {
	ID       uint   `json:"id"`
	Username string `json:"username"`
	Role     string `json:"role"`
}

func (i Identity) Empty() bool {
	return i.ID == 0 && i.Username == "" && i.Role == ""
}

type Session struct {
	ID           string
	User         Identity
	LastActivity time.Time
	CSRF         *token.CSRFEntry
}

type Store struct {
	mu       sync.Mutex
	sessions map[string]*Session

	Now func() time.Time
}

func NewStore() *Store {
	return &Store{sessions: make(map[string]*Session)}
}

func (s *Store) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

func (s *Store) Create(user Identity) *Session {
	sess := &Session{
		ID:           uuid.NewString(),
		User:         user,
		LastActivity: s.now(),
	}
	s.mu.Lock()
	s.sessions[sess.ID] = sess
	s.mu.Unlock()
	return sess
}

func (s *Store) Get(id string) *Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sessions[id]
}

// Touch refreshes last activity. Concurrent requests on one session race on
// this field; last writer wins, which is acceptable for an idle timestamp.
func (s *Store) Touch(id string) {
	s.mu.Lock()
	if sess, ok := s.sessions[id]; ok {
		sess.LastActivity = s.now()
	}
	s.mu.Unlock()
}

// Destroy removes the session, which also invalidates the CSRF token held
// inside it.
func (s *Store) Destroy(id string) {
	s.mu.Lock()
	delete(s.sessions, id)
	s.mu.Unlock()
}

func (s *Store) SetCSRF(id string, entry token.CSRFEntry) {
	s.mu.Lock()
	if sess, ok := s.sessions[id]; ok {
		sess.CSRF = &entry
	}
	s.mu.Unlock()
}

// Sweep drops every session idle for longer than timeout and reports how
// many were removed.
func (s *Store) Sweep(timeout time.Duration) int {
	cutoff := s.now().Add(-timeout)
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for id, sess := range s.sessions {
		if sess.LastActivity.Before(cutoff) {
			delete(s.sessions, id)
			removed++
		}
	}
	return removed
}

// Janitor sweeps on a ticker until stop is closed.
func (s *Store) Janitor(timeout, interval time.Duration, stop <-chan struct{}) {
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-t.C:
			s.Sweep(timeout)
		case <-stop:
			return
		}
	}
}

func NewCookie(value string, maxAge time.Duration, secure bool) *http.Cookie {
	return &http.Cookie{
		Name:     CookieName,
		Value:    value,
		Path:     "/",
		MaxAge:   int(maxAge.Seconds()),
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	}
}

func DeleteCookie(secure bool) *http.Cookie {
	return &http.Cookie{
		Name:     CookieName,
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	}
}
