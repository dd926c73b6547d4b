package domain

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// DefaultIdleTimeout is the inactivity window after which a session is discarded.
const DefaultIdleTimeout = 30 * time.Minute

// Session is the server-held state for one browser. It is created lazily for any
// visitor and only becomes authenticated after a successful login.
type Session struct {
	ID             string
	Authenticated  bool
	Token          string
	Username       string
	TokenExpiresAt time.Time
	CreatedAt      time.Time
	LastSeen       time.Time
	Data           map[string]json.RawMessage
}

func New(id string, now time.Time) *Session {
	return &Session{
		ID:        id,
		CreatedAt: now,
		LastSeen:  now,
		Data:      make(map[string]json.RawMessage),
	}
}

// IsAuthenticated reports whether the session carries a usable admin login.
func (s *Session) IsAuthenticated(now time.Time) bool {
	if s == nil || !s.Authenticated || strings.TrimSpace(s.Token) == "" {
		return false
	}
	if !s.TokenExpiresAt.IsZero() && !now.Before(s.TokenExpiresAt) {
		return false
	}
	return true
}

// SignIn records a successful login. A zero expiresAt means the token lifetime is unknown.
func (s *Session) SignIn(token, username string, expiresAt time.Time) {
	s.Authenticated = true
	s.Token = token
	s.Username = username
	s.TokenExpiresAt = expiresAt
}

// SignOut drops the authentication marker and every piece of per-session data.
func (s *Session) SignOut() {
	s.Authenticated = false
	s.Token = ""
	s.Username = ""
	s.TokenExpiresAt = time.Time{}
	s.Data = make(map[string]json.RawMessage)
}

func (s *Session) Expired(now time.Time, idle time.Duration) bool {
	if idle <= 0 {
		idle = DefaultIdleTimeout
	}
	return now.Sub(s.LastSeen) >= idle
}

func (s *Session) Touch(now time.Time) {
	s.LastSeen = now
}

// Get decodes the value stored under key into v. It reports false when absent.
func (s *Session) Get(key string, v any) (bool, error) {
	raw, ok := s.Data[key]
	if !ok || len(raw) == 0 {
		return false, nil
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return false, fmt.Errorf("decode session value %q: %w", key, err)
	}
	return true, nil
}

func (s *Session) Put(key string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode session value %q: %w", key, err)
	}
	if s.Data == nil {
		s.Data = make(map[string]json.RawMessage)
	}
	s.Data[key] = raw
	return nil
}

func (s *Session) Remove(key string) {
	delete(s.Data, key)
}

// Clone returns a deep copy so stores never share maps with callers.
func (s *Session) Clone() *Session {
	if s == nil {
		return nil
	}
	cloned := *s
	cloned.Data = make(map[string]json.RawMessage, len(s.Data))
	for k, v := range s.Data {
		cloned.Data[k] = append(json.RawMessage(nil), v...)
	}
	return &cloned
}
