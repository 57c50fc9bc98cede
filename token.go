package goSession

import "sync/atomic"

// TokenSlot is the in-memory access token read by the dispatcher on every request. It is
// written by [State] on each transition and by the dispatcher when a 401 revokes the session.
//
// The zero value is an empty slot and is safe for concurrent use.
type TokenSlot struct {
	token atomic.Pointer[string]
}

// Get returns the current token, or "" when empty.
func (s *TokenSlot) Get() string {
	if s == nil {
		return ""
	}
	p := s.token.Load()
	if p == nil {
		return ""
	}
	return *p
}

// ClearIf empties the slot only while it still holds token. Reports whether it did.
func (s *TokenSlot) ClearIf(token string) bool {
	for {
		p := s.token.Load()
		if p == nil || *p != token {
			return false
		}
		if s.token.CompareAndSwap(p, nil) {
			return true
		}
	}
}

// Set replaces the token. An empty string empties the slot.
func (s *TokenSlot) Set(token string) {
	if token == "" {
		s.token.Store(nil)
		return
	}
	s.token.Store(&token)
}
