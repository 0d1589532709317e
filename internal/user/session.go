package user

import (
	"errors"
	"sync"
)

// ErrSessionNotValid blocks actions that need a validated identifier.
var ErrSessionNotValid = errors.New("session not valid")

// SessionReader is the read-only view of the live session handed to every
// component other than the Validator.
type SessionReader interface {
	// Current returns the validated user id, or ok=false when no identifier
	// is currently validated.
	Current() (userID string, ok bool)
}

// Session is the single live identity of this process. Only Validator writes it.
type Session struct {
	mu        sync.RWMutex
	userID    string
	validated bool
}

func (s *Session) Current() (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.validated {
		return "", false
	}
	return s.userID, true
}

func (s *Session) validate(id string) {
	s.mu.Lock()
	s.userID, s.validated = id, true
	s.mu.Unlock()
}

func (s *Session) invalidate() {
	s.mu.Lock()
	s.userID, s.validated = "", false
	s.mu.Unlock()
}

// Require returns the validated user id or ErrSessionNotValid.
func Require(s SessionReader) (string, error) {
	if s == nil {
		return "", ErrSessionNotValid
	}
	id, ok := s.Current()
	if !ok {
		return "", ErrSessionNotValid
	}
	return id, nil
}
