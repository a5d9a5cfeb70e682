package core

import (
	"context"
	"sync"
	"time"
)

type pendingSession struct {
	id         string
	mode       Mode
	state      SessionState
	config     Config
	request    PaymentRequest
	onComplete CompletionFunc
	startedAt  time.Time
	cancel     context.CancelFunc
}

func (s *pendingSession) snapshot() SessionSnapshot {
	if s == nil {
		return SessionSnapshot{State: SessionStateIdle}
	}
	return SessionSnapshot{
		ID:          s.id,
		Mode:        s.mode,
		State:       s.state,
		Environment: s.config.Environment,
		MerchantID:  s.request.MerchantID,
		Amount:      s.request.Amount,
		OrderID:     s.request.OrderID,
		Currency:    s.request.Currency,
		StartedAt:   s.startedAt,
	}
}

func (s *pendingSession) stopExchange() {
	if s != nil && s.cancel != nil {
		s.cancel()
	}
}

// sessionSlot holds at most one pending session. Every read-modify-write is
// done under mu so a callback arriving on another goroutine observes either
// the old or the new session, never a partial one.
type sessionSlot struct {
	mu      sync.Mutex
	current *pendingSession
}

// replace stores next and returns the session it displaced, if any.
func (s *sessionSlot) replace(next *pendingSession) *pendingSession {
	s.mu.Lock()
	defer s.mu.Unlock()
	previous := s.current
	s.current = next
	return previous
}

// consume removes and returns the pending session.
func (s *sessionSlot) consume() *pendingSession {
	s.mu.Lock()
	defer s.mu.Unlock()
	current := s.current
	s.current = nil
	return current
}

// consumeIf removes the pending session only while it is still id.
func (s *sessionSlot) consumeIf(id string) *pendingSession {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current == nil || s.current.id != id {
		return nil
	}
	current := s.current
	s.current = nil
	return current
}

// advance moves session id to state, reporting false when id is no longer pending.
func (s *sessionSlot) advance(id string, state SessionState) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current == nil || s.current.id != id {
		return false
	}
	s.current.state = state
	return true
}

func (s *sessionSlot) peek() (SessionSnapshot, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current == nil {
		return SessionSnapshot{State: SessionStateIdle}, false
	}
	return s.current.snapshot(), true
}
