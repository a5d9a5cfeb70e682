package query

import (
	"strings"

	"github.com/goliatone/go-setto/core"
)

const (
	TypeIsInitialized   = "setto.query.initialized"
	TypePendingSession  = "setto.query.session.pending"
	TypeListAttempts    = "setto.query.attempts.list"
	TypeSessionAttempts = "setto.query.attempts.session"

	maxAttemptsPerPage = 200
)

type IsInitializedMessage struct{}

func (IsInitializedMessage) Type() string { return TypeIsInitialized }

func (IsInitializedMessage) Validate() error { return nil }

type PendingSessionMessage struct{}

func (PendingSessionMessage) Type() string { return TypePendingSession }

func (PendingSessionMessage) Validate() error { return nil }

type ListAttemptsMessage struct {
	Filter core.AttemptFilter
}

func (ListAttemptsMessage) Type() string { return TypeListAttempts }

func (m ListAttemptsMessage) Validate() error {
	if m.Filter.Page < 0 {
		return queryValidationError("page", "page must not be negative")
	}
	if m.Filter.PerPage < 0 || m.Filter.PerPage > maxAttemptsPerPage {
		return queryValidationError("per_page", "per_page must be between 0 and 200")
	}
	if m.Filter.From != nil && m.Filter.To != nil && m.Filter.From.After(*m.Filter.To) {
		return queryValidationError("from", "from must not be after to")
	}
	return nil
}

type SessionAttemptsMessage struct {
	SessionID string
}

func (SessionAttemptsMessage) Type() string { return TypeSessionAttempts }

func (m SessionAttemptsMessage) Validate() error {
	if strings.TrimSpace(m.SessionID) == "" {
		return queryValidationError("session_id", "session id is required")
	}
	return nil
}
