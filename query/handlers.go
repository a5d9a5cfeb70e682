package query

import (
	"context"
	"strings"

	"github.com/goliatone/go-setto/core"
)

// SessionReader is the read-only surface of *core.Manager.
type SessionReader interface {
	IsInitialized() bool
	PendingSession() (core.SessionSnapshot, bool)
}

type PendingSessionResult struct {
	Session core.SessionSnapshot
	Pending bool
}

type IsInitializedQuery struct {
	reader SessionReader
}

func NewIsInitializedQuery(reader SessionReader) *IsInitializedQuery {
	return &IsInitializedQuery{reader: reader}
}

func (q *IsInitializedQuery) Query(_ context.Context, _ IsInitializedMessage) (bool, error) {
	if q == nil || q.reader == nil {
		return false, queryDependencyError("query: session reader is required")
	}
	return q.reader.IsInitialized(), nil
}

type PendingSessionQuery struct {
	reader SessionReader
}

func NewPendingSessionQuery(reader SessionReader) *PendingSessionQuery {
	return &PendingSessionQuery{reader: reader}
}

func (q *PendingSessionQuery) Query(_ context.Context, _ PendingSessionMessage) (PendingSessionResult, error) {
	if q == nil || q.reader == nil {
		return PendingSessionResult{}, queryDependencyError("query: session reader is required")
	}
	session, pending := q.reader.PendingSession()
	return PendingSessionResult{Session: session, Pending: pending}, nil
}

type ListAttemptsQuery struct {
	reader core.AttemptReader
}

func NewListAttemptsQuery(reader core.AttemptReader) *ListAttemptsQuery {
	return &ListAttemptsQuery{reader: reader}
}

func (q *ListAttemptsQuery) Query(ctx context.Context, msg ListAttemptsMessage) (core.AttemptPage, error) {
	if q == nil || q.reader == nil {
		return core.AttemptPage{}, queryDependencyError("query: attempt reader is required")
	}
	if err := msg.Validate(); err != nil {
		return core.AttemptPage{}, err
	}
	return q.reader.List(ctx, msg.Filter)
}

type SessionAttemptsQuery struct {
	reader core.AttemptReader
}

func NewSessionAttemptsQuery(reader core.AttemptReader) *SessionAttemptsQuery {
	return &SessionAttemptsQuery{reader: reader}
}

func (q *SessionAttemptsQuery) Query(ctx context.Context, msg SessionAttemptsMessage) ([]core.AttemptEvent, error) {
	if q == nil || q.reader == nil {
		return nil, queryDependencyError("query: attempt reader is required")
	}
	if err := msg.Validate(); err != nil {
		return nil, err
	}
	return q.reader.ListBySession(ctx, strings.TrimSpace(msg.SessionID))
}
