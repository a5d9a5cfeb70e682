package query

import (
	gocmd "github.com/goliatone/go-command"
	"github.com/goliatone/go-setto/core"
)

var (
	_ gocmd.Querier[IsInitializedMessage, bool]                  = (*IsInitializedQuery)(nil)
	_ gocmd.Querier[PendingSessionMessage, PendingSessionResult] = (*PendingSessionQuery)(nil)
	_ gocmd.Querier[ListAttemptsMessage, core.AttemptPage]       = (*ListAttemptsQuery)(nil)
	_ gocmd.Querier[SessionAttemptsMessage, []core.AttemptEvent] = (*SessionAttemptsQuery)(nil)

	_ SessionReader = (*core.Manager)(nil)
)
