package setto

import (
	"fmt"

	settocommand "github.com/goliatone/go-setto/command"
	"github.com/goliatone/go-setto/core"
	settoquery "github.com/goliatone/go-setto/query"
)

type PaymentManager interface {
	settocommand.PaymentService
	settoquery.SessionReader
}

// AttemptStore is the attempt ledger surface the facade exposes.
type AttemptStore interface {
	core.AttemptReader
	core.AttemptPruner
}

type Commands struct {
	Configure      *settocommand.ConfigureCommand
	StartPayment   *settocommand.StartPaymentCommand
	HandleCallback *settocommand.HandleCallbackCommand
	Reset          *settocommand.ResetCommand
	// PruneAttempts is nil unless an attempt store is wired.
	PruneAttempts *settocommand.PruneAttemptsCommand
}

type Queries struct {
	IsInitialized  *settoquery.IsInitializedQuery
	PendingSession *settoquery.PendingSessionQuery
	// ListAttempts and SessionAttempts are nil unless an attempt store is wired.
	ListAttempts    *settoquery.ListAttemptsQuery
	SessionAttempts *settoquery.SessionAttemptsQuery
}

type Facade struct {
	manager  PaymentManager
	commands Commands
	queries  Queries
}

type FacadeOption func(*facadeOptions)

type facadeOptions struct {
	attempts AttemptStore
}

func WithAttemptStore(store AttemptStore) FacadeOption {
	return func(options *facadeOptions) {
		options.attempts = store
	}
}

func NewFacade(manager PaymentManager, opts ...FacadeOption) (*Facade, error) {
	if manager == nil {
		return nil, fmt.Errorf("setto: payment manager is required")
	}
	cfg := facadeOptions{}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		opt(&cfg)
	}

	facade := &Facade{manager: manager}
	facade.commands = Commands{
		Configure:      settocommand.NewConfigureCommand(manager),
		StartPayment:   settocommand.NewStartPaymentCommand(manager),
		HandleCallback: settocommand.NewHandleCallbackCommand(manager),
		Reset:          settocommand.NewResetCommand(manager),
	}
	facade.queries = Queries{
		IsInitialized:  settoquery.NewIsInitializedQuery(manager),
		PendingSession: settoquery.NewPendingSessionQuery(manager),
	}
	if cfg.attempts != nil {
		facade.commands.PruneAttempts = settocommand.NewPruneAttemptsCommand(cfg.attempts)
		facade.queries.ListAttempts = settoquery.NewListAttemptsQuery(cfg.attempts)
		facade.queries.SessionAttempts = settoquery.NewSessionAttemptsQuery(cfg.attempts)
	}
	return facade, nil
}

func (f *Facade) Commands() Commands {
	if f == nil {
		return Commands{}
	}
	return f.commands
}

func (f *Facade) Queries() Queries {
	if f == nil {
		return Queries{}
	}
	return f.queries
}

func (f *Facade) Manager() PaymentManager {
	if f == nil {
		return nil
	}
	return f.manager
}
