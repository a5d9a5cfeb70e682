package gocommand

import (
	"context"
	"fmt"
	"strings"
	"sync"

	gocmd "github.com/goliatone/go-command"
	commanddispatcher "github.com/goliatone/go-command/dispatcher"
	"github.com/goliatone/go-command/runner"
	jobqueuecommand "github.com/goliatone/go-job/queue/command"
	"github.com/goliatone/go-setto/command"
	"github.com/goliatone/go-setto/core"
	"github.com/goliatone/go-setto/query"
)

// PaymentManager is what the bus needs from *core.Manager.
type PaymentManager interface {
	command.PaymentService
	query.SessionReader
}

// AttemptStore is the attempt log surface exposed on the bus.
type AttemptStore interface {
	core.AttemptReader
	core.AttemptPruner
}

// Bus registers the SDK commands and queries with a go-command registry and
// subscribes them to the process-wide dispatcher.
type Bus struct {
	registry   *gocmd.Registry
	runnerOpts []runner.Option

	mu            sync.Mutex
	subscriptions []commanddispatcher.Subscription
}

func NewBus(registry *gocmd.Registry, runnerOpts ...runner.Option) *Bus {
	if registry == nil {
		registry = gocmd.NewRegistry()
	}
	return &Bus{registry: registry, runnerOpts: runnerOpts}
}

func (b *Bus) Registry() *gocmd.Registry {
	if b == nil {
		return nil
	}
	return b.registry
}

// RegisterPaymentManager wires configure, start, callback and reset commands
// plus the session queries.
func (b *Bus) RegisterPaymentManager(manager PaymentManager) error {
	if b == nil || b.registry == nil {
		return fmt.Errorf("gocommand: registry is not configured")
	}
	if manager == nil {
		return fmt.Errorf("gocommand: payment manager is required")
	}
	if err := registerCommand(b, command.NewConfigureCommand(manager)); err != nil {
		return err
	}
	if err := registerCommand(b, command.NewStartPaymentCommand(manager)); err != nil {
		return err
	}
	if err := registerCommand(b, command.NewHandleCallbackCommand(manager)); err != nil {
		return err
	}
	if err := registerCommand(b, command.NewResetCommand(manager)); err != nil {
		return err
	}
	subscribeQuery(b, query.NewIsInitializedQuery(manager))
	subscribeQuery(b, query.NewPendingSessionQuery(manager))
	return nil
}

// RegisterAttemptStore wires the prune command and the attempt log queries.
func (b *Bus) RegisterAttemptStore(store AttemptStore) error {
	if b == nil || b.registry == nil {
		return fmt.Errorf("gocommand: registry is not configured")
	}
	if store == nil {
		return fmt.Errorf("gocommand: attempt store is required")
	}
	if err := registerCommand(b, command.NewPruneAttemptsCommand(store)); err != nil {
		return err
	}
	subscribeQuery(b, query.NewListAttemptsQuery(store))
	subscribeQuery(b, query.NewSessionAttemptsQuery(store))
	return nil
}

func (b *Bus) AddResolver(key string, resolver gocmd.Resolver) error {
	if b == nil || b.registry == nil {
		return fmt.Errorf("gocommand: registry is not configured")
	}
	return b.registry.AddResolver(strings.TrimSpace(key), resolver)
}

// AddQueueResolver mirrors registered commands into a go-job queue registry
// so they can run from a worker, for example a scheduled attempt prune.
func (b *Bus) AddQueueResolver(key string, queueRegistry *jobqueuecommand.Registry) error {
	if queueRegistry == nil {
		return fmt.Errorf("gocommand: queue registry is required")
	}
	return b.AddResolver(key, jobqueuecommand.QueueResolver(queueRegistry))
}

func (b *Bus) HasResolver(key string) bool {
	if b == nil || b.registry == nil {
		return false
	}
	return b.registry.HasResolver(strings.TrimSpace(key))
}

func (b *Bus) Initialize() error {
	if b == nil || b.registry == nil {
		return fmt.Errorf("gocommand: registry is not configured")
	}
	return b.registry.Initialize()
}

// Close unsubscribes every handler this bus added to the dispatcher.
func (b *Bus) Close() {
	if b == nil {
		return
	}
	b.mu.Lock()
	subscriptions := b.subscriptions
	b.subscriptions = nil
	b.mu.Unlock()
	for _, subscription := range subscriptions {
		if subscription != nil {
			subscription.Unsubscribe()
		}
	}
}

func (b *Bus) track(subscription commanddispatcher.Subscription) {
	if subscription == nil {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.subscriptions = append(b.subscriptions, subscription)
}

func registerCommand[T any](b *Bus, cmd gocmd.Commander[T]) error {
	subscription := commanddispatcher.SubscribeCommand(cmd, b.runnerOpts...)
	if err := b.registry.RegisterCommand(cmd); err != nil {
		if subscription != nil {
			subscription.Unsubscribe()
		}
		return err
	}
	b.track(subscription)
	return nil
}

func subscribeQuery[T any, R any](b *Bus, qry gocmd.Querier[T, R]) {
	b.track(commanddispatcher.SubscribeQuery(qry, b.runnerOpts...))
}

// Dispatch sends a command message to its subscribed handler.
func Dispatch[T any](ctx context.Context, msg T) error {
	return commanddispatcher.Dispatch(ctx, msg)
}

// DispatchWithResult dispatches msg and returns the value the handler stored.
func DispatchWithResult[T any, R any](ctx context.Context, msg T) (R, error) {
	collector := gocmd.NewResult[R]()
	if err := commanddispatcher.Dispatch(gocmd.ContextWithResult(ctx, collector), msg); err != nil {
		var zero R
		return zero, err
	}
	value, _ := collector.Load()
	return value, nil
}

func Query[T any, R any](ctx context.Context, msg T) (R, error) {
	return commanddispatcher.Query[T, R](ctx, msg)
}
