package command

import (
	"context"

	gocmd "github.com/goliatone/go-command"
	"github.com/goliatone/go-setto/core"
)

// PaymentService is the mutating surface of *core.Manager.
type PaymentService interface {
	Configure(ctx context.Context, cfg core.Config) error
	StartPayment(ctx context.Context, req core.PaymentRequest, onComplete core.CompletionFunc) core.StartResult
	HandleCallback(ctx context.Context, rawURL string) core.DeliveryReport
	Reset(ctx context.Context)
}

type ConfigureCommand struct {
	service PaymentService
}

func NewConfigureCommand(service PaymentService) *ConfigureCommand {
	return &ConfigureCommand{service: service}
}

func (c *ConfigureCommand) Execute(ctx context.Context, msg ConfigureMessage) error {
	if c == nil || c.service == nil {
		return commandDependencyError("command: configure service is required")
	}
	return c.service.Configure(ctx, msg.Config)
}

type StartPaymentCommand struct {
	service PaymentService
}

func NewStartPaymentCommand(service PaymentService) *StartPaymentCommand {
	return &StartPaymentCommand{service: service}
}

func (c *StartPaymentCommand) Execute(ctx context.Context, msg StartPaymentMessage) error {
	if c == nil || c.service == nil {
		return commandDependencyError("command: start payment service is required")
	}
	storeResult(ctx, c.service.StartPayment(ctx, msg.Request, msg.OnComplete))
	return nil
}

type HandleCallbackCommand struct {
	service PaymentService
}

func NewHandleCallbackCommand(service PaymentService) *HandleCallbackCommand {
	return &HandleCallbackCommand{service: service}
}

func (c *HandleCallbackCommand) Execute(ctx context.Context, msg HandleCallbackMessage) error {
	if c == nil || c.service == nil {
		return commandDependencyError("command: callback service is required")
	}
	storeResult(ctx, c.service.HandleCallback(ctx, msg.URL))
	return nil
}

type ResetCommand struct {
	service PaymentService
}

func NewResetCommand(service PaymentService) *ResetCommand {
	return &ResetCommand{service: service}
}

func (c *ResetCommand) Execute(ctx context.Context, _ ResetMessage) error {
	if c == nil || c.service == nil {
		return commandDependencyError("command: reset service is required")
	}
	c.service.Reset(ctx)
	return nil
}

type PruneAttemptsCommand struct {
	pruner core.AttemptPruner
}

func NewPruneAttemptsCommand(pruner core.AttemptPruner) *PruneAttemptsCommand {
	return &PruneAttemptsCommand{pruner: pruner}
}

// Execute stores the number of pruned rows as the command result.
func (c *PruneAttemptsCommand) Execute(ctx context.Context, msg PruneAttemptsMessage) error {
	if c == nil || c.pruner == nil {
		return commandDependencyError("command: attempt pruner is required")
	}
	pruned, err := c.pruner.Prune(ctx, msg.Policy)
	if err != nil {
		return err
	}
	storeResult(ctx, pruned)
	return nil
}

func storeResult[T any](ctx context.Context, value T) {
	collector := gocmd.ResultFromContext[T](ctx)
	if collector == nil {
		return
	}
	collector.Store(value)
}
