package setto

import (
	"context"

	"github.com/goliatone/go-setto/browser"
	"github.com/goliatone/go-setto/core"
	"github.com/goliatone/go-setto/exchange"
)

type Config = core.Config

type Option = core.Option

type Manager = core.Manager

type Environment = core.Environment
type TokenMode = core.TokenMode
type AbandonPolicy = core.AbandonPolicy
type Mode = core.Mode

type PaymentRequest = core.PaymentRequest
type PaymentOutcome = core.PaymentOutcome
type SuccessDetails = core.SuccessDetails
type CompletionFunc = core.CompletionFunc
type StartResult = core.StartResult
type DeliveryReport = core.DeliveryReport
type SessionSnapshot = core.SessionSnapshot

type Observer = core.Observer
type ObserverFunc = core.ObserverFunc
type BrowserPresenter = core.BrowserPresenter
type TokenExchanger = core.TokenExchanger
type AttemptRecorder = core.AttemptRecorder
type AttemptReader = core.AttemptReader
type AttemptPruner = core.AttemptPruner

const (
	EnvironmentDev  = core.EnvironmentDev
	EnvironmentProd = core.EnvironmentProd
)

var (
	WithLogger             = core.WithLogger
	WithLoggerProvider     = core.WithLoggerProvider
	WithMetricsRecorder    = core.WithMetricsRecorder
	WithConfigProvider     = core.WithConfigProvider
	WithOptionsResolver    = core.WithOptionsResolver
	WithBrowserPresenter   = core.WithBrowserPresenter
	WithTokenExchanger     = core.WithTokenExchanger
	WithAttemptRecorder    = core.WithAttemptRecorder
	WithAsyncRunner        = core.WithAsyncRunner
	WithClock              = core.WithClock
	WithSessionIDGenerator = core.WithSessionIDGenerator
	WithObserver           = core.WithObserver
)

func DefaultConfig() Config {
	return core.DefaultConfig()
}

// NewManager builds an unconfigured Manager with only the supplied
// collaborators. StartPayment fails until a browser presenter is wired.
func NewManager(opts ...Option) *Manager {
	return core.NewManager(opts...)
}

// Setup builds a Manager backed by the HTTP token exchange client and the
// system browser, then configures it with cfg. Options override those
// defaults.
func Setup(ctx context.Context, cfg Config, opts ...Option) (*Manager, error) {
	defaults := []Option{
		core.WithTokenExchanger(exchange.NewClient(exchange.ClientConfig{})),
		core.WithBrowserPresenter(browser.NewSystemPresenter()),
	}
	manager := core.NewManager(append(defaults, opts...)...)
	if err := manager.Configure(ctx, cfg); err != nil {
		return nil, err
	}
	return manager, nil
}
