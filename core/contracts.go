package core

import (
	"context"
	"time"

	glog "github.com/goliatone/go-logger/glog"
)

type Logger = glog.Logger

type LoggerProvider = glog.LoggerProvider

type FieldsLogger = glog.FieldsLogger

type MetricsRecorder interface {
	IncCounter(ctx context.Context, name string, value int64, tags map[string]string)
	ObserveHistogram(ctx context.Context, name string, value float64, tags map[string]string)
}

// BrowserPresenter opens a redirect URL in a system or in-app browser.
type BrowserPresenter interface {
	Open(ctx context.Context, rawURL string) error
}

type TokenExchangeRequest struct {
	APIBaseURL string
	MerchantID string
	Amount     string
	OrderID    string
	IdpToken   string
}

// TokenExchanger trades a payment request for an opaque payment token.
// Failures must be typed with the payment error constructors so they map to
// the expected outcome messages.
type TokenExchanger interface {
	ExchangePaymentToken(ctx context.Context, req TokenExchangeRequest) (string, error)
}

type TransportRequest struct {
	Method               string
	URL                  string
	Headers              map[string]string
	Body                 []byte
	Timeout              time.Duration
	MaxResponseBodyBytes int64
}

type TransportResponse struct {
	StatusCode int
	Headers    map[string]string
	Body       []byte
	Metadata   map[string]any
}

type TransportAdapter interface {
	Kind() string
	Do(ctx context.Context, req TransportRequest) (TransportResponse, error)
}

type AttemptRecorder interface {
	Record(ctx context.Context, event AttemptEvent) error
}

type AttemptReader interface {
	List(ctx context.Context, filter AttemptFilter) (AttemptPage, error)
	ListBySession(ctx context.Context, sessionID string) ([]AttemptEvent, error)
	Latest(ctx context.Context, sessionID string) (AttemptEvent, error)
}

type AttemptPruner interface {
	Prune(ctx context.Context, policy AttemptRetentionPolicy) (int, error)
}
