package inbound

import (
	"context"
	"strings"
	"sync"

	"github.com/goliatone/go-setto/core"
)

const defaultReceiverBuffer = 8

// CallbackHandler is satisfied by *core.Manager.
type CallbackHandler interface {
	HandleCallback(ctx context.Context, rawURL string) core.DeliveryReport
}

// Deliverer accepts raw callback URLs without blocking the caller.
type Deliverer interface {
	Deliver(rawURL string) error
}

type ReceiverOption func(*Receiver)

func WithBufferSize(size int) ReceiverOption {
	return func(r *Receiver) {
		if size > 0 {
			r.bufferSize = size
		}
	}
}

// WithReportHandler observes every delivery report produced by Run.
func WithReportHandler(fn func(rawURL string, report core.DeliveryReport)) ReceiverOption {
	return func(r *Receiver) {
		r.onReport = fn
	}
}

// Receiver queues callback URLs and replays them into a CallbackHandler from
// a single goroutine started with Run.
type Receiver struct {
	handler    CallbackHandler
	bufferSize int
	onReport   func(rawURL string, report core.DeliveryReport)

	mu     sync.Mutex
	closed bool
	queue  chan string
	done   chan struct{}
}

func NewReceiver(handler CallbackHandler, opts ...ReceiverOption) *Receiver {
	r := &Receiver{handler: handler, bufferSize: defaultReceiverBuffer}
	for _, opt := range opts {
		if opt != nil {
			opt(r)
		}
	}
	r.queue = make(chan string, r.bufferSize)
	r.done = make(chan struct{})
	return r
}

// Deliver enqueues rawURL. It never blocks: a full queue or a closed receiver
// is reported as an error.
func (r *Receiver) Deliver(rawURL string) error {
	if r == nil {
		return receiverError(core.PaymentErrorInternal, "inbound: receiver is nil", nil)
	}
	if strings.TrimSpace(rawURL) == "" {
		return receiverError(core.PaymentErrorCallbackRejected, "inbound: callback url is required", nil)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return receiverError(InboundErrorReceiverClosed, "inbound: receiver is closed", nil)
	}
	select {
	case r.queue <- rawURL:
		return nil
	default:
		return receiverError(
			InboundErrorReceiverFull,
			"inbound: receiver queue is full",
			map[string]any{"buffer_size": r.bufferSize},
		)
	}
}

// Run dispatches queued callbacks until ctx is done or Close is called.
// Callbacks already queued when Close is called are still dispatched.
func (r *Receiver) Run(ctx context.Context) error {
	if r == nil || r.handler == nil {
		return receiverError(core.PaymentErrorInternal, "inbound: receiver requires a callback handler", nil)
	}
	if ctx == nil {
		ctx = context.Background()
	}
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case rawURL := <-r.queue:
			r.dispatch(ctx, rawURL)
		case <-r.done:
			for {
				select {
				case rawURL := <-r.queue:
					r.dispatch(ctx, rawURL)
				default:
					return nil
				}
			}
		}
	}
}

func (r *Receiver) dispatch(ctx context.Context, rawURL string) {
	report := r.handler.HandleCallback(ctx, rawURL)
	if r.onReport != nil {
		r.onReport(rawURL, report)
	}
}

// Close stops accepting callbacks. It is safe to call more than once.
func (r *Receiver) Close() {
	if r == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return
	}
	r.closed = true
	close(r.done)
}

var _ Deliverer = (*Receiver)(nil)
