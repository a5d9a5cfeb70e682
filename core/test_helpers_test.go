package core

import (
	"context"
	"fmt"
	"sync"
	"testing"
)

type recordingPresenter struct {
	mu   sync.Mutex
	urls []string
	err  error
}

func (p *recordingPresenter) Open(_ context.Context, rawURL string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.urls = append(p.urls, rawURL)
	return p.err
}

func (p *recordingPresenter) opened() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.urls...)
}

type stubExchanger struct {
	mu       sync.Mutex
	requests []TokenExchangeRequest
	token    string
	err      error
	exchange func(ctx context.Context, req TokenExchangeRequest) (string, error)
}

func (e *stubExchanger) ExchangePaymentToken(ctx context.Context, req TokenExchangeRequest) (string, error) {
	e.mu.Lock()
	e.requests = append(e.requests, req)
	fn := e.exchange
	token, err := e.token, e.err
	e.mu.Unlock()
	if fn != nil {
		return fn(ctx, req)
	}
	return token, err
}

func (e *stubExchanger) calls() []TokenExchangeRequest {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]TokenExchangeRequest(nil), e.requests...)
}

type memoryRecorder struct {
	mu     sync.Mutex
	events []AttemptEvent
	err    error
}

func (r *memoryRecorder) Record(_ context.Context, event AttemptEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
	return r.err
}

func (r *memoryRecorder) types() []AttemptEventType {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]AttemptEventType, 0, len(r.events))
	for _, event := range r.events {
		out = append(out, event.Type)
	}
	return out
}

type outcomeCollector struct {
	mu       sync.Mutex
	outcomes []PaymentOutcome
}

func (c *outcomeCollector) complete(outcome PaymentOutcome) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.outcomes = append(c.outcomes, outcome)
}

func (c *outcomeCollector) all() []PaymentOutcome {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]PaymentOutcome(nil), c.outcomes...)
}

func (c *outcomeCollector) only(t *testing.T) PaymentOutcome {
	t.Helper()
	outcomes := c.all()
	if len(outcomes) != 1 {
		t.Fatalf("expected exactly one outcome, got %d: %#v", len(outcomes), outcomes)
	}
	return outcomes[0]
}

type observedOutcome struct {
	session SessionSnapshot
	outcome PaymentOutcome
}

type observerCollector struct {
	mu   sync.Mutex
	seen []observedOutcome
}

func (o *observerCollector) PaymentCompleted(_ context.Context, session SessionSnapshot, outcome PaymentOutcome) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.seen = append(o.seen, observedOutcome{session: session, outcome: outcome})
}

func (o *observerCollector) all() []observedOutcome {
	o.mu.Lock()
	defer o.mu.Unlock()
	return append([]observedOutcome(nil), o.seen...)
}

func syncRunner(task func()) {
	task()
}

func sequentialIDs(prefix string) func() string {
	var mu sync.Mutex
	next := 0
	return func() string {
		mu.Lock()
		defer mu.Unlock()
		next++
		return fmt.Sprintf("%s_%d", prefix, next)
	}
}

type testManagerDeps struct {
	presenter *recordingPresenter
	exchanger *stubExchanger
	recorder  *memoryRecorder
}

func newTestManager(opts ...Option) (*Manager, testManagerDeps) {
	deps := testManagerDeps{
		presenter: &recordingPresenter{},
		exchanger: &stubExchanger{token: "tok_1"},
		recorder:  &memoryRecorder{},
	}
	base := []Option{
		WithBrowserPresenter(deps.presenter),
		WithTokenExchanger(deps.exchanger),
		WithAttemptRecorder(deps.recorder),
		WithAsyncRunner(syncRunner),
		WithSessionIDGenerator(sequentialIDs("sess")),
	}
	return NewManager(append(base, opts...)...), deps
}

func mustConfigure(t *testing.T, m *Manager, cfg Config) {
	t.Helper()
	if err := m.Configure(context.Background(), cfg); err != nil {
		t.Fatalf("configure: %v", err)
	}
}
