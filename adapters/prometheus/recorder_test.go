package prometheus

import (
	"context"
	"testing"

	"github.com/goliatone/go-setto/core"
	promclient "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

type presenterFunc func(ctx context.Context, rawURL string) error

func (f presenterFunc) Open(ctx context.Context, rawURL string) error { return f(ctx, rawURL) }

func TestRecorder_CountsManagerOperations(t *testing.T) {
	registry := promclient.NewRegistry()
	recorder, err := NewRecorder(WithRegisterer(registry))
	if err != nil {
		t.Fatalf("new recorder: %v", err)
	}
	manager := core.NewManager(
		core.WithMetricsRecorder(recorder),
		core.WithBrowserPresenter(presenterFunc(func(context.Context, string) error { return nil })),
	)
	if err := manager.Configure(context.Background(), core.Config{Environment: core.EnvironmentDev}); err != nil {
		t.Fatalf("configure: %v", err)
	}
	manager.StartPayment(context.Background(), core.PaymentRequest{MerchantID: "m", Amount: "1"}, nil)
	manager.StartPayment(context.Background(), core.PaymentRequest{MerchantID: "m", Amount: "2"}, nil)

	started := recorder.counters.With(promclient.Labels{
		"name":        "setto.start_payment.total",
		"operation":   "start_payment",
		"status":      "success",
		"mode":        "simple",
		"environment": "dev",
		"outcome":     "",
	})
	if got := testutil.ToFloat64(started); got != 2 {
		t.Fatalf("expected two successful starts, got %v", got)
	}
	if count := testutil.CollectAndCount(recorder.durations); count == 0 {
		t.Fatalf("expected duration observations")
	}
}

func TestRecorder_ReusesRegisteredCollectors(t *testing.T) {
	registry := promclient.NewRegistry()
	first, err := NewRecorder(WithRegisterer(registry), WithNamespace("shop"))
	if err != nil {
		t.Fatalf("first recorder: %v", err)
	}
	second, err := NewRecorder(WithRegisterer(registry), WithNamespace("shop"))
	if err != nil {
		t.Fatalf("second recorder: %v", err)
	}

	first.IncCounter(context.Background(), "setto.handle_callback.total", 1, map[string]string{"operation": "handle_callback", "status": "success"})
	second.IncCounter(context.Background(), "setto.handle_callback.total", 2, map[string]string{"operation": "handle_callback", "status": "success"})
	second.IncCounter(context.Background(), "setto.handle_callback.total", 0, map[string]string{"operation": "handle_callback", "status": "success"})

	counter := first.counters.With(labels("setto.handle_callback.total", map[string]string{"operation": "handle_callback", "status": "success"}))
	if got := testutil.ToFloat64(counter); got != 3 {
		t.Fatalf("expected shared counter value 3, got %v", got)
	}
}

func TestRecorder_NilSafeAndUnregistered(t *testing.T) {
	var nilRecorder *Recorder
	nilRecorder.IncCounter(context.Background(), "x", 1, nil)
	nilRecorder.ObserveHistogram(context.Background(), "x", 1, nil)

	recorder, err := NewRecorder(WithRegisterer(nil), WithBuckets([]float64{1, 10}))
	if err != nil {
		t.Fatalf("unregistered recorder: %v", err)
	}
	recorder.ObserveHistogram(context.Background(), "setto.token_exchange.duration_ms", 5, map[string]string{"operation": "token_exchange"})
	if count := testutil.CollectAndCount(recorder.durations); count != 1 {
		t.Fatalf("expected one histogram series, got %d", count)
	}
}
