package prometheus

import (
	"context"
	"errors"

	"github.com/goliatone/go-setto/core"
	promclient "github.com/prometheus/client_golang/prometheus"
)

var labelNames = []string{"name", "operation", "status", "mode", "environment", "outcome"}

// DefaultDurationBuckets are in milliseconds. Token exchanges dominate the
// upper range.
var DefaultDurationBuckets = []float64{1, 5, 10, 25, 50, 100, 250, 500, 1000, 2500, 5000, 10000, 30000}

type Option func(*recorderConfig)

type recorderConfig struct {
	namespace  string
	registerer promclient.Registerer
	buckets    []float64
}

func WithNamespace(namespace string) Option {
	return func(cfg *recorderConfig) {
		cfg.namespace = namespace
	}
}

// WithRegisterer registers the collectors on r instead of the default registry.
func WithRegisterer(r promclient.Registerer) Option {
	return func(cfg *recorderConfig) {
		cfg.registerer = r
	}
}

func WithBuckets(buckets []float64) Option {
	return func(cfg *recorderConfig) {
		if len(buckets) > 0 {
			cfg.buckets = append([]float64(nil), buckets...)
		}
	}
}

// Recorder implements core.MetricsRecorder over a prometheus CounterVec and
// HistogramVec. Metric names emitted by the manager become the "name" label.
type Recorder struct {
	counters  *promclient.CounterVec
	durations *promclient.HistogramVec
}

func NewRecorder(opts ...Option) (*Recorder, error) {
	cfg := recorderConfig{
		namespace:  "setto",
		registerer: promclient.DefaultRegisterer,
		buckets:    DefaultDurationBuckets,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}

	counters := promclient.NewCounterVec(
		promclient.CounterOpts{
			Namespace: cfg.namespace,
			Name:      "events_total",
			Help:      "Payment SDK operation counters",
		},
		labelNames,
	)
	durations := promclient.NewHistogramVec(
		promclient.HistogramOpts{
			Namespace: cfg.namespace,
			Name:      "operation_duration_ms",
			Help:      "Payment SDK operation latency in milliseconds",
			Buckets:   cfg.buckets,
		},
		labelNames,
	)

	if cfg.registerer != nil {
		var err error
		if counters, err = register(cfg.registerer, counters); err != nil {
			return nil, err
		}
		if durations, err = register(cfg.registerer, durations); err != nil {
			return nil, err
		}
	}
	return &Recorder{counters: counters, durations: durations}, nil
}

// register reuses an identical collector already present on r.
func register[C promclient.Collector](r promclient.Registerer, collector C) (C, error) {
	if err := r.Register(collector); err != nil {
		var already promclient.AlreadyRegisteredError
		if errors.As(err, &already) {
			if existing, ok := already.ExistingCollector.(C); ok {
				return existing, nil
			}
		}
		return collector, err
	}
	return collector, nil
}

func (r *Recorder) IncCounter(_ context.Context, name string, value int64, tags map[string]string) {
	if r == nil || value <= 0 {
		return
	}
	r.counters.With(labels(name, tags)).Add(float64(value))
}

func (r *Recorder) ObserveHistogram(_ context.Context, name string, value float64, tags map[string]string) {
	if r == nil {
		return
	}
	r.durations.With(labels(name, tags)).Observe(value)
}

func labels(name string, tags map[string]string) promclient.Labels {
	return promclient.Labels{
		"name":        name,
		"operation":   tags["operation"],
		"status":      tags["status"],
		"mode":        tags["mode"],
		"environment": tags["environment"],
		"outcome":     tags["outcome"],
	}
}

var _ core.MetricsRecorder = (*Recorder)(nil)
