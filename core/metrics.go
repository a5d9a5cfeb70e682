package core

import (
	"context"
	"fmt"
	"strings"
	"time"
)

const metricNamespace = "setto"

const (
	metricStatusSuccess = "success"
	metricStatusFailure = "failure"
)

// metricTagKeys are the session fields promoted to metric tags. Everything
// else stays in logs only, so tag cardinality is bounded by the enums.
var metricTagKeys = []string{"mode", "environment", "outcome"}

// NopMetricsRecorder drops every sample. It is the Manager default.
type NopMetricsRecorder struct{}

func (NopMetricsRecorder) IncCounter(context.Context, string, int64, map[string]string) {}

func (NopMetricsRecorder) ObserveHistogram(context.Context, string, float64, map[string]string) {}

func operationMetricName(operation string, suffix string) string {
	return metricNamespace + "." + operation + "." + suffix
}

func operationTags(operation string, status string, fields map[string]any) map[string]string {
	tags := map[string]string{
		"operation": operation,
		"status":    status,
	}
	for _, key := range metricTagKeys {
		raw, ok := fields[key]
		if !ok || raw == nil {
			continue
		}
		if value := strings.TrimSpace(fmt.Sprint(raw)); value != "" {
			tags[key] = value
		}
	}
	return tags
}

// recordOperation emits the total counter and the duration histogram for one
// manager operation.
func (m *Manager) recordOperation(ctx context.Context, operation string, status string, elapsed time.Duration, fields map[string]any) {
	if m == nil || m.metricsRecorder == nil {
		return
	}
	tags := operationTags(operation, status, fields)
	m.metricsRecorder.IncCounter(ctx, operationMetricName(operation, "total"), 1, cloneTags(tags))
	m.metricsRecorder.ObserveHistogram(ctx, operationMetricName(operation, "duration_ms"), float64(elapsed.Milliseconds()), cloneTags(tags))
}

func cloneTags(tags map[string]string) map[string]string {
	copied := make(map[string]string, len(tags))
	for key, value := range tags {
		copied[key] = value
	}
	return copied
}

var _ MetricsRecorder = NopMetricsRecorder{}
