package gojob

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	job "github.com/goliatone/go-job"
	"github.com/goliatone/go-job/queue"
	"github.com/goliatone/go-job/queue/worker"
	glog "github.com/goliatone/go-logger/glog"
	"github.com/goliatone/go-setto/command"
	"github.com/goliatone/go-setto/core"
)

const (
	JobIDPruneAttempts = "setto.attempts.prune"

	paramTTLSeconds = "ttl_seconds"
	paramRowCap     = "row_cap"
)

// RetryPolicy bounds redelivery of a failed prune job.
type RetryPolicy struct {
	MaxAttempts     int
	MaxDelay        time.Duration
	DeadLetterOnMax bool
}

// NormalizeAttempt clamps nack options for the given attempt number.
func (p RetryPolicy) NormalizeAttempt(opts queue.NackOptions, attempt int) queue.NackOptions {
	out := opts
	out.Reason = strings.TrimSpace(out.Reason)
	if out.Delay < 0 {
		out.Delay = 0
	}
	if p.MaxDelay > 0 && out.Delay > p.MaxDelay {
		out.Delay = p.MaxDelay
	}
	if out.DeadLetter {
		out.Requeue = false
	}
	if p.MaxAttempts > 0 && attempt >= p.MaxAttempts {
		out.Requeue = false
		if p.DeadLetterOnMax || out.DeadLetter {
			out.DeadLetter = true
		}
	}
	if !out.Requeue && !out.DeadLetter {
		out.Requeue = true
	}
	return out
}

// NewPruneMessage builds the queue message for one retention pass.
func NewPruneMessage(policy core.AttemptRetentionPolicy, idempotencyKey string) *job.ExecutionMessage {
	return &job.ExecutionMessage{
		JobID:      JobIDPruneAttempts,
		ScriptPath: command.TypePruneAttempts,
		Parameters: map[string]any{
			paramTTLSeconds: int64(policy.TTL / time.Second),
			paramRowCap:     policy.RowCap,
		},
		IdempotencyKey: strings.TrimSpace(idempotencyKey),
		DedupPolicy:    job.DeduplicationPolicy("drop"),
	}
}

// PolicyFromMessage reads the retention policy carried by a prune message.
// Parameters may arrive as Go integers or as JSON-decoded numbers.
func PolicyFromMessage(msg *job.ExecutionMessage) (core.AttemptRetentionPolicy, error) {
	if msg == nil {
		return core.AttemptRetentionPolicy{}, fmt.Errorf("gojob: execution message is required")
	}
	if strings.TrimSpace(msg.JobID) != JobIDPruneAttempts {
		return core.AttemptRetentionPolicy{}, fmt.Errorf("gojob: unexpected job id %q", msg.JobID)
	}
	ttl, err := intParam(msg.Parameters, paramTTLSeconds)
	if err != nil {
		return core.AttemptRetentionPolicy{}, err
	}
	rowCap, err := intParam(msg.Parameters, paramRowCap)
	if err != nil {
		return core.AttemptRetentionPolicy{}, err
	}
	policy := core.AttemptRetentionPolicy{TTL: time.Duration(ttl) * time.Second, RowCap: int(rowCap)}
	if err := (command.PruneAttemptsMessage{Policy: policy}).Validate(); err != nil {
		return core.AttemptRetentionPolicy{}, err
	}
	return policy, nil
}

func intParam(params map[string]any, key string) (int64, error) {
	raw, ok := params[key]
	if !ok || raw == nil {
		return 0, nil
	}
	switch value := raw.(type) {
	case int:
		return int64(value), nil
	case int64:
		return value, nil
	case int32:
		return int64(value), nil
	case float64:
		return int64(value), nil
	case json.Number:
		return value.Int64()
	case string:
		return strconv.ParseInt(strings.TrimSpace(value), 10, 64)
	default:
		return 0, fmt.Errorf("gojob: parameter %s has unsupported type %T", key, raw)
	}
}

// PruneWorker pulls prune jobs from a queue and applies them to the attempt log.
type PruneWorker struct {
	dequeuer queue.Dequeuer
	pruner   core.AttemptPruner
	policy   RetryPolicy
	logger   glog.Logger

	mu       sync.Mutex
	attempts map[string]int
}

func NewPruneWorker(dequeuer queue.Dequeuer, pruner core.AttemptPruner, policy RetryPolicy, logger glog.Logger) *PruneWorker {
	return &PruneWorker{
		dequeuer: dequeuer,
		pruner:   pruner,
		policy:   policy,
		logger:   logger,
		attempts: map[string]int{},
	}
}

// ProcessNext handles one delivery. A malformed message is dead-lettered; a
// prune failure is nacked for retry under the retry policy.
func (w *PruneWorker) ProcessNext(ctx context.Context) (int, error) {
	if w == nil || w.dequeuer == nil || w.pruner == nil {
		return 0, fmt.Errorf("gojob: prune worker is not configured")
	}
	delivery, err := w.dequeuer.Dequeue(ctx)
	if err != nil {
		return 0, err
	}
	msg := delivery.Message()
	policy, err := PolicyFromMessage(msg)
	if err != nil {
		w.logError("prune job rejected", msg, err)
		if nackErr := delivery.Nack(ctx, w.policy.NormalizeAttempt(queue.NackOptions{
			DeadLetter: true,
			Reason:     err.Error(),
		}, 0)); nackErr != nil {
			return 0, nackErr
		}
		return 0, err
	}

	key := attemptKey(msg)
	pruned, err := w.pruner.Prune(ctx, policy)
	if err != nil {
		attempt := w.nextAttempt(key)
		w.logError("prune job failed", msg, err, "attempt", attempt)
		if nackErr := delivery.Nack(ctx, w.policy.NormalizeAttempt(queue.NackOptions{
			Delay:   time.Duration(attempt) * time.Second,
			Requeue: true,
			Reason:  err.Error(),
		}, attempt)); nackErr != nil {
			return 0, nackErr
		}
		return 0, err
	}
	w.clearAttempts(key)
	if w.logger != nil {
		w.logger.Info("prune job completed", "job_id", msg.JobID, "pruned", pruned)
	}
	return pruned, delivery.Ack(ctx)
}

func (w *PruneWorker) nextAttempt(key string) int {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.attempts[key]++
	return w.attempts[key]
}

func (w *PruneWorker) clearAttempts(key string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	delete(w.attempts, key)
}

func (w *PruneWorker) logError(message string, msg *job.ExecutionMessage, err error, args ...any) {
	if w.logger == nil {
		return
	}
	fields := []any{"job_id", jobID(msg), "error", err}
	w.logger.Error(message, append(fields, args...)...)
}

func attemptKey(msg *job.ExecutionMessage) string {
	if msg == nil {
		return ""
	}
	if key := strings.TrimSpace(msg.IdempotencyKey); key != "" {
		return key
	}
	return msg.JobID
}

func jobID(msg *job.ExecutionMessage) string {
	if msg == nil {
		return ""
	}
	return msg.JobID
}

// LoggingHook reports worker lifecycle events through a glog logger.
type LoggingHook struct {
	logger glog.Logger
}

func NewLoggingHook(logger glog.Logger) *LoggingHook {
	return &LoggingHook{logger: logger}
}

func (h *LoggingHook) OnStart(_ context.Context, event worker.Event) {
	h.log("job started", event)
}

func (h *LoggingHook) OnSuccess(_ context.Context, event worker.Event) {
	h.log("job succeeded", event)
}

func (h *LoggingHook) OnFailure(_ context.Context, event worker.Event) {
	if h == nil || h.logger == nil {
		return
	}
	h.logger.Error("job failed", eventArgs(event)...)
}

func (h *LoggingHook) OnRetry(_ context.Context, event worker.Event) {
	h.log("job retry scheduled", event)
}

func (h *LoggingHook) log(message string, event worker.Event) {
	if h == nil || h.logger == nil {
		return
	}
	h.logger.Info(message, eventArgs(event)...)
}

func eventArgs(event worker.Event) []any {
	message := event.Message
	if message == nil && event.Delivery != nil {
		message = event.Delivery.Message()
	}
	args := []any{
		"job_id", jobID(message),
		"attempt", event.Attempt,
		"duration_ms", event.Duration.Milliseconds(),
	}
	if event.Delay > 0 {
		args = append(args, "delay_ms", event.Delay.Milliseconds())
	}
	if event.Err != nil {
		args = append(args, "error", event.Err)
	}
	return args
}

var _ worker.Hook = (*LoggingHook)(nil)
