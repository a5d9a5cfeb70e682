package gojob

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	job "github.com/goliatone/go-job"
	"github.com/goliatone/go-job/queue"
	"github.com/goliatone/go-job/queue/worker"
	glog "github.com/goliatone/go-logger/glog"
	"github.com/goliatone/go-setto/core"
)

func TestPruneMessageRoundTrip(t *testing.T) {
	policy := core.AttemptRetentionPolicy{TTL: 72 * time.Hour, RowCap: 5000}
	msg := NewPruneMessage(policy, " nightly ")

	if msg.JobID != JobIDPruneAttempts || msg.ScriptPath != "setto.command.attempts.prune" {
		t.Fatalf("unexpected job identity %q %q", msg.JobID, msg.ScriptPath)
	}
	if msg.IdempotencyKey != "nightly" {
		t.Fatalf("expected trimmed idempotency key, got %q", msg.IdempotencyKey)
	}
	decoded, err := PolicyFromMessage(msg)
	if err != nil {
		t.Fatalf("policy from message: %v", err)
	}
	if decoded != policy {
		t.Fatalf("expected %#v, got %#v", policy, decoded)
	}
}

func TestPolicyFromMessage_AcceptsDecodedNumbers(t *testing.T) {
	cases := []map[string]any{
		{"ttl_seconds": float64(60), "row_cap": float64(10)},
		{"ttl_seconds": json.Number("60"), "row_cap": json.Number("10")},
		{"ttl_seconds": "60", "row_cap": "10"},
	}
	for _, params := range cases {
		policy, err := PolicyFromMessage(&job.ExecutionMessage{JobID: JobIDPruneAttempts, Parameters: params})
		if err != nil {
			t.Fatalf("decode %#v: %v", params, err)
		}
		if policy.TTL != time.Minute || policy.RowCap != 10 {
			t.Fatalf("unexpected policy %#v", policy)
		}
	}
}

func TestPolicyFromMessage_RejectsInvalidMessages(t *testing.T) {
	invalid := []*job.ExecutionMessage{
		nil,
		{JobID: "other.job"},
		{JobID: JobIDPruneAttempts},
		{JobID: JobIDPruneAttempts, Parameters: map[string]any{"ttl_seconds": -5}},
		{JobID: JobIDPruneAttempts, Parameters: map[string]any{"row_cap": []string{"x"}}},
	}
	for _, msg := range invalid {
		if _, err := PolicyFromMessage(msg); err == nil {
			t.Fatalf("expected %#v to be rejected", msg)
		}
	}
}

func TestNackRetryPolicyBoundaries(t *testing.T) {
	policy := RetryPolicy{MaxAttempts: 3, MaxDelay: 10 * time.Second, DeadLetterOnMax: true}

	early := policy.NormalizeAttempt(queue.NackOptions{Delay: 30 * time.Second, Requeue: true, Reason: " transient "}, 1)
	if early.Delay != 10*time.Second || !early.Requeue || early.DeadLetter || early.Reason != "transient" {
		t.Fatalf("unexpected early nack %#v", early)
	}
	final := policy.NormalizeAttempt(queue.NackOptions{Delay: time.Second, Requeue: true}, 3)
	if final.Requeue || !final.DeadLetter {
		t.Fatalf("expected dead letter at max attempts, got %#v", final)
	}
	negative := RetryPolicy{}.NormalizeAttempt(queue.NackOptions{Delay: -time.Second}, 0)
	if negative.Delay != 0 || !negative.Requeue {
		t.Fatalf("expected clamped delay and default requeue, got %#v", negative)
	}
}

func TestPruneWorker_AcksSuccessfulPrune(t *testing.T) {
	delivery := &stubQueueDelivery{msg: NewPruneMessage(core.AttemptRetentionPolicy{RowCap: 100}, "k1")}
	pruner := &stubPruner{pruned: 12}
	w := NewPruneWorker(&stubQueueDequeuer{delivery: delivery}, pruner, RetryPolicy{}, glog.Nop())

	pruned, err := w.ProcessNext(context.Background())
	if err != nil {
		t.Fatalf("process: %v", err)
	}
	if pruned != 12 || !delivery.acked {
		t.Fatalf("expected ack with 12 pruned rows, got pruned=%d acked=%v", pruned, delivery.acked)
	}
	if pruner.policy.RowCap != 100 {
		t.Fatalf("expected row cap forwarded, got %#v", pruner.policy)
	}
}

func TestPruneWorker_RetriesThenDeadLetters(t *testing.T) {
	delivery := &stubQueueDelivery{msg: NewPruneMessage(core.AttemptRetentionPolicy{TTL: time.Hour}, "k2")}
	pruner := &stubPruner{err: errors.New("database locked")}
	w := NewPruneWorker(&stubQueueDequeuer{delivery: delivery}, pruner, RetryPolicy{MaxAttempts: 2, DeadLetterOnMax: true}, nil)

	if _, err := w.ProcessNext(context.Background()); err == nil {
		t.Fatalf("expected prune failure")
	}
	if !delivery.nackOpts.Requeue || delivery.nackOpts.DeadLetter {
		t.Fatalf("expected first failure to requeue, got %#v", delivery.nackOpts)
	}
	if _, err := w.ProcessNext(context.Background()); err == nil {
		t.Fatalf("expected second prune failure")
	}
	if delivery.nackOpts.Requeue || !delivery.nackOpts.DeadLetter {
		t.Fatalf("expected dead letter on second failure, got %#v", delivery.nackOpts)
	}
}

func TestPruneWorker_DeadLettersMalformedMessage(t *testing.T) {
	delivery := &stubQueueDelivery{msg: &job.ExecutionMessage{JobID: "unknown"}}
	w := NewPruneWorker(&stubQueueDequeuer{delivery: delivery}, &stubPruner{}, RetryPolicy{}, glog.Nop())

	if _, err := w.ProcessNext(context.Background()); err == nil {
		t.Fatalf("expected malformed message error")
	}
	if !delivery.nackOpts.DeadLetter || delivery.nackOpts.Requeue {
		t.Fatalf("expected dead letter, got %#v", delivery.nackOpts)
	}
	if _, err := NewPruneWorker(nil, nil, RetryPolicy{}, nil).ProcessNext(context.Background()); err == nil {
		t.Fatalf("expected unconfigured worker error")
	}
}

func TestLoggingHook_ReportsEvents(t *testing.T) {
	logger := &capturingLogger{}
	hook := NewLoggingHook(logger)
	event := worker.Event{
		Message:  NewPruneMessage(core.AttemptRetentionPolicy{RowCap: 1}, ""),
		Attempt:  2,
		Delay:    5 * time.Second,
		Err:      errors.New("retry"),
		Duration: 250 * time.Millisecond,
	}

	hook.OnRetry(context.Background(), event)
	hook.OnFailure(context.Background(), event)

	if logger.lastInfo.msg != "job retry scheduled" || logger.lastError.msg != "job failed" {
		t.Fatalf("unexpected log calls info=%q error=%q", logger.lastInfo.msg, logger.lastError.msg)
	}
	args := logger.lastInfo.args
	if args[0] != "job_id" || args[1] != JobIDPruneAttempts || args[3] != 2 {
		t.Fatalf("unexpected hook args %#v", args)
	}
}

type stubPruner struct {
	pruned int
	err    error
	policy core.AttemptRetentionPolicy
}

func (p *stubPruner) Prune(_ context.Context, policy core.AttemptRetentionPolicy) (int, error) {
	p.policy = policy
	return p.pruned, p.err
}

type stubQueueDequeuer struct {
	delivery queue.Delivery
}

func (s *stubQueueDequeuer) Dequeue(context.Context) (queue.Delivery, error) {
	return s.delivery, nil
}

type stubQueueDelivery struct {
	msg      *job.ExecutionMessage
	acked    bool
	nackOpts queue.NackOptions
}

func (s *stubQueueDelivery) Message() *job.ExecutionMessage {
	return s.msg
}

func (s *stubQueueDelivery) Ack(context.Context) error {
	s.acked = true
	return nil
}

func (s *stubQueueDelivery) Nack(_ context.Context, opts queue.NackOptions) error {
	s.nackOpts = opts
	return nil
}

type logCall struct {
	msg  string
	args []any
}

type capturingLogger struct {
	lastInfo  logCall
	lastError logCall
}

func (l *capturingLogger) Trace(string, ...any) {}
func (l *capturingLogger) Debug(string, ...any) {}
func (l *capturingLogger) Warn(string, ...any)  {}
func (l *capturingLogger) Fatal(string, ...any) {}

func (l *capturingLogger) Info(msg string, args ...any) {
	l.lastInfo = logCall{msg: msg, args: append([]any(nil), args...)}
}

func (l *capturingLogger) Error(msg string, args ...any) {
	l.lastError = logCall{msg: msg, args: append([]any(nil), args...)}
}

func (l *capturingLogger) WithContext(context.Context) glog.Logger {
	return l
}

var _ glog.Logger = (*capturingLogger)(nil)
