package core

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"
)

// HandleCallback parses a callback URL delivered by the platform and hands the
// outcome to the pending session and every observer. The slot is cleared
// before anything is invoked, so no completion callback can ever run twice.
// A callback with no pending session only reaches observers.
func (m *Manager) HandleCallback(ctx context.Context, rawURL string) DeliveryReport {
	if ctx == nil {
		ctx = context.Background()
	}
	startedAt := time.Now().UTC()
	outcome := ParseCallbackURL(rawURL)
	fields := map[string]any{"outcome": string(outcome.Kind)}

	cfg, _ := m.Config()
	if scheme := strings.TrimSpace(cfg.CallbackScheme); scheme != "" && !callbackSchemeMatches(rawURL, scheme) {
		err := NewCallbackRejectedError(
			fmt.Sprintf("core: callback scheme mismatch, expected %s", scheme),
			map[string]any{"expected_scheme": scheme},
		)
		m.observeOperation(ctx, startedAt, "handle_callback", err, fields)
		return DeliveryReport{Status: DeliveryRejected, Outcome: outcome}
	}

	session := m.slot.consume()
	report := m.deliver(ctx, session, outcome)
	fields["session_id"] = report.SessionID
	fields["delivery"] = string(report.Status)
	m.observeOperation(ctx, startedAt, "handle_callback", nil, fields)
	return report
}

// deliver completes a session that has already been removed from the slot and
// broadcasts the outcome. session may be nil.
func (m *Manager) deliver(ctx context.Context, session *pendingSession, outcome PaymentOutcome) DeliveryReport {
	report := DeliveryReport{Status: DeliveryNoSession, Outcome: outcome}
	snapshot := SessionSnapshot{}
	event := AttemptEvent{Type: AttemptEventDropped}
	if session != nil {
		session.stopExchange()
		snapshot = session.snapshot()
		report.Status = DeliveryDelivered
		report.SessionID = session.id
		event = session.event(AttemptEventDelivered)
		m.invokeCompletion(ctx, session.onComplete, outcome, sessionFields(session))
	}
	m.broadcast(ctx, snapshot, outcome)

	event.Outcome = outcome.Kind
	event.PaymentID = outcome.PaymentID
	event.TxHash = outcome.TxHash
	event.Message = outcome.ErrorMessage
	m.record(ctx, event)
	return report
}

func (m *Manager) invokeCompletion(
	ctx context.Context,
	onComplete CompletionFunc,
	outcome PaymentOutcome,
	fields map[string]any,
) {
	if onComplete == nil {
		return
	}
	defer func() {
		if recovered := recover(); recovered != nil {
			panicFields := cloneFields(fields)
			panicFields["panic"] = fmt.Sprint(recovered)
			m.logError(ctx, "payment completion callback panicked", panicFields)
		}
	}()
	onComplete(outcome)
}

func (m *Manager) broadcast(ctx context.Context, session SessionSnapshot, outcome PaymentOutcome) {
	m.observersMu.RLock()
	ids := make([]uint64, 0, len(m.observers))
	for id := range m.observers {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	observers := make([]Observer, 0, len(ids))
	for _, id := range ids {
		observers = append(observers, m.observers[id])
	}
	m.observersMu.RUnlock()

	for _, observer := range observers {
		m.notifyObserver(ctx, observer, session, outcome)
	}
}

func (m *Manager) notifyObserver(ctx context.Context, observer Observer, session SessionSnapshot, outcome PaymentOutcome) {
	defer func() {
		if recovered := recover(); recovered != nil {
			m.logError(ctx, "payment observer panicked", map[string]any{
				"session_id": session.ID,
				"panic":      fmt.Sprint(recovered),
			})
		}
	}()
	observer.PaymentCompleted(ctx, session, outcome)
}

func callbackSchemeMatches(rawURL string, scheme string) bool {
	actual, _, found := strings.Cut(strings.TrimSpace(rawURL), "://")
	if !found {
		return false
	}
	return strings.EqualFold(actual, strings.TrimSuffix(scheme, ":"))
}
