package sqlstore

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	goerrors "github.com/goliatone/go-errors"
	repositorycache "github.com/goliatone/go-repository-cache/cache"
	"github.com/goliatone/go-setto/core"
)

type stubAttemptLedger struct {
	mu          sync.Mutex
	latest      map[string]core.AttemptEvent
	latestCalls int
	recorded    []core.AttemptEvent
	pruned      int
	latestErr   error
}

func newStubAttemptLedger() *stubAttemptLedger {
	return &stubAttemptLedger{latest: map[string]core.AttemptEvent{}}
}

func (s *stubAttemptLedger) Record(_ context.Context, event core.AttemptEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.recorded = append(s.recorded, event)
	if event.SessionID != "" {
		s.latest[event.SessionID] = event
	}
	return nil
}

func (s *stubAttemptLedger) List(context.Context, core.AttemptFilter) (core.AttemptPage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return core.AttemptPage{Items: append([]core.AttemptEvent(nil), s.recorded...), Total: len(s.recorded)}, nil
}

func (s *stubAttemptLedger) ListBySession(_ context.Context, sessionID string) ([]core.AttemptEvent, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []core.AttemptEvent{}
	for _, event := range s.recorded {
		if event.SessionID == sessionID {
			out = append(out, event)
		}
	}
	return out, nil
}

func (s *stubAttemptLedger) Latest(_ context.Context, sessionID string) (core.AttemptEvent, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.latestCalls++
	if s.latestErr != nil {
		return core.AttemptEvent{}, s.latestErr
	}
	event, ok := s.latest[sessionID]
	if !ok {
		return core.AttemptEvent{}, storeNotFoundError(sessionID)
	}
	return event, nil
}

func (s *stubAttemptLedger) Prune(context.Context, core.AttemptRetentionPolicy) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.latest = map[string]core.AttemptEvent{}
	return s.pruned, nil
}

func (s *stubAttemptLedger) calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.latestCalls
}

func TestCachedAttemptStore_Latest_MissFetchThenHit(t *testing.T) {
	base := newStubAttemptLedger()
	base.latest["sess_1"] = core.AttemptEvent{
		SessionID: "sess_1",
		Type:      core.AttemptEventOpened,
		Metadata:  map[string]any{"source": "base"},
	}
	store, err := NewCachedAttemptStore(base, newTestAttemptCacheService(t))
	if err != nil {
		t.Fatalf("new cached attempt store: %v", err)
	}

	first, err := store.Latest(context.Background(), "sess_1")
	if err != nil {
		t.Fatalf("first latest: %v", err)
	}
	if first.Type != core.AttemptEventOpened {
		t.Fatalf("unexpected latest event %#v", first)
	}
	first.Metadata["source"] = "mutated"

	second, err := store.Latest(context.Background(), "sess_1")
	if err != nil {
		t.Fatalf("second latest: %v", err)
	}
	if base.calls() != 1 {
		t.Fatalf("expected second latest to hit cache, base calls=%d", base.calls())
	}
	if second.Metadata["source"] != "base" {
		t.Fatalf("expected cached metadata to be isolated from callers, got %#v", second.Metadata)
	}
}

func TestCachedAttemptStore_RecordInvalidatesSession(t *testing.T) {
	base := newStubAttemptLedger()
	store, err := NewCachedAttemptStore(base, newTestAttemptCacheService(t))
	if err != nil {
		t.Fatalf("new cached attempt store: %v", err)
	}
	ctx := context.Background()

	if err := store.Record(ctx, core.AttemptEvent{SessionID: "sess_1", Type: core.AttemptEventStarted}); err != nil {
		t.Fatalf("record started: %v", err)
	}
	if _, err := store.Latest(ctx, "sess_1"); err != nil {
		t.Fatalf("latest after start: %v", err)
	}
	if err := store.Record(ctx, core.AttemptEvent{SessionID: "sess_1", Type: core.AttemptEventDelivered}); err != nil {
		t.Fatalf("record delivered: %v", err)
	}

	latest, err := store.Latest(ctx, "sess_1")
	if err != nil {
		t.Fatalf("latest after delivery: %v", err)
	}
	if latest.Type != core.AttemptEventDelivered {
		t.Fatalf("expected refreshed latest event, got %#v", latest)
	}
	if base.calls() != 2 {
		t.Fatalf("expected record to force a refetch, base calls=%d", base.calls())
	}
}

func TestCachedAttemptStore_PruneInvalidatesCachedSessions(t *testing.T) {
	base := newStubAttemptLedger()
	base.pruned = 3
	base.latest["sess_1"] = core.AttemptEvent{SessionID: "sess_1", Type: core.AttemptEventDelivered}
	store, err := NewCachedAttemptStore(base, newTestAttemptCacheService(t))
	if err != nil {
		t.Fatalf("new cached attempt store: %v", err)
	}
	ctx := context.Background()

	if _, err := store.Latest(ctx, "sess_1"); err != nil {
		t.Fatalf("prime cache: %v", err)
	}
	pruned, err := store.Prune(ctx, core.AttemptRetentionPolicy{RowCap: 1})
	if err != nil {
		t.Fatalf("prune: %v", err)
	}
	if pruned != 3 {
		t.Fatalf("expected pruned count from base store, got %d", pruned)
	}

	_, err = store.Latest(ctx, "sess_1")
	if !isAttemptNotFound(err) {
		t.Fatalf("expected not found after prune, got %v", err)
	}
	if base.calls() != 2 {
		t.Fatalf("expected prune to invalidate the cached session, base calls=%d", base.calls())
	}
}

func TestCachedAttemptStore_PropagatesBaseErrors(t *testing.T) {
	base := newStubAttemptLedger()
	base.latestErr = errors.New("db down")
	store, err := NewCachedAttemptStore(base, newTestAttemptCacheService(t))
	if err != nil {
		t.Fatalf("new cached attempt store: %v", err)
	}
	if _, err := store.Latest(context.Background(), "sess_1"); err == nil || err.Error() != "db down" {
		t.Fatalf("expected base error propagation, got %v", err)
	}
}

func TestNewCachedAttemptStore_RequiresDependencies(t *testing.T) {
	if _, err := NewCachedAttemptStore(nil, newTestAttemptCacheService(t)); err == nil {
		t.Fatalf("expected error for missing base store")
	}
	if _, err := NewCachedAttemptStore(newStubAttemptLedger(), nil); err == nil {
		t.Fatalf("expected error for missing cache service")
	}
}

func TestLatestAttemptCacheKey(t *testing.T) {
	key, err := LatestAttemptCacheKey(" sess/1 ")
	if err != nil {
		t.Fatalf("cache key: %v", err)
	}
	if key != "go-setto::attempt_latest::v1::sess%2F1" {
		t.Fatalf("unexpected cache key %q", key)
	}
	if _, err := LatestAttemptCacheKey("  "); err == nil {
		t.Fatalf("expected error for blank session id")
	}
}

func isAttemptNotFound(err error) bool {
	var rich *goerrors.Error
	return goerrors.As(err, &rich) && rich.TextCode == AttemptErrorNotFound
}

func newTestAttemptCacheService(t *testing.T) repositorycache.CacheService {
	t.Helper()
	config := repositorycache.DefaultConfig()
	config.TTL = time.Minute
	service, err := repositorycache.NewCacheService(config)
	if err != nil {
		t.Fatalf("new cache service: %v", err)
	}
	return service
}
