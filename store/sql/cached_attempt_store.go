package sqlstore

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"sync"

	repositorycache "github.com/goliatone/go-repository-cache/cache"
	"github.com/goliatone/go-setto/core"
)

const latestAttemptCacheKeyPrefix = "go-setto::attempt_latest::v1"

// AttemptLedger is the full read/write surface of an attempt store.
type AttemptLedger interface {
	core.AttemptRecorder
	core.AttemptReader
	core.AttemptPruner
}

// CachedAttemptStore caches Latest lookups. Record invalidates the session's
// entry and Prune invalidates every entry this store has cached.
type CachedAttemptStore struct {
	base  AttemptLedger
	cache repositorycache.CacheService

	mu     sync.Mutex
	cached map[string]struct{}
}

func NewCachedAttemptStore(base AttemptLedger, cacheService repositorycache.CacheService) (*CachedAttemptStore, error) {
	if base == nil {
		return nil, fmt.Errorf("sqlstore: base attempt store is required")
	}
	if cacheService == nil {
		return nil, fmt.Errorf("sqlstore: attempt cache service is required")
	}
	return &CachedAttemptStore{base: base, cache: cacheService, cached: map[string]struct{}{}}, nil
}

// LatestAttemptCacheKey returns go-setto::attempt_latest::v1::<session_id>
// with the session id URL-path escaped.
func LatestAttemptCacheKey(sessionID string) (string, error) {
	sessionID = strings.TrimSpace(sessionID)
	if sessionID == "" {
		return "", fmt.Errorf("sqlstore: session id is required")
	}
	return latestAttemptCacheKeyPrefix + "::" + url.PathEscape(sessionID), nil
}

func (s *CachedAttemptStore) Record(ctx context.Context, event core.AttemptEvent) error {
	if s == nil || s.base == nil || s.cache == nil {
		return storeConfigError("sqlstore: cached attempt store is not configured")
	}
	if err := s.base.Record(ctx, event); err != nil {
		return err
	}
	if strings.TrimSpace(event.SessionID) == "" {
		return nil
	}
	cacheKey, err := LatestAttemptCacheKey(event.SessionID)
	if err != nil {
		return err
	}
	return s.invalidate(ctx, cacheKey)
}

func (s *CachedAttemptStore) Latest(ctx context.Context, sessionID string) (core.AttemptEvent, error) {
	if s == nil || s.base == nil || s.cache == nil {
		return core.AttemptEvent{}, storeConfigError("sqlstore: cached attempt store is not configured")
	}
	cacheKey, err := LatestAttemptCacheKey(sessionID)
	if err != nil {
		return core.AttemptEvent{}, err
	}
	event, err := repositorycache.GetOrFetch(ctx, s.cache, cacheKey, func(ctx context.Context) (core.AttemptEvent, error) {
		fetched, fetchErr := s.base.Latest(ctx, sessionID)
		if fetchErr != nil {
			return core.AttemptEvent{}, fetchErr
		}
		return cloneAttemptEvent(fetched), nil
	})
	if err != nil {
		return core.AttemptEvent{}, err
	}
	s.mu.Lock()
	s.cached[cacheKey] = struct{}{}
	s.mu.Unlock()
	return cloneAttemptEvent(event), nil
}

func (s *CachedAttemptStore) List(ctx context.Context, filter core.AttemptFilter) (core.AttemptPage, error) {
	if s == nil || s.base == nil {
		return core.AttemptPage{}, storeConfigError("sqlstore: cached attempt store is not configured")
	}
	return s.base.List(ctx, filter)
}

func (s *CachedAttemptStore) ListBySession(ctx context.Context, sessionID string) ([]core.AttemptEvent, error) {
	if s == nil || s.base == nil {
		return nil, storeConfigError("sqlstore: cached attempt store is not configured")
	}
	return s.base.ListBySession(ctx, sessionID)
}

func (s *CachedAttemptStore) Prune(ctx context.Context, policy core.AttemptRetentionPolicy) (int, error) {
	if s == nil || s.base == nil || s.cache == nil {
		return 0, storeConfigError("sqlstore: cached attempt store is not configured")
	}
	pruned, err := s.base.Prune(ctx, policy)
	if err != nil {
		return pruned, err
	}
	s.mu.Lock()
	keys := make([]string, 0, len(s.cached))
	for key := range s.cached {
		keys = append(keys, key)
	}
	s.mu.Unlock()
	for _, key := range keys {
		if err := s.invalidate(ctx, key); err != nil {
			return pruned, err
		}
	}
	return pruned, nil
}

func (s *CachedAttemptStore) invalidate(ctx context.Context, cacheKey string) error {
	if err := s.cache.Delete(ctx, cacheKey); err != nil {
		return err
	}
	s.mu.Lock()
	delete(s.cached, cacheKey)
	s.mu.Unlock()
	return nil
}

func cloneAttemptEvent(event core.AttemptEvent) core.AttemptEvent {
	cloned := event
	cloned.Metadata = copyAnyMap(event.Metadata)
	return cloned
}
