package sqlstore

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	repository "github.com/goliatone/go-repository-bun"
	"github.com/goliatone/go-setto/core"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

const (
	defaultAttemptsPerPage = 25
	attemptTable           = "payment_attempt_events"
)

// AttemptStore is the bun-backed payment attempt ledger. Events are append
// only; Seq orders events recorded within the same timestamp.
type AttemptStore struct {
	db   *bun.DB
	repo repository.Repository[*attemptEventRecord]
	now  func() time.Time

	seqMu   sync.Mutex
	lastSeq int64
}

func NewAttemptStore(db *bun.DB) (*AttemptStore, error) {
	if db == nil {
		return nil, fmt.Errorf("sqlstore: bun db is required")
	}
	repo := repository.NewRepository[*attemptEventRecord](db, attemptEventHandlers())
	if validator, ok := repo.(repository.Validator); ok {
		if err := validator.Validate(); err != nil {
			return nil, fmt.Errorf("sqlstore: invalid attempt repository wiring: %w", err)
		}
	}
	return &AttemptStore{
		db:   db,
		repo: repo,
		now:  func() time.Time { return time.Now().UTC() },
	}, nil
}

func (s *AttemptStore) Record(ctx context.Context, event core.AttemptEvent) error {
	if s == nil || s.repo == nil {
		return storeConfigError("sqlstore: attempt store is not configured")
	}
	if strings.TrimSpace(string(event.Type)) == "" {
		return fmt.Errorf("sqlstore: attempt event type is required")
	}
	if strings.TrimSpace(event.SessionID) == "" && event.Type != core.AttemptEventDropped && event.Type != core.AttemptEventRejected {
		return fmt.Errorf("sqlstore: attempt event %q requires a session id", event.Type)
	}
	_, err := s.repo.Create(ctx, s.toRecord(event))
	return err
}

func (s *AttemptStore) List(ctx context.Context, filter core.AttemptFilter) (core.AttemptPage, error) {
	if s == nil || s.repo == nil {
		return core.AttemptPage{}, storeConfigError("sqlstore: attempt store is not configured")
	}
	page := filter.Page
	if page <= 0 {
		page = 1
	}
	perPage := filter.PerPage
	if perPage <= 0 {
		perPage = defaultAttemptsPerPage
	}
	offset := (page - 1) * perPage

	selectors := []repository.SelectCriteria{
		repository.OrderBy("seq DESC"),
		repository.SelectPaginate(perPage, offset),
	}
	if sessionID := strings.TrimSpace(filter.SessionID); sessionID != "" {
		selectors = append(selectors, repository.SelectBy("session_id", "=", sessionID))
	}
	if merchantID := strings.TrimSpace(filter.MerchantID); merchantID != "" {
		selectors = append(selectors, repository.SelectBy("merchant_id", "=", merchantID))
	}
	if eventType := strings.TrimSpace(string(filter.Type)); eventType != "" {
		selectors = append(selectors, repository.SelectBy("event_type", "=", eventType))
	}
	if filter.From != nil {
		selectors = append(selectors, repository.SelectByTimetz("created_at", ">=", filter.From.UTC()))
	}
	if filter.To != nil {
		selectors = append(selectors, repository.SelectByTimetz("created_at", "<=", filter.To.UTC()))
	}

	records, total, err := s.repo.List(ctx, selectors...)
	if err != nil {
		return core.AttemptPage{}, err
	}
	items := make([]core.AttemptEvent, 0, len(records))
	for _, record := range records {
		items = append(items, record.toDomain())
	}
	return core.AttemptPage{
		Items:   items,
		Page:    page,
		PerPage: perPage,
		Total:   total,
		HasNext: offset+len(items) < total,
	}, nil
}

// ListBySession returns a session's events oldest first.
func (s *AttemptStore) ListBySession(ctx context.Context, sessionID string) ([]core.AttemptEvent, error) {
	if s == nil || s.repo == nil {
		return nil, storeConfigError("sqlstore: attempt store is not configured")
	}
	sessionID = strings.TrimSpace(sessionID)
	if sessionID == "" {
		return nil, fmt.Errorf("sqlstore: session id is required")
	}
	records, _, err := s.repo.List(ctx,
		repository.SelectBy("session_id", "=", sessionID),
		repository.OrderBy("seq ASC"),
	)
	if err != nil {
		return nil, err
	}
	events := make([]core.AttemptEvent, 0, len(records))
	for _, record := range records {
		events = append(events, record.toDomain())
	}
	return events, nil
}

func (s *AttemptStore) Latest(ctx context.Context, sessionID string) (core.AttemptEvent, error) {
	if s == nil || s.repo == nil {
		return core.AttemptEvent{}, storeConfigError("sqlstore: attempt store is not configured")
	}
	sessionID = strings.TrimSpace(sessionID)
	records, _, err := s.repo.List(ctx,
		repository.SelectBy("session_id", "=", sessionID),
		repository.OrderBy("seq DESC"),
		repository.SelectPaginate(1, 0),
	)
	if err != nil {
		return core.AttemptEvent{}, err
	}
	if len(records) == 0 {
		return core.AttemptEvent{}, storeNotFoundError(sessionID)
	}
	return records[0].toDomain(), nil
}

// Prune deletes events older than the TTL, then trims the oldest events
// beyond the row cap.
func (s *AttemptStore) Prune(ctx context.Context, policy core.AttemptRetentionPolicy) (int, error) {
	if s == nil || s.db == nil {
		return 0, storeConfigError("sqlstore: attempt store is not configured")
	}
	deleted := 0

	if policy.TTL > 0 {
		cutoff := s.now().Add(-policy.TTL)
		res, err := s.db.NewDelete().
			Model((*attemptEventRecord)(nil)).
			Where("created_at < ?", cutoff).
			Exec(ctx)
		if err != nil {
			return deleted, err
		}
		affected, _ := res.RowsAffected()
		deleted += int(affected)
	}

	if policy.RowCap > 0 {
		total, err := s.db.NewSelect().Model((*attemptEventRecord)(nil)).Count(ctx)
		if err != nil {
			return deleted, err
		}
		excess := total - policy.RowCap
		if excess > 0 {
			res, err := s.db.NewRaw(
				"DELETE FROM "+attemptTable+" WHERE id IN (SELECT id FROM "+attemptTable+" ORDER BY seq ASC LIMIT ?)",
				excess,
			).Exec(ctx)
			if err != nil {
				return deleted, err
			}
			affected, _ := res.RowsAffected()
			deleted += int(affected)
		}
	}

	return deleted, nil
}

func (s *AttemptStore) toRecord(event core.AttemptEvent) *attemptEventRecord {
	id := strings.TrimSpace(event.ID)
	if id == "" {
		id = uuid.NewString()
	}
	createdAt := event.CreatedAt.UTC()
	if event.CreatedAt.IsZero() {
		createdAt = s.now()
	}
	return &attemptEventRecord{
		ID:          id,
		Seq:         s.nextSeq(createdAt),
		SessionID:   strings.TrimSpace(event.SessionID),
		EventType:   string(event.Type),
		Mode:        string(event.Mode),
		Environment: string(event.Environment),
		MerchantID:  strings.TrimSpace(event.MerchantID),
		Amount:      event.Amount,
		OrderID:     event.OrderID,
		Outcome:     string(event.Outcome),
		PaymentID:   event.PaymentID,
		TxHash:      event.TxHash,
		Message:     event.Message,
		Metadata:    core.RedactSensitiveMap(event.Metadata),
		CreatedAt:   createdAt,
	}
}

// nextSeq is strictly increasing within the process and tracks wall time
// across restarts.
func (s *AttemptStore) nextSeq(at time.Time) int64 {
	s.seqMu.Lock()
	defer s.seqMu.Unlock()
	seq := at.UnixNano()
	if seq <= s.lastSeq {
		seq = s.lastSeq + 1
	}
	s.lastSeq = seq
	return seq
}

func (r *attemptEventRecord) toDomain() core.AttemptEvent {
	if r == nil {
		return core.AttemptEvent{}
	}
	return core.AttemptEvent{
		ID:          r.ID,
		SessionID:   r.SessionID,
		Type:        core.AttemptEventType(r.EventType),
		Mode:        core.Mode(r.Mode),
		Environment: core.Environment(r.Environment),
		MerchantID:  r.MerchantID,
		Amount:      r.Amount,
		OrderID:     r.OrderID,
		Outcome:     core.OutcomeKind(r.Outcome),
		PaymentID:   r.PaymentID,
		TxHash:      r.TxHash,
		Message:     r.Message,
		Metadata:    copyAnyMap(r.Metadata),
		CreatedAt:   r.CreatedAt.UTC(),
	}
}

func copyAnyMap(in map[string]any) map[string]any {
	if len(in) == 0 {
		return map[string]any{}
	}
	out := make(map[string]any, len(in))
	for key, value := range in {
		out[key] = value
	}
	return out
}
