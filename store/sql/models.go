package sqlstore

import (
	"time"

	"github.com/uptrace/bun"
)

type attemptEventRecord struct {
	bun.BaseModel `bun:"table:payment_attempt_events,alias:pae"`

	ID          string         `bun:"id,pk"`
	Seq         int64          `bun:"seq,notnull"`
	SessionID   string         `bun:"session_id,notnull"`
	EventType   string         `bun:"event_type,notnull"`
	Mode        string         `bun:"mode,notnull"`
	Environment string         `bun:"environment,notnull"`
	MerchantID  string         `bun:"merchant_id,notnull"`
	Amount      string         `bun:"amount,notnull"`
	OrderID     string         `bun:"order_id,notnull"`
	Outcome     string         `bun:"outcome,notnull"`
	PaymentID   string         `bun:"payment_id,notnull"`
	TxHash      string         `bun:"tx_hash,notnull"`
	Message     string         `bun:"message,notnull"`
	Metadata    map[string]any `bun:"metadata,type:jsonb,notnull"`
	CreatedAt   time.Time      `bun:"created_at,nullzero,notnull,default:current_timestamp"`
}
