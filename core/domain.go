package core

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

type Mode string

const (
	// ModeSimple encodes the payment parameters directly in the redirect query string.
	ModeSimple Mode = "simple"
	// ModeFull exchanges the request for a payment token carried in the URL fragment.
	ModeFull Mode = "full"
)

type SessionState string

const (
	SessionStateIdle                  SessionState = "idle"
	SessionStateAwaitingTokenExchange SessionState = "awaiting_token_exchange"
	SessionStateAwaitingCallback      SessionState = "awaiting_callback"
)

type PaymentRequest struct {
	MerchantID string
	// Amount is a decimal string forwarded verbatim.
	Amount   string
	OrderID  string
	Currency string
	// IdpToken overrides Config.IdpToken for this payment when non-empty.
	IdpToken string
}

// FormatAmount renders a float amount with exactly two decimal digits.
func FormatAmount(amount float64) string {
	return decimal.NewFromFloat(amount).StringFixed(2)
}

type OutcomeKind string

const (
	OutcomeSuccess   OutcomeKind = "success"
	OutcomeFailed    OutcomeKind = "failed"
	OutcomeCancelled OutcomeKind = "cancelled"
)

// PaymentOutcome is the result delivered to the completion callback. Only the
// fields matching Kind are populated.
type PaymentOutcome struct {
	Kind         OutcomeKind
	PaymentID    string
	TxHash       string
	FromAddress  string
	ToAddress    string
	Amount       string
	ChainID      int64
	TokenSymbol  string
	ErrorMessage string
}

type SuccessDetails struct {
	PaymentID   string
	TxHash      string
	FromAddress string
	ToAddress   string
	Amount      string
	ChainID     int64
	TokenSymbol string
}

func Success(details SuccessDetails) PaymentOutcome {
	return PaymentOutcome{
		Kind:        OutcomeSuccess,
		PaymentID:   details.PaymentID,
		TxHash:      details.TxHash,
		FromAddress: details.FromAddress,
		ToAddress:   details.ToAddress,
		Amount:      details.Amount,
		ChainID:     details.ChainID,
		TokenSymbol: details.TokenSymbol,
	}
}

func Failed(message string) PaymentOutcome {
	return PaymentOutcome{Kind: OutcomeFailed, ErrorMessage: message}
}

func Cancelled() PaymentOutcome {
	return PaymentOutcome{Kind: OutcomeCancelled}
}

func (o PaymentOutcome) IsSuccess() bool { return o.Kind == OutcomeSuccess }

func (o PaymentOutcome) IsFailed() bool { return o.Kind == OutcomeFailed }

func (o PaymentOutcome) IsCancelled() bool { return o.Kind == OutcomeCancelled }

// CompletionFunc receives the single outcome of one StartPayment call.
type CompletionFunc func(outcome PaymentOutcome)

// SessionSnapshot is a read-only copy of the pending session.
type SessionSnapshot struct {
	ID          string
	Mode        Mode
	State       SessionState
	Environment Environment
	MerchantID  string
	Amount      string
	OrderID     string
	Currency    string
	StartedAt   time.Time
}

type StartResult struct {
	SessionID string
	Mode      Mode
	// Accepted is false when the request failed synchronously.
	Accepted bool
}

type DeliveryStatus string

const (
	DeliveryDelivered DeliveryStatus = "delivered"
	// DeliveryNoSession means the outcome reached observers only.
	DeliveryNoSession DeliveryStatus = "no_session"
	DeliveryRejected  DeliveryStatus = "rejected"
)

type DeliveryReport struct {
	Status    DeliveryStatus
	SessionID string
	Outcome   PaymentOutcome
}

// Observer receives every dispatched outcome, independent of the one-shot
// completion callback. Session is zero valued when no session was pending.
type Observer interface {
	PaymentCompleted(ctx context.Context, session SessionSnapshot, outcome PaymentOutcome)
}

type ObserverFunc func(ctx context.Context, session SessionSnapshot, outcome PaymentOutcome)

func (f ObserverFunc) PaymentCompleted(ctx context.Context, session SessionSnapshot, outcome PaymentOutcome) {
	if f != nil {
		f(ctx, session, outcome)
	}
}

type AttemptEventType string

const (
	AttemptEventRejected    AttemptEventType = "rejected"
	AttemptEventStarted     AttemptEventType = "started"
	AttemptEventSuperseded  AttemptEventType = "superseded"
	AttemptEventTokenIssued AttemptEventType = "token_issued"
	AttemptEventOpened      AttemptEventType = "opened"
	AttemptEventDelivered   AttemptEventType = "delivered"
	AttemptEventDropped     AttemptEventType = "dropped"
	AttemptEventReset       AttemptEventType = "reset"
)

// AttemptEvent is one append-only audit entry of a payment session lifecycle.
type AttemptEvent struct {
	ID          string
	SessionID   string
	Type        AttemptEventType
	Mode        Mode
	Environment Environment
	MerchantID  string
	Amount      string
	OrderID     string
	Outcome     OutcomeKind
	PaymentID   string
	TxHash      string
	Message     string
	Metadata    map[string]any
	CreatedAt   time.Time
}

type AttemptFilter struct {
	SessionID  string
	MerchantID string
	Type       AttemptEventType
	From       *time.Time
	To         *time.Time
	Page       int
	PerPage    int
}

type AttemptPage struct {
	Items   []AttemptEvent
	Page    int
	PerPage int
	Total   int
	HasNext bool
}

type AttemptRetentionPolicy struct {
	TTL    time.Duration
	RowCap int
}
