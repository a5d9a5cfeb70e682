package command

import (
	"strings"

	"github.com/goliatone/go-setto/core"
)

const (
	TypeConfigure      = "setto.command.configure"
	TypeStartPayment   = "setto.command.payment.start"
	TypeHandleCallback = "setto.command.callback.handle"
	TypeReset          = "setto.command.reset"
	TypePruneAttempts  = "setto.command.attempts.prune"
)

type ConfigureMessage struct {
	Config core.Config
}

func (ConfigureMessage) Type() string { return TypeConfigure }

func (m ConfigureMessage) Validate() error {
	if env := m.Config.Environment; env != "" {
		if _, ok := core.ResolveEndpoints(env); !ok {
			return commandValidationError("environment", "environment must be dev or prod")
		}
	}
	return nil
}

// StartPaymentMessage carries a payment request. Request problems are not
// validation errors: the manager reports them through OnComplete.
type StartPaymentMessage struct {
	Request    core.PaymentRequest
	OnComplete core.CompletionFunc
}

func (StartPaymentMessage) Type() string { return TypeStartPayment }

func (StartPaymentMessage) Validate() error { return nil }

type HandleCallbackMessage struct {
	URL string
}

func (HandleCallbackMessage) Type() string { return TypeHandleCallback }

func (m HandleCallbackMessage) Validate() error {
	if strings.TrimSpace(m.URL) == "" {
		return commandValidationError("url", "callback url is required")
	}
	return nil
}

type ResetMessage struct{}

func (ResetMessage) Type() string { return TypeReset }

func (ResetMessage) Validate() error { return nil }

type PruneAttemptsMessage struct {
	Policy core.AttemptRetentionPolicy
}

func (PruneAttemptsMessage) Type() string { return TypePruneAttempts }

func (m PruneAttemptsMessage) Validate() error {
	if m.Policy.TTL < 0 {
		return commandValidationError("ttl", "ttl must not be negative")
	}
	if m.Policy.RowCap < 0 {
		return commandValidationError("row_cap", "row cap must not be negative")
	}
	if m.Policy.TTL == 0 && m.Policy.RowCap == 0 {
		return commandValidationError("policy", "ttl or row cap is required")
	}
	return nil
}
