package inbound

import (
	"net/http"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-setto/core"
)

const (
	InboundErrorReceiverClosed = "INBOUND_RECEIVER_CLOSED"
	InboundErrorReceiverFull   = "INBOUND_RECEIVER_FULL"
)

// receiverError maps a text code to its category and HTTP status so the
// loopback router can answer with the matching code.
func receiverError(textCode string, message string, metadata map[string]any) error {
	category, status := goerrors.CategoryInternal, http.StatusInternalServerError
	switch textCode {
	case core.PaymentErrorCallbackRejected:
		category, status = goerrors.CategoryBadInput, http.StatusBadRequest
	case InboundErrorReceiverClosed, InboundErrorReceiverFull:
		category, status = goerrors.CategoryOperation, http.StatusServiceUnavailable
	}
	err := goerrors.New(message, category).WithCode(status).WithTextCode(textCode)
	if len(metadata) > 0 {
		return err.WithMetadata(metadata)
	}
	return err
}
