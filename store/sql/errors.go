package sqlstore

import (
	"net/http"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-setto/core"
)

const AttemptErrorNotFound = "PAYMENT_ATTEMPT_NOT_FOUND"

func storeNotFoundError(sessionID string) error {
	return goerrors.New("sqlstore: no attempt events for session", goerrors.CategoryNotFound).
		WithCode(http.StatusNotFound).
		WithTextCode(AttemptErrorNotFound).
		WithMetadata(map[string]any{"session_id": sessionID})
}

func storeConfigError(message string) error {
	return goerrors.New(message, goerrors.CategoryInternal).
		WithCode(http.StatusInternalServerError).
		WithTextCode(core.PaymentErrorInternal)
}
