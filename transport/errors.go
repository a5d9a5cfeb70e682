package transport

import (
	"maps"
	"net/http"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-setto/core"
)

// adapterError builds the go-errors value returned by HTTPAdapter. cause may
// be nil. The HTTP status code and text code follow the category, and the
// adapter kind is always present in the metadata.
func adapterError(cause error, category goerrors.Category, message string, metadata map[string]any) error {
	var err *goerrors.Error
	if cause != nil {
		err = goerrors.Wrap(cause, category, message)
	} else {
		err = goerrors.New(message, category)
	}

	fields := map[string]any{"adapter": KindHTTP}
	maps.Copy(fields, metadata)

	status, textCode := http.StatusInternalServerError, core.PaymentErrorInternal
	switch category {
	case goerrors.CategoryBadInput, goerrors.CategoryValidation:
		status, textCode = http.StatusBadRequest, core.PaymentErrorInvalidRequest
	case goerrors.CategoryExternal:
		status, textCode = http.StatusBadGateway, core.PaymentErrorNetwork
	}
	return err.WithCode(status).WithTextCode(textCode).WithMetadata(fields)
}
