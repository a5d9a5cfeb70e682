package core

import (
	"net/http"
	"strings"

	goerrors "github.com/goliatone/go-errors"
)

const (
	PaymentErrorNotInitialized    = "PAYMENT_NOT_INITIALIZED"
	PaymentErrorInvalidRequest    = "PAYMENT_INVALID_REQUEST"
	PaymentErrorInvalidConfig     = "PAYMENT_INVALID_CONFIG"
	PaymentErrorNetwork           = "PAYMENT_NETWORK_ERROR"
	PaymentErrorInvalidResponse   = "PAYMENT_INVALID_RESPONSE"
	PaymentErrorServerReported    = "PAYMENT_SERVER_ERROR"
	PaymentErrorTokenMissing      = "PAYMENT_TOKEN_MISSING"
	PaymentErrorBrowserOpenFailed = "PAYMENT_BROWSER_OPEN_FAILED"
	PaymentErrorCallbackRejected  = "PAYMENT_CALLBACK_REJECTED"
	PaymentErrorInternal          = "PAYMENT_INTERNAL_ERROR"
)

const (
	MessageNotInitialized    = "SDK not initialized"
	MessageNetworkError      = "Network error"
	MessageInvalidResponse   = "Invalid response"
	MessageTokenMissing      = "Payment token not received"
	MessageBrowserOpenFailed = "Failed to open browser"
	MessagePaymentIDMissing  = "Payment ID not received"
)

func NewNotInitializedError() *goerrors.Error {
	return newPaymentError(MessageNotInitialized, goerrors.CategoryBadInput, PaymentErrorNotInitialized)
}

func NewInvalidRequestError(field string, message string) *goerrors.Error {
	return ensurePaymentErrorEnvelope(
		goerrors.NewValidation(message, goerrors.FieldError{
			Field:   field,
			Message: message,
		}).
			WithTextCode(PaymentErrorInvalidRequest).
			WithSeverity(goerrors.SeverityError),
	)
}

func NewInvalidConfigError(cause error) *goerrors.Error {
	if cause == nil {
		return newPaymentError("invalid configuration", goerrors.CategoryValidation, PaymentErrorInvalidConfig)
	}
	return ensurePaymentErrorEnvelope(
		goerrors.Wrap(cause, goerrors.CategoryValidation, "invalid configuration: "+cause.Error()).
			WithTextCode(PaymentErrorInvalidConfig),
	)
}

func NewInternalError(message string) *goerrors.Error {
	return newPaymentError(message, goerrors.CategoryInternal, PaymentErrorInternal)
}

func NewNetworkError(cause error) *goerrors.Error {
	if cause == nil {
		return newPaymentError(MessageNetworkError, goerrors.CategoryExternal, PaymentErrorNetwork)
	}
	return ensurePaymentErrorEnvelope(
		goerrors.Wrap(cause, goerrors.CategoryExternal, MessageNetworkError).
			WithTextCode(PaymentErrorNetwork),
	)
}

func NewInvalidResponseError(cause error) *goerrors.Error {
	if cause == nil {
		return newPaymentError(MessageInvalidResponse, goerrors.CategoryExternal, PaymentErrorInvalidResponse)
	}
	return ensurePaymentErrorEnvelope(
		goerrors.Wrap(cause, goerrors.CategoryExternal, MessageInvalidResponse).
			WithTextCode(PaymentErrorInvalidResponse),
	)
}

// NewServerReportedError carries the backend message verbatim; field names
// the response key it was read from.
func NewServerReportedError(field string, message string) *goerrors.Error {
	err := newPaymentError(message, goerrors.CategoryExternal, PaymentErrorServerReported)
	err.WithMetadata(map[string]any{"field": field})
	return err
}

func NewTokenMissingError() *goerrors.Error {
	return newPaymentError(MessageTokenMissing, goerrors.CategoryExternal, PaymentErrorTokenMissing)
}

func NewBrowserOpenError(cause error) *goerrors.Error {
	if cause == nil {
		return newPaymentError(MessageBrowserOpenFailed, goerrors.CategoryOperation, PaymentErrorBrowserOpenFailed)
	}
	return ensurePaymentErrorEnvelope(
		goerrors.Wrap(cause, goerrors.CategoryOperation, MessageBrowserOpenFailed).
			WithTextCode(PaymentErrorBrowserOpenFailed),
	)
}

func NewCallbackRejectedError(message string, metadata map[string]any) *goerrors.Error {
	err := newPaymentError(message, goerrors.CategoryBadInput, PaymentErrorCallbackRejected)
	if len(metadata) > 0 {
		err.WithMetadata(metadata)
	}
	return err
}

// OutcomeFromError collapses any error into a Failed outcome. Typed payment
// errors keep their host-facing message; anything else uses its error text.
func OutcomeFromError(err error) PaymentOutcome {
	if err == nil {
		return Failed("")
	}
	var richErr *goerrors.Error
	if goerrors.As(err, &richErr) && richErr != nil {
		return Failed(richErr.Message)
	}
	return Failed(err.Error())
}

// ErrorTextCode reports the payment error kind, or PAYMENT_INTERNAL_ERROR for
// untyped errors. It returns "" for nil.
func ErrorTextCode(err error) string {
	if err == nil {
		return ""
	}
	var richErr *goerrors.Error
	if goerrors.As(err, &richErr) && richErr != nil && strings.TrimSpace(richErr.TextCode) != "" {
		return richErr.TextCode
	}
	return PaymentErrorInternal
}

func newPaymentError(message string, category goerrors.Category, textCode string) *goerrors.Error {
	return ensurePaymentErrorEnvelope(
		goerrors.New(message, category).
			WithTextCode(textCode),
	)
}

func ensurePaymentErrorEnvelope(err *goerrors.Error) *goerrors.Error {
	if err == nil {
		return nil
	}
	if err.Code == 0 {
		err.Code = paymentHTTPStatus(err.Category)
	}
	if strings.TrimSpace(err.TextCode) == "" {
		err.TextCode = defaultPaymentTextCode(err.Category)
	}
	if err.Category == goerrors.CategoryInternal && strings.TrimSpace(err.Message) == "" {
		err.Message = "An unexpected error occurred"
	}
	return err
}

func defaultPaymentTextCode(category goerrors.Category) string {
	switch category {
	case goerrors.CategoryBadInput, goerrors.CategoryValidation:
		return PaymentErrorInvalidRequest
	case goerrors.CategoryExternal:
		return PaymentErrorNetwork
	case goerrors.CategoryOperation:
		return PaymentErrorBrowserOpenFailed
	default:
		return PaymentErrorInternal
	}
}

func paymentHTTPStatus(category goerrors.Category) int {
	switch category {
	case goerrors.CategoryBadInput, goerrors.CategoryValidation:
		return http.StatusBadRequest
	case goerrors.CategoryExternal:
		return http.StatusBadGateway
	case goerrors.CategoryOperation:
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}
