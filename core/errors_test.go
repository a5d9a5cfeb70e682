package core

import (
	stderrors "errors"
	"net/http"
	"testing"

	goerrors "github.com/goliatone/go-errors"
)

func TestPaymentErrors_AssignStableCodes(t *testing.T) {
	cases := []struct {
		name     string
		err      *goerrors.Error
		textCode string
		status   int
		message  string
	}{
		{name: "not initialized", err: NewNotInitializedError(), textCode: PaymentErrorNotInitialized, status: http.StatusBadRequest, message: "SDK not initialized"},
		{name: "invalid request", err: NewInvalidRequestError("amount", "Amount is required"), textCode: PaymentErrorInvalidRequest, status: http.StatusBadRequest, message: "Amount is required"},
		{name: "network", err: NewNetworkError(stderrors.New("dial")), textCode: PaymentErrorNetwork, status: http.StatusBadGateway, message: "Network error"},
		{name: "invalid response", err: NewInvalidResponseError(stderrors.New("eof")), textCode: PaymentErrorInvalidResponse, status: http.StatusBadGateway, message: "Invalid response"},
		{name: "server reported", err: NewServerReportedError("message", "merchant disabled"), textCode: PaymentErrorServerReported, status: http.StatusBadGateway, message: "merchant disabled"},
		{name: "token missing", err: NewTokenMissingError(), textCode: PaymentErrorTokenMissing, status: http.StatusBadGateway, message: "Payment token not received"},
		{name: "browser", err: NewBrowserOpenError(stderrors.New("xdg-open")), textCode: PaymentErrorBrowserOpenFailed, status: http.StatusUnprocessableEntity, message: "Failed to open browser"},
		{name: "internal", err: NewInternalError(""), textCode: PaymentErrorInternal, status: http.StatusInternalServerError, message: "An unexpected error occurred"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if tc.err.TextCode != tc.textCode {
				t.Fatalf("expected text code %q, got %q", tc.textCode, tc.err.TextCode)
			}
			if tc.err.Code != tc.status {
				t.Fatalf("expected status %d, got %d", tc.status, tc.err.Code)
			}
			if tc.err.Message != tc.message {
				t.Fatalf("expected message %q, got %q", tc.message, tc.err.Message)
			}
		})
	}
}

func TestOutcomeFromError(t *testing.T) {
	if got := OutcomeFromError(NewServerReportedError("system_error", "rate_limited")); got != Failed("rate_limited") {
		t.Fatalf("expected server message verbatim, got %#v", got)
	}
	wrapped := stderrors.Join(stderrors.New("context"), NewTokenMissingError())
	if got := OutcomeFromError(wrapped); got != Failed(MessageTokenMissing) {
		t.Fatalf("expected wrapped payment error message, got %#v", got)
	}
	if got := OutcomeFromError(stderrors.New("plain")); got != Failed("plain") {
		t.Fatalf("expected plain error text, got %#v", got)
	}
	if got := OutcomeFromError(nil); !got.IsFailed() {
		t.Fatalf("expected failed outcome for nil error, got %#v", got)
	}
}

func TestErrorTextCode(t *testing.T) {
	if got := ErrorTextCode(nil); got != "" {
		t.Fatalf("expected empty code for nil, got %q", got)
	}
	if got := ErrorTextCode(stderrors.New("x")); got != PaymentErrorInternal {
		t.Fatalf("expected internal code for untyped error, got %q", got)
	}
	if got := ErrorTextCode(NewInvalidConfigError(stderrors.New("bad env"))); got != PaymentErrorInvalidConfig {
		t.Fatalf("expected invalid config code, got %q", got)
	}
}

func TestNetworkErrorKeepsCause(t *testing.T) {
	cause := stderrors.New("connection refused")
	err := NewNetworkError(cause)
	if !stderrors.Is(err, cause) {
		t.Fatalf("expected network error to wrap its cause")
	}
}

func TestServerReportedErrorCarriesField(t *testing.T) {
	err := NewServerReportedError("system_error", "rate_limited")
	if err.Metadata["field"] != "system_error" {
		t.Fatalf("expected field metadata, got %#v", err.Metadata)
	}
}
