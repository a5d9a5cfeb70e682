package exchange

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/goliatone/go-setto/core"
	"github.com/goliatone/go-setto/transport"
)

const (
	fieldPaymentError = "payment_error"
	fieldSystemError  = "system_error"
	fieldPaymentToken = "payment_token"
)

type ClientConfig struct {
	Transport core.TransportAdapter
	// Timeout bounds a single exchange call. Zero leaves the transport default.
	Timeout              time.Duration
	MaxResponseBodyBytes int64
	Headers              map[string]string
}

// Client implements core.TokenExchanger over a core.TransportAdapter.
type Client struct {
	transport            core.TransportAdapter
	timeout              time.Duration
	maxResponseBodyBytes int64
	headers              map[string]string
}

func NewClient(cfg ClientConfig) *Client {
	adapter := cfg.Transport
	if adapter == nil {
		adapter = transport.NewHTTPAdapter(nil)
	}
	headers := make(map[string]string, len(cfg.Headers))
	for key, value := range cfg.Headers {
		if strings.TrimSpace(key) == "" {
			continue
		}
		headers[key] = value
	}
	return &Client{
		transport:            adapter,
		timeout:              cfg.Timeout,
		maxResponseBodyBytes: cfg.MaxResponseBodyBytes,
		headers:              headers,
	}
}

type tokenRequestBody struct {
	MerchantID string `json:"merchant_id"`
	Amount     string `json:"amount"`
	OrderID    string `json:"order_id,omitempty"`
	IdpToken   string `json:"idp_token,omitempty"`
}

// ExchangePaymentToken performs one round trip with no retry. Errors are
// checked in order: transport failure, a body that is not a JSON object, a
// server reported payment_error or system_error, and a missing payment_token.
func (c *Client) ExchangePaymentToken(ctx context.Context, req core.TokenExchangeRequest) (string, error) {
	if c == nil || c.transport == nil {
		return "", core.NewInternalError("exchange: transport is not configured")
	}
	if ctx == nil {
		ctx = context.Background()
	}
	apiBaseURL := strings.TrimSpace(req.APIBaseURL)
	if apiBaseURL == "" {
		return "", core.NewInternalError("exchange: api base url is required")
	}

	body, err := json.Marshal(tokenRequestBody{
		MerchantID: req.MerchantID,
		Amount:     req.Amount,
		OrderID:    req.OrderID,
		IdpToken:   req.IdpToken,
	})
	if err != nil {
		return "", core.NewInternalError(fmt.Sprintf("exchange: encode request: %v", err))
	}

	headers := map[string]string{
		"Content-Type": "application/json",
		"Accept":       "application/json",
	}
	for key, value := range c.headers {
		headers[key] = value
	}

	response, err := c.transport.Do(ctx, core.TransportRequest{
		Method:               http.MethodPost,
		URL:                  core.TokenEndpointURL(apiBaseURL),
		Headers:              headers,
		Body:                 body,
		Timeout:              c.timeout,
		MaxResponseBodyBytes: c.maxResponseBodyBytes,
	})
	if err != nil {
		return "", core.NewNetworkError(err)
	}
	return ParseTokenResponse(response.Body)
}

// ParseTokenResponse interprets a token endpoint reply. The HTTP status is
// not consulted; only the JSON body decides the result.
func ParseTokenResponse(body []byte) (string, error) {
	decoder := json.NewDecoder(bytes.NewReader(body))
	decoder.UseNumber()
	var payload map[string]any
	if err := decoder.Decode(&payload); err != nil {
		return "", core.NewInvalidResponseError(err)
	}
	if payload == nil {
		return "", core.NewInvalidResponseError(nil)
	}

	for _, field := range []string{fieldPaymentError, fieldSystemError} {
		if value, ok := payload[field]; ok {
			return "", core.NewServerReportedError(field, stringifyField(value))
		}
	}

	token, ok := payload[fieldPaymentToken].(string)
	if !ok || token == "" {
		return "", core.NewTokenMissingError()
	}
	return token, nil
}

func stringifyField(value any) string {
	switch typed := value.(type) {
	case nil:
		return ""
	case string:
		return typed
	case json.Number:
		return typed.String()
	default:
		encoded, err := json.Marshal(typed)
		if err != nil {
			return fmt.Sprint(typed)
		}
		return string(encoded)
	}
}

var _ core.TokenExchanger = (*Client)(nil)
