package core

import (
	"net/url"
	"strconv"
	"strings"
)

const (
	callbackStatusSuccess = "success"
	callbackStatusFailed  = "failed"
)

// legacyCallbackAliases maps the camelCase keys emitted by older payment
// pages onto the current names. Current names always win.
var legacyCallbackAliases = map[string]string{
	"payment_id": "paymentId",
	"tx_hash":    "txId",
}

// ParseCallbackURL converts a raw callback URL into an outcome. It never
// fails: anything it cannot read as success or failure is Cancelled.
func ParseCallbackURL(rawURL string) PaymentOutcome {
	_, tail, found := strings.Cut(rawURL, "?")
	if !found {
		return Cancelled()
	}
	params := ParseCallbackParams(tail)

	switch params["status"] {
	case callbackStatusSuccess:
		details := SuccessDetails{
			PaymentID:   callbackValue(params, "payment_id"),
			TxHash:      callbackValue(params, "tx_hash"),
			FromAddress: params["from_address"],
			ToAddress:   params["to_address"],
			Amount:      params["amount"],
			ChainID:     parseChainID(params["chain_id"]),
			TokenSymbol: params["token_symbol"],
		}
		if details.PaymentID == "" {
			return Failed(MessagePaymentIDMissing)
		}
		return Success(details)
	case callbackStatusFailed:
		return Failed(params["error"])
	default:
		return Cancelled()
	}
}

// ParseCallbackParams splits a query tail into key/value pairs. Pairs without
// '=' are skipped, values are percent-decoded, keys are kept as-is, and the
// last duplicate wins.
func ParseCallbackParams(tail string) map[string]string {
	params := map[string]string{}
	if tail == "" {
		return params
	}
	for _, pair := range strings.Split(tail, "&") {
		key, value, found := strings.Cut(pair, "=")
		if !found {
			continue
		}
		params[key] = decodeComponent(value)
	}
	return params
}

func callbackValue(params map[string]string, key string) string {
	if value, ok := params[key]; ok {
		return value
	}
	if alias, ok := legacyCallbackAliases[key]; ok {
		return params[alias]
	}
	return ""
}

func decodeComponent(value string) string {
	decoded, err := url.QueryUnescape(value)
	if err != nil {
		return value
	}
	return decoded
}

func parseChainID(value string) int64 {
	if value == "" {
		return 0
	}
	parsed, err := strconv.ParseInt(strings.TrimSpace(value), 10, 64)
	if err != nil {
		return 0
	}
	return parsed
}
