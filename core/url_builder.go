package core

import (
	"net/url"
	"strings"
)

const (
	PaymentPagePath   = "/pay/wallet"
	TokenEndpointPath = "/api/external/payment/token"
	tokenFragmentKey  = "pt"
)

// SimpleURLParams are the query values of a simple mode redirect.
type SimpleURLParams struct {
	MerchantID string
	Amount     string
	OrderID    string
	Currency   string
}

// BuildSimpleURL returns {base}/pay/wallet?merchant_id=..&amount=..[&order_id=..][&currency=..].
// Parameter order is fixed so the same input always yields the same URL.
func BuildSimpleURL(webBaseURL string, params SimpleURLParams) string {
	var b strings.Builder
	b.WriteString(strings.TrimRight(webBaseURL, "/"))
	b.WriteString(PaymentPagePath)
	b.WriteString("?merchant_id=")
	b.WriteString(EscapeComponent(params.MerchantID))
	b.WriteString("&amount=")
	b.WriteString(EscapeComponent(params.Amount))
	if params.OrderID != "" {
		b.WriteString("&order_id=")
		b.WriteString(EscapeComponent(params.OrderID))
	}
	if params.Currency != "" {
		b.WriteString("&currency=")
		b.WriteString(EscapeComponent(params.Currency))
	}
	return b.String()
}

// BuildFullURL returns {base}/pay/wallet#pt={token}. The token is kept in the
// fragment so browsers never send it to a server or in a Referer header.
func BuildFullURL(webBaseURL string, paymentToken string) string {
	return strings.TrimRight(webBaseURL, "/") + PaymentPagePath + "#" + tokenFragmentKey + "=" + EscapeComponent(paymentToken)
}

// TokenEndpointURL returns the token exchange endpoint for an API base URL.
func TokenEndpointURL(apiBaseURL string) string {
	return strings.TrimRight(apiBaseURL, "/") + TokenEndpointPath
}

// EscapeComponent percent-encodes a single URL component. Spaces become %20
// and every reserved character, including '+', is escaped.
func EscapeComponent(value string) string {
	return strings.ReplaceAll(url.QueryEscape(value), "+", "%20")
}
