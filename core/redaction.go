package core

import "strings"

const RedactedValue = "[REDACTED]"

type keyTreatment int

const (
	keepValue keyTreatment = iota
	maskValue
	maskURLFragment
)

var sensitiveKeyParts = []string{"password", "secret", "token", "authorization", "api_key", "credential"}

// Identifiers that contain a sensitive part but are needed to trace a payment.
var traceableKeys = map[string]struct{}{
	"session_id":   {},
	"merchant_id":  {},
	"order_id":     {},
	"payment_id":   {},
	"token_symbol": {},
	"token_mode":   {},
}

// RedactSensitiveMap returns a deep copy of metadata with credentials masked
// and payment token fragments stripped from url values.
func RedactSensitiveMap(metadata map[string]any) map[string]any {
	out := make(map[string]any, len(metadata))
	for key, value := range metadata {
		switch classifyKey(key) {
		case maskValue:
			out[key] = RedactedValue
		case maskURLFragment:
			if text, ok := value.(string); ok {
				out[key] = RedactURL(text)
			} else {
				out[key] = redactNested(value)
			}
		default:
			out[key] = redactNested(value)
		}
	}
	return out
}

// RedactURL hides the fragment of a full mode redirect, which carries the
// payment token.
func RedactURL(rawURL string) string {
	if i := strings.IndexByte(rawURL, '#'); i >= 0 {
		return rawURL[:i+1] + RedactedValue
	}
	return rawURL
}

func redactNested(value any) any {
	switch typed := value.(type) {
	case map[string]any:
		return RedactSensitiveMap(typed)
	case []any:
		items := make([]any, 0, len(typed))
		for _, item := range typed {
			items = append(items, redactNested(item))
		}
		return items
	}
	return value
}

func classifyKey(key string) keyTreatment {
	normalized := strings.ToLower(strings.TrimSpace(key))
	if normalized == "" {
		return keepValue
	}
	if _, ok := traceableKeys[normalized]; ok {
		return keepValue
	}
	if normalized == "url" || strings.HasSuffix(normalized, "_url") {
		return maskURLFragment
	}
	for _, part := range sensitiveKeyParts {
		if strings.Contains(normalized, part) {
			return maskValue
		}
	}
	return keepValue
}
