package query

import "github.com/goliatone/go-setto/core"

func queryDependencyError(message string) error {
	return core.NewInternalError(message)
}

// queryValidationError reports a single invalid message field.
func queryValidationError(field string, message string) error {
	return core.NewInvalidRequestError(field, "query: "+message)
}
