package command

import "github.com/goliatone/go-setto/core"

func commandDependencyError(message string) error {
	return core.NewInternalError(message)
}

// commandValidationError reports a single invalid message field.
func commandValidationError(field string, message string) error {
	return core.NewInvalidRequestError(field, "command: "+message)
}
