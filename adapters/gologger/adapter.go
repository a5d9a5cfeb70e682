package gologger

import (
	"strings"

	job "github.com/goliatone/go-job"
	glog "github.com/goliatone/go-logger/glog"
)

// RootName is the logger name the SDK resolves when no component is given.
const RootName = "setto"

// Resolve uses deterministic precedence provider > logger > nop.
func Resolve(name string, provider glog.LoggerProvider, logger glog.Logger) (glog.LoggerProvider, glog.Logger) {
	return glog.Resolve(ComponentName(name), provider, logger)
}

// ComponentName scopes a component under the SDK root name: "exchange"
// becomes "setto.exchange".
func ComponentName(component string) string {
	component = strings.Trim(strings.TrimSpace(component), ".")
	switch {
	case component == "":
		return RootName
	case component == RootName, strings.HasPrefix(component, RootName+"."):
		return component
	default:
		return RootName + "." + component
	}
}

// Component returns the logger for a named SDK component, never nil.
func Component(provider glog.LoggerProvider, logger glog.Logger, component string) glog.Logger {
	_, resolved := Resolve(component, provider, logger)
	return glog.Ensure(resolved)
}

// ToJobProvider maps a glog provider to the go-job logger provider contract.
func ToJobProvider(provider glog.LoggerProvider) job.LoggerProvider {
	if provider == nil {
		return nil
	}
	return job.GoLoggerProvider(provider)
}

// ToJobLogger maps a glog logger to the go-job logger contract.
func ToJobLogger(logger glog.Logger) job.Logger {
	if logger == nil {
		return nil
	}
	return job.GoLogger(logger)
}
