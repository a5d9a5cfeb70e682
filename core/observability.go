package core

import (
	"context"
	"sort"
	"strings"
	"time"
)

// observeOperation closes one manager operation: it records metrics and logs
// "<operation> succeeded" at info or "<operation> failed" at error with the
// error's text code. fields is not mutated.
func (m *Manager) observeOperation(
	ctx context.Context,
	startedAt time.Time,
	operation string,
	err error,
	fields map[string]any,
) {
	if m == nil {
		return
	}
	operation = normalizeOperation(operation)
	if operation == "" {
		operation = "unknown"
	}
	elapsed := time.Since(startedAt)

	entry := cloneFields(fields)
	entry["event_type"] = operation
	entry["duration_ms"] = elapsed.Milliseconds()
	if err == nil {
		entry["status"] = metricStatusSuccess
		m.recordOperation(ctx, operation, metricStatusSuccess, elapsed, entry)
		m.logInfo(ctx, operation+" succeeded", entry)
		return
	}
	entry["status"] = metricStatusFailure
	entry["error"] = err.Error()
	entry["error_code"] = ErrorTextCode(err)
	m.recordOperation(ctx, operation, metricStatusFailure, elapsed, entry)
	m.logError(ctx, operation+" failed", entry)
}

// logDebug is gated on Config.Debug.
func (m *Manager) logDebug(ctx context.Context, message string, fields map[string]any) {
	if m.debugEnabled() {
		m.logWithLevel(ctx, "debug", message, fields)
	}
}

func (m *Manager) logInfo(ctx context.Context, message string, fields map[string]any) {
	m.logWithLevel(ctx, "info", message, fields)
}

func (m *Manager) logWarn(ctx context.Context, message string, fields map[string]any) {
	m.logWithLevel(ctx, "warn", message, fields)
}

func (m *Manager) logError(ctx context.Context, message string, fields map[string]any) {
	m.logWithLevel(ctx, "error", message, fields)
}

// logWithLevel redacts fields before they reach the logger. Loggers that
// implement FieldsLogger also receive them as structured fields.
func (m *Manager) logWithLevel(ctx context.Context, level string, message string, fields map[string]any) {
	if m == nil || m.logger == nil {
		return
	}
	safe := RedactSensitiveMap(fields)
	logger := m.logger
	if ctx != nil {
		logger = logger.WithContext(ctx)
	}
	if structured, ok := logger.(FieldsLogger); ok {
		logger = structured.WithFields(cloneFields(safe))
	}
	emit := logger.Info
	switch level {
	case "debug":
		emit = logger.Debug
	case "warn":
		emit = logger.Warn
	case "error":
		emit = logger.Error
	}
	emit(message, flattenFields(safe)...)
}

func cloneFields(fields map[string]any) map[string]any {
	copied := make(map[string]any, len(fields))
	for key, value := range fields {
		copied[key] = value
	}
	return copied
}

// flattenFields renders fields as sorted key/value pairs.
func flattenFields(fields map[string]any) []any {
	if len(fields) == 0 {
		return nil
	}
	keys := make([]string, 0, len(fields))
	for key := range fields {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	args := make([]any, 0, 2*len(keys))
	for _, key := range keys {
		args = append(args, key, fields[key])
	}
	return args
}

// normalizeOperation lowercases and snake-cases an operation name for use in
// metric names.
func normalizeOperation(operation string) string {
	return strings.NewReplacer(" ", "_", "-", "_").Replace(strings.ToLower(strings.TrimSpace(operation)))
}
