package zaplogger

import (
	"context"
	"sort"
	"strings"

	glog "github.com/goliatone/go-logger/glog"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger adapts a zap logger to the glog contract used across the SDK.
type Logger struct {
	log *zap.Logger
}

// New builds a production zap logger at the given level. Unknown levels fall
// back to info.
func New(level string) (*Logger, error) {
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(ParseLevel(level))
	log, err := cfg.Build()
	if err != nil {
		return nil, err
	}
	return Wrap(log), nil
}

// Wrap adapts an existing zap logger. A nil logger becomes zap.NewNop.
func Wrap(log *zap.Logger) *Logger {
	if log == nil {
		log = zap.NewNop()
	}
	return &Logger{log: log}
}

func ParseLevel(level string) zapcore.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "trace", "debug":
		return zapcore.DebugLevel
	case "warn", "warning":
		return zapcore.WarnLevel
	case "error":
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}

func (l *Logger) Zap() *zap.Logger {
	return l.log
}

func (l *Logger) Trace(msg string, args ...any) {
	l.log.Debug(msg, toZapFields(args)...)
}

func (l *Logger) Debug(msg string, args ...any) {
	l.log.Debug(msg, toZapFields(args)...)
}

func (l *Logger) Info(msg string, args ...any) {
	l.log.Info(msg, toZapFields(args)...)
}

func (l *Logger) Warn(msg string, args ...any) {
	l.log.Warn(msg, toZapFields(args)...)
}

func (l *Logger) Error(msg string, args ...any) {
	l.log.Error(msg, toZapFields(args)...)
}

func (l *Logger) Fatal(msg string, args ...any) {
	l.log.Fatal(msg, toZapFields(args)...)
}

func (l *Logger) WithContext(context.Context) glog.Logger {
	return l
}

func (l *Logger) WithFields(fields map[string]any) glog.Logger {
	return &Logger{log: l.log.With(mapFields(fields)...)}
}

// Provider hands out named children of one zap logger.
type Provider struct {
	root *Logger
}

func NewProvider(root *Logger) *Provider {
	if root == nil {
		root = Wrap(nil)
	}
	return &Provider{root: root}
}

func (p *Provider) GetLogger(name string) glog.Logger {
	name = strings.TrimSpace(name)
	if name == "" {
		return p.root
	}
	return &Logger{log: p.root.log.Named(name)}
}

// toZapFields reads glog-style alternating key/value arguments. A trailing
// key without a value is kept under "extra".
func toZapFields(args []any) []zap.Field {
	fields := make([]zap.Field, 0, len(args)/2+1)
	for index := 0; index < len(args); index += 2 {
		key, ok := args[index].(string)
		if !ok {
			key = "extra"
		}
		if index+1 >= len(args) {
			fields = append(fields, zap.Any("extra", args[index]))
			break
		}
		fields = append(fields, zap.Any(key, args[index+1]))
	}
	return fields
}

func mapFields(m map[string]any) []zap.Field {
	keys := make([]string, 0, len(m))
	for key := range m {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	fields := make([]zap.Field, 0, len(m))
	for _, key := range keys {
		fields = append(fields, zap.Any(key, m[key]))
	}
	return fields
}

var (
	_ glog.Logger         = (*Logger)(nil)
	_ glog.FieldsLogger   = (*Logger)(nil)
	_ glog.LoggerProvider = (*Provider)(nil)
)
