// Package logger provides the structured logging entry point used
// throughout ZeroIPC: a thin constructor over go.uber.org/zap that every
// other package accepts as a *zap.SugaredLogger. Loggers are injected,
// never package-level globals.
package logger

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New builds a production-configured, sugared zap logger tagged with the
// given service name. Callers that need a no-op logger for tests should use
// Noop instead of passing nil around; segment.Create and segment.Open log
// unconditionally and need a non-nil logger, while table.New and
// registry.New also accept nil.
func New(service string) *zap.SugaredLogger {
	cfg := zap.NewProductionConfig()
	cfg.EncoderConfig.TimeKey = "ts"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	base, err := cfg.Build()
	if err != nil {
		// zap.NewProductionConfig().Build() only fails on a malformed
		// config; ours is static, so this is unreachable in practice.
		// Fall back to a guaranteed-constructible logger rather than panic.
		base = zap.NewNop()
	}

	return base.Named(service).Sugar()
}

// Noop returns a logger that discards everything, for tests and for
// embedders that don't want ZeroIPC's logs.
func Noop() *zap.SugaredLogger {
	return zap.NewNop().Sugar()
}
