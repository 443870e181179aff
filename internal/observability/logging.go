// Package observability owns process-wide logging for the CLI and
// server.
package observability

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// CLILogger is the process-wide logger. It defaults to a no-op logger
// so library code and tests can log unconditionally; InitCLILogger
// replaces it at startup.
var CLILogger = zap.NewNop()

// InitCLILogger builds the CLI logger.
//
// level is a zap level name ("debug", "info", "warn", "error"); an
// unrecognized value falls back to info. When debug is true a
// development config is used (console encoding, caller annotations)
// and the level floor drops to debug.
func InitCLILogger(level string, debug bool) {
	parsed, err := zapcore.ParseLevel(level)
	if err != nil {
		parsed = zapcore.InfoLevel
	}

	var cfg zap.Config
	if debug {
		cfg = zap.NewDevelopmentConfig()
		if parsed > zapcore.DebugLevel {
			parsed = zapcore.DebugLevel
		}
	} else {
		cfg = zap.NewProductionConfig()
	}
	cfg.Level = zap.NewAtomicLevelAt(parsed)

	logger, err := cfg.Build()
	if err != nil {
		// Logging must never take the process down; keep the previous
		// logger on failure.
		return
	}
	CLILogger = logger
}

// Sync flushes buffered log entries. Safe to call on the no-op logger.
func Sync() {
	_ = CLILogger.Sync()
}
