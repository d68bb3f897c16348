package log

import (
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"recat/internal/config"
)

// NewDiagnostics builds the structured diagnostics logger. It writes to
// stderr at warn level, info with --verbose and debug with --debug; --quiet
// disables it. Every entry carries the run id.
func NewDiagnostics(cfg *config.Config, runID string) (*zap.Logger, error) {
	if cfg.Quiet {
		return zap.NewNop(), nil
	}

	zc := zap.NewProductionConfig()
	zc.Level = zap.NewAtomicLevelAt(DiagnosticLevel(cfg))

	logger, err := zc.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	return logger.With(zap.String("run_id", runID)), nil
}

// DiagnosticLevel returns the zap level selected by the verbosity flags.
func DiagnosticLevel(cfg *config.Config) zapcore.Level {
	switch {
	case cfg.IsDebug():
		return zapcore.DebugLevel
	case cfg.IsVerbose():
		return zapcore.InfoLevel
	default:
		return zapcore.WarnLevel
	}
}
