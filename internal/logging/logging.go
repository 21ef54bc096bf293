// Package logging builds the zap loggers used by the API and the CLI.
package logging

import (
	"fmt"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"contractview/internal/metrics"
	"contractview/internal/render"
)

// New builds a production logger, or a development one with console output.
// An unrecognized level falls back to info.
func New(level string, development bool) (*zap.Logger, error) {
	config := zap.NewProductionConfig()
	if development {
		config = zap.NewDevelopmentConfig()
	}
	config.Level = zap.NewAtomicLevelAt(parseLevel(level))

	logger, err := config.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	return logger, nil
}

func parseLevel(level string) zapcore.Level {
	var parsed zapcore.Level
	if err := parsed.UnmarshalText([]byte(strings.ToLower(strings.TrimSpace(level)))); err != nil {
		return zapcore.InfoLevel
	}
	return parsed
}

// NewRenderDiagnostics reports malformed nodes as warnings and counts them.
func NewRenderDiagnostics(logger *zap.Logger, source string) render.Diagnostics {
	if logger == nil {
		logger = zap.NewNop()
	}
	return render.DiagnosticsFunc(func(d render.Diagnostic) {
		metrics.MalformedNode()
		logger.Warn("malformed contract node omitted",
			zap.String("source", source),
			zap.String("path", d.Path),
			zap.ByteString("raw", d.Raw),
		)
	})
}
