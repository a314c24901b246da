// Package logx builds the engine's structured logger. User-facing
// command output stays on stdout via outwriter; this logger carries
// cache diagnostics (hits, misses, corrupt-artifact recoveries) on
// stderr.
package logx

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New returns a console-encoded sugared logger. With verbose set, debug
// records (per-chunk cache decisions) are included.
func New(verbose bool) *zap.SugaredLogger {
	cfg := zap.NewProductionConfig()
	cfg.Encoding = "console"
	cfg.OutputPaths = []string{"stderr"}
	cfg.ErrorOutputPaths = []string{"stderr"}
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	cfg.EncoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
	if verbose {
		cfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}
	logger, err := cfg.Build()
	if err != nil {
		// Construction only fails on a bad config literal above.
		return zap.NewNop().Sugar()
	}
	return logger.Sugar()
}
