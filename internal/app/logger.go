package app

import (
	"io"
	"log/slog"
)

// levelNames maps the accepted --log-level values. NewConfig rejects
// anything outside this table before a logger is ever built.
var levelNames = map[string]slog.Level{
	"debug": slog.LevelDebug,
	"info":  slog.LevelInfo,
	"warn":  slog.LevelWarn,
	"error": slog.LevelError,
}

// newLogger builds the app's logger from its validated config. It never
// touches the global logger, so concurrent App instances (tests, the trigger
// server) stay isolated.
func newLogger(cfg *Config, logW io.Writer) *slog.Logger {
	opts := &slog.HandlerOptions{Level: levelNames[cfg.LogLevel]}
	if cfg.LogFormat == "json" {
		return slog.New(slog.NewJSONHandler(logW, opts))
	}
	return slog.New(slog.NewTextHandler(logW, opts))
}
