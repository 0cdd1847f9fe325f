// Package log provides structure logging (slog) adapted for Reglet SDK's WASM environment.
package log

import (
	"context"
	"log/slog"
)

// WasmLogHandler implements slog.Handler to route logs through a host function.
type WasmLogHandler struct {
	opts handlerConfig
}

// HandlerOption configures the WasmLogHandler.
type HandlerOption func(*handlerConfig)

type handlerConfig struct {
	level     slog.Level
	addSource bool
}

// defaultHandlerConfig returns the default configuration.
func defaultHandlerConfig() handlerConfig {
	return handlerConfig{
		level: slog.LevelInfo,
	}
}

// WithLevel sets the minimum log level to report.
// Records below this level will be filtered on the guest side.
func WithLevel(level slog.Level) HandlerOption {
	return func(c *handlerConfig) {
		c.level = level
	}
}

// WithSource sets the handler's addSource flag. Handle does not add the
// source location (file/line) to the records it sends.
func WithSource(enabled bool) HandlerOption {
	return func(c *handlerConfig) {
		c.addSource = enabled
	}
}

// NewHandler creates a new WasmLogHandler with the given options.
func NewHandler(opts ...HandlerOption) *WasmLogHandler {
	cfg := defaultHandlerConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	return &WasmLogHandler{opts: cfg}
}

// Enabled reports whether the handler handles records at the given level.
func (h *WasmLogHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.opts.level
}

// WithAttrs returns a copy of h. The given attributes are not stored, so they
// do not appear on later records.
func (h *WasmLogHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	// For this simplified implementation, we don't pre-encode attributes.
	// A full implementation would accumulate them.
	// Since we are just passing through to host, we can technically just return h,
	// BUT slog expects a new handler instance.
	// Since we don't store state yet, we just return a copy.
	newHandler := *h
	return &newHandler
}

// WithGroup returns a copy of h. The group name is not stored, so later
// attributes are not nested under it.
func (h *WasmLogHandler) WithGroup(name string) slog.Handler {
	// Similar to WithAttrs, simplified.
	newHandler := *h
	return &newHandler
}

// init configures the default slog handler to use our WasmLogHandler.
func init() {
	slog.SetDefault(slog.New(NewHandler()))
	slog.Info("Reglet SDK: Slog handler initialized.")
}
