// Package logging provides the host process's structured logging, a
// slog.Handler that writes JSON lines the way the plugin SDK's guest-side
// log package wraps slog for the WASM boundary, generalized to a real
// process with a real io.Writer instead of a host function call.
package logging

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"runtime"
	"sync"
	"time"
)

// HostHandler implements slog.Handler, writing one JSON object per record to
// an io.Writer.
type HostHandler struct {
	mu     *sync.Mutex
	out    io.Writer
	opts   handlerConfig
	attrs  []slog.Attr
	groups []string
}

// HandlerOption configures a HostHandler.
type HandlerOption func(*handlerConfig)

type handlerConfig struct {
	level     slog.Leveler
	addSource bool
}

func defaultHandlerConfig() handlerConfig {
	return handlerConfig{level: slog.LevelInfo}
}

// WithLevel sets the minimum log level the handler reports.
func WithLevel(level slog.Leveler) HandlerOption {
	return func(c *handlerConfig) {
		c.level = level
	}
}

// WithSource enables reporting of the call site's file/line.
func WithSource(enabled bool) HandlerOption {
	return func(c *handlerConfig) {
		c.addSource = enabled
	}
}

// NewHandler creates a HostHandler writing to w.
func NewHandler(w io.Writer, opts ...HandlerOption) *HostHandler {
	cfg := defaultHandlerConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	return &HostHandler{mu: &sync.Mutex{}, out: w, opts: cfg}
}

// Init installs a HostHandler as the process-wide slog default, returning it
// so callers can adjust level at runtime via its Leveler if one was passed.
func Init(w io.Writer, opts ...HandlerOption) *HostHandler {
	h := NewHandler(w, opts...)
	slog.SetDefault(slog.New(h))
	return h
}

// Enabled reports whether the handler handles records at the given level.
func (h *HostHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.opts.level.Level()
}

// record is the JSON line shape written for every log record.
type record struct {
	Time    time.Time      `json:"time"`
	Level   string         `json:"level"`
	Message string         `json:"msg"`
	Source  string         `json:"source,omitempty"`
	Attrs   map[string]any `json:"attrs,omitempty"`
}

// Handle serializes a slog.Record as a single JSON line.
func (h *HostHandler) Handle(_ context.Context, r slog.Record) error {
	rec := record{
		Time:    r.Time,
		Level:   r.Level.String(),
		Message: r.Message,
	}

	if h.opts.addSource && r.PC != 0 {
		frames := runtime.CallersFrames([]uintptr{r.PC})
		frame, _ := frames.Next()
		if frame.File != "" {
			rec.Source = fmt.Sprintf("%s:%d", frame.File, frame.Line)
		}
	}

	attrs := make(map[string]any, r.NumAttrs()+len(h.attrs))
	for _, a := range h.attrs {
		addAttr(attrs, h.groups, a)
	}
	r.Attrs(func(a slog.Attr) bool {
		addAttr(attrs, h.groups, a)
		return true
	})
	if len(attrs) > 0 {
		rec.Attrs = attrs
	}

	data, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	data = append(data, '\n')

	h.mu.Lock()
	defer h.mu.Unlock()
	_, err = h.out.Write(data)
	return err
}

// addAttr flattens a, nesting it under any active WithGroup prefix, into m.
func addAttr(m map[string]any, groups []string, a slog.Attr) {
	a.Value = a.Value.Resolve()
	if a.Equal(slog.Attr{}) {
		return
	}

	key := a.Key
	target := m
	for _, g := range groups {
		sub, ok := target[g].(map[string]any)
		if !ok {
			sub = make(map[string]any)
			target[g] = sub
		}
		target = sub
	}

	if a.Value.Kind() == slog.KindGroup {
		group := make(map[string]any, len(a.Value.Group()))
		for _, ga := range a.Value.Group() {
			addAttr(group, nil, ga)
		}
		target[key] = group
		return
	}

	target[key] = a.Value.Any()
}

// WithAttrs returns a new HostHandler that includes the given attributes on
// every subsequent record.
func (h *HostHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	if len(attrs) == 0 {
		return h
	}
	next := *h
	next.attrs = append(append([]slog.Attr(nil), h.attrs...), attrs...)
	return &next
}

// WithGroup returns a new HostHandler that nests subsequent attributes under
// name.
func (h *HostHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	next := *h
	next.groups = append(append([]string(nil), h.groups...), name)
	return &next
}

// Discard is a HostHandler that writes nowhere, for tests that want a real
// slog.Logger without any log output.
func Discard() *HostHandler {
	return NewHandler(io.Discard)
}

// Stderr returns the process's default destination for host-side logging.
func Stderr() io.Writer {
	return os.Stderr
}
