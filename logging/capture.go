package logging

import (
	"bytes"
	"context"
	"log/slog"
	"sync"
)

// CaptureHandler is a slog.Handler that records text-formatted log
// lines in memory, for inspecting pipeline output in tests.
//
//	capture := logging.NewCaptureHandler(slog.LevelDebug)
//	logging.SetLogger(slog.New(capture))
//	// ... run the pipeline ...
//	if capture.Contains("pairing complete") { ... }
type CaptureHandler struct {
	mu  sync.Mutex
	buf bytes.Buffer
	// text formats records into buf; it shares buf's lock through Handle.
	text slog.Handler
}

// NewCaptureHandler creates a capture handler recording records at or
// above level.
func NewCaptureHandler(level slog.Leveler) *CaptureHandler {
	h := &CaptureHandler{}
	h.text = slog.NewTextHandler(&h.buf, &slog.HandlerOptions{Level: level})
	return h
}

// Enabled implements slog.Handler.
func (h *CaptureHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.text.Enabled(ctx, level)
}

// Handle implements slog.Handler.
func (h *CaptureHandler) Handle(ctx context.Context, r slog.Record) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.text.Handle(ctx, r)
}

// WithAttrs implements slog.Handler. Attribute state lives in the inner
// text handler; the capture buffer is shared.
func (h *CaptureHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &sharedHandler{parent: h, text: h.text.WithAttrs(attrs)}
}

// WithGroup implements slog.Handler.
func (h *CaptureHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	return &sharedHandler{parent: h, text: h.text.WithGroup(name)}
}

// String returns everything captured so far.
func (h *CaptureHandler) String() string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.buf.String()
}

// Contains reports whether the captured output contains s.
func (h *CaptureHandler) Contains(s string) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return bytes.Contains(h.buf.Bytes(), []byte(s))
}

// Reset discards the captured output.
func (h *CaptureHandler) Reset() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.buf.Reset()
}

// sharedHandler is a derived handler that writes through to the parent
// capture buffer under the parent's lock.
type sharedHandler struct {
	parent *CaptureHandler
	text   slog.Handler
}

func (h *sharedHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.text.Enabled(ctx, level)
}

func (h *sharedHandler) Handle(ctx context.Context, r slog.Record) error {
	h.parent.mu.Lock()
	defer h.parent.mu.Unlock()
	return h.text.Handle(ctx, r)
}

func (h *sharedHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &sharedHandler{parent: h.parent, text: h.text.WithAttrs(attrs)}
}

func (h *sharedHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	return &sharedHandler{parent: h.parent, text: h.text.WithGroup(name)}
}
