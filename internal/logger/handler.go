package logger

import (
	"context"
	"log/slog"
	"path/filepath"
	"runtime"
	"strings"
)

const tagKey = "tag"

// filteringHandler drops records by package or tag before they reach the base handler.
type filteringHandler struct {
	base slog.Handler
	cfg  *Config
	// tag carried by WithAttrs, so loggers built with Get().With("tag", x) filter too
	tag string
}

func newFilteringHandler(base slog.Handler, cfg *Config) *filteringHandler {
	return &filteringHandler{base: base, cfg: cfg}
}

func (h *filteringHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.base.Enabled(ctx, level)
}

func inSet(set map[string]struct{}, key string) bool {
	if set == nil {
		return false
	}
	_, ok := set[key]
	return ok
}

// packageOf returns the directory name of the frame that produced the record.
func packageOf(pc uintptr) string {
	if pc == 0 {
		return ""
	}
	frame, _ := runtime.CallersFrames([]uintptr{pc}).Next()
	if frame.File == "" {
		return ""
	}
	return filepath.Base(filepath.Dir(frame.File))
}

func (h *filteringHandler) allowed(r slog.Record) bool {
	if h.cfg == nil {
		return true
	}

	if pkg := strings.ToLower(packageOf(r.PC)); pkg != "" {
		if inSet(h.cfg.disabledPackagesSet, pkg) {
			return false
		}
		if h.cfg.enabledPackagesSet != nil && !inSet(h.cfg.enabledPackagesSet, pkg) {
			return false
		}
	}

	tag := h.tag
	r.Attrs(func(a slog.Attr) bool {
		if a.Key == tagKey {
			tag = a.Value.String()
			return false
		}
		return true
	})
	tag = strings.ToLower(tag)

	if tag == "" {
		// an enabled-tags list restricts output to tagged records only
		return h.cfg.enabledTagsSet == nil
	}
	if inSet(h.cfg.disabledTagsSet, tag) {
		return false
	}
	if h.cfg.enabledTagsSet != nil && !inSet(h.cfg.enabledTagsSet, tag) {
		return false
	}
	return true
}

func (h *filteringHandler) Handle(ctx context.Context, r slog.Record) error {
	if !h.allowed(r) {
		return nil
	}
	return h.base.Handle(ctx, r)
}

func (h *filteringHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	next := &filteringHandler{base: h.base.WithAttrs(attrs), cfg: h.cfg, tag: h.tag}
	for _, a := range attrs {
		if a.Key == tagKey {
			next.tag = a.Value.String()
		}
	}
	return next
}

func (h *filteringHandler) WithGroup(name string) slog.Handler {
	return &filteringHandler{base: h.base.WithGroup(name), cfg: h.cfg, tag: h.tag}
}
