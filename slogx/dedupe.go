// Package slogx has helpers for building [slog] loggers for command line tools.
package slogx

import (
	"context"
	"log/slog"
	"slices"
)

var _ slog.Handler = (*DedupeHandler)(nil)

// DedupeHandler wraps a [slog.Handler] so that an attribute key only appears once per record.
// When a key is repeated, the latest value wins, and it keeps the position of the first occurrence.
// Keys added after [slog.Handler.WithGroup] are qualified with the group name, separated by a dot.
type DedupeHandler struct {
	group string
	index map[string]int
	attrs []slog.Attr
	impl  slog.Handler
}

func NewDedupeHandler(impl slog.Handler) slog.Handler {
	if impl == nil {
		panic("nil implementing handler")
	}
	return &DedupeHandler{
		index: map[string]int{},
		impl:  impl,
	}
}

func (h *DedupeHandler) clone() *DedupeHandler {
	index := make(map[string]int, len(h.index))
	for k, v := range h.index {
		index[k] = v
	}
	return &DedupeHandler{
		group: h.group,
		index: index,
		attrs: slices.Clone(h.attrs),
		impl:  h.impl,
	}
}

func (h *DedupeHandler) qualify(key string) string {
	if len(h.group) == 0 {
		return key
	}
	return h.group + "." + key
}

func (h *DedupeHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.impl.Enabled(ctx, level)
}

func (h *DedupeHandler) Handle(ctx context.Context, record slog.Record) error {
	merged := h
	if record.NumAttrs() > 0 {
		attrs := make([]slog.Attr, 0, record.NumAttrs())
		record.Attrs(func(attr slog.Attr) bool {
			attrs = append(attrs, attr)
			return true
		})
		merged = h.WithAttrs(attrs).(*DedupeHandler)
		record = slog.NewRecord(record.Time, record.Level, record.Message, record.PC)
	}
	record.AddAttrs(merged.attrs...)
	return merged.impl.Handle(ctx, record)
}

func (h *DedupeHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	if len(attrs) == 0 {
		return h
	}
	cp := h.clone()
	for _, attr := range attrs {
		attr.Key = cp.qualify(attr.Key)
		if i, ok := cp.index[attr.Key]; ok {
			cp.attrs[i] = attr
			continue
		}
		cp.index[attr.Key] = len(cp.attrs)
		cp.attrs = append(cp.attrs, attr)
	}
	return cp
}

func (h *DedupeHandler) WithGroup(name string) slog.Handler {
	if len(name) == 0 {
		return h
	}
	cp := h.clone()
	cp.group = cp.qualify(name)
	return cp
}
