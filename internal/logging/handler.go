// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package logging provides a custom slog handler for batch runs.
// It wraps another handler and tallies WARN and ERROR records so a
// sync run can report how many recoverable failures it absorbed.
package logging

import (
	"context"
	"log/slog"
	"sync/atomic"
)

// CountingHandler is a slog.Handler that forwards every record to an
// inner handler and counts the ones at WARN level and above. Counters
// are shared across WithAttrs/WithGroup clones so the totals cover the
// whole run regardless of which derived logger emitted the record.
type CountingHandler struct {
	inner    slog.Handler
	warnings *atomic.Int64
	errors   *atomic.Int64
}

// NewCountingHandler creates a CountingHandler wrapping the given handler.
func NewCountingHandler(inner slog.Handler) *CountingHandler {
	return &CountingHandler{
		inner:    inner,
		warnings: &atomic.Int64{},
		errors:   &atomic.Int64{},
	}
}

// Enabled implements slog.Handler.
func (h *CountingHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.inner.Enabled(ctx, level)
}

// Handle implements slog.Handler.
func (h *CountingHandler) Handle(ctx context.Context, r slog.Record) error {
	switch {
	case r.Level >= slog.LevelError:
		h.errors.Add(1)
	case r.Level >= slog.LevelWarn:
		h.warnings.Add(1)
	}
	return h.inner.Handle(ctx, r)
}

// WithAttrs implements slog.Handler.
func (h *CountingHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &CountingHandler{
		inner:    h.inner.WithAttrs(attrs),
		warnings: h.warnings,
		errors:   h.errors,
	}
}

// WithGroup implements slog.Handler.
func (h *CountingHandler) WithGroup(name string) slog.Handler {
	return &CountingHandler{
		inner:    h.inner.WithGroup(name),
		warnings: h.warnings,
		errors:   h.errors,
	}
}

// Warnings returns the number of WARN records handled so far.
func (h *CountingHandler) Warnings() int64 {
	return h.warnings.Load()
}

// Errors returns the number of ERROR records handled so far.
func (h *CountingHandler) Errors() int64 {
	return h.errors.Load()
}
