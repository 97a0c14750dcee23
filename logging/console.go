// Copyright 2025 The Merb Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package logging

import (
	"context"
	"io"
	"log/slog"

	"github.com/charmbracelet/log"
)

// consoleHandler renders records with charmbracelet/log while keeping the
// level and attribute replacement of [slog.HandlerOptions].
type consoleHandler struct {
	inner   slog.Handler
	level   slog.Leveler
	replace func(groups []string, a slog.Attr) slog.Attr
	groups  []string
}

func newConsoleHandler(w io.Writer, opts *slog.HandlerOptions) *consoleHandler {
	// The inner logger accepts everything; filtering happens in Enabled so the
	// level stays adjustable at runtime.
	inner := log.NewWithOptions(w, log.Options{
		Level:           log.DebugLevel,
		ReportTimestamp: true,
		ReportCaller:    opts.AddSource,
		TimeFormat:      "15:04:05.000",
	})
	return &consoleHandler{inner: inner, level: opts.Level, replace: opts.ReplaceAttr}
}

func (h *consoleHandler) Enabled(_ context.Context, level slog.Level) bool {
	minLevel := slog.LevelInfo
	if h.level != nil {
		minLevel = h.level.Level()
	}
	return level >= minLevel
}

func (h *consoleHandler) Handle(ctx context.Context, r slog.Record) error {
	if h.replace == nil {
		return h.inner.Handle(ctx, r)
	}
	out := slog.NewRecord(r.Time, r.Level, r.Message, r.PC)
	r.Attrs(func(a slog.Attr) bool {
		if a = h.replace(h.groups, a); a.Key != "" {
			out.AddAttrs(a)
		}
		return true
	})
	return h.inner.Handle(ctx, out)
}

func (h *consoleHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	if h.replace != nil {
		kept := make([]slog.Attr, 0, len(attrs))
		for _, a := range attrs {
			if a = h.replace(h.groups, a); a.Key != "" {
				kept = append(kept, a)
			}
		}
		attrs = kept
	}
	c := *h
	c.inner = h.inner.WithAttrs(attrs)
	return &c
}

func (h *consoleHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	c := *h
	c.inner = h.inner.WithGroup(name)
	c.groups = append(append([]string(nil), h.groups...), name)
	return &c
}
