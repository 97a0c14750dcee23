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
	"log/slog"
	"maps"
	"slices"
	"time"

	"merb.dev/core/router"
)

// DiagnosticHandler returns a [router.DiagnosticHandler] that writes router
// diagnostics to logger. Table preparation is logged at info level, every
// other kind at warn level.
func DiagnosticHandler(logger *Logger) router.DiagnosticHandler {
	return router.DiagnosticHandlerFunc(func(e router.DiagnosticEvent) {
		level := LevelWarn
		if e.Kind == router.DiagTablePrepared {
			level = LevelInfo
		}
		args := make([]any, 0, 2+2*len(e.Fields))
		args = append(args, "kind", string(e.Kind))
		for _, k := range slices.Sorted(maps.Keys(e.Fields)) {
			args = append(args, k, e.Fields[k])
		}
		logger.log(context.Background(), level, e.Message, args...)
	})
}

// Recorder logs match and generation outcomes.
// Successful matches and misses are logged at debug level; match and
// generation errors at warn level.
type Recorder struct {
	logger *Logger
}

// NewRecorder returns a [router.Recorder] backed by logger.
func NewRecorder(logger *Logger) *Recorder {
	return &Recorder{logger: logger}
}

type matchState struct {
	method string
	path   string
	start  time.Time
}

// OnMatchStart implements [router.Recorder].
// It returns a nil state when debug logging is disabled and there is nothing to record.
func (r *Recorder) OnMatchStart(ctx context.Context, req router.Request) (context.Context, any) {
	if r.logger.Level() > LevelWarn {
		return ctx, nil
	}
	return ctx, &matchState{method: req.Method(), path: req.Path(), start: time.Now()}
}

// OnMatchEnd implements [router.Recorder].
func (r *Recorder) OnMatchEnd(ctx context.Context, state any, result router.Match, err error) {
	st, ok := state.(*matchState)
	if !ok {
		return
	}
	args := []any{
		"method", st.method,
		"path", st.path,
		"duration", time.Since(st.start),
	}
	args = append(args, TraceAttrs(ctx)...)

	switch {
	case err != nil:
		args = append(args, "error", err.Error())
		r.logger.log(ctx, LevelWarn, "route match failed", args...)
	case result.Found():
		args = append(args, "route", result.Route.String(), "index", result.Index)
		if name := result.Name(); name != "" {
			args = append(args, "name", name)
		}
		r.logger.log(ctx, LevelDebug, "route matched", args...)
	default:
		r.logger.log(ctx, LevelDebug, "no route matched", args...)
	}
}

// OnGenerate implements [router.Recorder].
func (r *Recorder) OnGenerate(ctx context.Context, name string, err error) {
	if err == nil {
		return
	}
	args := []any{slog.String("name", name), slog.String("error", err.Error())}
	args = append(args, TraceAttrs(ctx)...)
	r.logger.log(ctx, LevelWarn, "url generation failed", args...)
}

var _ router.Recorder = (*Recorder)(nil)
