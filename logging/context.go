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

	"go.opentelemetry.io/otel/trace"

	"merb.dev/core/telemetry/semconv"
)

// WithTrace returns logger annotated with the trace and span IDs of the span
// in ctx. Without a valid span context the logger is returned unchanged.
func WithTrace(ctx context.Context, logger *slog.Logger) *slog.Logger {
	sc := trace.SpanContextFromContext(ctx)
	if !sc.IsValid() {
		return logger
	}
	return logger.With(
		slog.String(semconv.TraceID, sc.TraceID().String()),
		slog.String(semconv.SpanID, sc.SpanID().String()),
	)
}

// TraceAttrs returns the trace and span ID attributes for ctx, or nil.
func TraceAttrs(ctx context.Context) []any {
	sc := trace.SpanContextFromContext(ctx)
	if !sc.IsValid() {
		return nil
	}
	return []any{semconv.TraceID, sc.TraceID().String(), semconv.SpanID, sc.SpanID().String()}
}
