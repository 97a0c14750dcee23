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

package tracing

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"merb.dev/core/router"
	"merb.dev/core/telemetry/semconv"
)

// requestCarrier reads propagation headers through [router.Request.Attr].
type requestCarrier struct {
	req router.Request
}

func (c requestCarrier) Get(key string) string {
	v, _ := c.req.Attr(key)
	return v
}

func (c requestCarrier) Set(string, string) {}

func (c requestCarrier) Keys() []string { return nil }

// OnMatchStart implements [router.Recorder]. It starts a "router.match"
// span and returns it as the state token.
func (t *Tracer) OnMatchStart(ctx context.Context, req router.Request) (context.Context, any) {
	if t.excludePaths[req.Path()] {
		return ctx, nil
	}

	if !trace.SpanContextFromContext(ctx).IsValid() {
		ctx = t.propagator.Extract(ctx, requestCarrier{req: req})
	}

	ctx, span := t.tracer.Start(ctx, semconv.SpanMatch,
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(
			attribute.String(semconv.HTTPRequestMethod, req.Method()),
			attribute.String(semconv.URLPath, req.Path()),
		),
	)
	return ctx, span
}

// OnMatchEnd implements [router.Recorder]. It annotates and ends the span
// started by OnMatchStart.
func (t *Tracer) OnMatchEnd(_ context.Context, state any, result router.Match, err error) {
	span, ok := state.(trace.Span)
	if !ok {
		return
	}
	defer span.End()

	span.SetAttributes(attribute.Bool(semconv.RouteMatched, result.Found()))
	if result.Found() {
		span.SetAttributes(
			attribute.Int(semconv.RouteIndex, result.Index),
			attribute.String(semconv.RoutePath, result.Route.Path()),
		)
		if name := result.Name(); name != "" {
			span.SetAttributes(attribute.String(semconv.RouteName, name))
		}
		if t.recordParams {
			for k, v := range result.Params {
				span.SetAttributes(attribute.String(semconv.RouteParam(k), v))
			}
		}
	}

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
}

// OnGenerate implements [router.Recorder]. It adds a "router.generate"
// event to the recording span in ctx.
func (t *Tracer) OnGenerate(ctx context.Context, name string, err error) {
	span := trace.SpanFromContext(ctx)
	if !span.IsRecording() {
		return
	}
	outcome := semconv.OutcomeOK
	if err != nil {
		outcome = semconv.OutcomeError
	}
	span.AddEvent(semconv.EventGenerate, trace.WithAttributes(
		attribute.String(semconv.RouteName, name),
		attribute.String(semconv.LabelOutcome, outcome),
	))
}

var _ router.Recorder = (*Tracer)(nil)
