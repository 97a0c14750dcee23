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

package metrics

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"merb.dev/core/router"
	"merb.dev/core/telemetry/semconv"
)

// initializeMetrics creates the router instruments.
func (r *Recorder) initializeMetrics() error {
	r.meter = r.meterProvider.Meter(meterName)

	var err error
	if r.matches, err = r.meter.Int64Counter("merb_router_matches",
		metric.WithDescription("Requests that matched a route"),
	); err != nil {
		return fmt.Errorf("failed to create matches counter: %w", err)
	}
	if r.misses, err = r.meter.Int64Counter("merb_router_misses",
		metric.WithDescription("Requests that matched no route"),
	); err != nil {
		return fmt.Errorf("failed to create misses counter: %w", err)
	}
	if r.matchErrors, err = r.meter.Int64Counter("merb_router_match_errors",
		metric.WithDescription("Matches aborted by a deferred function error"),
	); err != nil {
		return fmt.Errorf("failed to create match errors counter: %w", err)
	}
	if r.matchDuration, err = r.meter.Float64Histogram("merb_router_match_duration",
		metric.WithDescription("Time spent matching a request"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(r.durationBuckets...),
	); err != nil {
		return fmt.Errorf("failed to create match duration histogram: %w", err)
	}
	if r.generations, err = r.meter.Int64Counter("merb_router_generate",
		metric.WithDescription("URL generation calls"),
	); err != nil {
		return fmt.Errorf("failed to create generate counter: %w", err)
	}
	return nil
}

type matchStart struct {
	at time.Time
}

// OnMatchStart implements [router.Recorder].
func (r *Recorder) OnMatchStart(ctx context.Context, _ router.Request) (context.Context, any) {
	if r.isShuttingDown.Load() {
		return ctx, nil
	}
	return ctx, matchStart{at: time.Now()}
}

// OnMatchEnd implements [router.Recorder].
func (r *Recorder) OnMatchEnd(ctx context.Context, state any, result router.Match, err error) {
	st, ok := state.(matchStart)
	if !ok {
		return
	}

	outcome := semconv.OutcomeMatched
	switch {
	case err != nil:
		outcome = semconv.OutcomeError
		r.matchErrors.Add(ctx, 1)
	case result.Found():
		r.matches.Add(ctx, 1, metric.WithAttributes(attribute.String(semconv.LabelRoute, RouteLabel(result))))
	default:
		outcome = semconv.OutcomeMiss
		r.misses.Add(ctx, 1)
	}
	r.matchDuration.Record(ctx, time.Since(st.at).Seconds(),
		metric.WithAttributes(attribute.String(semconv.LabelOutcome, outcome)))
}

// OnGenerate implements [router.Recorder].
func (r *Recorder) OnGenerate(ctx context.Context, name string, err error) {
	if r.isShuttingDown.Load() {
		return
	}
	if name == "" {
		name = "default"
	}
	outcome := semconv.OutcomeOK
	if err != nil {
		outcome = semconv.OutcomeError
	}
	r.generations.Add(ctx, 1, metric.WithAttributes(
		attribute.String(semconv.LabelName, name),
		attribute.String(semconv.LabelOutcome, outcome),
	))
}

// RouteLabel returns the route name of a match, or its path template for
// unnamed routes.
func RouteLabel(m router.Match) string {
	if name := m.Name(); name != "" {
		return name
	}
	if m.Route == nil {
		return ""
	}
	return m.Route.Path()
}

var _ router.Recorder = (*Recorder)(nil)
