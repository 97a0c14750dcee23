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
	"fmt"
	"io"
	"log/slog"

	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
)

// Option configures a [Tracer].
type Option func(*Tracer)

// WithTracerProvider uses a caller-owned tracer provider. Provider options
// are ignored and [Tracer.Shutdown] leaves the provider running.
//
// Example:
//
//	exporter := tracetest.NewInMemoryExporter()
//	tp := sdktrace.NewTracerProvider(sdktrace.WithSyncer(exporter))
//	tracer := tracing.MustNew(tracing.WithTracerProvider(tp))
func WithTracerProvider(provider trace.TracerProvider) Option {
	return func(t *Tracer) {
		t.tracerProvider = provider
		t.customTracerProvider = true
	}
}

// WithGlobalTracerProvider registers the tracer provider as the global
// OpenTelemetry tracer provider via otel.SetTracerProvider().
func WithGlobalTracerProvider() Option {
	return func(t *Tracer) {
		t.registerGlobal = true
	}
}

// WithServiceName sets the service.name resource attribute.
func WithServiceName(name string) Option {
	return func(t *Tracer) {
		t.serviceName = name
	}
}

// WithServiceVersion sets the service.version resource attribute.
func WithServiceVersion(version string) Option {
	return func(t *Tracer) {
		t.serviceVersion = version
	}
}

// WithSampleRate sets the fraction of root matches that are sampled, from
// 0.0 to 1.0. Matches continuing a remote trace follow the parent's decision.
func WithSampleRate(rate float64) Option {
	return func(t *Tracer) {
		t.sampleRate = rate
	}
}

// WithExcludePaths skips tracing for requests with exactly these paths.
func WithExcludePaths(paths ...string) Option {
	return func(t *Tracer) {
		for _, p := range paths {
			t.excludePaths[p] = true
		}
	}
}

// WithRecordParams records matched parameters as "route.param.<name>"
// span attributes.
func WithRecordParams() Option {
	return func(t *Tracer) {
		t.recordParams = true
	}
}

// WithCustomPropagator sets the propagator used to continue incoming traces.
// The default is the W3C trace context propagator.
func WithCustomPropagator(propagator propagation.TextMapPropagator) Option {
	return func(t *Tracer) {
		t.propagator = propagator
	}
}

// WithEventHandler sets a custom [EventHandler] for internal operational events.
func WithEventHandler(handler EventHandler) Option {
	return func(t *Tracer) {
		t.eventHandler = handler
	}
}

// WithLogger logs internal operational events to logger.
func WithLogger(logger *slog.Logger) Option {
	return WithEventHandler(DefaultEventHandler(logger))
}

func (t *Tracer) setProvider(p Provider) bool {
	if t.providerSet {
		t.validationErrors = append(t.validationErrors,
			fmt.Errorf("provider: multiple providers configured (already have %q, cannot add %q); only one provider allowed", t.provider, p))
		return false
	}
	t.provider = p
	t.providerSet = true
	return true
}

// WithOTLPHTTP configures the OTLP HTTP provider.
// Endpoint format: "http://host:port" (e.g., "http://localhost:4318").
// An http:// endpoint disables TLS.
func WithOTLPHTTP(endpoint string) Option {
	return func(t *Tracer) {
		if t.setProvider(OTLPHTTPProvider) {
			t.otlpEndpoint = endpoint
		}
	}
}

// WithStdout configures the stdout provider with pretty-printed output.
func WithStdout() Option {
	return func(t *Tracer) {
		if t.setProvider(StdoutProvider) {
			t.pretty = true
		}
	}
}

// WithStdoutWriter configures the stdout provider writing compact JSON to w.
func WithStdoutWriter(w io.Writer) Option {
	return func(t *Tracer) {
		if t.setProvider(StdoutProvider) {
			t.stdoutWriter = w
		}
	}
}

// WithNoop configures the noop provider (default, no spans exported).
func WithNoop() Option {
	return func(t *Tracer) {
		t.setProvider(NoopProvider)
	}
}
