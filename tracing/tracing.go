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
	"errors"
	"fmt"
	"io"
	"log/slog"

	"go.opentelemetry.io/otel/propagation"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
)

// EventType represents the severity of an internal operational event.
type EventType int

const (
	// EventError indicates an error event (e.g., failed to export spans).
	EventError EventType = iota
	// EventWarning indicates a warning event.
	EventWarning
	// EventInfo indicates an informational event (e.g., tracing initialized).
	EventInfo
	// EventDebug indicates a debug event.
	EventDebug
)

// Event represents an internal operational event from the tracing package.
type Event struct {
	Type    EventType
	Message string
	Args    []any // slog-style key-value pairs
}

// EventHandler processes internal operational events.
type EventHandler func(Event)

// DefaultEventHandler returns an EventHandler that logs events to logger.
// If logger is nil, the handler discards all events.
func DefaultEventHandler(logger *slog.Logger) EventHandler {
	if logger == nil {
		return func(Event) {}
	}

	return func(e Event) {
		switch e.Type {
		case EventError:
			logger.Error(e.Message, e.Args...)
		case EventWarning:
			logger.Warn(e.Message, e.Args...)
		case EventInfo:
			logger.Info(e.Message, e.Args...)
		case EventDebug:
			logger.Debug(e.Message, e.Args...)
		}
	}
}

// Provider represents the available tracing providers.
type Provider string

const (
	// NoopProvider records spans without exporting them (default).
	NoopProvider Provider = "noop"
	// StdoutProvider exports spans as JSON to a writer.
	StdoutProvider Provider = "stdout"
	// OTLPHTTPProvider exports spans with the OTLP HTTP exporter.
	OTLPHTTPProvider Provider = "otlp-http"
)

// Tracer holds OpenTelemetry tracing configuration and implements
// [router.Recorder]. All methods are safe for concurrent use.
//
// By default, this package does NOT set the global OpenTelemetry tracer
// provider. Use [WithGlobalTracerProvider] for that.
type Tracer struct {
	tracer         trace.Tracer
	tracerProvider trace.TracerProvider
	sdkProvider    *sdktrace.TracerProvider
	propagator     propagation.TextMapPropagator
	eventHandler   EventHandler

	serviceName    string
	serviceVersion string
	sampleRate     float64

	provider     Provider
	providerSet  bool
	otlpEndpoint string
	stdoutWriter io.Writer
	pretty       bool

	excludePaths map[string]bool
	recordParams bool

	validationErrors     []error
	customTracerProvider bool
	registerGlobal       bool
}

// New creates a new [Tracer] with the given options.
func New(opts ...Option) (*Tracer, error) {
	t := &Tracer{
		serviceName:    "merb",
		serviceVersion: "dev",
		sampleRate:     1.0,
		provider:       NoopProvider,
		propagator:     propagation.TraceContext{},
		excludePaths:   make(map[string]bool),
	}

	for _, opt := range opts {
		opt(t)
	}

	if err := t.validate(); err != nil {
		return nil, fmt.Errorf("invalid tracing configuration: %w", err)
	}
	if err := t.initializeProvider(); err != nil {
		return nil, fmt.Errorf("failed to initialize tracing: %w", err)
	}
	return t, nil
}

// MustNew creates a new [Tracer] and panics if initialization fails.
func MustNew(opts ...Option) *Tracer {
	t, err := New(opts...)
	if err != nil {
		panic(fmt.Sprintf("Failed to initialize tracing: %v", err))
	}
	return t
}

func (t *Tracer) validate() error {
	if len(t.validationErrors) > 0 {
		return errors.Join(t.validationErrors...)
	}
	if t.serviceName == "" {
		return errors.New("serviceName: cannot be empty")
	}
	if t.sampleRate < 0 || t.sampleRate > 1 {
		return fmt.Errorf("sampleRate: must be between 0 and 1, got %v", t.sampleRate)
	}
	switch t.provider {
	case NoopProvider, StdoutProvider:
	case OTLPHTTPProvider:
		if t.otlpEndpoint == "" {
			t.emitWarning("OTLP endpoint not specified, will use default", "default", "http://localhost:4318")
			t.otlpEndpoint = "http://localhost:4318"
		}
	default:
		return fmt.Errorf("provider: unsupported tracing provider %q", t.provider)
	}
	return nil
}

// ServiceName returns the configured service name.
func (t *Tracer) ServiceName() string {
	return t.serviceName
}

// Provider returns the configured provider.
func (t *Tracer) Provider() Provider {
	return t.provider
}

// TracerProvider returns the tracer provider spans are created from.
func (t *Tracer) TracerProvider() trace.TracerProvider {
	return t.tracerProvider
}

// StartSpan starts a span with the package tracer.
func (t *Tracer) StartSpan(ctx context.Context, name string, opts ...trace.SpanStartOption) (context.Context, trace.Span) {
	return t.tracer.Start(ctx, name, opts...)
}

// ForceFlush exports all ended spans that have not been exported yet.
func (t *Tracer) ForceFlush(ctx context.Context) error {
	if t.sdkProvider == nil {
		return nil
	}
	return t.sdkProvider.ForceFlush(ctx)
}

// Shutdown flushes and stops the tracer provider created by New.
// A user-provided tracer provider is left to its owner.
func (t *Tracer) Shutdown(ctx context.Context) error {
	if t.sdkProvider == nil || t.customTracerProvider {
		return nil
	}
	t.emitDebug("Shutting down tracer provider")
	if err := t.sdkProvider.Shutdown(ctx); err != nil {
		t.emitError("Error shutting down tracer provider", "error", err)
		return fmt.Errorf("tracer provider shutdown: %w", err)
	}
	return nil
}

// TraceID returns the trace ID of the span in ctx, or "".
func TraceID(ctx context.Context) string {
	sc := trace.SpanContextFromContext(ctx)
	if !sc.HasTraceID() {
		return ""
	}
	return sc.TraceID().String()
}

// SpanID returns the span ID of the span in ctx, or "".
func SpanID(ctx context.Context) string {
	sc := trace.SpanContextFromContext(ctx)
	if !sc.HasSpanID() {
		return ""
	}
	return sc.SpanID().String()
}

func (t *Tracer) emit(typ EventType, msg string, args ...any) {
	if t.eventHandler != nil {
		t.eventHandler(Event{Type: typ, Message: msg, Args: args})
	}
}

func (t *Tracer) emitError(msg string, args ...any)   { t.emit(EventError, msg, args...) }
func (t *Tracer) emitWarning(msg string, args ...any) { t.emit(EventWarning, msg, args...) }
func (t *Tracer) emitInfo(msg string, args ...any)    { t.emit(EventInfo, msg, args...) }
func (t *Tracer) emitDebug(msg string, args ...any)   { t.emit(EventDebug, msg, args...) }
