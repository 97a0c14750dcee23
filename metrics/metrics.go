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
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	promclient "github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
)

// DefaultDurationBuckets are histogram boundaries for match duration in
// seconds. Matching is in-process, so the range is microseconds to 100ms.
var DefaultDurationBuckets = []float64{
	0.000005, 0.00001, 0.000025, 0.00005, 0.0001, 0.00025, 0.0005,
	0.001, 0.0025, 0.005, 0.01, 0.1,
}

// EventType represents the severity of an internal operational event.
type EventType int

const (
	// EventError indicates an error event (e.g., failed to export metrics).
	EventError EventType = iota
	// EventWarning indicates a warning event.
	EventWarning
	// EventInfo indicates an informational event (e.g., metrics server started).
	EventInfo
	// EventDebug indicates a debug event.
	EventDebug
)

// Event represents an internal operational event from the metrics package.
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

// Provider represents the available metrics providers.
type Provider string

const (
	// PrometheusProvider uses the Prometheus exporter (default).
	PrometheusProvider Provider = "prometheus"
	// OTLPProvider uses the OTLP HTTP exporter.
	OTLPProvider Provider = "otlp"
	// StdoutProvider uses the stdout exporter (development/testing).
	StdoutProvider Provider = "stdout"
)

// ErrNoHandler is returned by [Recorder.Handler] for non-Prometheus providers.
var ErrNoHandler = errors.New("metrics handler only available with Prometheus provider")

// Recorder holds OpenTelemetry metrics configuration and runtime state.
// It implements [router.Recorder]. All methods are safe for concurrent use.
type Recorder struct {
	meter              metric.Meter
	meterProvider      metric.MeterProvider
	prometheusHandler  http.Handler
	prometheusRegistry *promclient.Registry
	metricsServer      *http.Server
	eventHandler       EventHandler

	matches       metric.Int64Counter
	misses        metric.Int64Counter
	matchErrors   metric.Int64Counter
	matchDuration metric.Float64Histogram
	generations   metric.Int64Counter

	durationBuckets  []float64
	validationErrors []error
	exportInterval   time.Duration

	serviceName    string
	serviceVersion string
	otlpEndpoint   string
	stdoutWriter   io.Writer
	metricsAddr    string
	metricsPath    string

	serverMutex sync.Mutex

	provider            Provider
	providerSetCount    int
	isShuttingDown      atomic.Bool
	isStarted           atomic.Bool
	autoStartServer     bool
	customMeterProvider bool
	registerGlobal      bool
}

// New creates a new [Recorder] with the given options.
// Returns an error if the metrics provider fails to initialize.
func New(opts ...Option) (*Recorder, error) {
	r := &Recorder{
		serviceName:     "merb",
		serviceVersion:  "dev",
		provider:        PrometheusProvider,
		exportInterval:  30 * time.Second,
		metricsAddr:     ":9090",
		metricsPath:     "/metrics",
		durationBuckets: DefaultDurationBuckets,
	}

	for _, opt := range opts {
		opt(r)
	}

	if err := r.validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	if err := r.initializeProvider(); err != nil {
		return nil, fmt.Errorf("failed to initialize metrics: %w", err)
	}
	return r, nil
}

// MustNew creates a new [Recorder] and panics if initialization fails.
func MustNew(opts ...Option) *Recorder {
	r, err := New(opts...)
	if err != nil {
		panic(fmt.Sprintf("Failed to initialize metrics: %v", err))
	}
	return r
}

func (r *Recorder) validate() error {
	if len(r.validationErrors) > 0 {
		return errors.Join(r.validationErrors...)
	}
	if r.providerSetCount > 1 {
		return errors.New("conflicting provider options: only one of WithPrometheus, WithOTLP, or WithStdout can be used")
	}
	if r.serviceName == "" {
		return errors.New("service name cannot be empty")
	}

	switch r.provider {
	case PrometheusProvider:
		if r.autoStartServer && (r.metricsAddr == "" || r.metricsPath == "") {
			return errors.New("metrics address and path cannot be empty for Prometheus server")
		}
	case OTLPProvider:
		if r.otlpEndpoint == "" {
			r.emitWarning("OTLP endpoint not specified, will use default", "default", "http://localhost:4318")
			r.otlpEndpoint = "http://localhost:4318"
		}
	case StdoutProvider:
	default:
		return fmt.Errorf("unsupported metrics provider: %s", r.provider)
	}
	return nil
}

// Handler returns the Prometheus scrape [http.Handler].
func (r *Recorder) Handler() (http.Handler, error) {
	if r.prometheusHandler == nil {
		return nil, fmt.Errorf("%w, current provider: %s", ErrNoHandler, r.provider)
	}
	return r.prometheusHandler, nil
}

// Provider returns the configured metrics provider.
func (r *Recorder) Provider() Provider {
	if r.customMeterProvider {
		return ""
	}
	return r.provider
}

// MeterProvider returns the meter provider instruments are created from.
func (r *Recorder) MeterProvider() metric.MeterProvider {
	return r.meterProvider
}

// ServerAddress returns the address of the metrics server, or "" when no
// server was requested.
func (r *Recorder) ServerAddress() string {
	if r.provider != PrometheusProvider || !r.autoStartServer || r.customMeterProvider {
		return ""
	}
	r.serverMutex.Lock()
	defer r.serverMutex.Unlock()
	return r.metricsAddr
}

// Start starts the Prometheus metrics server when one was requested with
// [WithPrometheus]. It is idempotent.
func (r *Recorder) Start(_ context.Context) error {
	if !r.isStarted.CompareAndSwap(false, true) {
		return nil
	}
	if r.autoStartServer && r.prometheusHandler != nil {
		return r.startMetricsServer()
	}
	return nil
}

// Shutdown stops the metrics server and flushes and shuts down the meter
// provider. A user-provided meter provider is left to its owner.
// Shutdown is idempotent.
func (r *Recorder) Shutdown(ctx context.Context) error {
	if !r.isShuttingDown.CompareAndSwap(false, true) {
		return nil
	}

	var errs []error
	if err := r.stopMetricsServer(ctx); err != nil {
		errs = append(errs, err)
	}
	if !r.customMeterProvider {
		if mp, ok := r.meterProvider.(*sdkmetric.MeterProvider); ok {
			if err := mp.ForceFlush(ctx); err != nil {
				r.emitWarning("metrics flush warning", "error", err)
			}
			if err := mp.Shutdown(ctx); err != nil {
				errs = append(errs, fmt.Errorf("meter provider shutdown: %w", err))
			}
		}
	}
	return errors.Join(errs...)
}

// ForceFlush exports pending metric data without shutting down.
func (r *Recorder) ForceFlush(ctx context.Context) error {
	if mp, ok := r.meterProvider.(*sdkmetric.MeterProvider); ok {
		return mp.ForceFlush(ctx)
	}
	return nil
}

func (r *Recorder) emit(t EventType, msg string, args ...any) {
	if r.eventHandler != nil {
		r.eventHandler(Event{Type: t, Message: msg, Args: args})
	}
}

func (r *Recorder) emitError(msg string, args ...any)   { r.emit(EventError, msg, args...) }
func (r *Recorder) emitWarning(msg string, args ...any) { r.emit(EventWarning, msg, args...) }
func (r *Recorder) emitInfo(msg string, args ...any)    { r.emit(EventInfo, msg, args...) }
func (r *Recorder) emitDebug(msg string, args ...any)   { r.emit(EventDebug, msg, args...) }
