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
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"go.opentelemetry.io/otel/metric"
)

// Option configures a [Recorder].
type Option func(*Recorder)

// WithMeterProvider uses a caller-owned meter provider. Provider options
// are ignored and [Recorder.Shutdown] leaves the provider running.
//
// Example:
//
//	reader := sdkmetric.NewManualReader()
//	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
//	recorder := metrics.MustNew(metrics.WithMeterProvider(mp))
func WithMeterProvider(provider metric.MeterProvider) Option {
	return func(r *Recorder) {
		r.meterProvider = provider
		r.customMeterProvider = true
	}
}

// WithGlobalMeterProvider registers the meter provider as the global
// OpenTelemetry meter provider via otel.SetMeterProvider().
func WithGlobalMeterProvider() Option {
	return func(r *Recorder) {
		r.registerGlobal = true
	}
}

// WithServiceName sets the service.name resource attribute.
func WithServiceName(name string) Option {
	return func(r *Recorder) {
		r.serviceName = name
	}
}

// WithServiceVersion sets the service.version resource attribute.
func WithServiceVersion(version string) Option {
	return func(r *Recorder) {
		r.serviceVersion = version
	}
}

// WithExportInterval sets the export interval for OTLP and stdout metrics.
func WithExportInterval(interval time.Duration) Option {
	return func(r *Recorder) {
		if interval <= 0 {
			r.validationErrors = append(r.validationErrors,
				fmt.Errorf("export interval must be positive, got %v", interval))
			return
		}
		r.exportInterval = interval
	}
}

// WithDurationBuckets sets histogram bucket boundaries for match duration,
// in seconds. If not set, DefaultDurationBuckets is used.
func WithDurationBuckets(buckets ...float64) Option {
	return func(r *Recorder) {
		r.durationBuckets = buckets
	}
}

// WithEventHandler sets a custom [EventHandler] for internal operational events.
func WithEventHandler(handler EventHandler) Option {
	return func(r *Recorder) {
		r.eventHandler = handler
	}
}

// WithLogger logs internal operational events to logger.
// This is a convenience wrapper around [WithEventHandler].
func WithLogger(logger *slog.Logger) Option {
	return WithEventHandler(DefaultEventHandler(logger))
}

// WithPrometheus configures the Prometheus provider and a metrics server
// on addr serving path. The server starts with [Recorder.Start].
//
// Example:
//
//	recorder := metrics.MustNew(
//	    metrics.WithPrometheus(":9090", "/metrics"),
//	    metrics.WithServiceName("routes"),
//	)
func WithPrometheus(addr, path string) Option {
	return func(r *Recorder) {
		r.provider = PrometheusProvider
		r.providerSetCount++
		r.autoStartServer = true
		if addr != "" && !strings.Contains(addr, ":") {
			addr = ":" + addr
		}
		r.metricsAddr = addr
		if path != "" && !strings.HasPrefix(path, "/") {
			path = "/" + path
		}
		r.metricsPath = path
	}
}

// WithOTLP configures the OTLP HTTP provider with endpoint.
func WithOTLP(endpoint string) Option {
	return func(r *Recorder) {
		r.provider = OTLPProvider
		r.providerSetCount++
		r.otlpEndpoint = endpoint
	}
}

// WithStdout configures the stdout provider for development.
func WithStdout() Option {
	return WithStdoutWriter(nil)
}

// WithStdoutWriter configures the stdout provider writing to w.
// A nil w writes to os.Stdout.
func WithStdoutWriter(w io.Writer) Option {
	return func(r *Recorder) {
		r.provider = StdoutProvider
		r.providerSetCount++
		r.stdoutWriter = w
	}
}
