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
	"net"
	"net/http"
	"strings"
	"time"

	promclient "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/exporters/stdout/stdoutmetric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"

	"merb.dev/core/telemetry/semconv"
)

const meterName = "merb.dev/core/metrics"

// initializeProvider initializes the metrics provider based on configuration.
func (r *Recorder) initializeProvider() error {
	if r.customMeterProvider {
		if r.meterProvider == nil {
			return errors.New("custom meter provider is nil")
		}
		r.emitDebug("Using custom user-provided meter provider")
		return r.initializeMetrics()
	}

	var (
		reader sdkmetric.Reader
		err    error
	)
	switch r.provider {
	case PrometheusProvider:
		reader, err = r.prometheusReader()
	case OTLPProvider:
		reader, err = r.otlpReader()
	case StdoutProvider:
		reader, err = r.stdoutReader()
	default:
		return fmt.Errorf("unsupported metrics provider: %s", r.provider)
	}
	if err != nil {
		return err
	}

	r.meterProvider = sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(reader),
		sdkmetric.WithResource(r.resource()),
	)

	if r.registerGlobal {
		r.emitDebug("Setting global OpenTelemetry meter provider", "provider", string(r.provider))
		otel.SetMeterProvider(r.meterProvider)
	}

	return r.initializeMetrics()
}

func (r *Recorder) resource() *resource.Resource {
	return resource.NewSchemaless(
		attribute.String(semconv.ServiceName, r.serviceName),
		attribute.String(semconv.ServiceVersion, r.serviceVersion),
	)
}

// prometheusReader creates the Prometheus exporter on a private registry so
// several recorders can coexist in one process.
func (r *Recorder) prometheusReader() (sdkmetric.Reader, error) {
	r.prometheusRegistry = promclient.NewRegistry()

	exporter, err := prometheus.New(prometheus.WithRegisterer(r.prometheusRegistry))
	if err != nil {
		return nil, fmt.Errorf("failed to create Prometheus exporter: %w", err)
	}

	r.prometheusHandler = promhttp.HandlerFor(r.prometheusRegistry, promhttp.HandlerOpts{})
	return exporter, nil
}

func (r *Recorder) otlpReader() (sdkmetric.Reader, error) {
	var opts []otlpmetrichttp.Option

	endpoint := r.otlpEndpoint
	insecure := strings.HasPrefix(endpoint, "http://")
	endpoint = strings.TrimPrefix(strings.TrimPrefix(endpoint, "http://"), "https://")
	if idx := strings.Index(endpoint, "/"); idx != -1 {
		endpoint = endpoint[:idx]
	}
	opts = append(opts, otlpmetrichttp.WithEndpoint(endpoint))
	if insecure {
		opts = append(opts, otlpmetrichttp.WithInsecure())
	}

	exporter, err := otlpmetrichttp.New(context.Background(), opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create OTLP exporter: %w", err)
	}
	return sdkmetric.NewPeriodicReader(exporter, sdkmetric.WithInterval(r.exportInterval)), nil
}

func (r *Recorder) stdoutReader() (sdkmetric.Reader, error) {
	var opts []stdoutmetric.Option
	if r.stdoutWriter != nil {
		opts = append(opts, stdoutmetric.WithWriter(r.stdoutWriter))
	}
	exporter, err := stdoutmetric.New(opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create stdout exporter: %w", err)
	}
	return sdkmetric.NewPeriodicReader(exporter, sdkmetric.WithInterval(r.exportInterval)), nil
}

// startMetricsServer binds the metrics address and serves the Prometheus
// handler in the background.
func (r *Recorder) startMetricsServer() error {
	if r.isShuttingDown.Load() {
		return nil
	}

	listener, err := net.Listen("tcp", r.metricsAddr)
	if err != nil {
		r.emitError("Failed to start metrics server", "error", err, "address", r.metricsAddr)
		return fmt.Errorf("metrics server listen: %w", err)
	}

	mux := http.NewServeMux()
	mux.Handle(r.metricsPath, r.prometheusHandler)

	server := &http.Server{
		Handler:      mux,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	r.serverMutex.Lock()
	r.metricsServer = server
	r.metricsAddr = listener.Addr().String()
	addr := r.metricsAddr
	r.serverMutex.Unlock()

	r.emitInfo("Metrics server starting", "address", addr, "path", r.metricsPath)

	go func() {
		if err := server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			r.emitError("Metrics server error", "error", err)
		}
	}()
	return nil
}

func (r *Recorder) stopMetricsServer(ctx context.Context) error {
	r.serverMutex.Lock()
	server := r.metricsServer
	r.metricsServer = nil
	r.serverMutex.Unlock()

	if server == nil {
		return nil
	}
	r.emitDebug("Shutting down metrics server")
	if err := server.Shutdown(ctx); err != nil {
		r.emitError("Error shutting down metrics server", "error", err)
		return fmt.Errorf("metrics server shutdown: %w", err)
	}
	return nil
}
