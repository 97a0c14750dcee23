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
	"fmt"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.17.0"
)

const tracerName = "merb.dev/core/tracing"

// initializeProvider creates the tracer provider for the configured provider.
func (t *Tracer) initializeProvider() error {
	if t.customTracerProvider {
		if t.tracerProvider == nil {
			return fmt.Errorf("custom tracer provider is nil")
		}
		t.emitDebug("Using custom user-provided tracer provider")
		t.tracer = t.tracerProvider.Tracer(tracerName)
		if t.registerGlobal {
			otel.SetTracerProvider(t.tracerProvider)
		}
		return nil
	}

	opts := []sdktrace.TracerProviderOption{
		sdktrace.WithResource(createResource(t.serviceName, t.serviceVersion)),
		sdktrace.WithSampler(sdktrace.ParentBased(sdktrace.TraceIDRatioBased(t.sampleRate))),
	}

	switch t.provider {
	case NoopProvider:
	case StdoutProvider:
		var exOpts []stdouttrace.Option
		if t.pretty {
			exOpts = append(exOpts, stdouttrace.WithPrettyPrint())
		}
		if t.stdoutWriter != nil {
			exOpts = append(exOpts, stdouttrace.WithWriter(t.stdoutWriter))
		}
		exporter, err := stdouttrace.New(exOpts...)
		if err != nil {
			return fmt.Errorf("failed to create stdout exporter: %w", err)
		}
		opts = append(opts, sdktrace.WithSyncer(exporter))
	case OTLPHTTPProvider:
		exporter, err := otlptracehttp.New(context.Background(), otlpHTTPOptions(t.otlpEndpoint)...)
		if err != nil {
			return fmt.Errorf("failed to create OTLP HTTP exporter: %w", err)
		}
		opts = append(opts, sdktrace.WithBatcher(exporter))
	}

	tp := sdktrace.NewTracerProvider(opts...)
	t.sdkProvider = tp
	t.tracerProvider = tp
	t.tracer = tp.Tracer(tracerName)

	if t.registerGlobal {
		t.emitDebug("Setting global OpenTelemetry tracer provider", "provider", string(t.provider))
		otel.SetTracerProvider(tp)
	}

	t.emitInfo("Tracing initialized", "provider", string(t.provider), "service", t.serviceName)
	return nil
}

// otlpHTTPOptions turns "http://host:port/path" into exporter options.
func otlpHTTPOptions(endpoint string) []otlptracehttp.Option {
	var opts []otlptracehttp.Option

	insecure := false
	if trimmed, ok := strings.CutPrefix(endpoint, "http://"); ok {
		endpoint = trimmed
		insecure = true
	} else if trimmed, ok := strings.CutPrefix(endpoint, "https://"); ok {
		endpoint = trimmed
	}
	if idx := strings.Index(endpoint, "/"); idx != -1 {
		endpoint = endpoint[:idx]
	}

	opts = append(opts, otlptracehttp.WithEndpoint(endpoint))
	if insecure {
		opts = append(opts, otlptracehttp.WithInsecure())
	}
	return opts
}

// createResource creates an OpenTelemetry resource with service information.
func createResource(serviceName, serviceVersion string) *resource.Resource {
	return resource.NewWithAttributes(
		semconv.SchemaURL,
		semconv.ServiceName(serviceName),
		semconv.ServiceVersion(serviceVersion),
	)
}
