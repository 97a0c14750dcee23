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

// Package metrics records router match and URL generation metrics with
// OpenTelemetry.
//
// A [Recorder] implements [router.Recorder] and exports through one of three
// providers: Prometheus (default), OTLP over HTTP, or stdout.
//
//	recorder := metrics.MustNew(
//	    metrics.WithPrometheus(":9090", "/metrics"),
//	    metrics.WithServiceName("routes"),
//	)
//	defer recorder.Shutdown(context.Background())
//
//	r := router.MustNew(router.WithRecorder(recorder))
//
// # Instruments
//
//   - merb_router_matches_total{route}: requests that matched a route
//   - merb_router_misses_total: requests that matched nothing
//   - merb_router_match_errors_total: matches aborted by a deferred function
//   - merb_router_match_duration_seconds: time spent matching
//   - merb_router_generate_total{name,outcome}: URL generation calls
//
// The route label is the route name when the route is named and its path
// template otherwise. Default-route generation is reported with
// name="default".
//
// By default the package does not touch the global meter provider. Use
// [WithGlobalMeterProvider] to register it.
package metrics
