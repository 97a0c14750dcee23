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

// Package semconv defines the attribute keys and telemetry names shared by
// the router's logs, metrics and traces.
//
// Request and service keys follow OpenTelemetry semantic conventions so
// that router spans line up with HTTP server spans from other
// instrumentation. Route keys live under the "route." namespace.
//
// # Usage
//
//	span.SetAttributes(
//	    attribute.Int(semconv.RouteIndex, m.Index),
//	    attribute.String(semconv.RouteName, m.Name()),
//	)
//
//	logger.Debug("route matched", semconv.TraceID, traceID)
package semconv
