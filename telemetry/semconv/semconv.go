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

package semconv

// Service metadata.
const (
	// ServiceName identifies the service that produced the telemetry.
	ServiceName = "service.name"

	// ServiceVersion is the version of that service.
	ServiceVersion = "service.version"
)

// Request attributes.
const (
	// HTTPRequestMethod is the method of the matched request.
	HTTPRequestMethod = "http.request.method"

	// URLPath is the request path, not the route template.
	URLPath = "url.path"
)

// Route attributes recorded on match spans.
const (
	// RouteMatched reports whether any route matched.
	RouteMatched = "route.matched"

	// RouteIndex is the position of the matched route in the table.
	RouteIndex = "route.index"

	// RoutePath is the path template of the matched route (e.g., "/users/:id").
	RoutePath = "route.path"

	// RouteName is the name of the matched or generated route.
	RouteName = "route.name"

	// RouteParamPrefix prefixes one attribute per matched parameter.
	RouteParamPrefix = "route.param."
)

// Span and event names.
const (
	SpanMatch     = "router.match"
	EventGenerate = "router.generate"
)

// Metric labels.
const (
	// LabelRoute is the route name, or its path when unnamed.
	LabelRoute = "route"

	// LabelName is the route name passed to generation; "default" for the
	// default route.
	LabelName = "name"

	// LabelOutcome is one of the Outcome values.
	LabelOutcome = "outcome"
)

// Outcome values.
const (
	OutcomeOK      = "ok"
	OutcomeMatched = "matched"
	OutcomeMiss    = "miss"
	OutcomeError   = "error"
)

// Log correlation fields.
const (
	TraceID = "trace_id"
	SpanID  = "span_id"
)

// RouteParam returns the span attribute key for parameter name.
func RouteParam(name string) string {
	return RouteParamPrefix + name
}
