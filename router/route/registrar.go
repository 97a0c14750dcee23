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

package route

// DiagnosticKind categorizes diagnostic events.
type DiagnosticKind string

const (
	// DiagHighParamCount indicates a route has more than 8 placeholders.
	DiagHighParamCount DiagnosticKind = "route_param_count_high"
)

// highParamCount is the placeholder count above which DiagHighParamCount is emitted.
const highParamCount = 8

// Registrar is implemented by the table builder that collects routes while
// a route definition function runs. Behavior and Route talk to it instead
// of importing the router package.
//
// All methods are called while routes are being defined, never while matching.
type Registrar interface {
	// AddRoute appends a compiled route and returns its index.
	AddRoute(route *Route) int

	// RegisterNamedRoute records route under name.
	RegisterNamedRoute(name string, route *Route) error

	// Fail records a configuration error. Definition continues so that all
	// errors can be reported together.
	Fail(err error)

	// Emit emits a diagnostic event.
	Emit(kind DiagnosticKind, msg string, data map[string]any)
}
