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

package router

import "merb.dev/core/router/route"

// DiagnosticEvent represents a router diagnostic.
// These are informational events that may indicate configuration issues.
//
// Diagnostic events are optional - the router functions correctly whether
// they are collected or not.
type DiagnosticEvent struct {
	Kind    DiagnosticKind
	Message string
	Fields  map[string]any // Structured context
}

// DiagnosticKind categorizes diagnostic events.
type DiagnosticKind = route.DiagnosticKind

const (
	// DiagHighParamCount is emitted for routes with more than 8 placeholders.
	DiagHighParamCount = route.DiagHighParamCount

	// DiagDuplicateRoute is emitted when a route repeats the method, path and
	// conditions of an earlier route that has no deferred functions.
	// The later route can never match.
	DiagDuplicateRoute DiagnosticKind = "route_duplicate"

	// DiagTablePrepared is emitted after a new route table is installed.
	DiagTablePrepared DiagnosticKind = "route_table_prepared"
)

// DiagnosticHandler receives diagnostic events from the router.
// Implementations may log, emit metrics, trace events, or ignore them.
//
// This interface is optional - if not provided, diagnostics are silently dropped.
//
// Example with logging:
//
//	handler := router.DiagnosticHandlerFunc(func(e router.DiagnosticEvent) {
//	    slog.Warn(e.Message, "kind", e.Kind, "fields", e.Fields)
//	})
//	r := router.MustNew(router.WithDiagnostics(handler))
type DiagnosticHandler interface {
	OnDiagnostic(DiagnosticEvent)
}

// DiagnosticHandlerFunc is a function adapter for DiagnosticHandler.
type DiagnosticHandlerFunc func(DiagnosticEvent)

func (f DiagnosticHandlerFunc) OnDiagnostic(e DiagnosticEvent) {
	f(e)
}
