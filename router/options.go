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

// Option configures a Router.
type Option func(*Router)

// WithDiagnostics sets a diagnostic handler for the router.
//
// Diagnostic events are optional informational events that may indicate
// configuration issues. The router functions correctly whether
// diagnostics are collected or not.
//
// Example with logging:
//
//	logger := logging.MustNew(logging.WithConsole())
//	r := router.MustNew(router.WithDiagnostics(logging.DiagnosticHandler(logger)))
func WithDiagnostics(handler DiagnosticHandler) Option {
	return func(r *Router) {
		r.diagnostics = handler
	}
}

// WithRecorder sets the observability recorder. Use Recorders to combine
// metrics and tracing.
//
// Example:
//
//	r := router.MustNew(router.WithRecorder(router.Recorders(m, t)))
func WithRecorder(recorder Recorder) Option {
	return func(r *Router) {
		r.recorder = recorder
	}
}

// WithRootDefaults sets the defaults of the root Behavior, applied to
// every route defined by Prepare, Append and Prepend.
//
// Default: {"action": "index"}
//
// Example:
//
//	r := router.MustNew(router.WithRootDefaults(route.Params{"action": "show", "format": "html"}))
func WithRootDefaults(defaults route.Params) Option {
	return func(r *Router) {
		r.rootDefaults = defaults.Clone()
	}
}

// WithRouteIndex enables or disables the first-byte route index. With the
// index, requests only evaluate routes whose literal prefix can match the
// first path segment. Match order is unchanged.
//
// Default: true (enabled)
func WithRouteIndex(enabled bool) Option {
	return func(r *Router) {
		r.indexRoutes = enabled
	}
}

// WithoutRouteIndex disables the first-byte route index.
// This is equivalent to WithRouteIndex(false).
func WithoutRouteIndex() Option {
	return WithRouteIndex(false)
}
