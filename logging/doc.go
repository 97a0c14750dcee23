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

// Package logging provides the structured logger used by Merb tools and
// the adapters that turn router diagnostics and match results into log
// records.
//
// The router never logs on its own. Wire a logger explicitly:
//
//	logger := logging.MustNew(
//	    logging.WithConsole(),
//	    logging.WithServiceName("merb"),
//	)
//	r := router.MustNew(
//	    router.WithDiagnostics(logging.DiagnosticHandler(logger)),
//	    router.WithRecorder(logging.NewRecorder(logger)),
//	)
//
// # Handlers
//
// Three handlers are available: JSON (default), text key=value, and a
// colored console handler for development. All of them honor the
// configured level, which can be changed at runtime with SetLevel.
//
// # Trace correlation
//
// WithTrace adds the trace and span IDs of an OpenTelemetry span found in
// a context to a logger, so log records can be joined with traces.
package logging
