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

// Package tracing traces router matching with OpenTelemetry.
//
// A [Tracer] implements [router.Recorder]. Each match runs inside a
// "router.match" span carrying the request method and path and, once the
// match ends, these attributes:
//
//   - route.matched: whether a route matched
//   - route.index: position of the matched route in the table
//   - route.name: name of the matched route, when it has one
//   - route.path: path template of the matched route
//
// Errors returned by deferred functions are recorded on the span and set
// its status to Error. URL generation adds a "router.generate" event to
// the span found in the context, if any.
//
// When the request exposes W3C trace headers (for example a request built
// with router.FromHTTP), the match span continues the incoming trace.
//
//	tracer := tracing.MustNew(
//	    tracing.WithOTLPHTTP("http://localhost:4318"),
//	    tracing.WithServiceName("routes"),
//	)
//	defer tracer.Shutdown(context.Background())
//
//	r := router.MustNew(router.WithRecorder(tracer))
package tracing
