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

// Package route provides the route definition DSL: Behavior, Route,
// namespaces and resources.
//
// This package contains:
//   - Behavior: a node of the definition tree accumulating conditions and params
//   - Route: a registered route with its compiled program and generation template
//   - Namespace: controller, path and name prefixes for a subtree
//   - Resources: conventional CRUD route bundles
//   - Constraints: placeholder restrictions (int, UUID, regex, enum, etc.)
//
// The types in this package are used while a route table is prepared and do
// not take part in request matching beyond the programs they produce.
//
// # Route Definition
//
// Routes are defined inside a function passed to Router.Prepare:
//
//	r.Prepare(func(b *route.Behavior) {
//	    b.Match("/users/:id", route.Conditions{"method": "get"}).
//	        WhereInt("id").
//	        To(route.Params{"controller": "users", "action": "show"}).
//	        Name("user")
//	})
//
// # Nesting
//
// Nested Behaviors concatenate their paths and override their parents'
// params:
//
//	b.Match("/admin").Scope(func(admin *route.Behavior) {
//	    admin.Match("/stats").To(route.Params{"controller": "stats"})
//	})
//
// # Resources
//
//	b.Resources("blogs").Nest(func(blog *route.Behavior) {
//	    blog.Resources("users") // blog_user: /blogs/:blog_id/users/:id
//	})
//
// # Registration
//
// Behavior and Route report to a Registrar implemented by the router's
// table builder, which keeps this package free of an import cycle.
package route
