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

// Package router provides the Merb route table: a declarative route
// definition DSL compiled into an ordered matcher, with the inverse
// operation of building URLs from route names and params.
//
// # Defining routes
//
// Routes are defined by a function that receives the root Behavior:
//
//	r := router.MustNew()
//	r.MustPrepare(func(b *route.Behavior) {
//	    b.Match("/").To(route.Params{"controller": "home"}).Name("root")
//	    b.Match("/users/:id(.:format)", route.Conditions{"method": "get"}).
//	        To(route.Params{"controller": "users", "action": "show"}).Name("user")
//	    b.Namespace("admin").Scope(func(admin *route.Behavior) {
//	        admin.Resources("posts")
//	    })
//	    b.DefaultRoutes(nil)
//	})
//
// Templates use ":name" for placeholders, parentheses for optional groups
// and a backslash to escape either. Conditions restrict placeholders or test
// request attributes such as "method" or "host".
//
// # Matching
//
// Routes are tried in definition order and the first match wins:
//
//	m, err := r.Match(router.NewRequest("GET", "/users/5.json", nil))
//	// m.Params: controller=users action=show id=5 format=json
//
// A miss is not an error: Match returns Index -1 and empty params. Errors
// only come from deferred functions.
//
// # Generating URLs
//
//	url, err := r.Generate("user", map[string]any{"id": 5}, nil) // "/users/5"
//	url, err = r.GenerateDefault(map[string]any{"controller": "posts", "action": "new"}, nil)
//
// # Concurrency
//
// Prepare, Append and Prepend build a complete Table and swap it in
// atomically. Match and Generate are safe for concurrent use.
package router
