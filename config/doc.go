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

// Package config loads route definitions from files, embedded content and
// Consul, and applies them to a router.
//
// A definition document is YAML, TOML or JSON:
//
//	defaults:
//	  action: index
//	routes:
//	  - path: /login
//	    method: get
//	    name: login
//	    to: {controller: sessions, action: new}
//	  - path: /posts/:year/:month
//	    where: {year: '\d{4}', month: '\d{2}'}
//	    to: {controller: posts, action: archive}
//	namespaces:
//	  - name: admin
//	    resources:
//	      - name: users
//	        member: {ban: post}
//	resources:
//	  - name: blogs
//	    resources:
//	      - name: posts
//	default_routes: true
//
// Sources are loaded in the order they are given. Scalar keys and maps of
// later sources override earlier ones; the routes, namespaces and
// resources lists are concatenated. The merged document is checked
// against the JSON Schema returned by [Schema], by custom validators and
// by struct rules before it is decoded into a [Document].
//
// # Usage
//
//	cfg := config.MustNew(
//	    config.WithFile("routes.yaml"),
//	    config.WithConsul("${APP}/routes.json"),
//	)
//	if err := cfg.Load(ctx); err != nil {
//	    return err
//	}
//	r := router.MustNew()
//	if err := r.Prepare(cfg.Routes()); err != nil {
//	    return err
//	}
package config
