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

import "fmt"

// NamespaceOption configures Namespace.
type NamespaceOption func(*namespaceConfig)

type namespaceConfig struct {
	path       string
	namePrefix string
}

// WithNamespacePath replaces the "/name" path prefix of a namespace.
// An empty path adds no path prefix.
func WithNamespacePath(path string) NamespaceOption {
	return func(c *namespaceConfig) {
		c.path = path
	}
}

// WithNamespaceNamePrefix replaces the "name_" route name prefix.
func WithNamespaceNamePrefix(prefix string) NamespaceOption {
	return func(c *namespaceConfig) {
		c.namePrefix = prefix
	}
}

// Namespace returns a child Behavior for a controller namespace. Routes
// below it get "name/" prepended to their controller, "/name" prepended
// to their path and "name_" prepended to their route names. Nested
// namespaces accumulate:
//
//	b.Namespace("admin").Scope(func(admin *route.Behavior) {
//	    admin.Match("/foo").To(route.Params{"controller": "foos"}) // admin/foos at /admin/foo
//	})
func (b *Behavior) Namespace(name string, opts ...NamespaceOption) *Behavior {
	if name == "" {
		b.fail(configErr("", "", fmt.Errorf("%w: namespace", ErrEmptyName)))
	}

	cfg := namespaceConfig{path: "/" + name, namePrefix: name + "_"}
	for _, opt := range opts {
		opt(&cfg)
	}

	c := b.child()
	if cfg.path != "" {
		c.path = cfg.path
	}
	c.namespace = name
	c.namePrefix = cfg.namePrefix
	return c
}

// NameScope returns a child whose routes' names get prefix prepended
// by Route.Name. The prefix adds to any inherited prefix.
func (b *Behavior) NameScope(prefix string) *Behavior {
	c := b.child()
	c.namePrefix = prefix
	return c
}
