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

import (
	"fmt"
	"maps"
	"regexp"
	"slices"
)

// Behavior is a node in the route definition tree. It accumulates
// conditions, params, defaults and deferred functions; every DSL call
// returns a new child so a Behavior can spawn any number of routes.
// Merged views over the ancestor chain are computed once per node.
//
// Behaviors are only used while a route definition function runs and are
// not safe for concurrent use.
type Behavior struct {
	registrar Registrar
	parent    *Behavior

	path       any
	conditions Conditions
	restrict   map[string]string
	params     Params
	defaults   Params
	deferred   []DeferFunc
	identify   []IdentifyFunc
	namespace  string
	namePrefix string

	view *mergedView
}

// mergedView is the root-to-leaf merge of a Behavior chain.
type mergedView struct {
	paths      []any
	conditions Conditions
	restrict   map[string]string
	params     Params
	defaults   Params
	deferred   []DeferFunc
	identify   []IdentifyFunc
	namespace  string
	namePrefix string
}

// NewRoot returns the root Behavior of a definition. defaults apply to
// every route defined below it.
func NewRoot(registrar Registrar, defaults Params) *Behavior {
	return &Behavior{registrar: registrar, defaults: defaults.Clone()}
}

func (b *Behavior) child() *Behavior {
	return &Behavior{registrar: b.registrar, parent: b}
}

func (b *Behavior) fail(err error) {
	b.registrar.Fail(err)
}

// Fail records an error found by code that drives the DSL, such as a
// definition loader. The enclosing Prepare returns it with the others.
func (b *Behavior) Fail(err error) {
	if err != nil {
		b.fail(err)
	}
}

// Match returns a child Behavior matching path plus any extra conditions.
//
// path may be a template string, a *regexp.Regexp, a Conditions holding a
// "path" key among others, or nil/"" for no path. Path fragments of nested
// Behaviors are concatenated; other keys override inherited ones.
//
//	b.Match("/users/:id", Conditions{"method": "get"}).To(Params{"controller": "users"})
func (b *Behavior) Match(path any, extra ...Conditions) *Behavior {
	c := b.child()
	conds := make(Conditions)

	switch p := path.(type) {
	case nil:
	case string:
		if p != "" {
			conds[KeyPath] = p
		}
	case Conditions:
		maps.Copy(conds, p)
	case map[string]any:
		maps.Copy(conds, p)
	default:
		conds[KeyPath] = path
	}

	for _, e := range extra {
		for k, v := range e {
			if _, dup := conds[k]; dup && k == KeyPath {
				b.fail(configErr("", k, fmt.Errorf("%w: path given twice", ErrInvalidCondition)))
				continue
			}
			conds[k] = v
		}
	}

	for k, v := range conds {
		if err := checkConditionValue(k, v); err != nil {
			b.fail(err)
			delete(conds, k)
		}
	}

	if p, ok := conds[KeyPath]; ok {
		c.path = p
		delete(conds, KeyPath)
	}
	c.conditions = conds
	return c
}

func checkConditionValue(key string, v any) error {
	if key == "" {
		return configErr("", "", fmt.Errorf("%w: empty condition key", ErrInvalidCondition))
	}
	switch x := v.(type) {
	case string, []string, []any:
		return nil
	case *regexp.Regexp:
		if x != nil {
			return nil
		}
	}
	return configErr("", key, fmt.Errorf("%w: unsupported value type %T", ErrInvalidCondition, v))
}

// GET matches path for GET requests.
func (b *Behavior) GET(path string) *Behavior {
	return b.Match(path, Conditions{KeyMethod: "get"})
}

// POST matches path for POST requests.
func (b *Behavior) POST(path string) *Behavior {
	return b.Match(path, Conditions{KeyMethod: "post"})
}

// PUT matches path for PUT requests.
func (b *Behavior) PUT(path string) *Behavior {
	return b.Match(path, Conditions{KeyMethod: "put"})
}

// PATCH matches path for PATCH requests.
func (b *Behavior) PATCH(path string) *Behavior {
	return b.Match(path, Conditions{KeyMethod: "patch"})
}

// DELETE matches path for DELETE requests.
func (b *Behavior) DELETE(path string) *Behavior {
	return b.Match(path, Conditions{KeyMethod: "delete"})
}

// Scope calls fn with b and returns b. It is the block form of the DSL:
//
//	b.Match("/admin").Scope(func(admin *route.Behavior) {
//	    admin.Match("/users").To(route.Params{"controller": "users"})
//	})
func (b *Behavior) Scope(fn func(b *Behavior)) *Behavior {
	fn(b)
	return b
}

// With returns a child whose params are merged over inherited ones.
// Param values are templates: ":name" refers to a placeholder, "[n]" to a
// group of the path condition and ":key[n]" to a group of condition key.
func (b *Behavior) With(params Params) *Behavior {
	c := b.child()
	c.params = params.Clone()
	return c
}

// To merges params and registers a route.
func (b *Behavior) To(params Params) *Route {
	return b.With(params).Register()
}

// Register registers a route for b as it is.
func (b *Behavior) Register() *Route {
	r, err := compileRoute(b)
	if err != nil {
		b.fail(err)
		return r
	}
	r.index = b.registrar.AddRoute(r)
	return r
}

// Defaults returns a child whose params fall back to defaults when the
// match did not produce them. Generation also uses them for required
// placeholders.
func (b *Behavior) Defaults(defaults Params) *Behavior {
	c := b.child()
	c.defaults = defaults.Clone()
	return c
}

// Defer returns a child whose routes run fn after their conditions match.
// Stacked functions run in definition order.
func (b *Behavior) Defer(fn DeferFunc) *Behavior {
	c := b.child()
	c.deferred = []DeferFunc{fn}
	return c
}

// DeferTo registers a route with params whose outcome is decided by fn.
func (b *Behavior) DeferTo(params Params, fn DeferFunc) *Route {
	return b.Defer(fn).To(params)
}

// Identify returns a child whose routes use fn to convert objects into
// path segments during generation. Functions of nested Behaviors are
// tried before inherited ones.
func (b *Behavior) Identify(fn IdentifyFunc) *Behavior {
	c := b.child()
	c.identify = []IdentifyFunc{fn}
	return c
}

// DefaultRoutes registers the conventional
// "/:controller(/:action(/:id))(.:format)" route named "default".
func (b *Behavior) DefaultRoutes(params Params) *Route {
	return b.Match("/:controller(/:action(/:id))(.:format)").To(params).FullName("default")
}

// NamePrefix returns the prefix applied by Route.Name.
func (b *Behavior) NamePrefix() string {
	return b.merged().namePrefix
}

// ControllerNamespace returns the accumulated controller namespace, such as "admin/v1".
func (b *Behavior) ControllerNamespace() string {
	return b.merged().namespace
}

func (b *Behavior) merged() *mergedView {
	if b.view != nil {
		return b.view
	}

	v := &mergedView{
		conditions: make(Conditions),
		restrict:   make(map[string]string),
		params:     make(Params),
		defaults:   make(Params),
	}
	if b.parent != nil {
		p := b.parent.merged()
		v.paths = slices.Clone(p.paths)
		maps.Copy(v.conditions, p.conditions)
		maps.Copy(v.restrict, p.restrict)
		maps.Copy(v.params, p.params)
		maps.Copy(v.defaults, p.defaults)
		v.deferred = slices.Clone(p.deferred)
		v.identify = p.identify
		v.namespace = p.namespace
		v.namePrefix = p.namePrefix
	}

	if b.path != nil {
		v.paths = append(v.paths, b.path)
	}
	maps.Copy(v.conditions, b.conditions)
	maps.Copy(v.restrict, b.restrict)
	maps.Copy(v.params, b.params)
	maps.Copy(v.defaults, b.defaults)
	v.deferred = append(v.deferred, b.deferred...)
	if len(b.identify) > 0 {
		v.identify = append(slices.Clone(b.identify), v.identify...)
	}
	if b.namespace != "" {
		if v.namespace != "" {
			v.namespace += "/"
		}
		v.namespace += b.namespace
	}
	v.namePrefix += b.namePrefix

	b.view = v
	return v
}
