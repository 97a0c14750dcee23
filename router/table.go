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

import (
	"errors"
	"fmt"
	"maps"
	"slices"

	"merb.dev/core/router/compiler"
	"merb.dev/core/router/route"
)

// Match is the result of matching a request.
// Index is -1 and Route is nil when no route matched.
type Match struct {
	Index  int
	Route  *route.Route
	Params Params
}

// Found reports whether a route matched.
func (m Match) Found() bool {
	return m.Index >= 0
}

// Name returns the name of the matched route, or "".
func (m Match) Name() string {
	if m.Route == nil {
		return ""
	}
	return m.Route.RouteName()
}

// Table is an immutable route table: routes in match order, the named
// route map and the compiled matcher. A Router publishes a new Table on
// every Prepare, Append and Prepend; a Table obtained from Router.Table
// keeps answering with the routes it was built from.
type Table struct {
	routes  []*route.Route
	named   map[string]*route.Route
	matcher *compiler.Matcher
}

func newTable(routes []*route.Route, named map[string]*route.Route, index bool) *Table {
	programs := make([]*compiler.Program, len(routes))
	for i, r := range routes {
		programs[i] = r.Program()
	}
	return &Table{
		routes:  routes,
		named:   named,
		matcher: compiler.NewMatcher(programs, index),
	}
}

// Len returns the number of routes.
func (t *Table) Len() int {
	return len(t.routes)
}

// Routes returns the routes in match order.
func (t *Table) Routes() []*route.Route {
	return slices.Clone(t.routes)
}

// NamedRoutes returns a copy of the named route map.
func (t *Table) NamedRoutes() map[string]*route.Route {
	return maps.Clone(t.named)
}

// Route returns the route registered under name.
func (t *Table) Route(name string) (*route.Route, bool) {
	r, ok := t.named[name]
	return r, ok
}

// Indexed reports whether the table uses the first-byte route index.
func (t *Table) Indexed() bool {
	return t.matcher.Indexed()
}

// Match returns the first route matching req. A miss is not an error;
// errors come from deferred functions.
func (t *Table) Match(req Request) (Match, error) {
	i, params, err := t.matcher.Match(req)
	if err != nil {
		return Match{Index: -1, Params: Params{}}, err
	}
	if i < 0 {
		return Match{Index: -1, Params: params}, nil
	}
	return Match{Index: i, Route: t.routes[i], Params: params}, nil
}

// Generate builds a path for the route registered under name.
func (t *Table) Generate(name string, params any, fallback map[string]any) (string, error) {
	r, ok := t.named[name]
	if !ok {
		return "", &GenerationError{Name: name, Err: ErrRouteNotFound}
	}
	return r.Generate(params, fallback)
}

// builder collects routes while a definition function runs. It implements
// route.Registrar.
type builder struct {
	routes []*route.Route
	named  map[string]*route.Route
	errs   []error
	emit   func(kind DiagnosticKind, msg string, fields map[string]any)
}

func newBuilder(emit func(DiagnosticKind, string, map[string]any)) *builder {
	return &builder{named: make(map[string]*route.Route), emit: emit}
}

// AddRoute implements route.Registrar.
func (b *builder) AddRoute(r *route.Route) int {
	b.routes = append(b.routes, r)
	return len(b.routes) - 1
}

// RegisterNamedRoute implements route.Registrar.
func (b *builder) RegisterNamedRoute(name string, r *route.Route) error {
	if r.Index() < 0 {
		// The route failed to compile and its error is already recorded.
		return nil
	}
	if prev, dup := b.named[name]; dup {
		return &ConfigError{
			Path: r.Path(),
			Key:  name,
			Err:  fmt.Errorf("%w: %q already names %s", ErrDuplicateRouteName, name, prev),
		}
	}
	b.named[name] = r
	return nil
}

// Fail implements route.Registrar.
func (b *builder) Fail(err error) {
	b.errs = append(b.errs, err)
}

// Emit implements route.Registrar.
func (b *builder) Emit(kind DiagnosticKind, msg string, fields map[string]any) {
	if b.emit != nil {
		b.emit(kind, msg, fields)
	}
}

func (b *builder) err() error {
	return errors.Join(b.errs...)
}

// combine returns the routes and names of first followed by second.
// Routes whose position changes are copied with their new index so that
// tables sharing the originals are not affected.
func combine(first, second []*route.Route, firstNamed, secondNamed map[string]*route.Route) ([]*route.Route, map[string]*route.Route, error) {
	routes := make([]*route.Route, 0, len(first)+len(second))
	moved := make(map[*route.Route]*route.Route)
	for _, r := range first {
		routes = append(routes, renumber(r, len(routes), moved))
	}
	for _, r := range second {
		routes = append(routes, renumber(r, len(routes), moved))
	}

	named := make(map[string]*route.Route, len(firstNamed)+len(secondNamed))
	var errs []error
	for _, src := range []map[string]*route.Route{firstNamed, secondNamed} {
		for _, name := range sortedNames(src) {
			r := src[name]
			if m, ok := moved[r]; ok {
				r = m
			}
			if _, dup := named[name]; dup {
				errs = append(errs, &ConfigError{Path: r.Path(), Key: name, Err: ErrDuplicateRouteName})
				continue
			}
			named[name] = r
		}
	}
	return routes, named, errors.Join(errs...)
}

func renumber(r *route.Route, i int, moved map[*route.Route]*route.Route) *route.Route {
	if r.Index() == i {
		return r
	}
	c := r.WithIndex(i)
	moved[r] = c
	return c
}

func sortedNames(m map[string]*route.Route) []string {
	names := make([]string, 0, len(m))
	for n := range m {
		names = append(names, n)
	}
	slices.Sort(names)
	return names
}
