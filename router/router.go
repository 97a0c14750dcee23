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
	"context"
	"fmt"
	"maps"
	"slices"
	"strings"
	"sync"
	"sync/atomic"

	"merb.dev/core/router/route"
)

// Router owns the active route table and answers Match and Generate
// against it.
//
// Route definitions are evaluated by Prepare, Append and Prepend, which
// build a complete new Table and publish it atomically. Readers always see
// either the previous or the new table, never a partial one.
//
// The Router is safe for concurrent use. Match and Generate never block on
// definition calls.
//
// Example:
//
//	r := router.MustNew()
//	r.MustPrepare(func(b *route.Behavior) {
//	    b.Match("/users/:id").To(route.Params{"controller": "users", "action": "show"}).Name("user")
//	    b.Resources("posts")
//	})
//	m, _ := r.Match(router.NewRequest("GET", "/users/5", nil))
//	url, _ := r.Generate("user", map[string]any{"id": 5}, nil)
type Router struct {
	table atomic.Pointer[Table]
	mu    sync.Mutex // Serializes Prepare, Append and Prepend

	diagnostics  DiagnosticHandler
	recorder     Recorder
	rootDefaults route.Params
	indexRoutes  bool
}

// New creates a router with an empty route table.
//
// Returns an error if the router configuration is invalid. For a version
// that panics instead of returning an error, use MustNew.
//
// Example:
//
//	r, err := router.New(router.WithDiagnostics(handler))
//	if err != nil {
//	    log.Fatalf("Failed to create router: %v", err)
//	}
func New(opts ...Option) (*Router, error) {
	r := &Router{
		rootDefaults: route.Params{"action": "index"},
		indexRoutes:  true,
	}
	for _, opt := range opts {
		opt(r)
	}
	if err := r.validate(); err != nil {
		return nil, fmt.Errorf("router configuration validation failed: %w", err)
	}

	r.table.Store(newTable(nil, map[string]*route.Route{}, r.indexRoutes))
	return r, nil
}

// MustNew creates a new Router and panics if the configuration is invalid.
func MustNew(opts ...Option) *Router {
	r, err := New(opts...)
	if err != nil {
		panic(fmt.Sprintf("router.MustNew: %v", err))
	}
	return r
}

func (r *Router) validate() error {
	for k := range r.rootDefaults {
		if k == "" {
			return ErrEmptyDefaultKey
		}
	}
	return nil
}

// Prepare evaluates fn against a fresh root Behavior and replaces the
// route table with the routes it defines. Configuration errors are
// collected during the whole evaluation and returned joined; the current
// table is kept when any occur.
func (r *Router) Prepare(fn func(b *route.Behavior)) error {
	return r.rebuild(fn, func(_ *Table, routes []*route.Route, named map[string]*route.Route) ([]*route.Route, map[string]*route.Route, error) {
		return routes, named, nil
	})
}

// MustPrepare is like Prepare but panics on configuration errors.
func (r *Router) MustPrepare(fn func(b *route.Behavior)) {
	if err := r.Prepare(fn); err != nil {
		panic(fmt.Sprintf("router.MustPrepare: %v", err))
	}
}

// Append evaluates fn and installs a table holding the current routes
// followed by the new ones. Names must not collide with existing names.
func (r *Router) Append(fn func(b *route.Behavior)) error {
	return r.rebuild(fn, func(cur *Table, routes []*route.Route, named map[string]*route.Route) ([]*route.Route, map[string]*route.Route, error) {
		return combine(cur.routes, routes, cur.named, named)
	})
}

// Prepend evaluates fn and installs a table holding the new routes
// followed by the current ones, so the new routes take precedence.
func (r *Router) Prepend(fn func(b *route.Behavior)) error {
	return r.rebuild(fn, func(cur *Table, routes []*route.Route, named map[string]*route.Route) ([]*route.Route, map[string]*route.Route, error) {
		return combine(routes, cur.routes, named, cur.named)
	})
}

type mergeFunc func(cur *Table, routes []*route.Route, named map[string]*route.Route) ([]*route.Route, map[string]*route.Route, error)

func (r *Router) rebuild(fn func(b *route.Behavior), merge mergeFunc) error {
	if fn == nil {
		return ErrNilDefinition
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	b := newBuilder(r.emit)
	fn(route.NewRoot(b, r.rootDefaults))
	if err := b.err(); err != nil {
		return err
	}

	routes, named, err := merge(r.table.Load(), b.routes, b.named)
	if err != nil {
		return err
	}

	t := newTable(routes, named, r.indexRoutes)
	r.checkDuplicates(routes)
	r.table.Store(t)
	r.emit(DiagTablePrepared, "route table prepared", map[string]any{
		"routes":  len(routes),
		"named":   len(named),
		"indexed": t.Indexed(),
	})
	return nil
}

// checkDuplicates emits DiagDuplicateRoute for routes that can never match
// because an earlier route has the same conditions.
func (r *Router) checkDuplicates(routes []*route.Route) {
	if r.diagnostics == nil {
		return
	}
	seen := make(map[string]int, len(routes))
	for _, rt := range routes {
		key := routeKey(rt)
		if first, dup := seen[key]; dup {
			r.emit(DiagDuplicateRoute, "route is shadowed by an earlier route", map[string]any{
				"route":    rt.String(),
				"index":    rt.Index(),
				"shadowed": first,
			})
			continue
		}
		if !rt.Deferred() {
			seen[key] = rt.Index()
		}
	}
}

func routeKey(rt *route.Route) string {
	info := rt.Info()
	var b strings.Builder
	b.WriteString(rt.String())
	keys := slices.Sorted(maps.Keys(info.Conditions))
	for _, k := range keys {
		b.WriteString(" " + k + "=" + info.Conditions[k])
	}
	keys = slices.Sorted(maps.Keys(info.Constraints))
	for _, k := range keys {
		b.WriteString(" " + k + "~" + info.Constraints[k])
	}
	return b.String()
}

// emit sends a diagnostic event if a handler is configured.
func (r *Router) emit(kind DiagnosticKind, message string, fields map[string]any) {
	if r.diagnostics != nil {
		r.diagnostics.OnDiagnostic(DiagnosticEvent{
			Kind:    kind,
			Message: message,
			Fields:  fields,
		})
	}
}

// Table returns the active route table.
func (r *Router) Table() *Table {
	return r.table.Load()
}

// Match returns the first route matching req. A miss is reported as
// Index -1 with empty params and no error. Errors returned by deferred
// functions propagate unchanged.
func (r *Router) Match(req Request) (Match, error) {
	return r.MatchContext(context.Background(), req)
}

// MatchContext is like Match and passes ctx to the recorder.
func (r *Router) MatchContext(ctx context.Context, req Request) (Match, error) {
	t := r.table.Load()
	if r.recorder == nil {
		return t.Match(req)
	}

	ctx, state := r.recorder.OnMatchStart(ctx, req)
	m, err := t.Match(req)
	if state != nil {
		r.recorder.OnMatchEnd(ctx, state, m, err)
	}
	return m, err
}

// Generate builds a path for the route registered under name.
// See route.Route.Generate for how params and fallback are used.
//
// Example:
//
//	url, err := r.Generate("user", map[string]any{"id": 5, "page": 2}, nil) // "/users/5?page=2"
func (r *Router) Generate(name string, params any, fallback map[string]any) (string, error) {
	return r.GenerateContext(context.Background(), name, params, fallback)
}

// GenerateContext is like Generate and passes ctx to the recorder.
func (r *Router) GenerateContext(ctx context.Context, name string, params any, fallback map[string]any) (string, error) {
	url, err := r.table.Load().Generate(name, params, fallback)
	if r.recorder != nil {
		r.recorder.OnGenerate(ctx, name, err)
	}
	return url, err
}

// GenerateDefault builds a "/:controller/:action/:id.:format" path without
// consulting the route table.
func (r *Router) GenerateDefault(params, fallback map[string]any) (string, error) {
	url, err := route.GenerateDefault(params, fallback)
	if r.recorder != nil {
		r.recorder.OnGenerate(context.Background(), "", err)
	}
	return url, err
}

// Routes returns the routes of the active table in match order.
func (r *Router) Routes() []*route.Route {
	return r.table.Load().Routes()
}

// NamedRoutes returns the named routes of the active table.
func (r *Router) NamedRoutes() map[string]*route.Route {
	return r.table.Load().NamedRoutes()
}

// Route returns the route of the active table registered under name.
func (r *Router) Route(name string) (*route.Route, bool) {
	return r.table.Load().Route(name)
}
