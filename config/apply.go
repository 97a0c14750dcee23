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

package config

import (
	"errors"
	"fmt"
	"maps"
	"regexp"
	"slices"
	"strings"

	"merb.dev/core/router/route"
)

// Routes returns a function that applies the loaded document. It is meant
// for Router.Prepare:
//
//	cfg := config.MustNew(config.WithFile("routes.yaml"))
//	cfg.MustLoad(ctx)
//	if err := r.Prepare(cfg.Routes()); err != nil { ... }
//
// Errors found while applying are reported to b, so Prepare returns them.
func (c *Config) Routes() func(b *route.Behavior) {
	doc := c.Document()
	return func(b *route.Behavior) {
		if doc == nil {
			b.Fail(ErrNotLoaded)
			return
		}
		if err := doc.Apply(b); err != nil {
			b.Fail(err)
		}
	}
}

// Apply issues the DSL calls for d on b: root defaults first, then plain
// routes, namespaces and resources in document order, then the default
// routes when enabled.
func (d *Document) Apply(b *route.Behavior) error {
	if len(d.Defaults) > 0 {
		b = b.Defaults(route.Params(d.Defaults))
	}

	if err := applyRoutes(b, "routes", d.Routes); err != nil {
		return err
	}
	if err := applyNamespaces(b, "namespaces", d.Namespaces); err != nil {
		return err
	}
	if err := applyResources(b, "resources", d.Resources); err != nil {
		return err
	}

	if d.DefaultRoutes {
		b.DefaultRoutes(nil)
	}
	return nil
}

func applyRoutes(b *route.Behavior, field string, routes []RouteSpec) error {
	for i, rs := range routes {
		if err := applyRoute(b, rs); err != nil {
			return NewFieldError("document", fmt.Sprintf("%s.%d", field, i), "apply", err)
		}
	}
	return nil
}

func applyRoute(b *route.Behavior, rs RouteSpec) error {
	conds := make(route.Conditions, len(rs.Conditions)+1)
	for _, key := range slices.Sorted(maps.Keys(rs.Conditions)) {
		v, err := conditionValue(rs.Conditions[key])
		if err != nil {
			return fmt.Errorf("condition %q: %w", key, err)
		}
		conds[key] = v
	}
	if rs.Method != "" {
		if _, dup := conds[route.KeyMethod]; dup {
			return errors.New("method given both as field and condition")
		}
		conds[route.KeyMethod] = methodValue(rs.Method)
	}

	m := b.Match(rs.Path, conds)
	for _, param := range slices.Sorted(maps.Keys(rs.Where)) {
		m = m.Where(param, rs.Where[param])
	}
	if len(rs.Defaults) > 0 {
		m = m.Defaults(route.Params(rs.Defaults))
	}

	r := m.To(route.Params(rs.To))
	if rs.Name != "" {
		r.Name(rs.Name)
	}
	return nil
}

// methodValue turns "get|post" into alternatives.
func methodValue(method string) any {
	if !strings.Contains(method, "|") {
		return method
	}
	parts := strings.Split(method, "|")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts
}

// conditionValue converts a raw condition into the value types accepted
// by route.Conditions.
func conditionValue(v any) (any, error) {
	switch x := v.(type) {
	case string:
		return x, nil
	case []string:
		return x, nil
	case []any:
		alts := make([]string, len(x))
		for i, e := range x {
			s, ok := e.(string)
			if !ok {
				return nil, fmt.Errorf("alternative %d is %T, want string", i, e)
			}
			alts[i] = s
		}
		return alts, nil
	case map[string]any:
		src, ok := x["regexp"].(string)
		if !ok || len(x) != 1 {
			return nil, errors.New("expected {regexp: pattern}")
		}
		re, err := regexp.Compile(src)
		if err != nil {
			return nil, err
		}
		return re, nil
	default:
		return nil, fmt.Errorf("unsupported value type %T", v)
	}
}

func applyNamespaces(b *route.Behavior, field string, namespaces []NamespaceSpec) error {
	for i, ns := range namespaces {
		at := fmt.Sprintf("%s.%d", field, i)

		var opts []route.NamespaceOption
		if ns.Path != nil {
			opts = append(opts, route.WithNamespacePath(*ns.Path))
		}

		var err error
		b.Namespace(ns.Name, opts...).Scope(func(nb *route.Behavior) {
			if err = applyRoutes(nb, at+".routes", ns.Routes); err != nil {
				return
			}
			if err = applyResources(nb, at+".resources", ns.Resources); err != nil {
				return
			}
			err = applyNamespaces(nb, at+".namespaces", ns.Namespaces)
		})
		if err != nil {
			return err
		}
	}
	return nil
}

func applyResources(b *route.Behavior, field string, resources []ResourceSpec) error {
	for i, rs := range resources {
		at := fmt.Sprintf("%s.%d", field, i)

		opts := resourceOptions(rs)
		var res *route.Resource
		if rs.Singleton {
			res = b.Resource(rs.Name, opts...)
		} else {
			res = b.Resources(rs.Name, opts...)
		}

		if len(rs.Resources) == 0 {
			continue
		}
		var err error
		res.Nest(func(nb *route.Behavior) {
			err = applyResources(nb, at+".resources", rs.Resources)
		})
		if err != nil {
			return err
		}
	}
	return nil
}

func resourceOptions(rs ResourceSpec) []route.ResourceOption {
	var opts []route.ResourceOption
	if rs.Singular != "" {
		opts = append(opts, route.WithSingular(rs.Singular))
	}
	if rs.Controller != "" {
		opts = append(opts, route.WithController(rs.Controller))
	}
	if rs.Path != "" {
		opts = append(opts, route.WithResourcePath(rs.Path))
	}
	if len(rs.Keys) > 0 {
		opts = append(opts, route.WithKeys(rs.Keys...))
	}
	for _, action := range slices.Sorted(maps.Keys(rs.Collection)) {
		opts = append(opts, route.WithCollection(action, rs.Collection[action]))
	}
	for _, action := range slices.Sorted(maps.Keys(rs.Member)) {
		opts = append(opts, route.WithMember(action, rs.Member[action]))
	}
	return opts
}
