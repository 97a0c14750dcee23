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
	"strings"

	"merb.dev/core/router/compiler"
	"merb.dev/core/router/segment"
)

// Route is a finalized route: its compiled program, the template used for
// generation, and its position in the route table.
//
// Routes are immutable once the table that holds them is built; Name and
// FullName are only called while routes are being defined.
type Route struct {
	registrar  Registrar
	index      int
	name       string
	namePrefix string

	program      *compiler.Program
	template     *segment.Template
	path         string
	method       string
	conditions   map[string]string
	restrictions map[string]*regexp.Regexp
	patterns     map[string]string
	placeholders []string
	defaults     Params
	static       map[string]string
	identify     []IdentifyFunc

	// controllerPrefix is the namespace prepended to a captured
	// controller, removed again on generation.
	controllerPrefix string
}

// Name names the route for generation, applying the namespace and
// resource name prefix.
func (r *Route) Name(name string) *Route {
	if name == "" {
		r.registrar.Fail(configErr(r.path, "", fmt.Errorf("%w: route name", ErrEmptyName)))
		return r
	}
	return r.FullName(r.namePrefix + name)
}

// FullName names the route verbatim, ignoring any prefix.
func (r *Route) FullName(name string) *Route {
	if name == "" {
		r.registrar.Fail(configErr(r.path, "", fmt.Errorf("%w: route name", ErrEmptyName)))
		return r
	}
	r.name = name
	if err := r.registrar.RegisterNamedRoute(name, r); err != nil {
		r.registrar.Fail(err)
	}
	return r
}

// RouteName returns the name the route was registered under, or "".
func (r *Route) RouteName() string {
	return r.name
}

// Index returns the position of the route in its table.
func (r *Route) Index() int {
	return r.index
}

// WithIndex returns a shallow copy of r at position i. Tables built by
// Append and Prepend use it to renumber routes without touching the
// routes of the previous table.
func (r *Route) WithIndex(i int) *Route {
	c := *r
	c.index = i
	return &c
}

// Path returns the path pattern as defined.
func (r *Route) Path() string {
	return r.path
}

// Method returns the method condition in upper case, "ANY" when absent.
func (r *Route) Method() string {
	return r.method
}

// Template returns the generation template, or nil for regexp paths.
func (r *Route) Template() *segment.Template {
	return r.template
}

// Program returns the compiled program.
func (r *Route) Program() *compiler.Program {
	return r.program
}

// Placeholders returns the placeholder names of the route in order.
func (r *Route) Placeholders() []string {
	return r.placeholders
}

// Defaults returns a copy of the route defaults.
func (r *Route) Defaults() Params {
	return r.defaults.Clone()
}

// Deferred reports whether the route has deferred functions.
func (r *Route) Deferred() bool {
	return len(r.program.Deferred) > 0
}

// String returns "METHOD path" for diagnostics.
func (r *Route) String() string {
	return r.method + " " + r.path
}

// Info returns a description of the route for introspection.
func (r *Route) Info() Info {
	info := Info{
		Index:        r.index,
		Name:         r.name,
		Method:       r.method,
		Path:         r.path,
		Placeholders: slices.Clone(r.placeholders),
		Conditions:   maps.Clone(r.conditions),
		Constraints:  maps.Clone(r.patterns),
		Defaults:     r.defaults.Clone(),
		Params:       make(map[string]string, len(r.program.Params)),
		IsStatic:     r.template != nil && r.template.IsStatic(),
		Deferred:     r.Deferred(),
	}
	for _, e := range r.program.Params {
		info.Params[e.Key] = describeParam(e)
	}
	return info
}

func describeParam(e compiler.ParamExpr) string {
	var b strings.Builder
	for _, p := range e.Parts {
		if p.Kind == compiler.PartText {
			b.WriteString(p.Text)
			continue
		}
		for i, ref := range p.Refs {
			if i > 0 {
				b.WriteByte('|')
			}
			fmt.Fprintf(&b, "$%d[%d]", ref.Cond, ref.Group)
		}
	}
	return b.String()
}

// compileRoute builds the Route for a Behavior from its merged view.
// On error the returned Route is still usable for chaining.
func compileRoute(b *Behavior) (*Route, error) {
	v := b.merged()
	r := &Route{
		registrar:    b.registrar,
		index:        -1,
		namePrefix:   v.namePrefix,
		method:       "ANY",
		conditions:   make(map[string]string),
		restrictions: make(map[string]*regexp.Regexp),
		patterns:     make(map[string]string),
		defaults:     v.defaults.Clone(),
		identify:     v.identify,
		program:      &compiler.Program{},
	}

	paths := make([]matcher, 0, len(v.paths))
	for _, p := range v.paths {
		m, err := parseMatcher(p)
		if err != nil {
			return r, configErr(fmt.Sprint(p), KeyPath, err)
		}
		paths = append(paths, m)
	}
	r.path = displayPath(paths)

	if n := len(paths); n > 0 && paths[n-1].kind == matchTemplate {
		last := paths[n-1].template
		if n > 1 || last.Source() != "/" {
			paths[n-1] = matcher{kind: matchTemplate, template: last.TrimTrailingSlash()}
		}
	}

	// Placeholder names come from path templates first, then from the
	// templates of other conditions in key order.
	var (
		names   []string
		nameSet = make(map[string]bool)
	)
	addNames := func(ns []string) {
		for _, n := range ns {
			if !nameSet[n] {
				nameSet[n] = true
				names = append(names, n)
			}
		}
	}
	for _, m := range paths {
		addNames(m.placeholders())
	}
	condKeys := sortedKeys(v.conditions)
	for _, k := range condKeys {
		if k == KeyMethod || nameSet[k] {
			continue
		}
		if m, err := parseMatcher(v.conditions[k]); err == nil {
			addNames(m.placeholders())
		}
	}

	sources := make(map[string]string)
	var attrKeys []string
	for _, k := range condKeys {
		switch {
		case k == KeyMethod:
		case nameSet[k]:
			src, err := restrictionSource(v.conditions[k])
			if err != nil {
				return r, configErr(r.path, k, err)
			}
			sources[k] = src
		default:
			attrKeys = append(attrKeys, k)
		}
	}
	for k, src := range v.restrict {
		if !nameSet[k] {
			return r, configErr(r.path, k, fmt.Errorf("%w: restriction for %q", ErrUnknownPlaceholder, k))
		}
		sources[k] = src
	}
	for k, src := range sources {
		re, err := regexp.Compile("^(?:" + segment.TrimAnchors(src) + ")$")
		if err != nil {
			return r, configErr(r.path, k, fmt.Errorf("%w: %w", ErrInvalidCondition, err))
		}
		r.restrictions[k] = re
		r.patterns[k] = src
	}
	restrict := func(name string) (string, bool) {
		src, ok := sources[name]
		return src, ok
	}

	scope := &paramScope{
		refs:      make(map[string][]compiler.Ref),
		condIndex: make(map[string]int),
	}
	prog := r.program
	addCond := func(key string, c compiler.Condition, groups int, slots []segment.Slot) {
		i := len(prog.Conditions)
		prog.Conditions = append(prog.Conditions, c)
		scope.condIndex[key] = i
		scope.condGroups = append(scope.condGroups, groups)
		for _, s := range slots {
			scope.refs[s.Name] = append(scope.refs[s.Name], compiler.Ref{Cond: i, Group: s.Group})
		}
	}
	addFragment := func(key string, f fragment) error {
		if f.static {
			addCond(key, compiler.LiteralCondition(key, f.literal), 0, nil)
			return nil
		}
		re, err := regexp.Compile(f.source)
		if err != nil {
			return configErr(r.path, key, fmt.Errorf("%w: %w", ErrInvalidCondition, err))
		}
		addCond(key, compiler.PatternCondition(key, re), re.NumSubexp(), f.slots)
		return nil
	}

	if len(paths) > 0 {
		var pf fragment
		for i, m := range paths {
			f, err := m.compile(restrict)
			if err != nil {
				return r, configErr(r.path, KeyPath, err)
			}
			if i == 0 {
				pf = f
			} else {
				pf = join(pf, f)
			}
		}
		if err := addFragment(KeyPath, pf); err != nil {
			return r, err
		}
		r.template = pf.template
		switch {
		case pf.template != nil:
			prog.Prefix = pf.template.LiteralPrefix()
		case paths[0].kind == matchTemplate:
			prog.Prefix = paths[0].template.LiteralPrefix()
		}
	}

	if mv, ok := v.conditions[KeyMethod]; ok {
		c, display, err := methodCondition(mv)
		if err != nil {
			return r, configErr(r.path, KeyMethod, err)
		}
		if display != "" {
			addCond(KeyMethod, c, 0, nil)
			r.method = display
		}
	}

	for _, k := range attrKeys {
		m, err := parseMatcher(v.conditions[k])
		if err != nil {
			return r, configErr(r.path, k, err)
		}
		f, err := m.compile(restrict)
		if err != nil {
			return r, configErr(r.path, k, err)
		}
		if err := addFragment(k, f); err != nil {
			return r, err
		}
		r.conditions[k] = m.String()
	}

	exprs := make(map[string]compiler.ParamExpr)
	var keys []string
	for _, n := range names {
		refs := scope.refs[n]
		if len(refs) == 0 {
			continue
		}
		r.placeholders = append(r.placeholders, n)
		exprs[n] = compiler.ParamExpr{Key: n, Parts: []compiler.Part{{Kind: compiler.PartCapture, Refs: refs}}}
		keys = append(keys, n)
	}
	for _, k := range sortedKeys(v.params) {
		parts, err := scope.parse(v.params[k])
		if err != nil {
			return r, configErr(r.path, k, err)
		}
		if _, seen := exprs[k]; !seen {
			keys = append(keys, k)
		}
		exprs[k] = compiler.ParamExpr{Key: k, Parts: parts}
	}
	if v.namespace != "" {
		if e, ok := exprs["controller"]; ok {
			e.Parts = append([]compiler.Part{{Kind: compiler.PartText, Text: v.namespace + "/"}}, e.Parts...)
			exprs["controller"] = e
			if slices.Contains(r.placeholders, "controller") {
				r.controllerPrefix = v.namespace + "/"
			}
		}
	}

	r.static = make(map[string]string)
	for _, k := range keys {
		e := exprs[k]
		prog.Params = append(prog.Params, e)
		if s, ok := e.IsLiteral(); ok {
			r.static[k] = s
		}
	}
	for k, d := range r.defaults {
		if _, ok := r.static[k]; !ok {
			r.static[k] = d
		}
	}
	prog.Defaults = r.defaults.Clone()
	prog.Deferred = slices.Clone(v.deferred)

	if len(r.placeholders) > highParamCount {
		r.registrar.Emit(DiagHighParamCount,
			"route has many placeholders",
			map[string]any{"path": r.path, "count": len(r.placeholders)})
	}

	return r, nil
}

func methodCondition(v any) (compiler.Condition, string, error) {
	switch x := v.(type) {
	case string:
		m := strings.ToLower(x)
		if m == "any" || m == "*" || m == "" {
			return compiler.Condition{}, "", nil
		}
		return compiler.LiteralCondition(KeyMethod, m), strings.ToUpper(m), nil
	case *regexp.Regexp:
		re, err := regexp.Compile("(?i)" + x.String())
		if err != nil {
			return compiler.Condition{}, "", fmt.Errorf("%w: %w", ErrInvalidCondition, err)
		}
		return compiler.PatternCondition(KeyMethod, re), "/" + x.String() + "/", nil
	case []string:
		alts := make([]any, len(x))
		for i, s := range x {
			alts[i] = s
		}
		return methodCondition(alts)
	case []any:
		methods := make([]string, 0, len(x))
		for _, e := range x {
			s, ok := e.(string)
			if !ok {
				return compiler.Condition{}, "", fmt.Errorf("%w: method alternative %T", ErrInvalidCondition, e)
			}
			methods = append(methods, strings.ToLower(s))
		}
		if len(methods) == 0 {
			return compiler.Condition{}, "", fmt.Errorf("%w: empty method list", ErrInvalidCondition)
		}
		re := regexp.MustCompile("^" + enumPattern(methods) + "$")
		return compiler.PatternCondition(KeyMethod, re), strings.ToUpper(strings.Join(methods, "|")), nil
	default:
		return compiler.Condition{}, "", fmt.Errorf("%w: method of type %T", ErrInvalidCondition, v)
	}
}

func displayPath(paths []matcher) string {
	var b strings.Builder
	for _, m := range paths {
		b.WriteString(m.String())
	}
	return b.String()
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
