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

package compiler

import (
	"fmt"
	"maps"
	"regexp"
	"strings"
)

// Well-known condition keys.
const (
	KeyPath   = "path"
	KeyMethod = "method"
)

// Params holds the parameters produced by a successful match.
// A placeholder that did not take part in the match is absent.
type Params map[string]string

// Get returns the value for key, or "" when absent.
func (p Params) Get(key string) string {
	return p[key]
}

// Clone returns a shallow copy. Cloning a nil Params returns an empty map.
func (p Params) Clone() Params {
	out := make(Params, len(p))
	maps.Copy(out, p)
	return out
}

// Request is the view of an incoming request that conditions are tested against.
type Request interface {
	// Path returns the request path without the query string.
	Path() string
	// Method returns the request method.
	Method() string
	// Attr returns any other request attribute by condition key.
	Attr(key string) (string, bool)
}

// DeferFunc is evaluated after a route's static conditions matched.
// Returning nil Params vetoes the route; non-nil Params are merged over the
// params built so far. Errors propagate out of the match unchanged.
type DeferFunc func(req Request, params Params) (Params, error)

// ConditionKind distinguishes equality tests from pattern tests.
type ConditionKind uint8

const (
	// CondLiteral compares the attribute for equality.
	CondLiteral ConditionKind = iota
	// CondPattern applies a regular expression and records its captures.
	CondPattern
)

// Condition tests one request attribute.
type Condition struct {
	Key     string
	Kind    ConditionKind
	Literal string
	Pattern *regexp.Regexp
}

// LiteralCondition returns an equality condition.
func LiteralCondition(key, value string) Condition {
	return Condition{Key: key, Kind: CondLiteral, Literal: value}
}

// PatternCondition returns a condition testing re against the attribute.
func PatternCondition(key string, re *regexp.Regexp) Condition {
	return Condition{Key: key, Kind: CondPattern, Pattern: re}
}

// String returns a readable form for diagnostics.
func (c Condition) String() string {
	if c.Kind == CondLiteral {
		return fmt.Sprintf("%s == %q", c.Key, c.Literal)
	}
	return fmt.Sprintf("%s =~ /%s/", c.Key, c.Pattern)
}

// PartKind identifies a piece of a param expression.
type PartKind uint8

const (
	// PartText is literal text.
	PartText PartKind = iota
	// PartCapture is the value of a capture group.
	PartCapture
)

// Ref points at a capture group of a condition.
// Group 0 is the whole match of the condition.
type Ref struct {
	Cond  int
	Group int
}

// Part is one piece of a param expression.
// A capture part lists alternative references; the first one that
// participated in the match supplies the value.
type Part struct {
	Kind PartKind
	Text string
	Refs []Ref
}

// ParamExpr builds one output param by concatenating its parts.
// When any capture part has no participating reference, the param is absent.
type ParamExpr struct {
	Key   string
	Parts []Part
}

// IsLiteral reports whether the expression is constant text, returning it.
func (e ParamExpr) IsLiteral() (string, bool) {
	var b strings.Builder
	for _, p := range e.Parts {
		if p.Kind != PartText {
			return "", false
		}
		b.WriteString(p.Text)
	}
	return b.String(), true
}

// Program is the compiled form of a route: conditions to test, params to
// build, defaults to fill in, and deferred functions to run.
type Program struct {
	Conditions []Condition
	Params     []ParamExpr
	Defaults   Params
	Deferred   []DeferFunc

	// Prefix is literal text every matching path starts with. Empty when
	// the path condition is absent or begins with a pattern.
	Prefix string
}

// Eval runs the program against req. path must already be normalized.
// It reports whether the program matched and the resulting params.
func (p *Program) Eval(req Request, path string) (Params, bool, error) {
	var (
		values = make([]string, len(p.Conditions))
		caps   = make([][]int, len(p.Conditions))
	)

	for i := range p.Conditions {
		c := &p.Conditions[i]
		v, ok := attribute(req, c.Key, path)
		if !ok {
			return nil, false, nil
		}
		switch c.Kind {
		case CondLiteral:
			if v != c.Literal {
				return nil, false, nil
			}
			caps[i] = []int{0, len(v)}
		case CondPattern:
			idx := c.Pattern.FindStringSubmatchIndex(v)
			if idx == nil {
				return nil, false, nil
			}
			caps[i] = idx
		}
		values[i] = v
	}

	params := make(Params, len(p.Params)+len(p.Defaults))
	for _, e := range p.Params {
		if v, ok := e.eval(values, caps); ok {
			params[e.Key] = v
		}
	}
	for k, v := range p.Defaults {
		if _, ok := params[k]; !ok {
			params[k] = v
		}
	}

	for _, fn := range p.Deferred {
		out, err := fn(req, params.Clone())
		if err != nil {
			return nil, false, err
		}
		if out == nil {
			return nil, false, nil
		}
		maps.Copy(params, out)
	}

	return params, true, nil
}

func (e ParamExpr) eval(values []string, caps [][]int) (string, bool) {
	if len(e.Parts) == 1 {
		return e.Parts[0].value(values, caps)
	}
	var b strings.Builder
	for _, part := range e.Parts {
		v, ok := part.value(values, caps)
		if !ok {
			return "", false
		}
		b.WriteString(v)
	}
	return b.String(), true
}

func (p Part) value(values []string, caps [][]int) (string, bool) {
	if p.Kind == PartText {
		return p.Text, true
	}
	for _, ref := range p.Refs {
		idx := caps[ref.Cond]
		lo := 2 * ref.Group
		if lo+1 >= len(idx) || idx[lo] < 0 {
			continue
		}
		return values[ref.Cond][idx[lo]:idx[lo+1]], true
	}
	return "", false
}

// attribute returns the request value a condition key is tested against.
// The method is lower-cased so method conditions compare case-insensitively.
func attribute(req Request, key, path string) (string, bool) {
	switch key {
	case KeyPath:
		return path, true
	case KeyMethod:
		return strings.ToLower(req.Method()), true
	default:
		return req.Attr(key)
	}
}
