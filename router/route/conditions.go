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
	"regexp"
	"strings"

	"merb.dev/core/router/compiler"
	"merb.dev/core/router/segment"
)

// Condition keys with special meaning.
const (
	KeyPath   = compiler.KeyPath
	KeyMethod = compiler.KeyMethod
)

// Conditions maps a condition key to a matcher.
//
// Keys are "path", "method", any request attribute understood by the
// Request (for example "host", "protocol" or a header name), or the name
// of a placeholder. Values may be:
//   - string: a template, which may declare placeholders of its own
//   - *regexp.Regexp: used as given; its groups can be referenced as :key[n]
//   - []string or []any: alternatives, any of which may match
//
// A key naming a placeholder restricts that placeholder instead of testing
// a request attribute. For restrictions a string value is a regular
// expression and a slice lists the accepted literal values.
type Conditions map[string]any

// Params maps param names to values. In To and With the values are
// templates; in match results they are the extracted values.
type Params = compiler.Params

// Request is the request view that routes are matched against.
type Request = compiler.Request

// DeferFunc runs after a route's conditions matched. See compiler.DeferFunc.
type DeferFunc = compiler.DeferFunc

// IdentifyFunc converts a value into its path segment form during
// generation. It returns false when it does not handle the value.
type IdentifyFunc func(v any) (string, bool)

type matcherKind uint8

const (
	matchTemplate matcherKind = iota
	matchRegexp
	matchAlternatives
)

// matcher is a condition value after type normalization.
type matcher struct {
	kind     matcherKind
	template *segment.Template
	re       *regexp.Regexp
	alts     []matcher
}

func parseMatcher(v any) (matcher, error) {
	switch x := v.(type) {
	case string:
		tpl, err := segment.Parse(x)
		if err != nil {
			return matcher{}, fmt.Errorf("%w: %w", ErrInvalidTemplate, err)
		}
		return matcher{kind: matchTemplate, template: tpl}, nil
	case *regexp.Regexp:
		if x == nil {
			return matcher{}, fmt.Errorf("%w: nil regexp", ErrInvalidCondition)
		}
		return matcher{kind: matchRegexp, re: x}, nil
	case []string:
		alts := make([]any, len(x))
		for i, s := range x {
			alts[i] = s
		}
		return parseAlternatives(alts)
	case []any:
		return parseAlternatives(x)
	default:
		return matcher{}, fmt.Errorf("%w: unsupported value type %T", ErrInvalidCondition, v)
	}
}

func parseAlternatives(values []any) (matcher, error) {
	if len(values) == 0 {
		return matcher{}, fmt.Errorf("%w: empty alternatives", ErrInvalidCondition)
	}
	m := matcher{kind: matchAlternatives, alts: make([]matcher, 0, len(values))}
	for _, v := range values {
		switch v.(type) {
		case string, *regexp.Regexp:
		default:
			return matcher{}, fmt.Errorf("%w: unsupported alternative type %T", ErrInvalidCondition, v)
		}
		alt, err := parseMatcher(v)
		if err != nil {
			return matcher{}, err
		}
		m.alts = append(m.alts, alt)
	}
	return m, nil
}

// placeholders returns the placeholder names declared by templates in m.
func (m matcher) placeholders() []string {
	switch m.kind {
	case matchTemplate:
		return m.template.Placeholders()
	case matchAlternatives:
		var names []string
		for _, alt := range m.alts {
			names = append(names, alt.placeholders()...)
		}
		return names
	}
	return nil
}

func (m matcher) String() string {
	switch m.kind {
	case matchTemplate:
		return m.template.Source()
	case matchRegexp:
		return "/" + m.re.String() + "/"
	default:
		parts := make([]string, len(m.alts))
		for i, alt := range m.alts {
			parts[i] = alt.String()
		}
		return strings.Join(parts, "|")
	}
}

// fragment is a matcher compiled to regular expression source.
// source is anchored unless it came from a raw regexp. static fragments
// hold their text in literal. template is nil unless the fragment is built
// from templates only.
type fragment struct {
	source   string
	groups   int
	slots    []segment.Slot
	literal  string
	static   bool
	template *segment.Template
}

func (m matcher) compile(restrict segment.RestrictFunc) (fragment, error) {
	switch m.kind {
	case matchTemplate:
		c, err := m.template.Compile(restrict)
		if err != nil {
			return fragment{}, fmt.Errorf("%w: %w", ErrInvalidCondition, err)
		}
		f := fragment{
			source:   "^" + c.Source + "$",
			groups:   c.Groups,
			slots:    c.Slots,
			template: m.template,
		}
		if m.template.IsStatic() {
			f.static = true
			f.literal = m.template.LiteralPrefix()
		}
		return f, nil

	case matchRegexp:
		return fragment{source: m.re.String(), groups: m.re.NumSubexp()}, nil

	default:
		var (
			f     fragment
			parts = make([]string, 0, len(m.alts))
		)
		for _, alt := range m.alts {
			af, err := alt.compile(restrict)
			if err != nil {
				return fragment{}, err
			}
			parts = append(parts, segment.Isolate(segment.TrimAnchors(af.source)))
			for _, s := range af.slots {
				f.slots = append(f.slots, segment.Slot{Name: s.Name, Group: s.Group + f.groups})
			}
			f.groups += af.groups
		}
		f.source = "^(?:" + strings.Join(parts, "|") + ")$"
		return f, nil
	}
}

// join concatenates two path fragments, removing the anchors between them.
func join(parent, child fragment) fragment {
	out := fragment{
		source: segment.Isolate(segment.TrimEnd(parent.source)) + segment.Isolate(segment.TrimStart(child.source)),
		groups: parent.groups + child.groups,
		static: parent.static && child.static,
	}
	out.slots = append(out.slots, parent.slots...)
	for _, s := range child.slots {
		out.slots = append(out.slots, segment.Slot{Name: s.Name, Group: s.Group + parent.groups})
	}
	if out.static {
		out.literal = parent.literal + child.literal
	}
	if parent.template != nil && child.template != nil {
		out.template = parent.template.Concat(child.template)
	}
	return out
}

// restrictionSource converts a restriction value into regular expression source.
func restrictionSource(v any) (string, error) {
	switch x := v.(type) {
	case string:
		return x, nil
	case *regexp.Regexp:
		if x == nil {
			return "", fmt.Errorf("%w: nil regexp", ErrInvalidCondition)
		}
		return x.String(), nil
	case []string:
		return enumPattern(x), nil
	case []any:
		values := make([]string, 0, len(x))
		for _, e := range x {
			s, ok := e.(string)
			if !ok {
				return "", fmt.Errorf("%w: unsupported restriction value %T", ErrInvalidCondition, e)
			}
			values = append(values, s)
		}
		return enumPattern(values), nil
	default:
		return "", fmt.Errorf("%w: unsupported restriction type %T", ErrInvalidCondition, v)
	}
}

func enumPattern(values []string) string {
	quoted := make([]string, len(values))
	for i, v := range values {
		quoted[i] = regexp.QuoteMeta(v)
	}
	return "(?:" + strings.Join(quoted, "|") + ")"
}
