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
)

// ConstraintKind names a common placeholder restriction.
type ConstraintKind uint8

const (
	ConstraintNone ConstraintKind = iota
	ConstraintInt
	ConstraintFloat
	ConstraintUUID
	ConstraintSlug
	ConstraintDate     // RFC3339 full-date
	ConstraintDateTime // RFC3339 date-time
)

// Pattern returns the regular expression source for the kind.
func (k ConstraintKind) Pattern() string {
	switch k {
	case ConstraintInt:
		return `\d+`
	case ConstraintFloat:
		return `-?(?:\d+\.?\d*|\.\d+)(?:[eE][+-]?\d+)?`
	case ConstraintUUID:
		return `[0-9a-fA-F]{8}-[0-9a-fA-F]{4}-[1-5][0-9a-fA-F]{3}-[89abAB][0-9a-fA-F]{3}-[0-9a-fA-F]{12}`
	case ConstraintSlug:
		return `[a-z0-9]+(?:-[a-z0-9]+)*`
	case ConstraintDate:
		return `\d{4}-\d{2}-\d{2}`
	case ConstraintDateTime:
		return `\d{4}-\d{2}-\d{2}T\d{2}:\d{2}:\d{2}(?:\.\d+)?(?:Z|[+-]\d{2}:\d{2})`
	default:
		return ""
	}
}

// Where returns a child that restricts placeholder param to pattern.
// The placeholder must be declared by the routes defined below it.
//
// Example:
//
//	b.Match("/users/:id").Where("id", `\d+`).To(route.Params{"controller": "users"})
func (b *Behavior) Where(param, pattern string) *Behavior {
	if _, err := regexp.Compile(pattern); err != nil {
		b.fail(configErr("", param, fmt.Errorf("%w: %w", ErrInvalidCondition, err)))
		return b.child()
	}
	c := b.child()
	c.restrict = map[string]string{param: pattern}
	return c
}

// WhereKind restricts param to a predefined kind.
func (b *Behavior) WhereKind(param string, kind ConstraintKind) *Behavior {
	pattern := kind.Pattern()
	if pattern == "" {
		return b.child()
	}
	return b.Where(param, pattern)
}

// WhereInt restricts param to decimal digits.
func (b *Behavior) WhereInt(param string) *Behavior {
	return b.WhereKind(param, ConstraintInt)
}

// WhereFloat restricts param to a decimal or exponent number.
func (b *Behavior) WhereFloat(param string) *Behavior {
	return b.WhereKind(param, ConstraintFloat)
}

// WhereUUID restricts param to a UUID.
func (b *Behavior) WhereUUID(param string) *Behavior {
	return b.WhereKind(param, ConstraintUUID)
}

// WhereSlug restricts param to lower-case words joined by dashes.
func (b *Behavior) WhereSlug(param string) *Behavior {
	return b.WhereKind(param, ConstraintSlug)
}

// WhereDate restricts param to an RFC3339 full-date.
func (b *Behavior) WhereDate(param string) *Behavior {
	return b.WhereKind(param, ConstraintDate)
}

// WhereEnum restricts param to one of values.
func (b *Behavior) WhereEnum(param string, values ...string) *Behavior {
	return b.Where(param, enumPattern(values))
}

// Info describes a registered route for introspection.
type Info struct {
	Index        int
	Name         string
	Method       string            // upper-case method or "ANY"
	Path         string            // path pattern as defined
	Placeholders []string          // placeholder names in order
	Conditions   map[string]string // other request attribute conditions
	Constraints  map[string]string // placeholder restrictions (param -> pattern)
	Params       map[string]string // output params, captures shown as $cond[group]
	Defaults     map[string]string
	IsStatic     bool // true if the path has no placeholders
	Deferred     bool // true if deferred functions decide the match
}
