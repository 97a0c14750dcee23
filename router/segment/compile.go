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

package segment

import (
	"fmt"
	"regexp"
	"regexp/syntax"
	"strings"
)

// DefaultPattern matches one placeholder value when no restriction applies.
// Values stop at the characters that separate segments and formats.
const DefaultPattern = `[^/.,;?]+`

// Slot records which capture group holds a placeholder value.
// Group is 1-based and relative to the compiled fragment.
type Slot struct {
	Name  string
	Group int
}

// Compiled is the regular expression form of a template.
type Compiled struct {
	// Source is the unanchored regular expression source.
	Source string
	// Groups is the total number of capture groups in Source.
	Groups int
	// Slots lists placeholders in order of appearance.
	Slots []Slot
}

// RestrictFunc returns a replacement pattern for a placeholder.
// ok is false when the placeholder uses DefaultPattern.
type RestrictFunc func(name string) (pattern string, ok bool)

// Compile converts the template into regular expression source.
// Literal text is quoted, placeholders become capture groups, and optional
// groups become non-capturing optional groups. Restriction patterns have
// their anchors removed and their own capture groups are accounted for in
// the slot table.
func (t *Template) Compile(restrict RestrictFunc) (*Compiled, error) {
	c := &compileState{restrict: restrict}
	if err := c.walk(t.nodes); err != nil {
		return nil, err
	}
	return &Compiled{
		Source: c.buf.String(),
		Groups: c.groups,
		Slots:  c.slots,
	}, nil
}

type compileState struct {
	restrict RestrictFunc
	buf      strings.Builder
	groups   int
	slots    []Slot
}

func (c *compileState) walk(nodes []Node) error {
	for _, n := range nodes {
		switch n.Kind {
		case Literal:
			c.buf.WriteString(regexp.QuoteMeta(n.Value))
		case Placeholder:
			pattern := DefaultPattern
			if c.restrict != nil {
				if p, ok := c.restrict(n.Value); ok {
					pattern = TrimAnchors(p)
				}
			}
			inner, err := CountGroups(pattern)
			if err != nil {
				return fmt.Errorf("placeholder %q: %w", n.Value, err)
			}
			c.groups++
			c.slots = append(c.slots, Slot{Name: n.Value, Group: c.groups})
			c.groups += inner
			c.buf.WriteByte('(')
			c.buf.WriteString(pattern)
			c.buf.WriteByte(')')
		case Optional:
			c.buf.WriteString("(?:")
			if err := c.walk(n.Children); err != nil {
				return err
			}
			c.buf.WriteString(")?")
		}
	}
	return nil
}

// CountGroups returns the number of capture groups in a regular expression.
func CountGroups(pattern string) (int, error) {
	re, err := syntax.Parse(pattern, syntax.Perl)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrInvalidPattern, err)
	}
	return re.MaxCap(), nil
}

// TrimStart removes a leading "^" or "\A" anchor. A leading flag group
// such as "(?i)" is kept and the anchor after it is removed.
func TrimStart(src string) string {
	flags, rest := splitFlags(src)
	switch {
	case strings.HasPrefix(rest, "^"):
		rest = rest[1:]
	case strings.HasPrefix(rest, `\A`):
		rest = rest[2:]
	}
	return flags + rest
}

// Isolate scopes a leading flag group to the expression it prefixes, so
// "(?i)/y" becomes "(?i:/y)" and can be concatenated with other sources.
func Isolate(src string) string {
	flags, rest := splitFlags(src)
	if flags == "" {
		return src
	}
	return flags[:len(flags)-1] + ":" + rest + ")"
}

// splitFlags splits a leading "(?flags)" group from src.
func splitFlags(src string) (string, string) {
	if !strings.HasPrefix(src, "(?") {
		return "", src
	}
	for i := 2; i < len(src); i++ {
		switch c := src[i]; {
		case c == ')':
			if i == 2 {
				return "", src
			}
			return src[:i+1], src[i+1:]
		case c == 'i', c == 'm', c == 's', c == 'U', c == '-':
		default:
			return "", src
		}
	}
	return "", src
}

// TrimEnd removes a trailing "$" or "\z" anchor. An escaped dollar is kept.
func TrimEnd(src string) string {
	switch {
	case strings.HasSuffix(src, `\z`) && !escaped(src, len(src)-2):
		return src[:len(src)-2]
	case strings.HasSuffix(src, "$") && !escaped(src, len(src)-1):
		return src[:len(src)-1]
	}
	return src
}

// TrimAnchors removes both leading and trailing anchors.
func TrimAnchors(src string) string {
	return TrimEnd(TrimStart(src))
}

// escaped reports whether the byte at i is preceded by an odd number of backslashes.
func escaped(s string, i int) bool {
	n := 0
	for j := i - 1; j >= 0 && s[j] == '\\'; j-- {
		n++
	}
	return n%2 == 1
}
