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
	"strings"
)

// Kind identifies the type of a template node.
type Kind uint8

const (
	// Literal is static text matched verbatim.
	Literal Kind = iota
	// Placeholder is a named segment such as ":id".
	Placeholder
	// Optional is a parenthesized group that may be absent.
	Optional
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case Literal:
		return "literal"
	case Placeholder:
		return "placeholder"
	case Optional:
		return "optional"
	default:
		return fmt.Sprintf("kind(%d)", k)
	}
}

// Node is one element of a parsed template.
// Value holds the literal text or the placeholder name; Children holds the
// content of an optional group.
type Node struct {
	Kind     Kind
	Value    string
	Children []Node
}

// Template is a parsed path template such as "/users/:id(.:format)".
// Templates are immutable after Parse.
type Template struct {
	source string
	nodes  []Node
	names  []string
}

// Parse parses a template string into a node tree.
//
// Grammar:
//   - ":name" is a placeholder; name matches [A-Za-z_][A-Za-z0-9_]*.
//     A colon not followed by a name character is literal text.
//   - "(" ... ")" is an optional group and may nest.
//   - "\" escapes the next character, making it literal.
func Parse(src string) (*Template, error) {
	p := &parser{src: src}
	nodes, err := p.parseSeq(0)
	if err != nil {
		return nil, err
	}
	t := &Template{source: src, nodes: nodes}
	t.names = collectNames(nodes, nil)
	return t, nil
}

// MustParse is like Parse but panics on error.
func MustParse(src string) *Template {
	t, err := Parse(src)
	if err != nil {
		panic(err)
	}
	return t
}

// Source returns the template text as given to Parse.
func (t *Template) Source() string {
	return t.source
}

// String implements fmt.Stringer.
func (t *Template) String() string {
	return t.source
}

// Nodes returns the top-level nodes. The slice must not be modified.
func (t *Template) Nodes() []Node {
	return t.nodes
}

// Placeholders returns placeholder names in order of appearance.
// A name used twice appears twice.
func (t *Template) Placeholders() []string {
	return t.names
}

// HasPlaceholder reports whether the template declares name.
func (t *Template) HasPlaceholder(name string) bool {
	for _, n := range t.names {
		if n == name {
			return true
		}
	}
	return false
}

// IsStatic reports whether the template consists of literal text only.
func (t *Template) IsStatic() bool {
	for _, n := range t.nodes {
		if n.Kind != Literal {
			return false
		}
	}
	return true
}

// LiteralPrefix returns the literal text that every match must start with.
func (t *Template) LiteralPrefix() string {
	var b strings.Builder
	for _, n := range t.nodes {
		if n.Kind != Literal {
			break
		}
		b.WriteString(n.Value)
	}
	return b.String()
}

// Concat returns a template whose nodes are t's followed by other's.
func (t *Template) Concat(other *Template) *Template {
	nodes := make([]Node, 0, len(t.nodes)+len(other.nodes))
	nodes = append(nodes, t.nodes...)
	nodes = append(nodes, other.nodes...)
	nodes = mergeLiterals(nodes)
	return &Template{
		source: t.source + other.source,
		nodes:  nodes,
		names:  collectNames(nodes, nil),
	}
}

// TrimTrailingSlash returns t without a trailing literal slash.
// Templates that do not end in a literal slash are returned unchanged.
func (t *Template) TrimTrailingSlash() *Template {
	n := len(t.nodes)
	if n == 0 || t.nodes[n-1].Kind != Literal || !strings.HasSuffix(t.nodes[n-1].Value, "/") {
		return t
	}
	nodes := make([]Node, n)
	copy(nodes, t.nodes)
	last := strings.TrimRight(nodes[n-1].Value, "/")
	if last == "" {
		nodes = nodes[:n-1]
	} else {
		nodes[n-1].Value = last
	}
	return &Template{
		source: strings.TrimRight(t.source, "/"),
		nodes:  nodes,
		names:  t.names,
	}
}

func collectNames(nodes []Node, names []string) []string {
	for _, n := range nodes {
		switch n.Kind {
		case Placeholder:
			names = append(names, n.Value)
		case Optional:
			names = collectNames(n.Children, names)
		}
	}
	return names
}

// mergeLiterals joins adjacent literal nodes.
func mergeLiterals(nodes []Node) []Node {
	out := nodes[:0:0]
	for _, n := range nodes {
		if n.Kind == Literal && len(out) > 0 && out[len(out)-1].Kind == Literal {
			out[len(out)-1].Value += n.Value
			continue
		}
		out = append(out, n)
	}
	return out
}

type parser struct {
	src string
	pos int
}

func (p *parser) parseSeq(depth int) ([]Node, error) {
	var (
		nodes []Node
		lit   strings.Builder
	)
	flush := func() {
		if lit.Len() > 0 {
			nodes = append(nodes, Node{Kind: Literal, Value: lit.String()})
			lit.Reset()
		}
	}

	for p.pos < len(p.src) {
		c := p.src[p.pos]
		switch {
		case c == '\\':
			if p.pos+1 >= len(p.src) {
				return nil, &SyntaxError{Template: p.src, Offset: p.pos, Err: ErrTrailingEscape}
			}
			lit.WriteByte(p.src[p.pos+1])
			p.pos += 2

		case c == ':' && p.pos+1 < len(p.src) && isNameStart(p.src[p.pos+1]):
			flush()
			start := p.pos + 1
			end := start + 1
			for end < len(p.src) && isNameChar(p.src[end]) {
				end++
			}
			nodes = append(nodes, Node{Kind: Placeholder, Value: p.src[start:end]})
			p.pos = end

		case c == '(':
			flush()
			open := p.pos
			p.pos++
			children, err := p.parseSeq(depth + 1)
			if err != nil {
				return nil, err
			}
			if p.pos >= len(p.src) || p.src[p.pos] != ')' {
				return nil, &SyntaxError{Template: p.src, Offset: open, Err: ErrUnbalancedGroup}
			}
			if len(children) == 0 {
				return nil, &SyntaxError{Template: p.src, Offset: open, Err: ErrEmptyGroup}
			}
			p.pos++
			nodes = append(nodes, Node{Kind: Optional, Children: children})

		case c == ')':
			if depth == 0 {
				return nil, &SyntaxError{Template: p.src, Offset: p.pos, Err: ErrUnbalancedGroup}
			}
			flush()
			return nodes, nil

		default:
			lit.WriteByte(c)
			p.pos++
		}
	}

	flush()
	return nodes, nil
}

func isNameStart(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isNameChar(c byte) bool {
	return isNameStart(c) || (c >= '0' && c <= '9')
}

// IsName reports whether s is a valid placeholder name.
func IsName(s string) bool {
	if s == "" || !isNameStart(s[0]) {
		return false
	}
	for i := 1; i < len(s); i++ {
		if !isNameChar(s[i]) {
			return false
		}
	}
	return true
}
