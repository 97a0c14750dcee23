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

import "strings"

// Resolver supplies the text for a placeholder during Render.
// optional reports whether the placeholder sits inside an optional group.
// Returning ok == false leaves the placeholder unresolved.
type Resolver func(name string, optional bool) (value string, ok bool, err error)

// Render writes the template back into a path.
//
// Required placeholders must resolve, otherwise a *MissingError is returned.
// An optional group is emitted only when every placeholder directly inside
// it resolves and at least one placeholder in it was emitted; otherwise the
// whole group is dropped. Nested groups are decided independently, and so
// are sibling groups: "/:a(/:b)(/:c)" with a and c renders "/a/c", which
// matches back with c in b's place.
// The returned names list the placeholders whose values were emitted.
func (t *Template) Render(resolve Resolver) (string, []string, error) {
	r := &renderState{resolve: resolve}
	out, ok, _, err := r.render(t.nodes, false)
	if err != nil {
		return "", nil, err
	}
	if !ok {
		return "", nil, &MissingError{Name: r.missing}
	}
	return out, r.used, nil
}

type renderState struct {
	resolve Resolver
	used    []string
	missing string
}

// render returns the rendered text, whether every direct placeholder
// resolved, and how many placeholders were emitted.
func (r *renderState) render(nodes []Node, optional bool) (string, bool, int, error) {
	var (
		b       strings.Builder
		emitted int
	)
	for _, n := range nodes {
		switch n.Kind {
		case Literal:
			b.WriteString(n.Value)
		case Placeholder:
			v, ok, err := r.resolve(n.Value, optional)
			if err != nil {
				return "", false, 0, err
			}
			if !ok {
				r.missing = n.Value
				return "", false, 0, nil
			}
			b.WriteString(v)
			r.used = append(r.used, n.Value)
			emitted++
		case Optional:
			mark := len(r.used)
			s, ok, count, err := r.render(n.Children, true)
			if err != nil {
				return "", false, 0, err
			}
			if !ok || count == 0 {
				r.used = r.used[:mark]
				continue
			}
			b.WriteString(s)
			emitted += count
		}
	}
	return b.String(), true, emitted, nil
}
