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
	"strconv"
	"strings"

	"merb.dev/core/router/compiler"
	"merb.dev/core/router/segment"
)

// paramScope resolves references in param templates against the
// conditions of one route.
type paramScope struct {
	refs       map[string][]compiler.Ref
	condIndex  map[string]int
	condGroups []int
}

// parse converts a param template into expression parts.
//
//	:name      value of placeholder name
//	[n]        group n of the path condition
//	:key[n]    group n of condition key
//	\c         literal c
//
// Anything else is literal text.
func (s *paramScope) parse(src string) ([]compiler.Part, error) {
	var (
		parts []compiler.Part
		lit   strings.Builder
	)
	flush := func() {
		if lit.Len() > 0 {
			parts = append(parts, compiler.Part{Kind: compiler.PartText, Text: lit.String()})
			lit.Reset()
		}
	}

	for i := 0; i < len(src); {
		c := src[i]
		switch {
		case c == '\\' && i+1 < len(src):
			lit.WriteByte(src[i+1])
			i += 2

		case c == '[':
			n, end, ok := groupRef(src, i)
			if !ok {
				lit.WriteByte(c)
				i++
				continue
			}
			ref, err := s.group(KeyPath, n)
			if err != nil {
				return nil, err
			}
			flush()
			parts = append(parts, compiler.Part{Kind: compiler.PartCapture, Refs: []compiler.Ref{ref}})
			i = end

		case c == ':' && i+1 < len(src) && segment.IsName(src[i+1:i+2]):
			end := i + 2
			for end < len(src) && segment.IsName(src[i+1:end+1]) {
				end++
			}
			name := src[i+1 : end]
			flush()
			if n, after, ok := groupRef(src, end); ok {
				ref, err := s.group(name, n)
				if err != nil {
					return nil, err
				}
				parts = append(parts, compiler.Part{Kind: compiler.PartCapture, Refs: []compiler.Ref{ref}})
				i = after
				continue
			}
			refs, ok := s.refs[name]
			if !ok {
				return nil, fmt.Errorf("%w: %q", ErrUnknownPlaceholder, name)
			}
			parts = append(parts, compiler.Part{Kind: compiler.PartCapture, Refs: refs})
			i = end

		default:
			lit.WriteByte(c)
			i++
		}
	}
	flush()

	if len(parts) == 0 {
		parts = []compiler.Part{{Kind: compiler.PartText}}
	}
	return parts, nil
}

func (s *paramScope) group(key string, n int) (compiler.Ref, error) {
	i, ok := s.condIndex[key]
	if !ok {
		return compiler.Ref{}, fmt.Errorf("%w: condition %q", ErrUnknownPlaceholder, key)
	}
	if n > s.condGroups[i] {
		return compiler.Ref{}, fmt.Errorf("%w: %s[%d] of %d", ErrGroupOutOfRange, key, n, s.condGroups[i])
	}
	return compiler.Ref{Cond: i, Group: n}, nil
}

// groupRef parses "[n]" at src[i:], returning n and the offset after "]".
func groupRef(src string, i int) (int, int, bool) {
	if i >= len(src) || src[i] != '[' {
		return 0, 0, false
	}
	end := strings.IndexByte(src[i:], ']')
	if end < 2 {
		return 0, 0, false
	}
	n, err := strconv.Atoi(src[i+1 : i+end])
	if err != nil || n < 0 {
		return 0, 0, false
	}
	return n, i + end + 1, true
}
