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

// minProgramsForIndexing is the table size below which a linear scan is
// used instead of the first-byte index.
const minProgramsForIndexing = 8

// Matcher evaluates programs in registration order and returns the first
// that matches. A Matcher is immutable and safe for concurrent use.
//
// When indexing is enabled, programs whose path condition starts with a
// literal "/x" are bucketed by the byte x. Candidates for a request are the
// bucket for the request's first path byte merged with the programs that
// could not be bucketed, preserving registration order.
type Matcher struct {
	programs []*Program

	indexed bool
	buckets [128][]int32
	rest    []int32
}

// NewMatcher builds a matcher over programs. The index of a program in the
// slice is the value returned by Match.
func NewMatcher(programs []*Program, index bool) *Matcher {
	m := &Matcher{programs: programs}
	if index && len(programs) >= minProgramsForIndexing {
		m.buildIndex()
	}
	return m
}

// Len returns the number of programs.
func (m *Matcher) Len() int {
	return len(m.programs)
}

// Indexed reports whether the first-byte index is in use.
func (m *Matcher) Indexed() bool {
	return m.indexed
}

func (m *Matcher) buildIndex() {
	for i, p := range m.programs {
		if len(p.Prefix) > 1 && p.Prefix[0] == '/' && p.Prefix[1] < 128 {
			c := p.Prefix[1]
			m.buckets[c] = append(m.buckets[c], int32(i))
			continue
		}
		m.rest = append(m.rest, int32(i))
	}
	m.indexed = true
}

// Match returns the index of the first matching program and its params.
// The index is -1 and params are empty when nothing matches.
func (m *Matcher) Match(req Request) (int, Params, error) {
	path := NormalizePath(req.Path())

	if !m.indexed {
		for i, p := range m.programs {
			params, ok, err := p.Eval(req, path)
			if err != nil {
				return -1, Params{}, err
			}
			if ok {
				return i, params, nil
			}
		}
		return -1, Params{}, nil
	}

	var bucket []int32
	if len(path) > 1 && path[1] < 128 {
		bucket = m.buckets[path[1]]
	}

	// Merge the two ascending index lists.
	a, b := 0, 0
	for a < len(bucket) || b < len(m.rest) {
		var i int32
		if b >= len(m.rest) || (a < len(bucket) && bucket[a] < m.rest[b]) {
			i = bucket[a]
			a++
		} else {
			i = m.rest[b]
			b++
		}
		params, ok, err := m.programs[i].Eval(req, path)
		if err != nil {
			return -1, Params{}, err
		}
		if ok {
			return int(i), params, nil
		}
	}
	return -1, Params{}, nil
}
