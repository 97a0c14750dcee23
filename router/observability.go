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

package router

import "context"

// Recorder provides observability hooks for matching and generation.
// Implementations typically record metrics or trace spans.
//
// Lifecycle of a match:
//  1. Router calls OnMatchStart(ctx, req) and receives an enriched context
//     and an opaque state token. A nil state excludes the request.
//  2. Router evaluates the route table with the enriched context.
//  3. Router calls OnMatchEnd(ctx, state, result, err) only if state != nil.
//
// OnGenerate is called once per Generate or GenerateDefault call. The name
// is empty for default-route generation.
//
// Thread safety: all methods must be safe for concurrent use.
type Recorder interface {
	OnMatchStart(ctx context.Context, req Request) (context.Context, any)
	OnMatchEnd(ctx context.Context, state any, result Match, err error)
	OnGenerate(ctx context.Context, name string, err error)
}

// Recorders combines recorders into one. Hooks run in the given order and
// each recorder receives its own state token. Nil recorders are skipped.
func Recorders(recorders ...Recorder) Recorder {
	var rs multiRecorder
	for _, r := range recorders {
		if r != nil {
			rs = append(rs, r)
		}
	}
	switch len(rs) {
	case 0:
		return nil
	case 1:
		return rs[0]
	}
	return rs
}

type multiRecorder []Recorder

func (m multiRecorder) OnMatchStart(ctx context.Context, req Request) (context.Context, any) {
	states := make([]any, len(m))
	active := false
	for i, r := range m {
		ctx, states[i] = r.OnMatchStart(ctx, req)
		active = active || states[i] != nil
	}
	if !active {
		return ctx, nil
	}
	return ctx, states
}

func (m multiRecorder) OnMatchEnd(ctx context.Context, state any, result Match, err error) {
	states, _ := state.([]any)
	for i, r := range m {
		if i < len(states) && states[i] != nil {
			r.OnMatchEnd(ctx, states[i], result, err)
		}
	}
}

func (m multiRecorder) OnGenerate(ctx context.Context, name string, err error) {
	for _, r := range m {
		r.OnGenerate(ctx, name, err)
	}
}
