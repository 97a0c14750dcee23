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

package router_test

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"merb.dev/core/router"
	"merb.dev/core/router/route"
)

type ctxKey struct{}

type countingRecorder struct {
	mu        sync.Mutex
	exclude   string
	starts    int
	matched   []int
	generated []string
	failed    int
	sawCtx    bool
}

func (c *countingRecorder) OnMatchStart(ctx context.Context, req router.Request) (context.Context, any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.starts++
	if req.Path() == c.exclude {
		return ctx, nil
	}
	return context.WithValue(ctx, ctxKey{}, "enriched"), struct{}{}
}

func (c *countingRecorder) OnMatchEnd(ctx context.Context, _ any, result router.Match, _ error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.matched = append(c.matched, result.Index)
	c.sawCtx = ctx.Value(ctxKey{}) == "enriched"
}

func (c *countingRecorder) OnGenerate(_ context.Context, name string, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.generated = append(c.generated, name)
	if err != nil {
		c.failed++
	}
}

func TestRecorder_Lifecycle(t *testing.T) {
	t.Parallel()

	rec := &countingRecorder{exclude: "/health"}
	r := prepared(t, func(b *route.Behavior) {
		b.Match("/users/:id").Register().Name("user")
		b.Match("/health").Register()
	}, router.WithRecorder(rec))

	_, err := r.Match(get("/users/1"))
	require.NoError(t, err)
	_, err = r.Match(get("/missing"))
	require.NoError(t, err)
	_, err = r.Match(get("/health"))
	require.NoError(t, err)

	_, err = r.Generate("user", map[string]any{"id": 1}, nil)
	require.NoError(t, err)
	_, err = r.Generate("nope", nil, nil)
	require.Error(t, err)
	_, err = r.GenerateDefault(map[string]any{"controller": "x"}, nil)
	require.NoError(t, err)

	assert.Equal(t, 3, rec.starts)
	assert.Equal(t, []int{0, -1}, rec.matched, "excluded requests skip OnMatchEnd")
	assert.True(t, rec.sawCtx)
	assert.Equal(t, []string{"user", "nope", ""}, rec.generated)
	assert.Equal(t, 1, rec.failed)
}

func TestRecorders_Combine(t *testing.T) {
	t.Parallel()

	a := &countingRecorder{}
	b := &countingRecorder{exclude: "/x"}

	assert.Nil(t, router.Recorders())
	assert.Same(t, a, router.Recorders(nil, a))

	r := prepared(t, func(bh *route.Behavior) {
		bh.Match("/x").Register()
	}, router.WithRecorder(router.Recorders(a, nil, b)))

	_, err := r.Match(get("/x"))
	require.NoError(t, err)
	_, err = r.Match(get("/y"))
	require.NoError(t, err)

	assert.Equal(t, []int{0, -1}, a.matched)
	assert.Equal(t, []int{-1}, b.matched)
	assert.Equal(t, 2, b.starts)

	both := &countingRecorder{exclude: "/x"}
	r2 := prepared(t, func(bh *route.Behavior) {
		bh.Match("/x").Register()
	}, router.WithRecorder(router.Recorders(both, &countingRecorder{exclude: "/x"})))
	_, err = r2.Match(get("/x"))
	require.NoError(t, err)
	assert.Empty(t, both.matched)
}
