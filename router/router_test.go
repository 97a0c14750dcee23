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
	"errors"
	"fmt"
	"regexp"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"merb.dev/core/router"
	"merb.dev/core/router/route"
)

var regexpMobile = regexp.MustCompile(`Mobile`)

func get(path string) router.Request {
	return router.NewRequest("GET", path, nil)
}

func prepared(t *testing.T, fn func(b *route.Behavior), opts ...router.Option) *router.Router {
	t.Helper()

	r := router.MustNew(opts...)
	require.NoError(t, r.Prepare(fn))
	return r
}

func TestRouter_StaticRoundTrip(t *testing.T) {
	t.Parallel()

	r := prepared(t, func(b *route.Behavior) {
		b.Match("/about/team").To(route.Params{"controller": "pages", "action": "team"}).Name("team")
	})

	url, err := r.Generate("team", nil, nil)
	require.NoError(t, err)
	assert.Equal(t, "/about/team", url)

	m, err := r.Match(get(url))
	require.NoError(t, err)
	assert.Equal(t, 0, m.Index)
	assert.Equal(t, "team", m.Name())
	assert.Equal(t, router.Params{"controller": "pages", "action": "team"}, m.Params)
}

func TestRouter_SegmentRoundTrip(t *testing.T) {
	t.Parallel()

	r := prepared(t, func(b *route.Behavior) {
		b.Match("/posts/:year/:month/:slug").To(route.Params{"controller": "posts"}).Name("post")
	})

	url, err := r.Generate("post", map[string]any{"year": 2024, "month": "05", "slug": "hello-world"}, nil)
	require.NoError(t, err)
	assert.Equal(t, "/posts/2024/05/hello-world", url)

	m, err := r.Match(get(url))
	require.NoError(t, err)
	assert.Equal(t, "2024", m.Params["year"])
	assert.Equal(t, "05", m.Params["month"])
	assert.Equal(t, "hello-world", m.Params["slug"])
}

func TestRouter_OptionalSegmentsInGeneration(t *testing.T) {
	t.Parallel()

	r := prepared(t, func(b *route.Behavior) {
		b.Match("/:first(/:second)(/:third)").Register().Name("opt")
	})

	tests := []struct {
		params map[string]any
		want   string
	}{
		{map[string]any{"first": "a"}, "/a"},
		{map[string]any{"first": "a", "second": "b"}, "/a/b"},
		{map[string]any{"first": "a", "third": "c"}, "/a/c"},
		{map[string]any{"first": "a", "second": "b", "third": "c"}, "/a/b/c"},
	}
	for _, tt := range tests {
		url, err := r.Generate("opt", tt.params, nil)
		require.NoError(t, err)
		assert.Equal(t, tt.want, url)
	}

	m, err := r.Match(get("/hello/sweet"))
	require.NoError(t, err)
	assert.Equal(t, router.Params{"first": "hello", "second": "sweet", "action": "index"}, m.Params)

	// Sibling groups are positional, so a skipped middle group shifts later values.
	m, err = r.Match(get("/a/c"))
	require.NoError(t, err)
	assert.Equal(t, "c", m.Params["second"])
	assert.NotContains(t, m.Params, "third")
}

func TestRouter_NamespacedControllerRoundTrip(t *testing.T) {
	t.Parallel()

	r := prepared(t, func(b *route.Behavior) {
		b.Namespace("admin").Scope(func(admin *route.Behavior) {
			admin.Match("/:controller/:action").Register().Name("adm")
			admin.DefaultRoutes(nil)
		})
	})

	m, err := r.Match(get("/admin/foos/list"))
	require.NoError(t, err)
	require.True(t, m.Found())
	assert.Equal(t, "admin/foos", m.Params["controller"])
	assert.Equal(t, "list", m.Params["action"])

	url, err := r.Generate("admin_adm", m.Params, nil)
	require.NoError(t, err)
	assert.Equal(t, "/admin/foos/list", url)

	url, err = r.Generate("admin_adm", map[string]any{"controller": "foos", "action": "list"}, nil)
	require.NoError(t, err)
	assert.Equal(t, "/admin/foos/list", url)

	url, err = r.Generate("admin_adm", map[string]any{"action": "edit"}, map[string]any{"controller": "admin/foos"})
	require.NoError(t, err)
	assert.Equal(t, "/admin/foos/edit", url)

	m, err = r.Match(get("/admin/foos/show/3"))
	require.NoError(t, err)
	require.Equal(t, "default", m.Name())
	url, err = r.Generate("default", m.Params, nil)
	require.NoError(t, err)
	assert.Equal(t, "/admin/foos/show/3", url)
}

func TestRouter_NestedFlaggedRegexp(t *testing.T) {
	t.Parallel()

	define := func(b *route.Behavior) {
		b.Match("/x").Match(regexp.MustCompile(`(?i)^/y$`)).To(route.Params{"controller": "xy"})
		b.Match("/p").Match(regexp.MustCompile(`(?i)^/q`)).Match("/r").To(route.Params{"controller": "pqr"})
	}

	for _, r := range []*router.Router{prepared(t, define), prepared(t, define, router.WithoutRouteIndex())} {
		m, err := r.Match(get("/x/Y"))
		require.NoError(t, err)
		assert.Equal(t, 0, m.Index)

		m, err = r.Match(get("/X/y"))
		require.NoError(t, err)
		assert.False(t, m.Found(), "flags do not reach the parent fragment")

		m, err = r.Match(get("/p/Q/r"))
		require.NoError(t, err)
		assert.Equal(t, 1, m.Index)

		m, err = r.Match(get("/p/q/R"))
		require.NoError(t, err)
		assert.False(t, m.Found(), "flags do not reach later fragments")
	}
}

func TestRouter_FirstDefinedWins(t *testing.T) {
	t.Parallel()

	r := prepared(t, func(b *route.Behavior) {
		b.Match("/:controller/:action").Register()
		b.Match("/users/list").To(route.Params{"controller": "never"})
	})

	m, err := r.Match(get("/users/list"))
	require.NoError(t, err)
	assert.Equal(t, 0, m.Index)
	assert.Equal(t, "users", m.Params["controller"])
	assert.Equal(t, "list", m.Params["action"])
}

func TestRouter_ConditionCombination(t *testing.T) {
	t.Parallel()

	r := prepared(t, func(b *route.Behavior) {
		b.Match("/:foo/:bar", route.Conditions{"foo": "[a-z]+", "bar": `\d+`}).To(route.Params{"controller": "combo"})
	})

	m, err := r.Match(get("/abc/123"))
	require.NoError(t, err)
	assert.True(t, m.Found())

	m, err = r.Match(get("/123/abc"))
	require.NoError(t, err)
	assert.False(t, m.Found())
	assert.Equal(t, -1, m.Index)
	assert.Nil(t, m.Route)
	assert.Empty(t, m.Params)
}

func TestRouter_Namespacing(t *testing.T) {
	t.Parallel()

	r := prepared(t, func(b *route.Behavior) {
		b.Namespace("admin").Scope(func(admin *route.Behavior) {
			admin.Match("/foo").To(route.Params{"controller": "foos"})
		})
	})

	m, err := r.Match(get("/admin/foo"))
	require.NoError(t, err)
	assert.Equal(t, "admin/foos", m.Params["controller"])

	m, err = r.Match(get("/foo"))
	require.NoError(t, err)
	assert.False(t, m.Found())
}

func TestRouter_NestedResources(t *testing.T) {
	t.Parallel()

	r := prepared(t, func(b *route.Behavior) {
		b.Resources("blogs").Nest(func(blog *route.Behavior) {
			blog.Resources("users")
		})
	})

	url, err := r.Generate("blog_user", map[string]any{"blog_id": 5, "id": 9}, nil)
	require.NoError(t, err)
	assert.Equal(t, "/blogs/5/users/9", url)

	m, err := r.Match(get(url))
	require.NoError(t, err)
	assert.Equal(t, "blog_user", m.Name())
	assert.Equal(t, "5", m.Params["blog_id"])
	assert.Equal(t, "9", m.Params["id"])
}

func TestRouter_ControllerActionID(t *testing.T) {
	t.Parallel()

	r := prepared(t, func(b *route.Behavior) {
		b.Match("/:controller/:action/:id").Register()
	})

	m, err := r.Match(get("/foo/bar/baz"))
	require.NoError(t, err)
	assert.Equal(t, router.Params{"controller": "foo", "action": "bar", "id": "baz"}, m.Params)
}

func TestRouter_DeferredErrorPropagates(t *testing.T) {
	t.Parallel()

	boom := errors.New("boom")
	r := prepared(t, func(b *route.Behavior) {
		b.Match("/fail").DeferTo(nil, func(route.Request, route.Params) (route.Params, error) {
			return nil, boom
		})
	})

	m, err := r.Match(get("/fail"))
	require.ErrorIs(t, err, boom)
	assert.False(t, m.Found())
}

func TestRouter_PrepareErrorKeepsTable(t *testing.T) {
	t.Parallel()

	r := prepared(t, func(b *route.Behavior) {
		b.Match("/ok").Register().Name("ok")
	})

	err := r.Prepare(func(b *route.Behavior) {
		b.Match("/a(").Register()
		b.Match("/b").To(route.Params{"x": ":missing"})
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, router.ErrInvalidTemplate)
	assert.ErrorIs(t, err, router.ErrUnknownPlaceholder)

	var cfg *router.ConfigError
	assert.True(t, errors.As(err, &cfg))

	_, ok := r.Route("ok")
	assert.True(t, ok, "failed Prepare keeps the previous table")
	assert.ErrorIs(t, r.Prepare(nil), router.ErrNilDefinition)
}

func TestRouter_MustPreparePanics(t *testing.T) {
	t.Parallel()

	r := router.MustNew()
	assert.Panics(t, func() {
		r.MustPrepare(func(b *route.Behavior) {
			b.Match("/a").Register().Name("x")
			b.Match("/b").Register().Name("x")
		})
	})
}

func TestRouter_PrepareReplaces(t *testing.T) {
	t.Parallel()

	r := prepared(t, func(b *route.Behavior) {
		b.Match("/old").Register().Name("old")
	})
	require.NoError(t, r.Prepare(func(b *route.Behavior) {
		b.Match("/new").Register().Name("new")
	}))

	_, ok := r.Route("old")
	assert.False(t, ok)
	_, ok = r.Route("new")
	assert.True(t, ok)
	assert.Len(t, r.Routes(), 1)
}

func TestRouter_AppendAndPrepend(t *testing.T) {
	t.Parallel()

	r := prepared(t, func(b *route.Behavior) {
		b.Match("/:controller").Register().Name("generic")
	})
	before := r.Table()

	require.NoError(t, r.Append(func(b *route.Behavior) {
		b.Match("/users").To(route.Params{"controller": "appended"}).Name("appended")
	}))
	m, err := r.Match(get("/users"))
	require.NoError(t, err)
	assert.Equal(t, "generic", m.Name(), "appended routes come last")

	require.NoError(t, r.Prepend(func(b *route.Behavior) {
		b.Match("/users").To(route.Params{"controller": "prepended"}).Name("prepended")
	}))
	m, err = r.Match(get("/users"))
	require.NoError(t, err)
	assert.Equal(t, 0, m.Index)
	assert.Equal(t, "prepended", m.Params["controller"])

	routes := r.Routes()
	require.Len(t, routes, 3)
	for i, rt := range routes {
		assert.Equal(t, i, rt.Index())
	}
	generic, ok := r.Route("generic")
	require.True(t, ok)
	assert.Equal(t, 1, generic.Index())

	old, ok := before.Route("generic")
	require.True(t, ok)
	assert.Equal(t, 0, old.Index(), "earlier tables are not renumbered")
	assert.Equal(t, 1, before.Len())

	err = r.Append(func(b *route.Behavior) {
		b.Match("/again").Register().Name("generic")
	})
	assert.ErrorIs(t, err, router.ErrDuplicateRouteName)
	assert.Len(t, r.Routes(), 3)
}

func TestRouter_GenerateErrors(t *testing.T) {
	t.Parallel()

	r := prepared(t, func(b *route.Behavior) {
		b.Match("/users/:id").Register().Name("user")
	})

	_, err := r.Generate("nope", nil, nil)
	assert.ErrorIs(t, err, router.ErrRouteNotFound)

	var gen *router.GenerationError
	require.ErrorAs(t, err, &gen)
	assert.Equal(t, "nope", gen.Name)

	_, err = r.Generate("user", nil, nil)
	assert.ErrorIs(t, err, router.ErrMissingRouteParameter)

	url, err := r.Generate("user", nil, map[string]any{"id": 3})
	require.NoError(t, err)
	assert.Equal(t, "/users/3", url)
}

func TestRouter_GenerateDefault(t *testing.T) {
	t.Parallel()

	r := router.MustNew()
	url, err := r.GenerateDefault(map[string]any{"controller": "posts", "action": "show", "id": 1, "format": "json"}, nil)
	require.NoError(t, err)
	assert.Equal(t, "/posts/show/1.json", url)

	_, err = r.GenerateDefault(nil, nil)
	assert.ErrorIs(t, err, router.ErrControllerNotSpecified)
}

func TestRouter_RootDefaults(t *testing.T) {
	t.Parallel()

	r := prepared(t, func(b *route.Behavior) {
		b.Match("/:controller").Register()
	}, router.WithRootDefaults(route.Params{"action": "list", "format": "html"}))

	m, err := r.Match(get("/posts"))
	require.NoError(t, err)
	assert.Equal(t, router.Params{"controller": "posts", "action": "list", "format": "html"}, m.Params)

	_, err = router.New(router.WithRootDefaults(route.Params{"": "x"}))
	assert.ErrorIs(t, err, router.ErrEmptyDefaultKey)
}

func TestRouter_Diagnostics(t *testing.T) {
	t.Parallel()

	var (
		mu     sync.Mutex
		events []router.DiagnosticEvent
	)
	handler := router.DiagnosticHandlerFunc(func(e router.DiagnosticEvent) {
		mu.Lock()
		defer mu.Unlock()
		events = append(events, e)
	})

	prepared(t, func(b *route.Behavior) {
		b.Match("/:a/:b/:c/:d/:e/:f/:g/:h/:i").Register()
		b.GET("/dup").Register()
		b.GET("/dup").Register()
		b.POST("/dup").Register()
	}, router.WithDiagnostics(handler))

	kinds := make([]router.DiagnosticKind, len(events))
	for i, e := range events {
		kinds[i] = e.Kind
	}
	assert.Equal(t, []router.DiagnosticKind{
		router.DiagHighParamCount,
		router.DiagDuplicateRoute,
		router.DiagTablePrepared,
	}, kinds)
	assert.Equal(t, 2, events[1].Fields["index"])
	assert.Equal(t, 1, events[1].Fields["shadowed"])
	assert.Equal(t, 4, events[2].Fields["routes"])
}

// manyRoutes defines enough routes for the first-byte index to be used.
func manyRoutes(b *route.Behavior) {
	for _, name := range []string{"alpha", "beta", "gamma", "delta", "epsilon", "zeta", "eta", "theta"} {
		b.Match("/" + name + "/:id").To(route.Params{"controller": name})
	}
	b.Match("/:controller/:action").Register()
	b.Match(`/\:literal`).To(route.Params{"controller": "colon"})
	b.Match("/", route.Conditions{"method": "post"}).To(route.Params{"controller": "root"})
}

func TestRouter_IndexDoesNotChangeResults(t *testing.T) {
	t.Parallel()

	indexed := prepared(t, manyRoutes)
	plain := prepared(t, manyRoutes, router.WithoutRouteIndex())
	require.True(t, indexed.Table().Indexed())
	require.False(t, plain.Table().Indexed())

	requests := []router.Request{
		get("/alpha/1"), get("/theta/2"), get("/beta"), get("/beta/x"),
		get("/zzz/yyy"), get("/:literal"), get("/"), get(""),
		router.NewRequest("POST", "/", nil), get("/eta/3/4"),
	}
	for _, req := range requests {
		want, err := plain.Match(req)
		require.NoError(t, err)
		got, err := indexed.Match(req)
		require.NoError(t, err)
		assert.Equal(t, want.Index, got.Index, req.Path())
		assert.Equal(t, want.Params, got.Params, req.Path())
	}
}

func TestRouter_ConcurrentMatchDuringPrepare(t *testing.T) {
	t.Parallel()

	r := prepared(t, func(b *route.Behavior) {
		b.Match("/v/:n").Register().Name("v")
	})

	var wg sync.WaitGroup
	for g := range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range 200 {
				m, err := r.Match(get(fmt.Sprintf("/v/%d", i)))
				assert.NoError(t, err)
				assert.True(t, m.Found(), "goroutine %d", g)
				_, err = r.Generate("v", map[string]any{"n": i}, nil)
				assert.NoError(t, err)
			}
		}()
	}
	for i := range 20 {
		require.NoError(t, r.Prepare(func(b *route.Behavior) {
			b.Match(fmt.Sprintf("/extra%d", i)).Register()
			b.Match("/v/:n").Register().Name("v")
		}))
	}
	wg.Wait()
}
