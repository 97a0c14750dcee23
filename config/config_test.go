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

package config_test

import (
	"context"
	"errors"
	"testing"

	"github.com/hashicorp/consul/api"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"merb.dev/core/config"
	"merb.dev/core/config/codec"
	"merb.dev/core/router"
	"merb.dev/core/router/route"
)

func load(t *testing.T, opts ...config.Option) *config.Config {
	t.Helper()

	cfg, err := config.New(opts...)
	require.NoError(t, err)
	require.NoError(t, cfg.Load(context.Background()))
	return cfg
}

func prepare(t *testing.T, cfg *config.Config) *router.Router {
	t.Helper()

	r := router.MustNew()
	require.NoError(t, r.Prepare(cfg.Routes()))
	return r
}

func match(t *testing.T, r *router.Router, method, path string) router.Match {
	t.Helper()

	m, err := r.Match(router.NewRequest(method, path, nil))
	require.NoError(t, err)
	return m
}

func TestLoad_FormatsAreEquivalent(t *testing.T) {
	t.Parallel()

	want := load(t, config.WithFile("testdata/routes.yaml")).Document()
	for _, file := range []string{"testdata/routes.toml", "testdata/routes.json"} {
		t.Run(file, func(t *testing.T) {
			t.Parallel()

			got := load(t, config.WithFile(file)).Document()
			assert.Equal(t, want, got)
		})
	}
}

func TestLoad_Document(t *testing.T) {
	t.Parallel()

	doc := load(t, config.WithFile("testdata/routes.yaml")).Document()
	require.NotNil(t, doc)

	assert.Equal(t, map[string]string{"action": "index"}, doc.Defaults)
	assert.True(t, doc.DefaultRoutes)
	require.Len(t, doc.Routes, 2)
	assert.Equal(t, "login", doc.Routes[0].Name)
	assert.Equal(t, map[string]string{"year": `\d{4}`, "month": `\d{2}`}, doc.Routes[1].Where)
	require.Len(t, doc.Namespaces, 1)
	assert.Nil(t, doc.Namespaces[0].Path)
	assert.Equal(t, map[string]string{"ban": "post"}, doc.Namespaces[0].Resources[0].Member)
	require.Len(t, doc.Resources, 1)
	assert.Equal(t, "posts", doc.Resources[0].Resources[0].Name)
}

func TestRoutes_AppliesDocument(t *testing.T) {
	t.Parallel()

	r := prepare(t, load(t, config.WithFile("testdata/routes.yaml")))

	m := match(t, r, "GET", "/login")
	assert.Equal(t, "login", m.Name())
	assert.Equal(t, router.Params{"controller": "sessions", "action": "new"}, m.Params)

	m = match(t, r, "GET", "/posts/2024/05")
	assert.Equal(t, "archive", m.Name())
	assert.Equal(t, "2024", m.Params["year"])
	assert.Equal(t, "05", m.Params["month"])

	m = match(t, r, "GET", "/posts/24/05")
	assert.NotEqual(t, "archive", m.Name())

	m = match(t, r, "POST", "/admin/users/3/ban")
	require.True(t, m.Found())
	assert.Equal(t, "admin/users", m.Params["controller"])
	assert.Equal(t, "ban", m.Params["action"])
	assert.Equal(t, "3", m.Params["id"])

	m = match(t, r, "GET", "/blogs/1/posts/2")
	assert.Equal(t, "blog_post", m.Name())
	assert.Equal(t, router.Params{"controller": "posts", "action": "show", "blog_id": "1", "id": "2"}, m.Params)

	url, err := r.Generate("blog_post", map[string]any{"blog_id": 1, "id": 2}, nil)
	require.NoError(t, err)
	assert.Equal(t, "/blogs/1/posts/2", url)

	m = match(t, r, "GET", "/pages/about/7")
	assert.Equal(t, "default", m.Name())
	assert.Equal(t, router.Params{"controller": "pages", "action": "about", "id": "7"}, m.Params)
}

func TestLoad_MergesSources(t *testing.T) {
	t.Parallel()

	cfg := load(t,
		config.WithFile("testdata/routes.yaml"),
		config.WithFile("testdata/local.yaml"),
	)
	doc := cfg.Document()

	assert.Equal(t, "html", doc.Defaults["format"])
	names := make([]string, 0, len(doc.Routes))
	for _, rs := range doc.Routes {
		names = append(names, rs.Name)
	}
	assert.Equal(t, []string{"login", "archive", "health"}, names)
	assert.Len(t, doc.Resources, 1)
}

func TestLoad_Content(t *testing.T) {
	t.Parallel()

	content := []byte(`
routes:
  - path: /v/:id
    method: get|post
    to: {controller: videos, version: 2}
    conditions:
      host: ':sub.example.com'
      user_agent: {regexp: 'Mobile'}
    defaults: {page: 1}
`)
	cfg := load(t, config.WithContent(content, codec.TypeYAML))
	rs := cfg.Document().Routes[0]
	assert.Equal(t, "2", rs.To["version"])
	assert.Equal(t, "1", rs.Defaults["page"])

	r := prepare(t, cfg)
	attrs := map[string]string{"host": "www.example.com", "user_agent": "Mobile Safari"}

	m, err := r.Match(router.NewRequest("POST", "/v/9", attrs))
	require.NoError(t, err)
	require.True(t, m.Found())
	assert.Equal(t, "www", m.Params["sub"])
	assert.Equal(t, "9", m.Params["id"])
	assert.Equal(t, "1", m.Params["page"])
	assert.Equal(t, "2", m.Params["version"])

	m, err = r.Match(router.NewRequest("PUT", "/v/9", attrs))
	require.NoError(t, err)
	assert.False(t, m.Found())

	m, err = r.Match(router.NewRequest("GET", "/v/9", map[string]string{"host": "www.example.com", "user_agent": "curl"}))
	require.NoError(t, err)
	assert.False(t, m.Found())
}

func TestLoad_NamespacePath(t *testing.T) {
	t.Parallel()

	content := []byte(`{
	  "namespaces": [
	    {"name": "api", "path": "/v1", "routes": [{"path": "/ping", "name": "ping", "to": {"controller": "ping"}}]},
	    {"name": "site", "path": "", "routes": [{"path": "/home", "name": "home", "to": {"controller": "home"}}]}
	  ]
	}`)
	r := prepare(t, load(t, config.WithContent(content, codec.TypeJSON)))

	m := match(t, r, "GET", "/v1/ping")
	assert.Equal(t, "api_ping", m.Name())
	assert.Equal(t, "api/ping", m.Params["controller"])

	m = match(t, r, "GET", "/home")
	assert.Equal(t, "site_home", m.Name())
	assert.Equal(t, "site/home", m.Params["controller"])
}

func TestLoad_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		content string
		field   string
	}{
		{"unknown top-level key", `{"paths": []}`, ""},
		{"route without path", `{"routes": [{"name": "x"}]}`, "routes.0"},
		{"bad condition type", `{"routes": [{"path": "/", "conditions": {"host": 5}}]}`, "routes.0.conditions.host"},
		{"bad name", `{"routes": [{"path": "/", "name": "no-dash"}]}`, "routes[0].name"},
		{"bad method", `{"routes": [{"path": "/", "method": "fetch"}]}`, "routes[0].method"},
		{"bad where", `{"routes": [{"path": "/:id", "where": {"id": "("}}]}`, "routes[0].where[id]"},
		{"bad member method", `{"resources": [{"name": "users", "member": {"ban": "zap"}}]}`, "resources[0].member[ban]"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cfg := config.MustNew(config.WithContent([]byte(tt.content), codec.TypeJSON))
			err := cfg.Load(context.Background())
			require.Error(t, err)

			var cerr *config.Error
			require.ErrorAs(t, err, &cerr)
			if tt.field != "" {
				assert.Contains(t, err.Error(), tt.field)
			}
			assert.Nil(t, cfg.Document())
		})
	}
}

func TestLoad_KeepsPreviousDocumentOnError(t *testing.T) {
	t.Parallel()

	valid := true
	src := sourceFunc(func(context.Context) (map[string]any, error) {
		if valid {
			return map[string]any{"routes": []any{map[string]any{"path": "/a"}}}, nil
		}
		return nil, errors.New("unavailable")
	})

	cfg := load(t, config.WithSource(src))
	first := cfg.Document()

	valid = false
	err := cfg.Load(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "source[0]")
	assert.Same(t, first, cfg.Document())
}

func TestLoad_Preconditions(t *testing.T) {
	t.Parallel()

	cfg := config.MustNew()
	//nolint:staticcheck // nil context is the case under test
	assert.ErrorIs(t, cfg.Load(nil), config.ErrNilContext)
	assert.ErrorIs(t, cfg.Load(context.Background()), config.ErrNoSources)

	r := router.MustNew()
	assert.ErrorIs(t, r.Prepare(cfg.Routes()), config.ErrNotLoaded)

	_, err := cfg.Encode(codec.TypeYAML)
	assert.ErrorIs(t, err, config.ErrNotLoaded)
}

func TestNew_OptionErrors(t *testing.T) {
	t.Parallel()

	_, err := config.New(
		config.WithFile("routes.ini"),
		config.WithContent(nil, codec.Type("xml")),
		config.WithSource(nil),
	)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "detect-format")
	assert.Contains(t, err.Error(), "get-decoder")
	assert.Contains(t, err.Error(), "source cannot be nil")

	assert.Panics(t, func() { config.MustNew(config.WithSource(nil)) })
}

func TestWithValidator(t *testing.T) {
	t.Parallel()

	errNoRoutes := errors.New("at least one route is required")
	cfg := config.MustNew(
		config.WithContent([]byte(`{"default_routes": true}`), codec.TypeJSON),
		config.WithValidator(func(raw map[string]any) error {
			if _, ok := raw["routes"]; !ok {
				return errNoRoutes
			}
			return nil
		}),
	)
	err := cfg.Load(context.Background())
	require.ErrorIs(t, err, errNoRoutes)
	assert.Contains(t, err.Error(), "custom-validator[0]")

	panicky := config.MustNew(
		config.WithContent([]byte(`{}`), codec.TypeJSON),
		config.WithValidator(func(map[string]any) error { panic("boom") }),
	)
	assert.ErrorContains(t, panicky.Load(context.Background()), "validator panic: boom")
}

func TestWithConsulKV(t *testing.T) {
	t.Parallel()

	kv := fakeKV{"app/routes.json": `{"routes": [{"path": "/kv", "name": "kv", "to": {"controller": "kv"}}]}`}
	cfg := load(t, config.WithConsulKV("app/routes.json", codec.TypeJSON, kv))

	r := prepare(t, cfg)
	assert.Equal(t, "kv", match(t, r, "GET", "/kv").Name())
}

func TestEncode_RoundTrip(t *testing.T) {
	t.Parallel()

	orig := load(t, config.WithFile("testdata/routes.yaml"))
	for _, typ := range []codec.Type{codec.TypeYAML, codec.TypeTOML, codec.TypeJSON} {
		t.Run(string(typ), func(t *testing.T) {
			t.Parallel()

			data, err := orig.Encode(typ)
			require.NoError(t, err)

			again := load(t, config.WithContent(data, typ))
			assert.Equal(t, orig.Document(), again.Document())
		})
	}
}

func TestDocument_ApplyDuplicateNames(t *testing.T) {
	t.Parallel()

	doc := &config.Document{Routes: []config.RouteSpec{
		{Path: "/a", Name: "same", To: map[string]string{"controller": "a"}},
		{Path: "/b", Name: "same", To: map[string]string{"controller": "b"}},
	}}
	r := router.MustNew()
	err := r.Prepare(func(b *route.Behavior) {
		b.Fail(doc.Apply(b))
	})
	assert.ErrorIs(t, err, route.ErrDuplicateRouteName)
}

type sourceFunc func(context.Context) (map[string]any, error)

func (f sourceFunc) Load(ctx context.Context) (map[string]any, error) { return f(ctx) }

type fakeKV map[string]string

func (f fakeKV) Get(key string, _ *api.QueryOptions) (*api.KVPair, *api.QueryMeta, error) {
	v, ok := f[key]
	if !ok {
		return nil, &api.QueryMeta{}, nil
	}
	return &api.KVPair{Key: key, Value: []byte(v)}, &api.QueryMeta{LastIndex: 1}, nil
}
