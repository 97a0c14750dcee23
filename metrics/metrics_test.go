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

package metrics_test

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"

	"merb.dev/core/metrics"
	"merb.dev/core/router"
	"merb.dev/core/router/route"
)

var errVeto = errors.New("veto")

func routes(b *route.Behavior) {
	b.Match("/users/:id").To(route.Params{"controller": "users", "action": "show"}).Name("user")
	b.Match("/about").To(route.Params{"controller": "pages", "action": "about"})
	b.Match("/fail").DeferTo(route.Params{"controller": "x"}, func(router.Request, router.Params) (router.Params, error) {
		return nil, errVeto
	})
}

func newRouter(t *testing.T, rec router.Recorder) *router.Router {
	t.Helper()

	r := router.MustNew(router.WithRecorder(rec))
	require.NoError(t, r.Prepare(routes))
	return r
}

func get(path string) router.Request {
	return router.NewRequest("GET", path, nil)
}

func TestRecorder_Matches(t *testing.T) {
	t.Parallel()

	rec, reader := metrics.TestingRecorder(t)
	r := newRouter(t, rec)

	for _, path := range []string{"/users/1", "/users/2", "/about", "/nope"} {
		_, err := r.Match(get(path))
		require.NoError(t, err)
	}
	_, err := r.Match(get("/fail"))
	require.ErrorIs(t, err, errVeto)

	assert.Equal(t, int64(2), reader.Counter("merb_router_matches", attribute.String("route", "user")))
	assert.Equal(t, int64(1), reader.Counter("merb_router_matches", attribute.String("route", "/about")))
	assert.Equal(t, int64(1), reader.Counter("merb_router_misses"))
	assert.Equal(t, int64(1), reader.Counter("merb_router_match_errors"))
	assert.Equal(t, uint64(5), reader.HistogramCount("merb_router_match_duration"))
	assert.Equal(t, uint64(1), reader.HistogramCount("merb_router_match_duration", attribute.String("outcome", "miss")))
}

func TestRecorder_Generate(t *testing.T) {
	t.Parallel()

	rec, reader := metrics.TestingRecorder(t)
	r := newRouter(t, rec)

	_, err := r.Generate("user", map[string]any{"id": 3}, nil)
	require.NoError(t, err)
	_, err = r.Generate("missing", nil, nil)
	require.Error(t, err)
	_, err = r.GenerateDefault(map[string]any{"controller": "users", "action": "index"}, nil)
	require.NoError(t, err)

	assert.Equal(t, int64(1), reader.Counter("merb_router_generate",
		attribute.String("name", "user"), attribute.String("outcome", "ok")))
	assert.Equal(t, int64(1), reader.Counter("merb_router_generate",
		attribute.String("name", "missing"), attribute.String("outcome", "error")))
	assert.Equal(t, int64(1), reader.Counter("merb_router_generate", attribute.String("name", "default")))
}

func TestRouteLabel(t *testing.T) {
	t.Parallel()

	r := router.MustNew()
	require.NoError(t, r.Prepare(routes))

	m, err := r.Match(get("/users/4"))
	require.NoError(t, err)
	assert.Equal(t, "user", metrics.RouteLabel(m))

	m, err = r.Match(get("/about"))
	require.NoError(t, err)
	assert.Equal(t, "/about", metrics.RouteLabel(m))

	m, err = r.Match(get("/nope"))
	require.NoError(t, err)
	assert.Empty(t, metrics.RouteLabel(m))
}

func TestRecorder_PrometheusHandler(t *testing.T) {
	t.Parallel()

	rec := metrics.MustNew(metrics.WithServiceName("routes-test"))
	t.Cleanup(func() { _ = rec.Shutdown(context.Background()) })
	assert.Equal(t, metrics.PrometheusProvider, rec.Provider())
	assert.Empty(t, rec.ServerAddress())

	r := newRouter(t, rec)
	_, err := r.Match(get("/users/1"))
	require.NoError(t, err)
	_, err = r.Match(get("/nope"))
	require.NoError(t, err)

	handler, err := rec.Handler()
	require.NoError(t, err)

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, w.Code)

	body := w.Body.String()
	assert.Contains(t, body, "merb_router_matches_total")
	assert.Contains(t, body, `route="user"`)
	assert.Contains(t, body, "merb_router_misses_total")
	assert.Contains(t, body, "merb_router_match_duration_seconds_bucket")
	assert.Contains(t, body, `service_name="routes-test"`)
}

func TestRecorder_PrometheusServer(t *testing.T) {
	t.Parallel()

	rec := metrics.MustNew(metrics.WithPrometheus("127.0.0.1:0", "metrics"))
	require.NoError(t, rec.Start(context.Background()))
	require.NoError(t, rec.Start(context.Background()))

	addr := rec.ServerAddress()
	require.NotEqual(t, "127.0.0.1:0", addr)

	r := newRouter(t, rec)
	_, err := r.Match(get("/about"))
	require.NoError(t, err)

	resp, err := http.Get("http://" + addr + "/metrics")
	require.NoError(t, err)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.NoError(t, resp.Body.Close())

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), `route="/about"`)

	require.NoError(t, rec.Shutdown(context.Background()))
	require.NoError(t, rec.Shutdown(context.Background()))
}

func TestRecorder_Stdout(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	rec := metrics.MustNew(metrics.WithStdoutWriter(&buf))

	_, err := rec.Handler()
	require.ErrorIs(t, err, metrics.ErrNoHandler)

	r := newRouter(t, rec)
	_, err = r.Generate("user", map[string]any{"id": 1}, nil)
	require.NoError(t, err)

	require.NoError(t, rec.Shutdown(context.Background()))
	assert.Contains(t, buf.String(), "merb_router_generate")

	_, state := rec.OnMatchStart(context.Background(), get("/"))
	assert.Nil(t, state)
}

func TestNew_InvalidConfiguration(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		opts []metrics.Option
	}{
		{name: "conflicting providers", opts: []metrics.Option{metrics.WithStdout(), metrics.WithOTLP("http://localhost:4318")}},
		{name: "empty service name", opts: []metrics.Option{metrics.WithServiceName("")}},
		{name: "non-positive interval", opts: []metrics.Option{metrics.WithExportInterval(0)}},
		{name: "empty server path", opts: []metrics.Option{metrics.WithPrometheus(":9090", "")}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := metrics.New(tt.opts...)
			require.Error(t, err)
			assert.Panics(t, func() { metrics.MustNew(tt.opts...) })
		})
	}
}

func TestNew_EventHandler(t *testing.T) {
	t.Parallel()

	var events []metrics.Event
	rec, err := metrics.New(
		metrics.WithOTLP(""),
		metrics.WithEventHandler(func(e metrics.Event) { events = append(events, e) }),
	)
	require.NoError(t, err)
	t.Cleanup(func() {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		_ = rec.Shutdown(ctx)
	})

	require.NotEmpty(t, events)
	assert.Equal(t, metrics.EventWarning, events[0].Type)
	assert.Equal(t, metrics.OTLPProvider, rec.Provider())
}
