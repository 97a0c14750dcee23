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

package main

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func execute(t *testing.T, args ...string) (int, string, string) {
	t.Helper()

	var stdout, stderr bytes.Buffer
	code := run(args, &stdout, &stderr)
	return code, stdout.String(), stderr.String()
}

func TestRun_List(t *testing.T) {
	t.Parallel()

	code, out, errOut := execute(t, "-f", "testdata/routes.yaml", "list")
	require.Equal(t, exitOK, code, errOut)
	assert.Contains(t, out, "/login")
	assert.Contains(t, out, "login")
	assert.Contains(t, out, "/users/:id(.:format)")
	assert.Contains(t, out, "Method")
	assert.NotContains(t, out, "\x1b[", "output to a buffer has no colors")
}

func TestRun_Match(t *testing.T) {
	t.Parallel()

	code, out, errOut := execute(t, "-f", "testdata/routes.yaml", "match", "get", "/users/7")
	require.Equal(t, exitOK, code, errOut)
	assert.Contains(t, out, "user")
	assert.Contains(t, out, "show")
	assert.Contains(t, out, "7")

	code, _, errOut = execute(t, "-f", "testdata/routes.yaml", "match", "GET", "/nowhere")
	assert.Equal(t, exitNotFound, code)
	assert.Contains(t, errOut, "no route matches GET /nowhere")

	code, _, _ = execute(t, "-f", "testdata/routes.yaml", "match", "GET")
	assert.Equal(t, exitUsage, code)

	code, _, _ = execute(t, "-f", "testdata/routes.yaml", "match", "GET", "/login", "host")
	assert.Equal(t, exitUsage, code)
}

func TestRun_Generate(t *testing.T) {
	t.Parallel()

	code, out, errOut := execute(t, "-f", "testdata/routes.yaml", "generate", "user", "id=5", "page=2")
	require.Equal(t, exitOK, code, errOut)
	assert.Equal(t, "/users/5?page=2\n", out)

	code, out, errOut = execute(t, "-f", "testdata/routes.yaml", "generate", "search")
	require.Equal(t, exitOK, code, errOut)
	assert.Equal(t, "/search\n", out)

	code, _, errOut = execute(t, "-f", "testdata/routes.yaml", "generate", "nope")
	assert.Equal(t, exitNotFound, code)
	assert.Contains(t, errOut, "named routes:")
	assert.Contains(t, errOut, "login")
}

func TestRun_GenerateDefault(t *testing.T) {
	t.Parallel()

	code, out, errOut := execute(t,
		"-f", "testdata/routes.yaml", "-f", "testdata/extra.json",
		"generate", "-", "controller=pages", "action=about",
	)
	require.Equal(t, exitOK, code, errOut)
	assert.Equal(t, "/pages/about\n", out)
}

func TestRun_Export(t *testing.T) {
	t.Parallel()

	code, out, errOut := execute(t, "-f", "testdata/routes.yaml", "-f", "testdata/extra.json", "export", "json")
	require.Equal(t, exitOK, code, errOut)

	var doc struct {
		Routes []struct {
			Name string `json:"name"`
		} `json:"routes"`
		DefaultRoutes bool `json:"default_routes"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &doc))
	require.Len(t, doc.Routes, 3)
	assert.Equal(t, "health", doc.Routes[2].Name)
	assert.True(t, doc.DefaultRoutes)

	code, _, _ = execute(t, "-f", "testdata/routes.yaml", "export", "xml")
	assert.Equal(t, exitUsage, code)
}

func TestRun_Version(t *testing.T) {
	t.Parallel()

	code, out, _ := execute(t, "version")
	require.Equal(t, exitOK, code)
	assert.Contains(t, out, "version")
	assert.Contains(t, out, version)
}

func TestRun_UsageErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		args []string
		want string
	}{
		{"no command", nil, "usage:"},
		{"no files", []string{"list"}, "no route files"},
		{"unknown command", []string{"-f", "testdata/routes.yaml", "serve"}, `unknown command "serve"`},
		{"missing file", []string{"-f", "testdata/missing.yaml", "list"}, "missing.yaml"},
		{"bad log level", []string{"-log-level", "loud", "-f", "testdata/routes.yaml", "list"}, "loud"},
		{"bad exporter", []string{"-metrics", "statsd", "-f", "testdata/routes.yaml", "list"}, "statsd"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			code, _, errOut := execute(t, tt.args...)
			assert.Equal(t, exitUsage, code)
			assert.Contains(t, errOut, tt.want)
		})
	}
}

func TestRun_StdoutTracing(t *testing.T) {
	t.Parallel()

	code, _, errOut := execute(t, "-trace", "stdout", "-f", "testdata/routes.yaml", "match", "GET", "/login")
	require.Equal(t, exitOK, code, errOut)
	assert.Contains(t, errOut, "router.match")
}

func TestRun_StdoutMetrics(t *testing.T) {
	t.Parallel()

	code, out, errOut := execute(t, "-metrics", "stdout", "-f", "testdata/routes.yaml", "match", "GET", "/login")
	require.Equal(t, exitOK, code, errOut)
	assert.NotEmpty(t, out)
	assert.Contains(t, errOut, "merb_router_matches")
}

func TestKeyValues(t *testing.T) {
	t.Parallel()

	kv, err := keyValues([]string{"id=5", "q=a=b", "empty="})
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"id": "5", "q": "a=b", "empty": ""}, kv)

	_, err = keyValues([]string{"=x"})
	require.Error(t, err)
}
