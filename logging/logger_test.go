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

package logging

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_Defaults(t *testing.T) {
	t.Parallel()

	l, err := New()
	require.NoError(t, err)
	assert.Equal(t, FormatJSON, l.format)
	assert.Equal(t, LevelInfo, l.Level())
	assert.NotNil(t, l.Logger())
}

func TestNew_InvalidConfiguration(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		opts []Option
		want error
	}{
		{name: "unknown format", opts: []Option{WithFormat("xml")}, want: ErrUnknownFormat},
		{name: "nil output", opts: []Option{WithOutput(nil)}, want: ErrNilOutput},
		{name: "nil slog logger", opts: []Option{WithSlogLogger(nil)}, want: ErrNilLogger},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := New(tt.opts...)
			require.ErrorIs(t, err, tt.want)
		})
	}
}

func TestMustNew_Panics(t *testing.T) {
	t.Parallel()

	assert.Panics(t, func() { MustNew(WithFormat("xml")) })
}

func TestLogger_LevelFiltering(t *testing.T) {
	t.Parallel()

	th := NewTestHelper(t, WithLevel(LevelWarn))
	th.Logger.Debug("hidden")
	th.Logger.Info("hidden too")
	th.Logger.Warn("shown", "count", 3)

	entries, err := th.Logs()
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "WARN", entries[0].Level)
	th.AssertLog(t, "WARN", "shown", map[string]any{"count": 3})
}

func TestLogger_SetLevel(t *testing.T) {
	t.Parallel()

	th := NewTestHelper(t, WithLevel(LevelError))
	th.Logger.Info("before")
	require.NoError(t, th.Logger.SetLevel(LevelDebug))
	th.Logger.Debug("after")

	assert.False(t, th.ContainsLog("before"))
	assert.True(t, th.ContainsLog("after"))
	assert.Equal(t, LevelDebug, th.Logger.Level())
}

func TestLogger_SetLevelExternalLogger(t *testing.T) {
	t.Parallel()

	base := slog.New(slog.NewJSONHandler(&bytes.Buffer{}, nil))
	l := MustNew(WithSlogLogger(base))
	assert.Same(t, base, l.Logger())
	assert.ErrorIs(t, l.SetLevel(LevelDebug), ErrLevelFixed)
}

func TestLogger_ServiceAttributes(t *testing.T) {
	t.Parallel()

	th := NewTestHelper(t,
		WithServiceName("routes"),
		WithServiceVersion("v1.2.0"),
	)
	th.Logger.Info("hello")

	th.AssertLog(t, "INFO", "hello", map[string]any{
		"service": "routes",
		"version": "v1.2.0",
	})
}

func TestLogger_RedactsSensitiveKeys(t *testing.T) {
	t.Parallel()

	th := NewTestHelper(t)
	th.Logger.Info("consul source", "user", "ann", "password", "hunter2", "consul_token", "abc")

	entry, err := th.LastLog()
	require.NoError(t, err)
	assert.Equal(t, "ann", entry.Attrs["user"])
	assert.Equal(t, "***REDACTED***", entry.Attrs["password"])
	assert.Equal(t, "***REDACTED***", entry.Attrs["consul_token"])
}

func TestLogger_ReplaceAttr(t *testing.T) {
	t.Parallel()

	th := NewTestHelper(t, WithReplaceAttr(func(_ []string, a slog.Attr) slog.Attr {
		if a.Key == "internal" {
			return slog.Attr{}
		}
		return a
	}))
	th.Logger.Info("msg", "internal", "x", "kept", "y")

	entry, err := th.LastLog()
	require.NoError(t, err)
	assert.NotContains(t, entry.Attrs, "internal")
	assert.Equal(t, "y", entry.Attrs["kept"])
}

func TestLogger_LogError(t *testing.T) {
	t.Parallel()

	th := NewTestHelper(t)
	th.Logger.LogError(nil, "ignored")
	th.Logger.LogError(assert.AnError, "failed", "step", "load")

	assert.False(t, th.ContainsLog("ignored"))
	th.AssertLog(t, "ERROR", "failed", map[string]any{"error": assert.AnError.Error(), "step": "load"})
}

func TestLogger_Shutdown(t *testing.T) {
	t.Parallel()

	th := NewTestHelper(t)
	th.Logger.Info("before")
	require.NoError(t, th.Logger.Shutdown(context.Background()))
	th.Logger.Info("after")

	assert.True(t, th.ContainsLog("before"))
	assert.False(t, th.ContainsLog("after"))
}

func TestLogger_TextFormat(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	l := MustNew(WithText(), WithOutput(&buf))
	l.Info("text output", "key", "value")

	assert.Contains(t, buf.String(), "msg=\"text output\"")
	assert.Contains(t, buf.String(), "key=value")
}

func TestLogger_ConsoleFormat(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	l := MustNew(WithConsole(), WithOutput(&buf))
	l.Debug("not shown")
	l.Info("console output", "key", "value", "secret", "s3cr3t")

	out := buf.String()
	assert.NotContains(t, out, "not shown")
	assert.Contains(t, out, "console output")
	assert.Contains(t, out, "key=value")
	assert.NotContains(t, out, "s3cr3t")

	buf.Reset()
	require.NoError(t, l.SetLevel(LevelDebug))
	l.With("scope", "test").Debug("now shown")
	assert.Contains(t, buf.String(), "now shown")
	assert.Contains(t, buf.String(), "scope=test")
}

func TestParseLevel(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want Level
	}{
		{"debug", LevelDebug},
		{"INFO", LevelInfo},
		{" warn ", LevelWarn},
		{"error", LevelError},
	}
	for _, tt := range tests {
		got, err := ParseLevel(tt.in)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}

	_, err := ParseLevel("loud")
	assert.ErrorIs(t, err, ErrInvalidLevel)
}
