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
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync/atomic"
)

// Format selects how records are written.
type Format string

const (
	FormatJSON    Format = "json"
	FormatText    Format = "text"
	FormatConsole Format = "console"
)

// Level aliases [slog.Level] so callers need not import log/slog.
type Level = slog.Level

const (
	LevelDebug = slog.LevelDebug
	LevelInfo  = slog.LevelInfo
	LevelWarn  = slog.LevelWarn
	LevelError = slog.LevelError
)

// ParseLevel parses "debug", "info", "warn" or "error", case-insensitively.
func ParseLevel(s string) (Level, error) {
	var l slog.Level
	if err := l.UnmarshalText([]byte(strings.TrimSpace(s))); err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidLevel, s)
	}
	return l, nil
}

// redacted lists attribute keys whose values never reach the output.
// Route sources may carry Consul ACL tokens.
var redacted = map[string]bool{
	"password":      true,
	"token":         true,
	"consul_token":  true,
	"secret":        true,
	"authorization": true,
}

// Logger owns a [slog.Logger] whose level can be raised or lowered while
// routes are being served. It is safe for concurrent use.
type Logger struct {
	format  Format
	out     io.Writer
	level   slog.LevelVar
	service string
	version string
	replace func(groups []string, a slog.Attr) slog.Attr

	external *slog.Logger
	wrap     bool

	current atomic.Pointer[slog.Logger]
	closed  atomic.Bool
}

// New builds a Logger. Without options it writes JSON at info level to
// stderr, leaving stdout to command output.
func New(opts ...Option) (*Logger, error) {
	l := &Logger{format: FormatJSON, out: os.Stderr}
	l.level.Set(LevelInfo)
	for _, opt := range opts {
		opt(l)
	}

	if l.wrap {
		if l.external == nil {
			return nil, ErrNilLogger
		}
		l.current.Store(l.external)
		return l, nil
	}
	if l.out == nil {
		return nil, ErrNilOutput
	}

	h, err := l.handler()
	if err != nil {
		return nil, err
	}
	logger := slog.New(h)
	if l.service != "" {
		logger = logger.With("service", l.service)
	}
	if l.version != "" {
		logger = logger.With("version", l.version)
	}
	l.current.Store(logger)
	return l, nil
}

// MustNew is like New but panics on error.
func MustNew(opts ...Option) *Logger {
	l, err := New(opts...)
	if err != nil {
		panic(err)
	}
	return l
}

func (l *Logger) handler() (slog.Handler, error) {
	opts := &slog.HandlerOptions{Level: &l.level, ReplaceAttr: l.redact}
	switch l.format {
	case FormatJSON:
		return slog.NewJSONHandler(l.out, opts), nil
	case FormatText:
		return slog.NewTextHandler(l.out, opts), nil
	case FormatConsole:
		return newConsoleHandler(l.out, opts), nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, l.format)
}

func (l *Logger) redact(groups []string, a slog.Attr) slog.Attr {
	if redacted[a.Key] {
		return slog.String(a.Key, "***REDACTED***")
	}
	if l.replace != nil {
		return l.replace(groups, a)
	}
	return a
}

// Logger returns the underlying [slog.Logger], for libraries that take one.
func (l *Logger) Logger() *slog.Logger { return l.current.Load() }

// With is shorthand for l.Logger().With(args...).
func (l *Logger) With(args ...any) *slog.Logger { return l.Logger().With(args...) }

func (l *Logger) log(ctx context.Context, level slog.Level, msg string, args ...any) {
	if l.closed.Load() {
		return
	}
	if logger := l.Logger(); logger.Enabled(ctx, level) {
		logger.Log(ctx, level, msg, args...)
	}
}

func (l *Logger) Debug(msg string, args ...any) {
	l.log(context.Background(), LevelDebug, msg, args...)
}
func (l *Logger) Info(msg string, args ...any) { l.log(context.Background(), LevelInfo, msg, args...) }
func (l *Logger) Warn(msg string, args ...any) { l.log(context.Background(), LevelWarn, msg, args...) }
func (l *Logger) Error(msg string, args ...any) {
	l.log(context.Background(), LevelError, msg, args...)
}

// LogError logs err under the "error" key. Nil errors are skipped so
// callers can pass the result of Close or Shutdown directly.
func (l *Logger) LogError(err error, msg string, extra ...any) {
	if err == nil {
		return
	}
	l.log(context.Background(), LevelError, msg, append([]any{"error", err.Error()}, extra...)...)
}

// SetLevel changes the minimum level of records written from now on.
func (l *Logger) SetLevel(level Level) error {
	if l.wrap {
		return ErrLevelFixed
	}
	l.level.Set(level)
	return nil
}

// Level reports the current minimum level.
func (l *Logger) Level() Level { return l.level.Level() }

// Shutdown drops all later records and syncs the output if it is a file.
func (l *Logger) Shutdown(context.Context) error {
	l.closed.Store(true)
	if f, ok := l.out.(interface{ Sync() error }); ok && !l.wrap {
		return f.Sync()
	}
	return nil
}
