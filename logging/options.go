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
	"io"
	"log/slog"
)

// Option configures a Logger.
type Option func(*Logger)

// WithFormat selects the record format. The CLI passes its -log-format
// flag straight through, so unknown values surface as ErrUnknownFormat.
func WithFormat(f Format) Option {
	return func(l *Logger) { l.format = f }
}

// WithConsole is shorthand for WithFormat(FormatConsole).
func WithConsole() Option { return WithFormat(FormatConsole) }

// WithText is shorthand for WithFormat(FormatText).
func WithText() Option { return WithFormat(FormatText) }

// WithOutput sets where records are written. Defaults to stderr.
func WithOutput(w io.Writer) Option {
	return func(l *Logger) { l.out = w }
}

// WithLevel sets the initial minimum level.
func WithLevel(level Level) Option {
	return func(l *Logger) { l.level.Set(level) }
}

// WithServiceName tags every record with service=name.
func WithServiceName(name string) Option {
	return func(l *Logger) { l.service = name }
}

// WithServiceVersion tags every record with version=v.
func WithServiceVersion(v string) Option {
	return func(l *Logger) { l.version = v }
}

// WithReplaceAttr runs fn on each attribute after redaction. Returning a
// zero [slog.Attr] drops the attribute.
func WithReplaceAttr(fn func(groups []string, a slog.Attr) slog.Attr) Option {
	return func(l *Logger) { l.replace = fn }
}

// WithSlogLogger wraps an existing logger. Format, output and level
// options are ignored and SetLevel returns ErrLevelFixed.
func WithSlogLogger(logger *slog.Logger) Option {
	return func(l *Logger) {
		l.external = logger
		l.wrap = true
	}
}
