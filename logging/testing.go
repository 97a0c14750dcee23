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
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

// LogEntry represents a parsed log entry for testing.
type LogEntry struct {
	Level   string
	Message string
	Attrs   map[string]any
}

// Buffer is a concurrency-safe in-memory log sink.
type Buffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *Buffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

// String returns the buffered output.
func (b *Buffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

// Reset discards the buffered output.
func (b *Buffer) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.buf.Reset()
}

func (b *Buffer) bytes() []byte {
	b.mu.Lock()
	defer b.mu.Unlock()
	return bytes.Clone(b.buf.Bytes())
}

// ParseJSONLogEntries parses JSON log lines into [LogEntry] values.
func ParseJSONLogEntries(data []byte) ([]LogEntry, error) {
	var entries []LogEntry
	scanner := bufio.NewScanner(bytes.NewReader(data))
	for scanner.Scan() {
		var raw map[string]any
		if err := json.Unmarshal(scanner.Bytes(), &raw); err != nil {
			return nil, err
		}
		le := LogEntry{Attrs: make(map[string]any)}
		le.Message, _ = raw["msg"].(string)
		le.Level, _ = raw["level"].(string)
		for k, v := range raw {
			if k != "time" && k != "level" && k != "msg" {
				le.Attrs[k] = v
			}
		}
		entries = append(entries, le)
	}
	return entries, scanner.Err()
}

// TestHelper provides utilities for testing with the logging package.
type TestHelper struct {
	Logger *Logger
	Buffer *Buffer
}

// NewTestHelper creates a [TestHelper] with in-memory JSON logging at debug
// level. Additional options are applied after the defaults.
func NewTestHelper(t *testing.T, opts ...Option) *TestHelper {
	t.Helper()

	buf := &Buffer{}
	all := append([]Option{
		WithFormat(FormatJSON),
		WithOutput(buf),
		WithLevel(LevelDebug),
	}, opts...)

	logger, err := New(all...)
	require.NoError(t, err)

	return &TestHelper{Logger: logger, Buffer: buf}
}

// Logs returns all parsed log entries.
func (th *TestHelper) Logs() ([]LogEntry, error) {
	return ParseJSONLogEntries(th.Buffer.bytes())
}

// LastLog returns the most recent log entry.
func (th *TestHelper) LastLog() (*LogEntry, error) {
	entries, err := th.Logs()
	if err != nil {
		return nil, err
	}
	if len(entries) == 0 {
		return nil, errors.New("no log entries found")
	}
	return &entries[len(entries)-1], nil
}

// ContainsLog reports whether any entry has the given message.
func (th *TestHelper) ContainsLog(msg string) bool {
	entries, err := th.Logs()
	if err != nil {
		return false
	}
	for _, e := range entries {
		if e.Message == msg {
			return true
		}
	}
	return false
}

// CountLevel returns the number of entries at level ("DEBUG", "INFO", ...).
func (th *TestHelper) CountLevel(level string) int {
	entries, err := th.Logs()
	if err != nil {
		return 0
	}
	n := 0
	for _, e := range entries {
		if e.Level == level {
			n++
		}
	}
	return n
}

// Reset clears the buffer.
func (th *TestHelper) Reset() {
	th.Buffer.Reset()
}

// AssertLog fails t unless an entry with level, msg and attrs exists.
// Attribute values are compared by their fmt.Sprint form, so JSON numbers
// match Go ints.
func (th *TestHelper) AssertLog(t *testing.T, level, msg string, attrs map[string]any) {
	t.Helper()

	entries, err := th.Logs()
	require.NoError(t, err, "failed to parse logs")

	for _, e := range entries {
		if e.Level == level && e.Message == msg && attrsMatch(e.Attrs, attrs) {
			return
		}
	}
	t.Errorf("no log entry with level=%s msg=%q attrs=%v", level, msg, attrs)
}

func attrsMatch(actual, expected map[string]any) bool {
	for k, want := range expected {
		got, ok := actual[k]
		if !ok {
			return false
		}
		if f, isFloat := got.(float64); isFloat && f == float64(int64(f)) {
			got = int64(f)
		}
		if fmt.Sprint(got) != fmt.Sprint(want) {
			return false
		}
	}
	return true
}
