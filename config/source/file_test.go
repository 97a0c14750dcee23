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

package source

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"merb.dev/core/config/codec"
)

func TestFile_LoadPath(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "routes.yaml")
	require.NoError(t, os.WriteFile(path, []byte("routes:\n  - path: /about\n"), 0o600))

	f := NewFile(path, codec.YAMLCodec{})
	doc, err := f.Load(context.Background())
	require.NoError(t, err)
	assert.Len(t, doc["routes"], 1)
	assert.Equal(t, path, f.String())
}

func TestFile_LoadContent(t *testing.T) {
	t.Parallel()

	f := NewFileContent([]byte(`{"default_routes": true}`), codec.JSONCodec{})
	doc, err := f.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, true, doc["default_routes"])
	assert.Equal(t, "content", f.String())
}

func TestFile_Errors(t *testing.T) {
	t.Parallel()

	_, err := NewFile(filepath.Join(t.TempDir(), "missing.yaml"), codec.YAMLCodec{}).Load(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read file")

	_, err = NewFileContent([]byte(`{"routes": [`), codec.JSONCodec{}).Load(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to decode file")
}
