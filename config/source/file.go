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
	"fmt"
	"os"

	"merb.dev/core/config/codec"
)

// File loads a route document from a file path or from byte content.
type File struct {
	path    string
	data    []byte
	decoder codec.Decoder
}

// NewFile creates a File that reads path on every Load.
func NewFile(path string, decoder codec.Decoder) *File {
	return &File{path: path, decoder: decoder}
}

// NewFileContent creates a File that decodes data on every Load.
// This is useful for embedded route files.
func NewFileContent(data []byte, decoder codec.Decoder) *File {
	return &File{data: data, decoder: decoder}
}

// Load reads and decodes the document.
//
// Errors:
//   - Returns error if the file cannot be read (NewFile only)
//   - Returns error if decoding fails
func (f *File) Load(context.Context) (map[string]any, error) {
	data := f.data
	if f.path != "" {
		var err error
		if data, err = os.ReadFile(f.path); err != nil {
			return nil, fmt.Errorf("failed to read file: %w", err)
		}
	}

	var doc map[string]any
	if err := f.decoder.Decode(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to decode file: %w", err)
	}
	return doc, nil
}

// String returns the file path, or "content" for byte sources.
func (f *File) String() string {
	if f.path == "" {
		return "content"
	}
	return f.path
}
