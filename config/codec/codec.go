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

// Package codec encodes and decodes route definition documents.
//
// YAML, TOML and JSON codecs are registered at init. Additional formats can
// be added with Register.
package codec

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"slices"
	"strings"
	"sync"

	"github.com/BurntSushi/toml"
	"github.com/goccy/go-yaml"
)

// Type represents a codec type identifier.
type Type string

const (
	TypeYAML Type = "yaml"
	TypeTOML Type = "toml"
	TypeJSON Type = "json"
)

// Encoder converts Go values into encoded bytes.
// Implementations must be safe for concurrent use.
type Encoder interface {
	Encode(v any) ([]byte, error)
}

// Decoder converts encoded bytes into the value pointed to by v.
// Implementations must be safe for concurrent use.
type Decoder interface {
	Decode(data []byte, v any) error
}

// Codec is both an Encoder and a Decoder.
type Codec interface {
	Encoder
	Decoder
}

var (
	mu     sync.RWMutex
	codecs = map[Type]Codec{}
	exts   = map[string]Type{}
)

func init() {
	Register(TypeYAML, YAMLCodec{}, ".yaml", ".yml")
	Register(TypeTOML, TOMLCodec{}, ".toml")
	Register(TypeJSON, JSONCodec{}, ".json")
}

// Register adds c under name and maps the given file extensions to it.
// A later registration replaces an earlier one.
func Register(name Type, c Codec, extensions ...string) {
	mu.Lock()
	defer mu.Unlock()
	codecs[name] = c
	for _, ext := range extensions {
		exts[strings.ToLower(ext)] = name
	}
}

// Get returns the codec registered under name.
func Get(name Type) (Codec, error) {
	mu.RLock()
	defer mu.RUnlock()
	c, ok := codecs[name]
	if !ok {
		return nil, fmt.Errorf("codec not found for type: %s", name)
	}
	return c, nil
}

// Detect returns the codec type for the extension of path.
func Detect(path string) (Type, error) {
	ext := strings.ToLower(filepath.Ext(path))
	mu.RLock()
	defer mu.RUnlock()
	if t, ok := exts[ext]; ok {
		return t, nil
	}
	return "", fmt.Errorf("cannot detect format from extension %q", ext)
}

// Types returns the registered codec types in sorted order.
func Types() []Type {
	mu.RLock()
	defer mu.RUnlock()
	types := make([]Type, 0, len(codecs))
	for t := range codecs {
		types = append(types, t)
	}
	slices.Sort(types)
	return types
}

// YAMLCodec encodes and decodes YAML.
type YAMLCodec struct{}

func (YAMLCodec) Encode(v any) ([]byte, error)    { return yaml.Marshal(v) }
func (YAMLCodec) Decode(data []byte, v any) error { return yaml.Unmarshal(data, v) }

// TOMLCodec encodes and decodes TOML.
type TOMLCodec struct{}

func (TOMLCodec) Encode(v any) ([]byte, error)    { return toml.Marshal(v) }
func (TOMLCodec) Decode(data []byte, v any) error { return toml.Unmarshal(data, v) }

// JSONCodec encodes indented JSON and decodes JSON.
type JSONCodec struct{}

func (JSONCodec) Encode(v any) ([]byte, error)    { return json.MarshalIndent(v, "", "  ") }
func (JSONCodec) Decode(data []byte, v any) error { return json.Unmarshal(data, v) }
