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

package config

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"os"
	"sync"

	"dario.cat/mergo"
	"github.com/go-playground/validator/v10"

	"merb.dev/core/config/codec"
	"merb.dev/core/config/source"
)

// Source provides a raw route document.
type Source interface {
	// Load returns the decoded document. A nil map is treated as empty.
	Load(ctx context.Context) (map[string]any, error)
}

// Option configures a Config.
type Option func(c *Config) error

// listKeys hold definition lists. Later sources append to them instead of
// replacing them, so routes keep the order in which sources were given.
var listKeys = []string{"routes", "namespaces", "resources"}

// Config loads route definitions from one or more sources, merges them,
// validates the result and applies it to a router.
//
// Config is safe for concurrent use by multiple goroutines.
type Config struct {
	sources          []Source
	customValidators []func(map[string]any) error
	validate         *validator.Validate

	mu  sync.RWMutex
	raw map[string]any
	doc *Document
}

// WithSource adds a source.
func WithSource(src Source) Option {
	return func(c *Config) error {
		if src == nil {
			return errors.New("source cannot be nil")
		}
		c.sources = append(c.sources, src)
		return nil
	}
}

// WithFile adds a route file. The format is detected from the extension
// (.yaml, .yml, .toml, .json). Paths support ${VAR} expansion.
//
//	cfg := config.MustNew(
//	    config.WithFile("routes.yaml"),
//	    config.WithFile("${APP_DIR}/routes.local.toml"),
//	)
func WithFile(path string) Option {
	return func(c *Config) error {
		path = os.ExpandEnv(path)
		format, err := codec.Detect(path)
		if err != nil {
			return NewError("file-source", "detect-format", err)
		}
		return WithFileAs(path, format)(c)
	}
}

// WithFileAs adds a route file with an explicit format.
func WithFileAs(path string, codecType codec.Type) Option {
	return func(c *Config) error {
		dec, err := codec.Get(codecType)
		if err != nil {
			return NewError("file-source", "get-decoder", err)
		}
		c.sources = append(c.sources, source.NewFile(os.ExpandEnv(path), dec))
		return nil
	}
}

// WithContent adds an in-memory route document, typically embedded.
func WithContent(data []byte, codecType codec.Type) Option {
	return func(c *Config) error {
		dec, err := codec.Get(codecType)
		if err != nil {
			return NewError("content-source", "get-decoder", err)
		}
		c.sources = append(c.sources, source.NewFileContent(data, dec))
		return nil
	}
}

// WithConsul adds a document stored under a Consul key. The format is
// detected from the key's extension. The option does nothing when
// CONSUL_HTTP_ADDR is not set.
func WithConsul(path string) Option {
	return func(c *Config) error {
		if os.Getenv("CONSUL_HTTP_ADDR") == "" {
			return nil
		}
		path = os.ExpandEnv(path)
		format, err := codec.Detect(path)
		if err != nil {
			return NewError("consul-source", "detect-format", err)
		}
		return WithConsulAs(path, format)(c)
	}
}

// WithConsulAs adds a Consul document with an explicit format. Unlike
// WithConsul it always creates the client.
func WithConsulAs(path string, codecType codec.Type) Option {
	return withConsul(path, codecType, nil)
}

// WithConsulKV adds a Consul document read through kv.
func WithConsulKV(path string, codecType codec.Type, kv source.ConsulKV) Option {
	return withConsul(path, codecType, kv)
}

func withConsul(path string, codecType codec.Type, kv source.ConsulKV) Option {
	return func(c *Config) error {
		dec, err := codec.Get(codecType)
		if err != nil {
			return NewError("consul-source", "get-decoder", err)
		}
		src, err := source.NewConsul(os.ExpandEnv(path), dec, kv)
		if err != nil {
			return NewError("consul-source", "create-client", err)
		}
		c.sources = append(c.sources, src)
		return nil
	}
}

// WithValidator adds a function run on the merged raw document after
// schema validation and before decoding.
func WithValidator(fn func(map[string]any) error) Option {
	return func(c *Config) error {
		c.customValidators = append(c.customValidators, fn)
		return nil
	}
}

// New creates a Config. Option errors are joined; the partially
// configured Config is returned along with them.
func New(options ...Option) (*Config, error) {
	var errs error
	c := &Config{validate: newValidator()}

	for _, option := range options {
		if option == nil {
			continue
		}
		if err := option(c); err != nil {
			errs = errors.Join(errs, err)
		}
	}
	return c, errs //nolint:nilnil // partial config is returned with the error
}

// MustNew is like New but panics on error.
func MustNew(options ...Option) *Config {
	cfg, err := New(options...)
	if err != nil {
		panic(fmt.Sprintf("config: failed to create config: %v", err))
	}
	return cfg
}

func (c *Config) loadSources(ctx context.Context) (map[string]any, error) {
	merged := make(map[string]any)
	lists := make(map[string][]any, len(listKeys))

	for i, src := range c.sources {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		name := fmt.Sprintf("source[%d]", i)
		conf, err := src.Load(ctx)
		if err != nil {
			return nil, NewError(name, "load", err)
		}

		n, err := normalize(conf)
		if err != nil {
			return nil, NewError(name, "normalize", err)
		}
		values, ok := n.(map[string]any)
		if !ok {
			values = map[string]any{}
		}

		for _, key := range listKeys {
			v, present := values[key]
			if !present {
				continue
			}
			delete(values, key)
			items, ok := v.([]any)
			if !ok {
				return nil, NewFieldError(name, key, "merge", fmt.Errorf("expected a list, got %T", v))
			}
			lists[key] = append(lists[key], items...)
		}

		if err := mergo.Map(&merged, values, mergo.WithOverride); err != nil {
			return nil, NewError(name, "merge", err)
		}
	}

	for key, items := range lists {
		merged[key] = items
	}
	return merged, nil
}

// Load reads every source in order, merges them, validates the result
// and decodes it. On failure the previously loaded document is kept.
//
// Errors:
//   - [ErrNilContext] if ctx is nil
//   - [ErrNoSources] if no source was configured
//   - [*Error] if a source fails, the schema or a validator rejects the
//     document, or decoding fails
func (c *Config) Load(ctx context.Context) error {
	if ctx == nil {
		return ErrNilContext
	}
	if len(c.sources) == 0 {
		return ErrNoSources
	}

	raw, err := c.loadSources(ctx)
	if err != nil {
		return err
	}

	if err := validateSchema(raw); err != nil {
		return err
	}

	for i, fn := range c.customValidators {
		if fn == nil {
			continue
		}
		var verr error
		func() {
			defer func() {
				if r := recover(); r != nil {
					verr = fmt.Errorf("validator panic: %v", r)
				}
			}()
			verr = fn(raw)
		}()
		if verr != nil {
			return NewError(fmt.Sprintf("custom-validator[%d]", i), "validate", verr)
		}
	}

	doc, err := decodeDocument(raw)
	if err != nil {
		return NewError("document", "decode", err)
	}
	if err := validateDocument(c.validate, doc); err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.raw = raw
	c.doc = doc
	return nil
}

// MustLoad is like Load but panics on error.
func (c *Config) MustLoad(ctx context.Context) {
	if err := c.Load(ctx); err != nil {
		panic(err)
	}
}

// Document returns the last loaded document, or nil before a successful
// Load. The document must not be modified.
func (c *Config) Document() *Document {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.doc
}

// Values returns a copy of the merged raw document.
func (c *Config) Values() map[string]any {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return maps.Clone(c.raw)
}

// Encode renders the loaded document in the given format.
func (c *Config) Encode(codecType codec.Type) ([]byte, error) {
	doc := c.Document()
	if doc == nil {
		return nil, ErrNotLoaded
	}
	enc, err := codec.Get(codecType)
	if err != nil {
		return nil, NewError("document", "encode", err)
	}
	data, err := enc.Encode(doc)
	if err != nil {
		return nil, NewError("document", "encode", err)
	}
	return data, nil
}
