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
	"sync/atomic"

	"github.com/hashicorp/consul/api"

	"merb.dev/core/config/codec"
)

// ConsulKV is the part of the Consul KV API used by [Consul].
type ConsulKV interface {
	Get(key string, q *api.QueryOptions) (*api.KVPair, *api.QueryMeta, error)
}

// Consul loads a route document stored under one key of Consul's
// key-value store.
//
// The default client is configured from the environment:
//   - CONSUL_HTTP_ADDR: the Consul address (e.g., "http://localhost:8500")
//   - CONSUL_HTTP_TOKEN: the ACL token (optional)
type Consul struct {
	kv        ConsulKV
	path      string
	decoder   codec.Decoder
	lastIndex atomic.Uint64
}

// NewConsul creates a Consul source for the key path. If kv is nil, the
// KV endpoint of a client built from api.DefaultConfig is used.
func NewConsul(path string, decoder codec.Decoder, kv ConsulKV) (*Consul, error) {
	if kv == nil {
		client, err := api.NewClient(api.DefaultConfig())
		if err != nil {
			return nil, fmt.Errorf("failed to create consul client: %w", err)
		}
		kv = client.KV()
	}
	return &Consul{kv: kv, path: path, decoder: decoder}, nil
}

// Load fetches and decodes the key. A missing key yields an empty document.
//
// Errors:
//   - Returns error if the Consul query fails
//   - Returns error if decoding the value fails
func (c *Consul) Load(ctx context.Context) (map[string]any, error) {
	pair, meta, err := c.kv.Get(c.path, (&api.QueryOptions{}).WithContext(ctx))
	if err != nil {
		return nil, fmt.Errorf("failed to get consul key: %w", err)
	}
	if meta != nil {
		c.lastIndex.Store(meta.LastIndex)
	}
	if pair == nil {
		return map[string]any{}, nil
	}

	var doc map[string]any
	if err := c.decoder.Decode(pair.Value, &doc); err != nil {
		return nil, fmt.Errorf("failed to decode consul value: %w", err)
	}
	return doc, nil
}

// LastIndex returns the Consul index observed by the last Load.
func (c *Consul) LastIndex() uint64 {
	return c.lastIndex.Load()
}

// String returns the Consul key.
func (c *Consul) String() string {
	return "consul:" + c.path
}
