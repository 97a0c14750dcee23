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

package compiler

// testRequest is a Request backed by plain values for tests.
type testRequest struct {
	path   string
	method string
	attrs  map[string]string
}

func (r testRequest) Path() string   { return r.path }
func (r testRequest) Method() string { return r.method }

func (r testRequest) Attr(key string) (string, bool) {
	v, ok := r.attrs[key]
	return v, ok
}

func get(path string) testRequest {
	return testRequest{path: path, method: "GET"}
}
