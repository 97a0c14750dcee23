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

// merb-routes loads route definition files and inspects the resulting
// route table.
//
// # Usage
//
//	merb-routes [flags] list
//	merb-routes [flags] match METHOD PATH [attr=value...]
//	merb-routes [flags] generate NAME [key=value...]
//	merb-routes [flags] generate - [key=value...]   # default route
//	merb-routes [flags] export yaml|toml|json
//	merb-routes version
//
// Route files are given with -f and may be repeated; later files are
// merged over earlier ones. -consul adds a document stored in Consul,
// addressed through CONSUL_HTTP_ADDR.
//
// # Exit Codes
//
//   - 0: success
//   - 1: no route matched, or generation failed
//   - 2: usage or configuration error
package main

import (
	"os"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}
