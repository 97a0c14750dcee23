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

// Package segment parses path templates and converts them to and from
// regular expressions.
//
// A template mixes literal text with named placeholders and optional groups:
//
//	/users/:id(.:format)
//	/:controller(/:action(/:id))
//
// Compile produces regular expression source plus a slot table mapping each
// placeholder to its capture group. Render performs the inverse, filling
// placeholders from a resolver to build a path.
package segment
