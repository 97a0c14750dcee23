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

// Package compiler turns finalized routes into programs and matches
// requests against them.
//
// A Program is a small tagged-variant description of one route: the
// conditions to test (literal equality or a regular expression against a
// request attribute), the expressions that build output params from
// literal text and capture groups, the defaults that fill absent params,
// and the deferred functions that may veto or extend a match. Programs are
// built once when the route table is prepared and interpreted per request;
// nothing is generated or evaluated at runtime.
//
// # Ordering
//
// A Matcher walks programs in registration order and returns the first
// match, so earlier routes shadow later ones. For larger tables a
// first-byte index narrows the candidates: programs whose path starts with
// a literal "/x" are bucketed under x, and the bucket is merged with the
// unbucketed programs in index order so shadowing is unchanged.
//
// # Param expressions
//
// Each ParamExpr is a list of parts. Text parts are copied; capture parts
// name one or more (condition, group) references and take the first that
// participated in the match. A param whose capture did not participate is
// left out and may be filled by a default.
//
// # Paths
//
// Request paths are normalized before matching: repeated slashes are
// squeezed and a trailing slash is removed.
package compiler
