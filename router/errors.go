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

package router

import (
	"errors"

	"merb.dev/core/router/route"
)

// Configuration errors returned by Prepare, Append and Prepend wrap one of
// these in a *ConfigError.
var (
	ErrInvalidTemplate    = route.ErrInvalidTemplate
	ErrInvalidCondition   = route.ErrInvalidCondition
	ErrUnknownPlaceholder = route.ErrUnknownPlaceholder
	ErrGroupOutOfRange    = route.ErrGroupOutOfRange
	ErrDuplicateRouteName = route.ErrDuplicateRouteName
	ErrEmptyName          = route.ErrEmptyName
)

// Generation errors returned by Generate and GenerateDefault wrap one of
// these in a *GenerationError.
var (
	ErrRouteNotFound          = route.ErrRouteNotFound
	ErrMissingRouteParameter  = route.ErrMissingRouteParameter
	ErrConditionUnsatisfied   = route.ErrConditionUnsatisfied
	ErrRegexpRoute            = route.ErrRegexpRoute
	ErrUnconvertibleValue     = route.ErrUnconvertibleValue
	ErrControllerNotSpecified = route.ErrControllerNotSpecified
	ErrActionNotSpecified     = route.ErrActionNotSpecified
)

var (
	// ErrNilDefinition indicates that Prepare, Append or Prepend was called without a definition function.
	ErrNilDefinition = errors.New("route definition function is nil")

	// ErrEmptyDefaultKey indicates a root default with an empty key.
	ErrEmptyDefaultKey = errors.New("root default key must be non-empty")
)

// ConfigError describes a malformed route definition.
type ConfigError = route.ConfigError

// GenerationError describes a failure to build a URL.
type GenerationError = route.GenerationError
