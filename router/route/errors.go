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

package route

import (
	"errors"
	"fmt"
	"strings"
)

// Configuration errors. These surface from Router.Prepare wrapped in a *ConfigError.
var (
	// ErrInvalidTemplate indicates a path or param template that does not parse.
	ErrInvalidTemplate = errors.New("invalid template")

	// ErrInvalidCondition indicates a condition value of an unsupported type or
	// a regular expression that does not compile.
	ErrInvalidCondition = errors.New("invalid condition")

	// ErrUnknownPlaceholder indicates a reference to a placeholder or condition
	// key that the route does not declare.
	ErrUnknownPlaceholder = errors.New("unknown placeholder")

	// ErrGroupOutOfRange indicates a capture reference beyond the groups of its condition.
	ErrGroupOutOfRange = errors.New("capture group out of range")

	// ErrDuplicateRouteName indicates two routes registered under one name.
	ErrDuplicateRouteName = errors.New("duplicate route name")

	// ErrEmptyName indicates an empty route, namespace or resource name.
	ErrEmptyName = errors.New("empty name")
)

// Generation errors. These surface from Generate wrapped in a *GenerationError.
var (
	// ErrRouteNotFound indicates that no route is registered under the requested name.
	ErrRouteNotFound = errors.New("route not found")

	// ErrMissingRouteParameter indicates a required placeholder with no value.
	ErrMissingRouteParameter = errors.New("missing route parameter")

	// ErrConditionUnsatisfied indicates a value rejected by a placeholder restriction.
	ErrConditionUnsatisfied = errors.New("route condition not satisfied")

	// ErrRegexpRoute indicates a route whose path is a raw regular expression.
	ErrRegexpRoute = errors.New("cannot generate a path for a regexp route")

	// ErrUnconvertibleValue indicates a value with no string form.
	ErrUnconvertibleValue = errors.New("cannot convert value to a path segment")

	// ErrControllerNotSpecified indicates default-route generation without a controller.
	ErrControllerNotSpecified = errors.New("controller not specified")

	// ErrActionNotSpecified indicates default-route generation without an action.
	ErrActionNotSpecified = errors.New("action not specified")
)

// ConfigError describes a malformed route definition.
type ConfigError struct {
	Path string // display form of the route path, if known
	Key  string // condition or param key involved, if any
	Err  error
}

// Error implements the error interface.
func (e *ConfigError) Error() string {
	var b strings.Builder
	b.WriteString("route config")
	if e.Path != "" {
		fmt.Fprintf(&b, " %q", e.Path)
	}
	if e.Key != "" {
		fmt.Fprintf(&b, " [%s]", e.Key)
	}
	b.WriteString(": ")
	b.WriteString(e.Err.Error())
	return b.String()
}

// Unwrap returns the underlying error.
func (e *ConfigError) Unwrap() error {
	return e.Err
}

// GenerationError describes a failure to build a URL.
type GenerationError struct {
	Name  string // route name, empty for unnamed or default routes
	Param string // placeholder involved, if any
	Err   error
}

// Error implements the error interface.
func (e *GenerationError) Error() string {
	var b strings.Builder
	b.WriteString("generate")
	if e.Name != "" {
		fmt.Fprintf(&b, " %q", e.Name)
	}
	if e.Param != "" {
		fmt.Fprintf(&b, " [%s]", e.Param)
	}
	b.WriteString(": ")
	b.WriteString(e.Err.Error())
	return b.String()
}

// Unwrap returns the underlying error.
func (e *GenerationError) Unwrap() error {
	return e.Err
}

func configErr(path, key string, err error) *ConfigError {
	return &ConfigError{Path: path, Key: key, Err: err}
}
