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

package segment

import (
	"errors"
	"fmt"
)

// Sentinel errors for template parsing, compilation and rendering.
var (
	// ErrUnbalancedGroup is returned when parentheses do not pair up.
	ErrUnbalancedGroup = errors.New("unbalanced optional group")

	// ErrEmptyGroup is returned for "()" with no content.
	ErrEmptyGroup = errors.New("empty optional group")

	// ErrTrailingEscape is returned when a template ends with a backslash.
	ErrTrailingEscape = errors.New("trailing escape character")

	// ErrInvalidPattern is returned when a restriction is not a valid regular expression.
	ErrInvalidPattern = errors.New("invalid placeholder pattern")

	// ErrMissingValue is returned by Render when a required placeholder has no value.
	ErrMissingValue = errors.New("missing placeholder value")
)

// SyntaxError describes a malformed template.
type SyntaxError struct {
	Template string
	Offset   int
	Err      error
}

// Error implements the error interface.
func (e *SyntaxError) Error() string {
	return fmt.Sprintf("segment: %v at offset %d in %q", e.Err, e.Offset, e.Template)
}

// Unwrap returns the underlying error.
func (e *SyntaxError) Unwrap() error {
	return e.Err
}

// MissingError names the placeholder that Render could not resolve.
type MissingError struct {
	Name string
}

// Error implements the error interface.
func (e *MissingError) Error() string {
	return fmt.Sprintf("segment: %v: %s", ErrMissingValue, e.Name)
}

// Unwrap returns ErrMissingValue.
func (e *MissingError) Unwrap() error {
	return ErrMissingValue
}
