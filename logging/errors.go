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

package logging

import "errors"

// Configuration errors returned by New, plus the SetLevel refusal.
var (
	ErrNilLogger     = errors.New("logging: slog logger is nil")
	ErrNilOutput     = errors.New("logging: output writer is nil")
	ErrUnknownFormat = errors.New("logging: unknown format")
	ErrInvalidLevel  = errors.New("logging: invalid level")

	// ErrLevelFixed is returned by [Logger.SetLevel] for a logger built
	// with [WithSlogLogger], whose level belongs to the caller.
	ErrLevelFixed = errors.New("logging: level of an external logger cannot be changed")
)
