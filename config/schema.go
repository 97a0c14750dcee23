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
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

//go:embed schema.json
var schemaJSON []byte

const schemaURL = "merb-routes.schema.json"

var (
	schemaOnce     sync.Once
	compiledSchema *jsonschema.Schema
	errSchema      error
)

// Schema returns the JSON Schema that raw route documents are checked
// against before decoding.
func Schema() []byte {
	return bytes.Clone(schemaJSON)
}

func loadSchema() (*jsonschema.Schema, error) {
	schemaOnce.Do(func() {
		doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(schemaJSON))
		if err != nil {
			errSchema = fmt.Errorf("parse schema: %w", err)
			return
		}
		c := jsonschema.NewCompiler()
		c.AssertFormat()
		if err := c.AddResource(schemaURL, doc); err != nil {
			errSchema = fmt.Errorf("add schema: %w", err)
			return
		}
		compiledSchema, errSchema = c.Compile(schemaURL)
	})
	return compiledSchema, errSchema
}

// validateSchema checks a normalized document against the schema and
// reports one field error per failing location.
func validateSchema(raw map[string]any) error {
	sch, err := loadSchema()
	if err != nil {
		return NewError("json-schema", "compile", err)
	}

	err = sch.Validate(raw)
	if err == nil {
		return nil
	}

	var verr *jsonschema.ValidationError
	if !errors.As(err, &verr) {
		return NewError("json-schema", "validate", err)
	}

	var errs []error
	for _, leaf := range leaves(verr) {
		field := strings.Join(leaf.InstanceLocation, ".")
		errs = append(errs, NewFieldError("json-schema", field, "validate", errors.New(leaf.Error())))
	}
	if len(errs) == 0 {
		return NewError("json-schema", "validate", err)
	}
	return errors.Join(errs...)
}

func leaves(e *jsonschema.ValidationError) []*jsonschema.ValidationError {
	if len(e.Causes) == 0 {
		return []*jsonschema.ValidationError{e}
	}
	var out []*jsonschema.ValidationError
	for _, c := range e.Causes {
		out = append(out, leaves(c)...)
	}
	return out
}
