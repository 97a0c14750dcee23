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
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/cast"

	"merb.dev/core/router/segment"
)

// Document is a decoded route definition document.
type Document struct {
	Defaults      map[string]string `mapstructure:"defaults" json:"defaults,omitempty" yaml:"defaults,omitempty" toml:"defaults,omitempty"`
	DefaultRoutes bool              `mapstructure:"default_routes" json:"default_routes,omitempty" yaml:"default_routes,omitempty" toml:"default_routes,omitempty"`
	Routes        []RouteSpec       `mapstructure:"routes" json:"routes,omitempty" yaml:"routes,omitempty" toml:"routes,omitempty" validate:"dive"`
	Namespaces    []NamespaceSpec   `mapstructure:"namespaces" json:"namespaces,omitempty" yaml:"namespaces,omitempty" toml:"namespaces,omitempty" validate:"dive"`
	Resources     []ResourceSpec    `mapstructure:"resources" json:"resources,omitempty" yaml:"resources,omitempty" toml:"resources,omitempty" validate:"dive"`
}

// RouteSpec describes one route.
//
// Conditions values are a template string, a list of alternative strings,
// or a map {"regexp": "..."}. Where maps a placeholder to the regular
// expression it must match.
type RouteSpec struct {
	Path       string            `mapstructure:"path" json:"path" yaml:"path" toml:"path" validate:"required"`
	Method     string            `mapstructure:"method" json:"method,omitempty" yaml:"method,omitempty" toml:"method,omitempty" validate:"omitempty,http_method"`
	Name       string            `mapstructure:"name" json:"name,omitempty" yaml:"name,omitempty" toml:"name,omitempty" validate:"omitempty,identifier"`
	To         map[string]string `mapstructure:"to" json:"to,omitempty" yaml:"to,omitempty" toml:"to,omitempty" validate:"dive,keys,identifier,endkeys"`
	Defaults   map[string]string `mapstructure:"defaults" json:"defaults,omitempty" yaml:"defaults,omitempty" toml:"defaults,omitempty" validate:"dive,keys,identifier,endkeys"`
	Conditions map[string]any    `mapstructure:"conditions" json:"conditions,omitempty" yaml:"conditions,omitempty" toml:"conditions,omitempty"`
	Where      map[string]string `mapstructure:"where" json:"where,omitempty" yaml:"where,omitempty" toml:"where,omitempty" validate:"dive,keys,identifier,endkeys,regexp"`
}

// NamespaceSpec groups routes and resources under a controller namespace.
// A nil Path uses "/name"; an empty Path adds no path prefix.
type NamespaceSpec struct {
	Name       string          `mapstructure:"name" json:"name" yaml:"name" toml:"name" validate:"required,identifier"`
	Path       *string         `mapstructure:"path" json:"path,omitempty" yaml:"path,omitempty" toml:"path,omitempty"`
	Routes     []RouteSpec     `mapstructure:"routes" json:"routes,omitempty" yaml:"routes,omitempty" toml:"routes,omitempty" validate:"dive"`
	Resources  []ResourceSpec  `mapstructure:"resources" json:"resources,omitempty" yaml:"resources,omitempty" toml:"resources,omitempty" validate:"dive"`
	Namespaces []NamespaceSpec `mapstructure:"namespaces" json:"namespaces,omitempty" yaml:"namespaces,omitempty" toml:"namespaces,omitempty" validate:"dive"`
}

// ResourceSpec describes a RESTful resource. Singleton selects the
// singular resource form (no index, no id); Member and Collection map
// extra action names to HTTP methods.
type ResourceSpec struct {
	Name       string            `mapstructure:"name" json:"name" yaml:"name" toml:"name" validate:"required,identifier"`
	Singleton  bool              `mapstructure:"singleton" json:"singleton,omitempty" yaml:"singleton,omitempty" toml:"singleton,omitempty"`
	Singular   string            `mapstructure:"singular" json:"singular,omitempty" yaml:"singular,omitempty" toml:"singular,omitempty" validate:"omitempty,identifier"`
	Controller string            `mapstructure:"controller" json:"controller,omitempty" yaml:"controller,omitempty" toml:"controller,omitempty"`
	Path       string            `mapstructure:"path" json:"path,omitempty" yaml:"path,omitempty" toml:"path,omitempty"`
	Keys       []string          `mapstructure:"keys" json:"keys,omitempty" yaml:"keys,omitempty" toml:"keys,omitempty" validate:"dive,identifier"`
	Member     map[string]string `mapstructure:"member" json:"member,omitempty" yaml:"member,omitempty" toml:"member,omitempty" validate:"dive,keys,identifier,endkeys,http_method"`
	Collection map[string]string `mapstructure:"collection" json:"collection,omitempty" yaml:"collection,omitempty" toml:"collection,omitempty" validate:"dive,keys,identifier,endkeys,http_method"`
	Resources  []ResourceSpec    `mapstructure:"resources" json:"resources,omitempty" yaml:"resources,omitempty" toml:"resources,omitempty" validate:"dive"`
}

// methods accepted by the http_method validation. "any" and "*" mean no
// method condition.
var methods = map[string]bool{
	"GET": true, "HEAD": true, "POST": true, "PUT": true, "PATCH": true,
	"DELETE": true, "OPTIONS": true, "ANY": true, "*": true,
}

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := fld.Tag.Get("mapstructure")
		if name == "" {
			return fld.Name
		}
		return name
	})

	// Registration only fails for empty tags or nil functions.
	_ = v.RegisterValidation("identifier", func(fl validator.FieldLevel) bool {
		return segment.IsName(fl.Field().String())
	})
	_ = v.RegisterValidation("http_method", func(fl validator.FieldLevel) bool {
		for _, m := range strings.Split(fl.Field().String(), "|") {
			if !methods[strings.ToUpper(strings.TrimSpace(m))] {
				return false
			}
		}
		return true
	})
	_ = v.RegisterValidation("regexp", func(fl validator.FieldLevel) bool {
		_, err := regexp.Compile(fl.Field().String())
		return err == nil
	})
	return v
}

// validateDocument runs the struct rules and converts the first failures
// into field errors.
func validateDocument(v *validator.Validate, doc *Document) error {
	err := v.Struct(doc)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return NewError("document", "validate", err)
	}

	errs := make([]error, 0, len(verrs))
	for _, e := range verrs {
		field := e.Namespace()
		if idx := strings.Index(field, "."); idx != -1 {
			field = field[idx+1:]
		}
		errs = append(errs, NewFieldError("document", field, "validate", errors.New(tagMessage(e))))
	}
	return errors.Join(errs...)
}

func tagMessage(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return "is required"
	case "identifier":
		return fmt.Sprintf("%q must be a name of letters, digits and underscores", fmt.Sprint(e.Value()))
	case "http_method":
		return fmt.Sprintf("%q is not an HTTP method", fmt.Sprint(e.Value()))
	case "regexp":
		return fmt.Sprintf("%q is not a valid regular expression", fmt.Sprint(e.Value()))
	default:
		return fmt.Sprintf("failed validation (%s)", e.Tag())
	}
}

// decodeDocument decodes a merged raw document. Scalars bound to string
// fields are converted with cast, so "id: 5" and "id: '5'" are the same.
func decodeDocument(raw map[string]any) (*Document, error) {
	var doc Document
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName:     "mapstructure",
		Result:      &doc,
		ErrorUnused: true,
		DecodeHook:  mapstructure.ComposeDecodeHookFunc(scalarToStringHook),
	})
	if err != nil {
		return nil, err
	}
	if err := dec.Decode(raw); err != nil {
		return nil, err
	}
	return &doc, nil
}

func scalarToStringHook(from, to reflect.Type, data any) (any, error) {
	if to.Kind() != reflect.String || from.Kind() == reflect.String {
		return data, nil
	}
	switch from.Kind() {
	case reflect.Bool,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return cast.ToStringE(data)
	}
	return data, nil
}

// normalize converts decoder output into the JSON data model: maps keyed
// by strings, []any slices and scalar leaves.
func normalize(v any) (any, error) {
	switch x := v.(type) {
	case nil, string, bool, int, int64, uint64, float64:
		return v, nil
	case map[string]any:
		out := make(map[string]any, len(x))
		for k, val := range x {
			n, err := normalize(val)
			if err != nil {
				return nil, err
			}
			out[k] = n
		}
		return out, nil
	case []any:
		out := make([]any, len(x))
		for i, val := range x {
			n, err := normalize(val)
			if err != nil {
				return nil, err
			}
			out[i] = n
		}
		return out, nil
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Map:
		out := make(map[string]any, rv.Len())
		iter := rv.MapRange()
		for iter.Next() {
			key, err := cast.ToStringE(iter.Key().Interface())
			if err != nil {
				return nil, fmt.Errorf("map key: %w", err)
			}
			n, err := normalize(iter.Value().Interface())
			if err != nil {
				return nil, err
			}
			out[key] = n
		}
		return out, nil
	case reflect.Slice, reflect.Array:
		out := make([]any, rv.Len())
		for i := range rv.Len() {
			n, err := normalize(rv.Index(i).Interface())
			if err != nil {
				return nil, err
			}
			out[i] = n
		}
		return out, nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32:
		return rv.Int(), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32:
		return rv.Uint(), nil
	case reflect.Float32:
		return rv.Float(), nil
	}
	return cast.ToStringE(v)
}
