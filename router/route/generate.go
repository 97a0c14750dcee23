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
	"net/url"
	"reflect"
	"strings"

	"github.com/spf13/cast"

	"merb.dev/core/router/segment"
)

// Param is implemented by objects that have a canonical identifier,
// used for the "id" placeholder when the object is passed to Generate.
type Param interface {
	ToParam() string
}

// SegmentValuer is implemented by objects that supply values for named
// placeholders when passed to Generate.
type SegmentValuer interface {
	SegmentValue(name string) (any, bool)
}

// Generate builds a path for the route.
//
// params is nil, a map with string keys, or an object. Each placeholder is
// resolved from params, then fallback, then the object, then the route
// defaults. For maps, a "*_id" placeholder may also be supplied by an "id"
// value implementing SegmentValuer. For objects, "id" uses Param and other
// names use SegmentValuer. A captured controller loses the namespace prefix
// that matching added. Optional groups are only emitted when their placeholders
// come from params. Map entries not consumed by placeholders become the
// query string, except those equal to the route's own fixed params.
func (r *Route) Generate(params any, fallback map[string]any) (string, error) {
	if r.template == nil {
		return "", &GenerationError{Name: r.name, Err: ErrRegexpRoute}
	}

	values, object := normalizeParams(params)
	resolve := func(name string, optional bool) (string, bool, error) {
		v, ok := lookupValue(values, name)
		if !ok && !optional {
			if fv, found := fallback[name]; found && fv != nil {
				v, ok = fv, true
			}
		}
		if !ok && object != nil {
			v, ok = lookupObject(object, name)
		}
		if !ok && !optional {
			if dv, found := r.defaults[name]; found {
				v, ok = dv, true
			}
		}
		if !ok {
			return "", false, nil
		}
		s, err := r.segmentValue(v)
		if err != nil {
			return "", false, &GenerationError{Name: r.name, Param: name, Err: err}
		}
		if name == "controller" && r.controllerPrefix != "" {
			s = strings.TrimPrefix(s, r.controllerPrefix)
		}
		if re, restricted := r.restrictions[name]; restricted && !re.MatchString(s) {
			return "", false, &GenerationError{
				Name:  r.name,
				Param: name,
				Err:   fmt.Errorf("%w: %q does not match %s", ErrConditionUnsatisfied, s, r.patterns[name]),
			}
		}
		return escapeSegment(s), true, nil
	}

	path, used, err := r.template.Render(resolve)
	if err != nil {
		var missing *segment.MissingError
		if errors.As(err, &missing) {
			return "", &GenerationError{Name: r.name, Param: missing.Name, Err: ErrMissingRouteParameter}
		}
		return "", err
	}
	if path == "" {
		path = "/"
	}

	if len(values) == 0 {
		return path, nil
	}
	consumed := make(map[string]bool, len(used))
	for _, n := range used {
		consumed[n] = true
	}
	query := url.Values{}
	for k, v := range values {
		if consumed[k] || v == nil {
			continue
		}
		if err := r.addQuery(query, k, v); err != nil {
			return "", err
		}
	}
	if len(query) > 0 {
		path += "?" + query.Encode()
	}
	return path, nil
}

func (r *Route) addQuery(query url.Values, key string, v any) error {
	switch x := v.(type) {
	case []string:
		for _, s := range x {
			query.Add(key, s)
		}
		return nil
	case []any:
		for _, e := range x {
			s, err := r.segmentValue(e)
			if err != nil {
				return &GenerationError{Name: r.name, Param: key, Err: err}
			}
			query.Add(key, s)
		}
		return nil
	}
	s, err := r.segmentValue(v)
	if err != nil {
		return &GenerationError{Name: r.name, Param: key, Err: err}
	}
	if fixed, ok := r.static[key]; ok && fixed == s {
		return nil
	}
	query.Add(key, s)
	return nil
}

// segmentValue converts a value to its string form using the route's
// identify functions, Param, fmt.Stringer and finally cast.
func (r *Route) segmentValue(v any) (string, error) {
	return convertValue(r.identify, v)
}

func convertValue(identify []IdentifyFunc, v any) (string, error) {
	if s, ok := v.(string); ok {
		return s, nil
	}
	for _, fn := range identify {
		if s, ok := fn(v); ok {
			return s, nil
		}
	}
	switch x := v.(type) {
	case Param:
		return x.ToParam(), nil
	case fmt.Stringer:
		return x.String(), nil
	}
	s, err := cast.ToStringE(v)
	if err != nil {
		return "", fmt.Errorf("%w: %T", ErrUnconvertibleValue, v)
	}
	return s, nil
}

// normalizeParams splits params into a map form or an object form.
func normalizeParams(params any) (map[string]any, any) {
	switch p := params.(type) {
	case nil:
		return nil, nil
	case map[string]any:
		return p, nil
	case Params:
		out := make(map[string]any, len(p))
		for k, v := range p {
			out[k] = v
		}
		return out, nil
	case map[string]string:
		out := make(map[string]any, len(p))
		for k, v := range p {
			out[k] = v
		}
		return out, nil
	}

	rv := reflect.ValueOf(params)
	if rv.Kind() == reflect.Map && rv.Type().Key().Kind() == reflect.String {
		out := make(map[string]any, rv.Len())
		iter := rv.MapRange()
		for iter.Next() {
			out[iter.Key().String()] = iter.Value().Interface()
		}
		return out, nil
	}
	return nil, params
}

func lookupValue(values map[string]any, name string) (any, bool) {
	if values == nil {
		return nil, false
	}
	if v, ok := values[name]; ok && v != nil {
		return v, true
	}
	if strings.HasSuffix(name, "_id") {
		if sv, ok := values["id"].(SegmentValuer); ok {
			return sv.SegmentValue(name)
		}
	}
	return nil, false
}

func lookupObject(object any, name string) (any, bool) {
	if name == "id" {
		if p, ok := object.(Param); ok {
			return p.ToParam(), true
		}
	}
	if sv, ok := object.(SegmentValuer); ok {
		if v, ok := sv.SegmentValue(name); ok {
			return v, true
		}
	}
	if name == "id" {
		return object, true
	}
	return nil, false
}

// escapeSegment escapes a value for use in a path. Slashes are kept so that
// values such as namespaced controllers span segments.
func escapeSegment(s string) string {
	return strings.ReplaceAll(url.PathEscape(s), "%2F", "/")
}

// defaultRouteKeys are the params consumed by GenerateDefault.
var defaultRouteKeys = map[string]bool{"controller": true, "action": true, "id": true, "format": true}

// GenerateDefault builds a path in the conventional
// "/:controller/:action/:id.:format" shape. The path only goes as deep as
// needed: the action is included when an action, id, format or query param
// is present. A format of "current" takes the format from fallback.
// Remaining params become the query string.
func GenerateDefault(params, fallback map[string]any, identify ...IdentifyFunc) (string, error) {
	str := func(m map[string]any, key string) (string, bool, error) {
		v, ok := m[key]
		if !ok || v == nil {
			return "", false, nil
		}
		s, err := convertValue(identify, v)
		if err != nil {
			return "", false, &GenerationError{Name: "default", Param: key, Err: err}
		}
		return s, s != "", nil
	}
	pick := func(key string) (string, bool, error) {
		s, ok, err := str(params, key)
		if err != nil || ok {
			return s, ok, err
		}
		return str(fallback, key)
	}

	query := url.Values{}
	for k, v := range params {
		if defaultRouteKeys[k] || v == nil {
			continue
		}
		s, err := convertValue(identify, v)
		if err != nil {
			return "", &GenerationError{Name: "default", Param: k, Err: err}
		}
		query.Add(k, s)
	}

	controller, ok, err := pick("controller")
	if err != nil {
		return "", err
	}
	if !ok {
		return "", &GenerationError{Name: "default", Param: "controller", Err: ErrControllerNotSpecified}
	}

	var b strings.Builder
	b.WriteByte('/')
	b.WriteString(escapeSegment(controller))

	id, hasID, err := str(params, "id")
	if err != nil {
		return "", err
	}
	format, hasFormat, err := str(params, "format")
	if err != nil {
		return "", err
	}
	_, hasAction, err := str(params, "action")
	if err != nil {
		return "", err
	}

	if hasAction || hasID || hasFormat || len(query) > 0 {
		action, ok, err := pick("action")
		if err != nil {
			return "", err
		}
		if !ok {
			return "", &GenerationError{Name: "default", Param: "action", Err: ErrActionNotSpecified}
		}
		b.WriteByte('/')
		b.WriteString(escapeSegment(action))
	}
	if hasID {
		b.WriteByte('/')
		b.WriteString(escapeSegment(id))
	}
	if hasFormat {
		if format == "current" {
			format, hasFormat, err = str(fallback, "format")
			if err != nil {
				return "", err
			}
		}
		if hasFormat {
			b.WriteByte('.')
			b.WriteString(escapeSegment(format))
		}
	}
	if len(query) > 0 {
		b.WriteByte('?')
		b.WriteString(query.Encode())
	}
	return b.String(), nil
}
