/*
 * Copyright 2025 Carver Automation Corporation.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package models

import (
	"encoding/json"
	"errors"
	"reflect"
	"strings"
)

var errNotStruct = errors.New("input must be a struct or pointer to struct")

//nolint:gochecknoglobals // reflect type used for comparisons
var jsonMarshalerType = reflect.TypeOf((*json.Marshaler)(nil)).Elem()

// FilterSensitiveFields renders a configuration struct as a map keyed by JSON
// field names, leaving out every field tagged `sensitive:"true"`. Values that
// implement json.Marshaler are kept as-is so they log in their JSON form.
func FilterSensitiveFields(input interface{}) (map[string]interface{}, error) {
	if input == nil {
		return map[string]interface{}{}, nil
	}

	rv := reflect.ValueOf(input)
	for rv.Kind() == reflect.Ptr {
		if rv.IsNil() {
			return map[string]interface{}{}, nil
		}

		rv = rv.Elem()
	}

	if rv.Kind() != reflect.Struct {
		return nil, errNotStruct
	}

	return filterStruct(rv), nil
}

func filterStruct(rv reflect.Value) map[string]interface{} {
	rt := rv.Type()
	out := make(map[string]interface{}, rt.NumField())

	for i := 0; i < rt.NumField(); i++ {
		field := rt.Field(i)
		if !field.IsExported() || field.Tag.Get("sensitive") == "true" {
			continue
		}

		name, omitEmpty, skip := jsonName(field)
		if skip {
			continue
		}

		fv := rv.Field(i)
		if omitEmpty && fv.IsZero() {
			continue
		}

		out[name] = filterValue(fv)
	}

	return out
}

func filterValue(v reflect.Value) interface{} {
	if !v.IsValid() {
		return nil
	}

	if v.Type().Implements(jsonMarshalerType) {
		if v.Kind() == reflect.Ptr && v.IsNil() {
			return nil
		}

		return v.Interface()
	}

	switch v.Kind() {
	case reflect.Ptr, reflect.Interface:
		if v.IsNil() {
			return nil
		}

		return filterValue(v.Elem())
	case reflect.Struct:
		return filterStruct(v)
	case reflect.Slice, reflect.Array:
		if v.Kind() == reflect.Slice && v.IsNil() {
			return nil
		}

		items := make([]interface{}, v.Len())
		for i := range items {
			items[i] = filterValue(v.Index(i))
		}

		return items
	case reflect.Map:
		if v.IsNil() {
			return nil
		}

		m := make(map[string]interface{}, v.Len())

		iter := v.MapRange()
		for iter.Next() {
			if key, ok := iter.Key().Interface().(string); ok {
				m[key] = filterValue(iter.Value())
			} else if iter.Key().Kind() == reflect.String {
				m[iter.Key().String()] = filterValue(iter.Value())
			}
		}

		return m
	default:
		return v.Interface()
	}
}

func jsonName(field reflect.StructField) (name string, omitEmpty, skip bool) {
	tag := field.Tag.Get("json")
	if tag == "-" {
		return "", false, true
	}

	name, opts, _ := strings.Cut(tag, ",")
	if name == "" {
		name = field.Name
	}

	return name, strings.Contains(opts, "omitempty"), false
}
