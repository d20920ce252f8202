// SPDX-FileCopyrightText: 2023 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package beckon

import (
	"io"
	"net/http"
	"net/url"
	"reflect"

	"github.com/mitchellh/mapstructure"

	"github.com/xmidt-org/beckon/convert"
)

// argKind enumerates the components of an HTTP request that an argument
// can bind to.
type argKind int

const (
	kindPath argKind = iota
	kindQuery
	kindQueryMap
	kindQueryStruct
	kindHeader
	kindHeaderMap
	kindField
	kindFieldMap
	kindPart
	kindBody
	kindRaw
)

func (k argKind) String() string {
	switch k {
	case kindPath:
		return "path"
	case kindQuery:
		return "query"
	case kindQueryMap:
		return "querymap"
	case kindQueryStruct:
		return "querystruct"
	case kindHeader:
		return "header"
	case kindHeaderMap:
		return "headermap"
	case kindField:
		return "field"
	case kindFieldMap:
		return "fieldmap"
	case kindPart:
		return "part"
	case kindBody:
		return "body"
	case kindRaw:
		return "raw"
	}

	return "unknown"
}

// Arg binds a single call argument to a component of the HTTP request.
// Args are created by the constructors in this file and consumed by
// Consumer.Do.
type Arg struct {
	kind        argKind
	name        string
	filename    string
	contentType string
	value       any
}

// Path binds a value to the named URI template variable.
func Path(name string, v any) Arg {
	return Arg{kind: kindPath, name: name, value: v}
}

// Query adds a query parameter with the given name.  Nil values and nil
// pointers are omitted from the request.
func Query(name string, v any) Arg {
	return Arg{kind: kindQuery, name: name, value: v}
}

// QueryMap adds a query parameter for each entry of the given map.
func QueryMap(m map[string]any) Arg {
	return Arg{kind: kindQueryMap, value: m}
}

// QueryStruct flattens a struct (or map) into query parameters.  Field
// names are taken from mapstructure tags when present.
func QueryStruct(v any) Arg {
	return Arg{kind: kindQueryStruct, value: v}
}

// HeaderArg adds a request header with the given name.  Nil values and
// nil pointers are omitted.
func HeaderArg(name string, v any) Arg {
	return Arg{kind: kindHeader, name: name, value: v}
}

// HeaderMap adds a request header for each entry of the given map.
func HeaderMap(m map[string]any) Arg {
	return Arg{kind: kindHeaderMap, value: m}
}

// Field adds a urlencoded form field.  Fields make the request body
// application/x-www-form-urlencoded unless multipart Parts are also
// present, in which case fields are written as form parts.
func Field(name string, v any) Arg {
	return Arg{kind: kindField, name: name, value: v}
}

// FieldMap adds a form field for each entry of the given map.
func FieldMap(m map[string]any) Arg {
	return Arg{kind: kindFieldMap, value: m}
}

// Part adds a multipart form part streamed from r.  If filename is empty,
// the part is written as a plain form field part.
func Part(name, filename string, r io.Reader) Arg {
	return Arg{kind: kindPart, name: name, filename: filename, value: r}
}

// Body marks a value as the request body.  The body is serialized by the
// converter chain according to its type.  Body conflicts with Field and
// Part bindings.
func Body(v any) Arg {
	return Arg{kind: kindBody, value: v}
}

// Raw marks a reader as the request body, streamed as-is with the given
// content type.  The converter chain is not consulted.
func Raw(contentType string, r io.Reader) Arg {
	return Arg{kind: kindRaw, contentType: contentType, value: r}
}

// partSpec is a resolved multipart part.
type partSpec struct {
	name     string
	filename string
	r        io.Reader
}

// callState accumulates the resolved request components for a single call.
type callState struct {
	registry convert.Registry

	pathVars map[string]string
	query    url.Values
	header   http.Header
	fields   url.Values
	parts    []partSpec
	body     *Arg
}

func newCallState(registry convert.Registry) *callState {
	return &callState{
		registry: registry,
		pathVars: make(map[string]string),
		query:    make(url.Values),
		header:   make(http.Header),
		fields:   make(url.Values),
	}
}

// render stringifies a parameter value through the converter chain.
// Nil values and nil pointers report ok == false, which omits the
// parameter from the request.
func (cs *callState) render(v any) (s string, ok bool, err error) {
	if v == nil {
		return "", false, nil
	}

	rv := reflect.ValueOf(v)
	for rv.Kind() == reflect.Ptr {
		if rv.IsNil() {
			return "", false, nil
		}

		rv = rv.Elem()
	}

	s, err = cs.registry.String(rv.Interface())
	return s, err == nil, err
}

// apply resolves a single Arg into this call state.
func (cs *callState) apply(a Arg) error {
	switch a.kind {
	case kindPath:
		s, _, err := cs.render(a.value)
		if err != nil {
			return err
		}

		cs.pathVars[a.name] = s

	case kindQuery:
		return cs.addValue(cs.query, a.name, a.value)

	case kindQueryMap:
		return cs.addMap(cs.query, a.value)

	case kindQueryStruct:
		return cs.addStruct(cs.query, a.value)

	case kindHeader:
		s, ok, err := cs.render(a.value)
		if err != nil {
			return err
		}

		if ok {
			cs.header.Add(a.name, s)
		}

	case kindHeaderMap:
		m, ok := a.value.(map[string]any)
		if !ok {
			return &BindingError{Name: a.kind.String(), Reason: "value must be a map[string]any"}
		}

		for name, v := range m {
			s, ok, err := cs.render(v)
			if err != nil {
				return err
			}

			if ok {
				cs.header.Add(name, s)
			}
		}

	case kindField:
		return cs.addValue(cs.fields, a.name, a.value)

	case kindFieldMap:
		return cs.addMap(cs.fields, a.value)

	case kindPart:
		r, ok := a.value.(io.Reader)
		if !ok || r == nil {
			return &BindingError{Name: a.name, Reason: "part value must be a non-nil io.Reader"}
		}

		cs.parts = append(cs.parts, partSpec{name: a.name, filename: a.filename, r: r})

	case kindBody, kindRaw:
		if cs.body != nil {
			return &BindingError{Name: a.kind.String(), Reason: "only one body binding is allowed"}
		}

		body := a
		cs.body = &body

	default:
		return &BindingError{Name: a.kind.String(), Reason: "unsupported binding kind"}
	}

	return nil
}

func (cs *callState) addValue(dst url.Values, name string, v any) error {
	s, ok, err := cs.render(v)
	if err != nil {
		return err
	}

	if ok {
		dst.Add(name, s)
	}

	return nil
}

func (cs *callState) addMap(dst url.Values, v any) error {
	m, ok := v.(map[string]any)
	if !ok {
		return &BindingError{Name: "map", Reason: "value must be a map[string]any"}
	}

	for name, value := range m {
		if err := cs.addValue(dst, name, value); err != nil {
			return err
		}
	}

	return nil
}

// addStruct flattens a struct or map into parameter values.  mapstructure
// performs the flattening, so mapstructure field tags are honored.
func (cs *callState) addStruct(dst url.Values, v any) error {
	if v == nil {
		return nil
	}

	var flat map[string]any
	if err := mapstructure.Decode(v, &flat); err != nil {
		return &BindingError{Name: "querystruct", Reason: err.Error()}
	}

	for name, value := range flat {
		if err := cs.addValue(dst, name, value); err != nil {
			return err
		}
	}

	return nil
}

// validate enforces the binding conflict rules prior to any I/O.
func (cs *callState) validate() error {
	if cs.body != nil && (len(cs.fields) > 0 || len(cs.parts) > 0) {
		return &BindingError{Name: "body", Reason: "body conflicts with field and part bindings"}
	}

	return nil
}
