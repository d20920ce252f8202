// SPDX-FileCopyrightText: 2023 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package convert

import (
	"encoding"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"strconv"
)

const standardName = "standard"

var (
	byteSliceType  = reflect.TypeOf([]byte(nil))
	stringType     = reflect.TypeOf("")
	rawMessageType = reflect.TypeOf(json.RawMessage(nil))
	readerType     = reflect.TypeOf((*io.Reader)(nil)).Elem()
	responseType   = reflect.TypeOf((*http.Response)(nil))

	textMarshalerType = reflect.TypeOf((*encoding.TextMarshaler)(nil)).Elem()
	stringerType      = reflect.TypeOf((*fmt.Stringer)(nil)).Elem()
)

// passthrough tests whether a type is carried between the caller and the
// wire without serialization.  Structured factories decline these types so
// that they always reach the Standard factory, regardless of chain order.
func passthrough(t reflect.Type) bool {
	switch t {
	case byteSliceType, stringType, rawMessageType, responseType:
		return true
	}

	return t.Implements(readerType)
}

// Standard is the terminal factory.  It handles raw passthrough values:
// byte slices, strings, json.RawMessage, and io.Reader request bodies.
// A Registry always consults it last, so it never shadows a structured
// converter.
type Standard struct{}

// Name returns "standard".
func (Standard) Name() string { return standardName }

// RequestConverter handles []byte, string, json.RawMessage, and any type
// implementing io.Reader.  The produced converter imposes no content type.
func (Standard) RequestConverter(t reflect.Type) Converter {
	if passthrough(t) && t != responseType {
		return rawConverter{}
	}

	return nil
}

// ResponseConverter handles *[]byte, *string, and *json.RawMessage targets.
func (Standard) ResponseConverter(t reflect.Type) Converter {
	switch t {
	case byteSliceType, stringType, rawMessageType:
		return rawConverter{}
	}

	return nil
}

// StringConverter renders scalar values.  encoding.TextMarshaler and
// fmt.Stringer implementations are honored first, then the native kinds
// handled by strconv.  Aggregate types are declined.
func (Standard) StringConverter(t reflect.Type) StringFunc {
	switch {
	case t.Implements(textMarshalerType):
		return func(v any) (string, error) {
			text, err := v.(encoding.TextMarshaler).MarshalText()
			return string(text), err
		}

	case t.Implements(stringerType):
		return func(v any) (string, error) {
			return v.(fmt.Stringer).String(), nil
		}
	}

	switch t.Kind() {
	case reflect.String:
		return func(v any) (string, error) {
			return reflect.ValueOf(v).String(), nil
		}

	case reflect.Bool:
		return func(v any) (string, error) {
			return strconv.FormatBool(reflect.ValueOf(v).Bool()), nil
		}

	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return func(v any) (string, error) {
			return strconv.FormatInt(reflect.ValueOf(v).Int(), 10), nil
		}

	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return func(v any) (string, error) {
			return strconv.FormatUint(reflect.ValueOf(v).Uint(), 10), nil
		}

	case reflect.Float32, reflect.Float64:
		bitSize := 64
		if t.Kind() == reflect.Float32 {
			bitSize = 32
		}

		return func(v any) (string, error) {
			return strconv.FormatFloat(reflect.ValueOf(v).Float(), 'f', -1, bitSize), nil
		}
	}

	return nil
}

// rawConverter moves bytes without interpreting them.
type rawConverter struct{}

func (rawConverter) ContentType() string { return "" }

func (rawConverter) Marshal(v any) ([]byte, error) {
	switch b := v.(type) {
	case []byte:
		return b, nil
	case json.RawMessage:
		return b, nil
	case string:
		return []byte(b), nil
	case io.Reader:
		return io.ReadAll(b)
	}

	return nil, &NoConverterError{Type: reflect.TypeOf(v), Direction: "request"}
}

func (rawConverter) Unmarshal(data []byte, v any) error {
	switch target := v.(type) {
	case *[]byte:
		*target = append([]byte(nil), data...)
		return nil
	case *json.RawMessage:
		*target = append(json.RawMessage(nil), data...)
		return nil
	case *string:
		*target = string(data)
		return nil
	}

	return &NoConverterError{Type: reflect.TypeOf(v), Direction: "response"}
}
