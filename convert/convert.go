// SPDX-FileCopyrightText: 2023 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

// Package convert defines the pluggable serialization strategy used by beckon
// consumers.  A chain of factories is queried for a converter that can handle
// a particular target type.  Factories earlier in the chain are given the
// opportunity to handle a type before those that appear later, and the
// standard factory is always consulted last.
package convert

import (
	"reflect"
	"strings"
)

// Converter translates between raw HTTP payloads and Go values.  Converters
// are looked up by the declared Go type, not by the response Content-Type.
type Converter interface {
	// ContentType is the MIME type produced by Marshal and expected by
	// Unmarshal.  An empty string means the converter does not impose
	// a content type, as with raw passthrough values.
	ContentType() string

	// Marshal renders a value as a request body.
	Marshal(v any) ([]byte, error)

	// Unmarshal populates v, which is always a non-nil pointer, from a
	// response body.
	Unmarshal(data []byte, v any) error
}

// StringFunc renders a single value as a string.  String conversion is used
// for path, query, header and form field parameters.
type StringFunc func(v any) (string, error)

// Factory is the strategy for producing converters for target types.  Each
// method returns nil when this factory cannot handle the given type, which
// causes a Registry to continue down its chain.
type Factory interface {
	// Name identifies this factory for format pinning, e.g. "json".
	Name() string

	// RequestConverter produces a converter for request bodies of the
	// given type.
	RequestConverter(t reflect.Type) Converter

	// ResponseConverter produces a converter for response bodies that
	// should be unmarshaled into the given type.
	ResponseConverter(t reflect.Type) Converter

	// StringConverter produces a string renderer for parameter values
	// of the given type.
	StringConverter(t reflect.Type) StringFunc
}

// NoConverterError indicates that no factory in a chain could produce
// a converter for a type.  This is a configuration error: the consumer
// declared a type for which no serialization strategy is registered.
type NoConverterError struct {
	// Type is the target type that could not be handled.
	Type reflect.Type

	// Direction is one of "request", "response", or "string".
	Direction string
}

// Error describes the type that could not be converted.
func (nce *NoConverterError) Error() string {
	var o strings.Builder
	o.WriteString("no ")
	o.WriteString(nce.Direction)
	o.WriteString(" converter registered for ")
	if nce.Type != nil {
		o.WriteString(nce.Type.String())
	} else {
		o.WriteString("<nil>")
	}

	return o.String()
}
