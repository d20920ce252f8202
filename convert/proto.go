// SPDX-FileCopyrightText: 2023 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package convert

import (
	"fmt"
	"reflect"

	"google.golang.org/protobuf/proto"
)

var protoMessageType = reflect.TypeOf((*proto.Message)(nil)).Elem()

// Protobuf serializes generated protobuf messages using the binary wire
// format.  Only pointer types implementing proto.Message are handled; all
// other types are declined.  It is not part of the default chain.
type Protobuf struct{}

// Name returns "proto".
func (Protobuf) Name() string { return "proto" }

// RequestConverter produces a converter when t is a generated message type.
func (Protobuf) RequestConverter(t reflect.Type) Converter {
	if t.Kind() == reflect.Ptr && t.Implements(protoMessageType) {
		return protoConverter{}
	}

	return nil
}

// ResponseConverter produces a converter when t is a generated message type.
func (Protobuf) ResponseConverter(t reflect.Type) Converter {
	if t.Kind() == reflect.Ptr && t.Implements(protoMessageType) {
		return protoConverter{}
	}

	return nil
}

// StringConverter declines all types.
func (Protobuf) StringConverter(reflect.Type) StringFunc { return nil }

type protoConverter struct{}

func (protoConverter) ContentType() string { return "application/x-protobuf" }

func (protoConverter) Marshal(v any) ([]byte, error) {
	m, ok := v.(proto.Message)
	if !ok {
		return nil, fmt.Errorf("%T is not a proto.Message", v)
	}

	return proto.Marshal(m)
}

// Unmarshal expects v to be a pointer to a generated message pointer, as
// produced when a consumer allocates its declared result type.  A nil
// message is allocated before decoding.
func (protoConverter) Unmarshal(data []byte, v any) error {
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Ptr || rv.IsNil() {
		return fmt.Errorf("%T is not a non-nil pointer", v)
	}

	elem := rv.Elem()
	if elem.Kind() == reflect.Ptr && elem.Type().Implements(protoMessageType) {
		if elem.IsNil() {
			elem.Set(reflect.New(elem.Type().Elem()))
		}

		return proto.Unmarshal(data, elem.Interface().(proto.Message))
	}

	if m, ok := v.(proto.Message); ok {
		return proto.Unmarshal(data, m)
	}

	return fmt.Errorf("%T is not a proto.Message", v)
}
