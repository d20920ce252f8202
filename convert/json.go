// SPDX-FileCopyrightText: 2023 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package convert

import (
	"encoding/json"
	"reflect"
)

// JSON is the default structured factory.  It handles any type except the
// raw passthrough types claimed by Standard, so that a declared []byte or
// string result is never mistakenly decoded as JSON.
type JSON struct{}

// Name returns "json".
func (JSON) Name() string { return "json" }

// RequestConverter produces a JSON converter for any non-passthrough type.
func (JSON) RequestConverter(t reflect.Type) Converter {
	if passthrough(t) {
		return nil
	}

	return jsonConverter{}
}

// ResponseConverter produces a JSON converter for any non-passthrough type.
func (JSON) ResponseConverter(t reflect.Type) Converter {
	if passthrough(t) {
		return nil
	}

	return jsonConverter{}
}

// StringConverter declines all types.  Parameter stringification is left
// to factories with a string strategy, ultimately Standard.
func (JSON) StringConverter(reflect.Type) StringFunc { return nil }

type jsonConverter struct{}

func (jsonConverter) ContentType() string { return "application/json" }

func (jsonConverter) Marshal(v any) ([]byte, error) {
	return json.Marshal(v)
}

func (jsonConverter) Unmarshal(data []byte, v any) error {
	return json.Unmarshal(data, v)
}
