// SPDX-FileCopyrightText: 2023 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package convert

import (
	"reflect"

	"github.com/goccy/go-yaml"
)

// YAML serializes request and response bodies as YAML documents.  It is not
// part of the default chain; pin it per endpoint with a format of "yaml",
// or register it on a consumer or via Install.
type YAML struct{}

// Name returns "yaml".
func (YAML) Name() string { return "yaml" }

// RequestConverter produces a YAML converter for any non-passthrough type.
func (YAML) RequestConverter(t reflect.Type) Converter {
	if passthrough(t) {
		return nil
	}

	return yamlConverter{}
}

// ResponseConverter produces a YAML converter for any non-passthrough type.
func (YAML) ResponseConverter(t reflect.Type) Converter {
	if passthrough(t) {
		return nil
	}

	return yamlConverter{}
}

// StringConverter declines all types.
func (YAML) StringConverter(reflect.Type) StringFunc { return nil }

type yamlConverter struct{}

func (yamlConverter) ContentType() string { return "application/x-yaml" }

func (yamlConverter) Marshal(v any) ([]byte, error) {
	return yaml.Marshal(v)
}

func (yamlConverter) Unmarshal(data []byte, v any) error {
	return yaml.Unmarshal(data, v)
}
