// SPDX-FileCopyrightText: 2023 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package convert

import (
	"encoding/json"
	"net"
	"net/http"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
)

type StandardSuite struct {
	suite.Suite
}

func (suite *StandardSuite) TestName() {
	suite.Equal("standard", Standard{}.Name())
}

func (suite *StandardSuite) TestRequestConverter() {
	testData := []struct {
		description string
		value       any
		expected    string
	}{
		{
			description: "bytes",
			value:       []byte("raw bytes"),
			expected:    "raw bytes",
		},
		{
			description: "string",
			value:       "raw text",
			expected:    "raw text",
		},
		{
			description: "rawMessage",
			value:       json.RawMessage(`{"already": "encoded"}`),
			expected:    `{"already": "encoded"}`,
		},
		{
			description: "reader",
			value:       strings.NewReader("streamed"),
			expected:    "streamed",
		},
	}

	for _, record := range testData {
		suite.Run(record.description, func() {
			c := Standard{}.RequestConverter(reflect.TypeOf(record.value))
			suite.Require().NotNil(c)
			suite.Empty(c.ContentType())

			data, err := c.Marshal(record.value)
			suite.Require().NoError(err)
			suite.Equal(record.expected, string(data))
		})
	}
}

func (suite *StandardSuite) TestRequestConverterDeclines() {
	type payload struct{ Name string }
	suite.Nil(Standard{}.RequestConverter(reflect.TypeOf(payload{})))
	suite.Nil(Standard{}.RequestConverter(reflect.TypeOf(map[string]string{})))
}

func (suite *StandardSuite) TestResponseConverter() {
	c := Standard{}.ResponseConverter(stringType)
	suite.Require().NotNil(c)

	var text string
	suite.Require().NoError(c.Unmarshal([]byte("plain"), &text))
	suite.Equal("plain", text)

	c = Standard{}.ResponseConverter(rawMessageType)
	suite.Require().NotNil(c)

	var raw json.RawMessage
	suite.Require().NoError(c.Unmarshal([]byte(`[1,2]`), &raw))
	suite.Equal(json.RawMessage(`[1,2]`), raw)

	// responses are never unmarshaled into readers
	suite.Nil(Standard{}.ResponseConverter(readerType))
	suite.Nil(Standard{}.ResponseConverter(reflect.TypeOf(struct{}{})))
}

func (suite *StandardSuite) TestUnmarshalCopies() {
	var (
		c    = Standard{}.ResponseConverter(byteSliceType)
		data = []byte("original")
		out  []byte
	)

	suite.Require().NoError(c.Unmarshal(data, &out))
	data[0] = 'X'
	suite.Equal([]byte("original"), out)
}

func (suite *StandardSuite) TestStringConverter() {
	testData := []struct {
		description string
		value       any
		expected    string
	}{
		{description: "string", value: "hello", expected: "hello"},
		{description: "bool", value: true, expected: "true"},
		{description: "int", value: -47, expected: "-47"},
		{description: "uint", value: uint16(47), expected: "47"},
		{description: "float", value: 3.5, expected: "3.5"},
		{description: "float32", value: float32(0.1), expected: "0.1"},
		{description: "textMarshaler", value: time.Date(2023, 6, 15, 12, 0, 0, 0, time.UTC), expected: "2023-06-15T12:00:00Z"},
		{description: "stringer", value: 90 * time.Second, expected: "1m30s"},
		{description: "ip", value: net.IPv4(10, 0, 0, 1), expected: "10.0.0.1"},
	}

	for _, record := range testData {
		suite.Run(record.description, func() {
			sf := Standard{}.StringConverter(reflect.TypeOf(record.value))
			suite.Require().NotNil(sf)

			actual, err := sf(record.value)
			suite.Require().NoError(err)
			suite.Equal(record.expected, actual)
		})
	}
}

func (suite *StandardSuite) TestStringConverterDeclines() {
	suite.Nil(Standard{}.StringConverter(reflect.TypeOf(struct{}{})))
	suite.Nil(Standard{}.StringConverter(reflect.TypeOf(map[string]string{})))
	suite.Nil(Standard{}.StringConverter(reflect.TypeOf([]int{})))
}

func (suite *StandardSuite) TestPassthrough() {
	suite.True(passthrough(byteSliceType))
	suite.True(passthrough(stringType))
	suite.True(passthrough(rawMessageType))
	suite.True(passthrough(reflect.TypeOf((*http.Response)(nil))))
	suite.True(passthrough(reflect.TypeOf(strings.NewReader(""))))
	suite.False(passthrough(reflect.TypeOf(struct{}{})))
}

func TestStandard(t *testing.T) {
	suite.Run(t, new(StandardSuite))
}
