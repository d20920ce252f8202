// SPDX-FileCopyrightText: 2023 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package beckon

import (
	"strconv"
	"strings"
)

// statusErrorBodyMax bounds the response body snapshot captured
// in a StatusError.
const statusErrorBodyMax = 1024

// StatusError is returned by Consumer.Do when a response arrives with a
// status code of 400 or higher and the endpoint did not opt out of status
// checking.  The first kilobyte of the response body is captured to aid
// debugging; the rest is discarded.
type StatusError struct {
	// Method is the HTTP method of the failed call.
	Method string

	// URL is the full URL of the failed call.
	URL string

	// StatusCode is the numeric response code, e.g. 404.
	StatusCode int

	// Status is the full status line, e.g. "404 Not Found".
	Status string

	// Body is a snapshot of up to statusErrorBodyMax bytes of the
	// response body.
	Body []byte
}

// Error describes the failed call.  The body snapshot is not included.
func (se *StatusError) Error() string {
	var o strings.Builder
	o.WriteString(se.Method)
	o.WriteRune(' ')
	o.WriteString(se.URL)
	o.WriteString(": ")
	if len(se.Status) > 0 {
		o.WriteString(se.Status)
	} else {
		o.WriteString(strconv.Itoa(se.StatusCode))
	}

	return o.String()
}

// TemplateError indicates a malformed URI template or a template variable
// that could not be resolved at call time.
type TemplateError struct {
	// Template is the raw template text.
	Template string

	// Variable is the offending variable, when the error concerns one.
	Variable string

	// Reason describes what went wrong.
	Reason string
}

func (te *TemplateError) Error() string {
	var o strings.Builder
	o.WriteString("uri template ")
	o.WriteString(strconv.Quote(te.Template))
	o.WriteString(": ")
	o.WriteString(te.Reason)
	if len(te.Variable) > 0 {
		o.WriteString(": ")
		o.WriteString(te.Variable)
	}

	return o.String()
}

// BindingError indicates that a call's arguments could not be mapped onto
// an HTTP request, or that a consumer struct field could not be bound.
// These are configuration errors: they are detected before any I/O occurs,
// and at Bind time whenever possible.
type BindingError struct {
	// Name identifies the binding or struct field involved, when known.
	Name string

	// Reason describes what went wrong.
	Reason string
}

func (be *BindingError) Error() string {
	var o strings.Builder
	o.WriteString("binding")
	if len(be.Name) > 0 {
		o.WriteRune(' ')
		o.WriteString(strconv.Quote(be.Name))
	}

	o.WriteString(": ")
	o.WriteString(be.Reason)
	return o.String()
}
