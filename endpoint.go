// SPDX-FileCopyrightText: 2023 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package beckon

import (
	"net/http"
	"strings"
)

// Endpoint describes a single HTTP operation: a verb, a URI template, and
// any static request metadata.  Endpoints are created at definition time,
// usually as package-level values or by Consumer.Bind, and are immutable
// once built.  An Endpoint is safe for concurrent use by any number of
// calls.
type Endpoint struct {
	method   string
	template Template
	header   Header
	format   string
	allowAny bool
}

// EndpointOption configures an Endpoint under construction.
type EndpointOption = Option[Endpoint]

// NewEndpoint parses a URI template and builds an immutable endpoint
// descriptor.  The method is canonicalized to upper case.
func NewEndpoint(method, template string, opts ...EndpointOption) (*Endpoint, error) {
	method = strings.ToUpper(strings.TrimSpace(method))
	if len(method) == 0 {
		return nil, &BindingError{Reason: "an endpoint requires an HTTP method"}
	}

	t, err := ParseTemplate(template)
	if err != nil {
		return nil, err
	}

	e := &Endpoint{
		method:   method,
		template: t,
	}

	if err := (Options[Endpoint])(opts).Apply(e); err != nil {
		return nil, err
	}

	return e, nil
}

// MustEndpoint is a convenience for package-level endpoint variables.
// It panics when NewEndpoint returns an error.
func MustEndpoint(method, template string, opts ...EndpointOption) *Endpoint {
	e, err := NewEndpoint(method, template, opts...)
	if err != nil {
		panic(err)
	}

	return e
}

// Method returns the HTTP method for this endpoint.
func (e *Endpoint) Method() string { return e.method }

// Template returns the parsed URI template for this endpoint.
func (e *Endpoint) Template() Template { return e.template }

// Format returns the pinned converter factory name, or the empty
// string when the consumer's chain order decides.
func (e *Endpoint) Format() string { return e.format }

// acceptsBody tests whether this endpoint's method conventionally
// carries a request body.
func (e *Endpoint) acceptsBody() bool {
	switch e.method {
	case http.MethodPost, http.MethodPut, http.MethodPatch:
		return true
	}

	return false
}

// WithHeaders attaches static headers to every request this endpoint
// makes.  The strings are key/value pairs, as in NewHeaders.
func WithHeaders(kv ...string) EndpointOption {
	return OptionFunc[Endpoint](func(e *Endpoint) error {
		e.header = e.header.Extend(NewHeaders(kv...))
		return nil
	})
}

// WithFormat pins the named converter factory for this endpoint's request
// and response bodies, bypassing the consumer's chain order.  The name is
// resolved against the consumer's registry at call time, so an unknown
// name surfaces as a configuration error on first use.
func WithFormat(name string) EndpointOption {
	return OptionFunc[Endpoint](func(e *Endpoint) error {
		e.format = name
		return nil
	})
}

// AllowAnyStatus disables status checking for this endpoint: responses
// with status codes of 400 and higher are decoded normally instead of
// producing a *StatusError.
func AllowAnyStatus() EndpointOption {
	return OptionFunc[Endpoint](func(e *Endpoint) error {
		e.allowAny = true
		return nil
	})
}
