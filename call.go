// SPDX-FileCopyrightText: 2023 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package beckon

import (
	"bytes"
	"context"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"reflect"
	"strings"

	"github.com/xmidt-org/beckon/convert"
)

// Do executes one HTTP operation.  The args are bound to the endpoint's
// template, query, headers, and body, the request is executed by this
// consumer's client, and the response body is unmarshaled into result.
//
// The result may be:
//
//   - nil, to discard the response body
//   - a **http.Response, to receive the raw response regardless of its
//     status code; the caller owns the body and must close it
//   - a non-nil pointer to any type handled by the converter chain
//
// Configuration problems, such as a missing converter or a binding
// conflict, are detected and returned before any I/O occurs.
func (c *Consumer) Do(ctx context.Context, e *Endpoint, args []Arg, result any) error {
	if e == nil {
		return c.fail(&BindingError{Reason: "a nil endpoint cannot be invoked"})
	}

	registry, err := c.registryFor(e)
	if err != nil {
		return c.fail(err)
	}

	cs := newCallState(registry)
	for _, a := range args {
		if err := cs.apply(a); err != nil {
			return c.fail(err)
		}
	}

	if err := cs.validate(); err != nil {
		return c.fail(err)
	}

	// resolve the response converter before any I/O so that missing
	// registrations surface as configuration errors
	var (
		responseConverter convert.Converter
		rawResult         **http.Response
	)

	switch r := result.(type) {
	case nil:
		// discard

	case **http.Response:
		rawResult = r

	default:
		rv := reflect.ValueOf(result)
		if rv.Kind() != reflect.Ptr || rv.IsNil() {
			return c.fail(&BindingError{Name: "result", Reason: "result must be a non-nil pointer"})
		}

		responseConverter, err = registry.ResponseConverter(rv.Type().Elem())
		if err != nil {
			return c.fail(err)
		}
	}

	request, err := c.newRequest(ctx, e, cs, registry)
	if err != nil {
		return c.fail(err)
	}

	if responseConverter != nil && len(request.Header.Get("Accept")) == 0 {
		if accept := responseConverter.ContentType(); len(accept) > 0 {
			request.Header.Set("Accept", accept)
		}
	}

	response, err := c.client.Do(request)
	if err != nil {
		return c.fail(err)
	}

	for _, hook := range c.responseHooks {
		response, err = hook(response)
		if err != nil {
			return c.fail(err)
		}

		if response == nil {
			return c.fail(errors.New("a response hook returned a nil response"))
		}
	}

	if rawResult != nil {
		// the caller asked for the raw response, error statuses included
		*rawResult = response
		return nil
	}

	if !(c.allowAny || e.allowAny) && response.StatusCode >= 400 {
		return c.fail(newStatusError(request, response))
	}

	if result == nil {
		drain(response.Body)
		return nil
	}

	data, err := io.ReadAll(response.Body)
	response.Body.Close()
	if err != nil {
		return c.fail(err)
	}

	if len(data) == 0 {
		// e.g. 204 No Content: the result keeps its zero value
		return nil
	}

	if err := responseConverter.Unmarshal(data, result); err != nil {
		return c.fail(err)
	}

	return nil
}

// fail applies the error hooks, in order.  A hook may translate or
// suppress the error; hooks after a suppression are not run.
func (c *Consumer) fail(err error) error {
	for _, hook := range c.errorHooks {
		if err == nil {
			break
		}

		err = hook(err)
	}

	return err
}

// newRequest assembles the *http.Request for a resolved call.
func (c *Consumer) newRequest(ctx context.Context, e *Endpoint, cs *callState, registry convert.Registry) (*http.Request, error) {
	for name := range cs.pathVars {
		if !e.template.Has(name) {
			return nil, &BindingError{Name: name, Reason: "no such template variable"}
		}
	}

	expanded, err := e.template.Expand(cs.pathVars)
	if err != nil {
		return nil, err
	}

	var (
		body        io.Reader
		contentType string
	)

	switch {
	case len(cs.parts) > 0:
		buffer := new(bytes.Buffer)
		writer := multipart.NewWriter(buffer)
		for name, values := range cs.fields {
			for _, v := range values {
				if err := writer.WriteField(name, v); err != nil {
					return nil, err
				}
			}
		}

		for _, p := range cs.parts {
			var (
				part io.Writer
				err  error
			)

			if len(p.filename) > 0 {
				part, err = writer.CreateFormFile(p.name, p.filename)
			} else {
				part, err = writer.CreateFormField(p.name)
			}

			if err != nil {
				return nil, err
			}

			if _, err := io.Copy(part, p.r); err != nil {
				return nil, err
			}
		}

		if err := writer.Close(); err != nil {
			return nil, err
		}

		body = bytes.NewReader(buffer.Bytes())
		contentType = writer.FormDataContentType()

	case len(cs.fields) > 0:
		body = strings.NewReader(cs.fields.Encode())
		contentType = "application/x-www-form-urlencoded"

	case cs.body != nil && cs.body.kind == kindRaw:
		r, ok := cs.body.value.(io.Reader)
		if !ok || r == nil {
			return nil, &BindingError{Name: "raw", Reason: "raw body must be a non-nil io.Reader"}
		}

		body = r
		contentType = cs.body.contentType

	case cs.body != nil:
		if cs.body.value == nil {
			return nil, &BindingError{Name: "body", Reason: "body value must be non-nil"}
		}

		converter, err := registry.RequestConverter(reflect.TypeOf(cs.body.value))
		if err != nil {
			return nil, err
		}

		data, err := converter.Marshal(cs.body.value)
		if err != nil {
			return nil, err
		}

		body = bytes.NewReader(data)
		contentType = converter.ContentType()
	}

	request, err := http.NewRequestWithContext(ctx, e.method, c.requestURL(expanded, cs.query), body)
	if err != nil {
		return nil, err
	}

	c.header.AddTo(request.Header)
	e.header.AddTo(request.Header)
	for key, values := range cs.header {
		// keys are already canonical: cs.header is built via Add
		request.Header[key] = append(request.Header[key], values...)
	}

	if len(contentType) > 0 && len(request.Header.Get("Content-Type")) == 0 {
		request.Header.Set("Content-Type", contentType)
	}

	return request, nil
}

// requestURL joins the base URL, the expanded template path, and the
// query.  Query parameters on the base URL are preserved.
func (c *Consumer) requestURL(path string, query url.Values) string {
	var o strings.Builder
	o.WriteString(c.base.Scheme)
	o.WriteString("://")
	o.WriteString(c.base.Host)

	o.WriteString(strings.TrimSuffix(c.base.EscapedPath(), "/"))
	if len(path) > 0 && !strings.HasPrefix(path, "/") {
		o.WriteByte('/')
	}

	o.WriteString(path)

	merged := query
	if baseQuery := c.base.Query(); len(baseQuery) > 0 {
		merged = make(url.Values, len(query)+len(baseQuery))
		for k, vs := range baseQuery {
			merged[k] = append([]string{}, vs...)
		}

		for k, vs := range query {
			merged[k] = append(merged[k], vs...)
		}
	}

	if len(merged) > 0 {
		o.WriteByte('?')
		o.WriteString(merged.Encode())
	}

	return o.String()
}

// newStatusError snapshots the beginning of an error response's body
// and releases the connection.
func newStatusError(request *http.Request, response *http.Response) *StatusError {
	snapshot, _ := io.ReadAll(io.LimitReader(response.Body, statusErrorBodyMax))
	drain(response.Body)

	return &StatusError{
		Method:     request.Method,
		URL:        request.URL.String(),
		StatusCode: response.StatusCode,
		Status:     response.Status,
		Body:       snapshot,
	}
}

func drain(body io.ReadCloser) {
	io.Copy(io.Discard, body) //nolint:errcheck
	body.Close()
}
