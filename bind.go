// SPDX-FileCopyrightText: 2023 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package beckon

import (
	"context"
	"fmt"
	"net/http"
	"reflect"
	"strings"

	"go.uber.org/multierr"
)

var (
	// contextType is the cached reflection lookup for context.Context
	contextType = reflect.TypeOf((*context.Context)(nil)).Elem()

	// errorType is the cached reflection lookup for the error type
	errorType = reflect.TypeOf((*error)(nil)).Elem()

	// responsePtrType is the cached reflection lookup for *http.Response
	responsePtrType = reflect.TypeOf((*http.Response)(nil))

	// anyMapType is the cached reflection lookup for map[string]any
	anyMapType = reflect.TypeOf(map[string]any(nil))
)

// errorValue is a convenience for safely producing a reflect.Value from an
// error.  Used when fabricating function stubs with reflect.MakeFunc.
func errorValue(err error) reflect.Value {
	errPtr := reflect.New(errorType)
	if err != nil {
		errPtr.Elem().Set(reflect.ValueOf(err))
	}

	return errPtr.Elem()
}

// Bind fills in the exported function fields of the struct that api points
// to, producing a ready-to-use API facade.  Each bound field must carry a
// beckon tag giving the HTTP method and URI template:
//
//	type RepoAPI struct {
//	    Get    func(ctx context.Context, owner, name string) (*Repo, error) `beckon:"GET /repos/{owner}/{name}"`
//	    Create func(ctx context.Context, r *Repo) (*Repo, error)            `beckon:"POST /repos"`
//	    Delete func(ctx context.Context, owner, name string) error          `beckon:"DELETE /repos/{owner}/{name}"`
//	}
//
// Bound functions take a context.Context first, followed by the call
// arguments, and return either (T, error), (*http.Response, error), or
// just error.
//
// By default, arguments are bound positionally: they map to the template's
// variables in order of first appearance, and one trailing argument beyond
// the template's variables becomes the request body (for POST, PUT, and
// PATCH) or is flattened into query parameters (for other methods, when it
// is a struct or map).  An args tag overrides the defaults with an explicit
// comma-separated binding per argument:
//
//	`beckon:"GET /search" args:"query=q,query=limit,header=X-Trace"`
//
// Recognized bindings are path=NAME, query=NAME, header=NAME, field=NAME,
// body, query (flatten a struct), querymap, headermap, and fieldmap.
//
// Additional tags refine the endpoint: headers lists static "K=V" pairs,
// format pins a converter factory by name, and status may be set to "any"
// to disable status checking.
//
// All binding problems are detected here, not at call time, and are
// reported as an aggregate error.
func (c *Consumer) Bind(api any) error {
	rv := reflect.ValueOf(api)
	if rv.Kind() != reflect.Ptr || rv.IsNil() || rv.Elem().Kind() != reflect.Struct {
		return &BindingError{Reason: "api must be a non-nil pointer to a struct"}
	}

	var (
		err    error
		target = rv.Elem()
		st     = target.Type()
	)

	for i := 0; i < st.NumField(); i++ {
		f := st.Field(i)
		spec, ok := f.Tag.Lookup("beckon")
		if !ok {
			continue
		}

		if len(f.PkgPath) > 0 {
			err = multierr.Append(err, fmt.Errorf("%s.%s: %w", st.Name(), f.Name,
				&BindingError{Reason: "tagged fields must be exported"}))
			continue
		}

		stub, stubErr := c.newStub(f.Type, spec, f.Tag)
		if stubErr != nil {
			err = multierr.Append(err, fmt.Errorf("%s.%s: %w", st.Name(), f.Name, stubErr))
			continue
		}

		target.Field(i).Set(stub)
	}

	return err
}

// argPlan is the compiled binding for a single stub argument.
type argPlan struct {
	kind argKind
	name string
}

// newStub compiles a tagged function field into a calling stub.
func (c *Consumer) newStub(ft reflect.Type, spec string, tag reflect.StructTag) (reflect.Value, error) {
	endpoint, err := newTaggedEndpoint(spec, tag)
	if err != nil {
		return reflect.Value{}, err
	}

	if err := checkSignature(ft); err != nil {
		return reflect.Value{}, err
	}

	plan, err := compilePlan(ft, endpoint, tag)
	if err != nil {
		return reflect.Value{}, err
	}

	var resultType reflect.Type
	if ft.NumOut() == 2 {
		resultType = ft.Out(0)
	}

	return reflect.MakeFunc(ft, func(in []reflect.Value) []reflect.Value {
		ctx, _ := in[0].Interface().(context.Context)
		args := make([]Arg, 0, len(plan))
		for i, p := range plan {
			v := in[i+1].Interface()
			switch p.kind {
			case kindPath:
				args = append(args, Path(p.name, v))
			case kindQuery:
				args = append(args, Query(p.name, v))
			case kindQueryMap:
				m, _ := v.(map[string]any)
				args = append(args, QueryMap(m))
			case kindQueryStruct:
				args = append(args, QueryStruct(v))
			case kindHeader:
				args = append(args, HeaderArg(p.name, v))
			case kindHeaderMap:
				m, _ := v.(map[string]any)
				args = append(args, HeaderMap(m))
			case kindField:
				args = append(args, Field(p.name, v))
			case kindFieldMap:
				m, _ := v.(map[string]any)
				args = append(args, FieldMap(m))
			case kindBody:
				args = append(args, Body(v))
			}
		}

		switch {
		case resultType == nil:
			return []reflect.Value{
				errorValue(c.Do(ctx, endpoint, args, nil)),
			}

		case resultType == responsePtrType:
			var response *http.Response
			err := c.Do(ctx, endpoint, args, &response)
			return []reflect.Value{
				reflect.ValueOf(&response).Elem(),
				errorValue(err),
			}

		default:
			out := reflect.New(resultType)
			err := c.Do(ctx, endpoint, args, out.Interface())
			return []reflect.Value{
				out.Elem(),
				errorValue(err),
			}
		}
	}), nil
}

// newTaggedEndpoint builds the endpoint described by a field's tags.
func newTaggedEndpoint(spec string, tag reflect.StructTag) (*Endpoint, error) {
	parts := strings.Fields(spec)
	if len(parts) != 2 {
		return nil, &BindingError{Name: spec, Reason: `the beckon tag must be "METHOD /uri/template"`}
	}

	var opts []EndpointOption
	if headers, ok := tag.Lookup("headers"); ok {
		kv, err := splitHeadersTag(headers)
		if err != nil {
			return nil, err
		}

		opts = append(opts, WithHeaders(kv...))
	}

	if format, ok := tag.Lookup("format"); ok {
		opts = append(opts, WithFormat(format))
	}

	if status, ok := tag.Lookup("status"); ok {
		if status != "any" {
			return nil, &BindingError{Name: status, Reason: `the status tag only accepts "any"`}
		}

		opts = append(opts, AllowAnyStatus())
	}

	return NewEndpoint(parts[0], parts[1], opts...)
}

func splitHeadersTag(headers string) (kv []string, err error) {
	for _, pair := range strings.Split(headers, ",") {
		name, value, found := strings.Cut(pair, "=")
		name = strings.TrimSpace(name)
		if !found || len(name) == 0 {
			return nil, &BindingError{Name: pair, Reason: `headers entries must be "Name=value"`}
		}

		kv = append(kv, name, strings.TrimSpace(value))
	}

	return
}

// checkSignature enforces the allowed stub shapes.
func checkSignature(ft reflect.Type) error {
	switch {
	case ft.Kind() != reflect.Func:
		return &BindingError{Reason: "tagged fields must be functions"}

	case ft.IsVariadic():
		return &BindingError{Reason: "variadic functions cannot be bound"}

	case ft.NumIn() < 1 || ft.In(0) != contextType:
		return &BindingError{Reason: "the first argument must be a context.Context"}

	case ft.NumOut() < 1 || ft.NumOut() > 2 || ft.Out(ft.NumOut()-1) != errorType:
		return &BindingError{Reason: "functions must return (T, error), (*http.Response, error), or error"}
	}

	return nil
}

// compilePlan maps each stub argument onto a request component, either
// from an explicit args tag or positionally.
func compilePlan(ft reflect.Type, e *Endpoint, tag reflect.StructTag) ([]argPlan, error) {
	var (
		plan []argPlan
		err  error
		n    = ft.NumIn() - 1
	)

	if args, ok := tag.Lookup("args"); ok {
		plan, err = parseArgsTag(args)
	} else {
		plan, err = positionalPlan(ft, e, n)
	}

	if err != nil {
		return nil, err
	}

	if len(plan) != n {
		return nil, &BindingError{Reason: fmt.Sprintf("%d bindings for %d arguments", len(plan), n)}
	}

	return plan, validatePlan(ft, e, plan)
}

func parseArgsTag(args string) (plan []argPlan, err error) {
	for _, entry := range strings.Split(args, ",") {
		entry = strings.TrimSpace(entry)
		kind, name, named := strings.Cut(entry, "=")

		var p argPlan
		switch {
		case kind == "path" && named:
			p = argPlan{kind: kindPath, name: name}
		case kind == "query" && named:
			p = argPlan{kind: kindQuery, name: name}
		case kind == "header" && named:
			p = argPlan{kind: kindHeader, name: name}
		case kind == "field" && named:
			p = argPlan{kind: kindField, name: name}
		case entry == "query":
			p = argPlan{kind: kindQueryStruct}
		case entry == "querymap":
			p = argPlan{kind: kindQueryMap}
		case entry == "headermap":
			p = argPlan{kind: kindHeaderMap}
		case entry == "fieldmap":
			p = argPlan{kind: kindFieldMap}
		case entry == "body":
			p = argPlan{kind: kindBody}
		default:
			return nil, &BindingError{Name: entry, Reason: "unrecognized args entry"}
		}

		plan = append(plan, p)
	}

	return
}

// positionalPlan implements the default binding: template variables in
// order, with at most one trailing body or query struct.
func positionalPlan(ft reflect.Type, e *Endpoint, n int) ([]argPlan, error) {
	vars := e.template.Variables()
	plan := make([]argPlan, 0, n)
	for _, v := range vars {
		plan = append(plan, argPlan{kind: kindPath, name: v})
	}

	switch {
	case n == len(vars):
		return plan, nil

	case n == len(vars)+1:
		if e.acceptsBody() {
			return append(plan, argPlan{kind: kindBody}), nil
		}

		t := ft.In(ft.NumIn() - 1)
		for t.Kind() == reflect.Ptr {
			t = t.Elem()
		}

		if t.Kind() == reflect.Struct || t.Kind() == reflect.Map {
			return append(plan, argPlan{kind: kindQueryStruct}), nil
		}

		return nil, &BindingError{Reason: "a trailing " + t.String() + " argument cannot be bound positionally; use an args tag"}
	}

	return nil, &BindingError{
		Reason: fmt.Sprintf("%d arguments cannot be bound to %d template variables; use an args tag", n, len(vars)),
	}
}

// validatePlan cross-checks a plan against the template and argument types.
func validatePlan(ft reflect.Type, e *Endpoint, plan []argPlan) error {
	var (
		err    error
		bound  = make(map[string]bool, len(plan))
		bodies int
	)

	for i, p := range plan {
		switch p.kind {
		case kindPath:
			if !e.template.Has(p.name) {
				err = multierr.Append(err, &BindingError{Name: p.name, Reason: "no such template variable"})
			}

			bound[p.name] = true

		case kindBody:
			bodies++

		case kindQueryMap, kindHeaderMap, kindFieldMap:
			if ft.In(i+1) != anyMapType {
				err = multierr.Append(err, &BindingError{Name: p.kind.String(), Reason: "the argument must be a map[string]any"})
			}
		}
	}

	for _, v := range e.template.Variables() {
		if !bound[v] {
			err = multierr.Append(err, &BindingError{Name: v, Reason: "template variable has no path binding"})
		}
	}

	if bodies > 1 {
		err = multierr.Append(err, &BindingError{Name: "body", Reason: "only one body binding is allowed"})
	}

	return err
}
