// Package beckon builds declarative HTTP API consumers:
//
// # Endpoint descriptors
//
// An Endpoint pairs an HTTP method with a URI template and static request
// metadata.  A Consumer executes endpoints against a base URL, binding
// call arguments to path variables, query parameters, headers, form
// fields, and request bodies.
//
// # Bound facades
//
// Consumer.Bind fills in the tagged function fields of a struct, turning
// an interface-shaped type into a working API client with no hand-written
// request code.
//
// # Converters
//
// Serialization is pluggable through the convert subpackage, which selects
// a converter factory for each request and response body type.
package beckon
