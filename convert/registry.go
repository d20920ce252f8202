// SPDX-FileCopyrightText: 2023 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package convert

import (
	"reflect"
	"sync"
)

// Registry is an immutable chain of converter factories.  When queried for
// a converter, the registry traverses its chain in order and returns the
// first non-nil result.  The Standard factory is always consulted last,
// whether or not it appears in the chain, so the zero value of this type
// is a usable registry that handles raw passthrough types.
type Registry struct {
	factories []Factory
}

// NewRegistry builds a registry from the given chain.  Factories that
// appear earlier are given the opportunity to handle a type before those
// that appear later.
func NewRegistry(factories ...Factory) Registry {
	return Registry{
		factories: append([]Factory{}, factories...),
	}
}

// Factories returns a copy of this registry's chain, not including the
// implicit terminal Standard factory.
func (r Registry) Factories() []Factory {
	return append([]Factory{}, r.factories...)
}

// With returns a new registry whose chain begins with the given factories
// followed by this registry's chain.  This registry is not modified.
// Consumer-scoped converters are layered over defaults this way.
func (r Registry) With(factories ...Factory) Registry {
	if len(factories) == 0 {
		return r
	}

	chain := make([]Factory, 0, len(factories)+len(r.factories))
	chain = append(chain, factories...)
	chain = append(chain, r.factories...)
	return Registry{factories: chain}
}

// Named locates a factory in this chain by its Name.  The implicit
// Standard factory is found under the name "standard".
func (r Registry) Named(name string) (Factory, bool) {
	for _, f := range r.factories {
		if f.Name() == name {
			return f, true
		}
	}

	if name == standardName {
		return Standard{}, true
	}

	return nil, false
}

// RequestConverter traverses the chain for a converter that can marshal
// request bodies of the given type.
func (r Registry) RequestConverter(t reflect.Type) (Converter, error) {
	for _, f := range r.factories {
		if c := f.RequestConverter(t); c != nil {
			return c, nil
		}
	}

	if c := (Standard{}).RequestConverter(t); c != nil {
		return c, nil
	}

	return nil, &NoConverterError{Type: t, Direction: "request"}
}

// ResponseConverter traverses the chain for a converter that can unmarshal
// response bodies into the given type.
func (r Registry) ResponseConverter(t reflect.Type) (Converter, error) {
	for _, f := range r.factories {
		if c := f.ResponseConverter(t); c != nil {
			return c, nil
		}
	}

	if c := (Standard{}).ResponseConverter(t); c != nil {
		return c, nil
	}

	return nil, &NoConverterError{Type: t, Direction: "response"}
}

// String renders a parameter value using the chain's string converters.
// A nil value renders as the empty string.
func (r Registry) String(v any) (string, error) {
	if v == nil {
		return "", nil
	}

	t := reflect.TypeOf(v)
	for _, f := range r.factories {
		if sf := f.StringConverter(t); sf != nil {
			return sf(v)
		}
	}

	if sf := (Standard{}).StringConverter(t); sf != nil {
		return sf(v)
	}

	return "", &NoConverterError{Type: t, Direction: "string"}
}

var (
	installLock sync.Mutex
	installed   []Factory
)

// Install registers factories that will be included automatically in every
// registry returned by Default.  Installed factories are consulted in the
// order they were installed, ahead of the built-in JSON factory.
//
// Install affects registries created after the call.  Existing consumers
// are unaffected.
func Install(factories ...Factory) {
	installLock.Lock()
	defer installLock.Unlock()
	installed = append(installed, factories...)
}

// Default returns the registry used by consumers that do not configure
// their own: any installed factories, then JSON, then (implicitly) Standard.
func Default() Registry {
	installLock.Lock()
	defer installLock.Unlock()

	chain := make([]Factory, 0, len(installed)+1)
	chain = append(chain, installed...)
	chain = append(chain, JSON{})
	return Registry{factories: chain}
}
