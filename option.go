// SPDX-FileCopyrightText: 2023 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package beckon

import "go.uber.org/multierr"

// Option represents something that can modify a target object under
// construction, such as a Consumer or an Endpoint.
type Option[T any] interface {
	Apply(*T) error
}

// OptionFunc is a closure type that can act as an Option.
type OptionFunc[T any] func(*T) error

func (of OptionFunc[T]) Apply(t *T) error {
	return of(t)
}

// Options is an aggregate Option that allows several options to
// be grouped together.
type Options[T any] []Option[T]

// Apply applies all the options in this slice, returning an
// aggregate error if any errors occurred.
func (o Options[T]) Apply(t *T) (err error) {
	for _, opt := range o {
		err = multierr.Append(err, opt.Apply(t))
	}

	return
}

// OptionClosure represents the closure types that are convertible
// into Option objects.
type OptionClosure[T any] interface {
	~func(*T) | ~func(*T) error
}

// AsOption converts a closure into an Option for a given target type.
func AsOption[T any, F OptionClosure[T]](f F) Option[T] {
	fv := any(f)
	if of, ok := fv.(func(*T) error); ok {
		return OptionFunc[T](of)
	}

	return OptionFunc[T](func(t *T) error {
		fv.(func(*T))(t)
		return nil
	})
}

// InvalidOption returns an Option that returns the given error.
// Useful instead of nil or a panic to indicate that something in the setup
// of an Option went wrong.
func InvalidOption[T any](err error) Option[T] {
	return OptionFunc[T](func(_ *T) error {
		return err
	})
}
