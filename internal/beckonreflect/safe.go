// SPDX-FileCopyrightText: 2023 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package beckonreflect

import (
	"reflect"
)

// Safe returns a safe instance of T.  The candidate is used if it is
// a valid, non-nil instance.  Otherwise, the def value is used.
//
// The primary use case is supplying defaults for interface-typed
// configuration, e.g. falling back to http.DefaultClient when no
// client was configured:
//
//	client := beckonreflect.Safe[httpaux.Client](c.client, http.DefaultClient)
func Safe[T any](candidate, def T) (result T) {
	result = def
	defer func() {
		// allow IsNil to panic instead of trying all possible types
		if r := recover(); r != nil {
			// IsNil panicked, which means candidate wasn't a type that could be nil
			result = candidate
		}
	}()

	if cv := reflect.ValueOf(candidate); cv.IsValid() && !cv.IsNil() {
		result = candidate
	}

	return
}
