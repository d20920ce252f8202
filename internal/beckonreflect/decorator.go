// SPDX-FileCopyrightText: 2023 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package beckonreflect

// Decorate handles the general case of decorating an object T.
// The principal use case is round tripper middleware.
//
// Decorators are applied in reverse so that the first decorator in d
// is the outermost, i.e. executes first at runtime.
func Decorate[T any, D ~func(T) T](t T, d ...D) T {
	for i := len(d) - 1; i >= 0; i-- {
		t = d[i](t)
	}

	return t
}
