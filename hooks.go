// SPDX-FileCopyrightText: 2023 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package beckon

import "net/http"

// ResponseHook inspects or replaces a response before status checking and
// body conversion.  Returning an error aborts the call.  Hooks run in the
// order they were registered.
type ResponseHook func(*http.Response) (*http.Response, error)

// ErrorHook inspects or replaces any error produced by a call, including
// transport errors and *StatusError values.  A hook may translate errors
// into domain-specific types, or suppress one by returning nil.
type ErrorHook func(error) error
