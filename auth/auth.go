// SPDX-FileCopyrightText: 2023 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

// Package auth provides round tripper middleware that stamps credentials
// onto outgoing requests.
package auth

import (
	"encoding/base64"
	"net/http"

	"github.com/xmidt-org/httpaux/roundtrip"
)

// Basic produces middleware that sets an Authorization header with the
// Basic scheme, per RFC 7617.
func Basic(user, password string) roundtrip.Constructor {
	credentials := "Basic " + base64.StdEncoding.EncodeToString(
		[]byte(user+":"+password),
	)

	return setHeader("Authorization", credentials)
}

// Bearer produces middleware that sets an Authorization header with the
// Bearer scheme, per RFC 6750.
func Bearer(token string) roundtrip.Constructor {
	return setHeader("Authorization", "Bearer "+token)
}

// HeaderToken produces middleware that sets an arbitrary header, such as
// X-Api-Key, on every request.
func HeaderToken(name, value string) roundtrip.Constructor {
	return setHeader(http.CanonicalHeaderKey(name), value)
}

// QueryToken produces middleware that appends a credential as a query
// parameter on every request.
func QueryToken(name, value string) roundtrip.Constructor {
	return func(next http.RoundTripper) http.RoundTripper {
		return roundtrip.Func(func(request *http.Request) (*http.Response, error) {
			q := request.URL.Query()
			q.Set(name, value)
			request.URL.RawQuery = q.Encode()
			return next.RoundTrip(request)
		})
	}
}

// setHeader is the common decoration: overwrite one header, pass the
// request along.
func setHeader(name, value string) roundtrip.Constructor {
	return func(next http.RoundTripper) http.RoundTripper {
		return roundtrip.Func(func(request *http.Request) (*http.Response, error) {
			if request.Header == nil {
				request.Header = make(http.Header, 1)
			}

			request.Header.Set(name, value)
			return next.RoundTrip(request)
		})
	}
}
