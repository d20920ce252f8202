// SPDX-FileCopyrightText: 2023 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package beckon

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/xmidt-org/httpaux/roundtrip"

	"github.com/xmidt-org/beckon/internal/beckonreflect"
)

// Chain is a sequence of roundtrip.Constructors.  A Chain is immutable,
// and will apply its constructors in order.  The zero value for this type
// is a valid, empty chain that will not decorate anything.
type Chain struct {
	c []roundtrip.Constructor
}

// NewChain creates a chain from a sequence of constructors.  The constructors
// are always applied in the order presented here.
func NewChain(c ...roundtrip.Constructor) Chain {
	return Chain{
		c: append([]roundtrip.Constructor{}, c...),
	}
}

// Append adds additional constructors to this chain, and returns the new chain.
// This chain is not modified.  If more has zero length, this chain is returned.
func (ch Chain) Append(more ...roundtrip.Constructor) Chain {
	if len(more) > 0 {
		return Chain{
			c: append(
				append([]roundtrip.Constructor{}, ch.c...),
				more...,
			),
		}
	}

	return ch
}

// Extend is like Append, except that the additional constructors come from
// another chain
func (ch Chain) Extend(more Chain) Chain {
	return ch.Append(more.c...)
}

// Len returns the number of constructors in this chain.
func (ch Chain) Len() int {
	return len(ch.c)
}

// Then decorates the given round tripper with all of the constructors
// applied, in the order they were presented to this chain.  If next is
// nil, then the returned RoundTripper will decorate http.DefaultTransport.
// If this chain is empty, this method simply returns next, even if next is nil.
func (ch Chain) Then(next http.RoundTripper) http.RoundTripper {
	if len(ch.c) > 0 {
		return beckonreflect.Decorate(
			beckonreflect.Safe(next, http.DefaultTransport),
			ch.c...,
		)
	}

	return next
}

// requestIDHeader is the header stamped by RequestID.
const requestIDHeader = "X-Request-Id"

// RequestID is a roundtrip.Constructor that stamps each outgoing request
// with a unique X-Request-Id header.  A request that already carries the
// header is passed through untouched, so ids survive retries and caller
// overrides are honored.
func RequestID(next http.RoundTripper) http.RoundTripper {
	return roundtrip.Func(func(request *http.Request) (*http.Response, error) {
		if len(request.Header.Get(requestIDHeader)) == 0 {
			if request.Header == nil {
				request.Header = make(http.Header, 1)
			}

			request.Header.Set(requestIDHeader, uuid.NewString())
		}

		return next.RoundTrip(request)
	})
}
