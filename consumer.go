// SPDX-FileCopyrightText: 2023 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package beckon

import (
	"net/http"
	"net/url"

	"github.com/xmidt-org/httpaux"

	"github.com/xmidt-org/beckon/convert"
	"github.com/xmidt-org/beckon/internal/beckonreflect"
)

// Consumer executes the HTTP operations described by endpoints against a
// single base URL.  A Consumer is immutable after New returns and is safe
// for concurrent use.
//
// Transport is delegated to anything implementing httpaux.Client, which
// *http.Client satisfies.  By default, http.DefaultClient is used.
type Consumer struct {
	base     *url.URL
	client   httpaux.Client
	chain    Chain
	registry convert.Registry
	header   Header

	responseHooks []ResponseHook
	errorHooks    []ErrorHook

	allowAny bool
}

// ConsumerOption configures a Consumer under construction.
type ConsumerOption = Option[Consumer]

// New constructs a Consumer for the given base URL, which must be
// absolute.  Options are applied in order, and all option errors are
// aggregated.
func New(baseURL string, opts ...ConsumerOption) (*Consumer, error) {
	base, err := url.Parse(baseURL)
	if err != nil {
		return nil, err
	}

	if !base.IsAbs() || len(base.Host) == 0 {
		return nil, &BindingError{Name: "baseURL", Reason: "base URL must be absolute"}
	}

	c := &Consumer{
		base:     base,
		registry: convert.Default(),
	}

	if err := (Options[Consumer])(opts).Apply(c); err != nil {
		return nil, err
	}

	c.finalize()
	return c, nil
}

// finalize folds the middleware chain into the configured client.  For an
// *http.Client, the chain decorates a shallow copy's transport so the
// caller's client is never modified.  Any other httpaux.Client is adapted
// through a round tripper.
func (c *Consumer) finalize() {
	client := beckonreflect.Safe[httpaux.Client](c.client, http.DefaultClient)
	if c.chain.Len() == 0 {
		c.client = client
		return
	}

	if hc, ok := client.(*http.Client); ok {
		decorated := *hc
		decorated.Transport = c.chain.Then(hc.Transport)
		c.client = &decorated
		return
	}

	rt := c.chain.Then(clientRoundTripper{next: client})
	c.client = clientFunc(rt.RoundTrip)
}

// clientRoundTripper adapts an httpaux.Client to http.RoundTripper so
// that round tripper middleware can decorate it.
type clientRoundTripper struct {
	next httpaux.Client
}

func (crt clientRoundTripper) RoundTrip(request *http.Request) (*http.Response, error) {
	return crt.next.Do(request)
}

// clientFunc adapts a closure back into an httpaux.Client.
type clientFunc func(*http.Request) (*http.Response, error)

func (cf clientFunc) Do(request *http.Request) (*http.Response, error) {
	return cf(request)
}

// registryFor resolves the converter registry for a single call.  When the
// endpoint pins a format, a registry containing just that factory is used;
// the Standard factory remains implicitly available as the terminal link.
func (c *Consumer) registryFor(e *Endpoint) (convert.Registry, error) {
	if len(e.format) == 0 {
		return c.registry, nil
	}

	factory, ok := c.registry.Named(e.format)
	if !ok {
		return convert.Registry{}, &BindingError{Name: e.format, Reason: "no converter factory with this name is registered"}
	}

	return convert.NewRegistry(factory), nil
}

// WithClient sets the HTTP client used to execute requests.  Both
// *http.Client and custom httpaux.Client implementations are accepted.
func WithClient(client httpaux.Client) ConsumerOption {
	return OptionFunc[Consumer](func(c *Consumer) error {
		c.client = client
		return nil
	})
}

// WithConfig builds the consumer's *http.Client from a ClientConfig
// prototype, typically unmarshaled from external configuration.
func WithConfig(cfg ClientConfig) ConsumerOption {
	client, err := cfg.NewClient()
	if err != nil {
		return InvalidOption[Consumer](err)
	}

	return WithClient(client)
}

// WithBaseHeaders attaches headers to every request this consumer makes.
// The strings are key/value pairs, as in NewHeaders.
func WithBaseHeaders(kv ...string) ConsumerOption {
	return OptionFunc[Consumer](func(c *Consumer) error {
		c.header = c.header.Extend(NewHeaders(kv...))
		return nil
	})
}

// WithBaseHeader attaches a deep copy of the given headers to every
// request this consumer makes.
func WithBaseHeader(h http.Header) ConsumerOption {
	return OptionFunc[Consumer](func(c *Consumer) error {
		c.header = c.header.Extend(NewHeader(h))
		return nil
	})
}

// WithConverters layers converter factories over the consumer's registry.
// Factories given here take precedence over defaults.
func WithConverters(factories ...convert.Factory) ConsumerOption {
	return OptionFunc[Consumer](func(c *Consumer) error {
		c.registry = c.registry.With(factories...)
		return nil
	})
}

// WithRegistry replaces the consumer's converter registry entirely,
// discarding the process-global defaults.
func WithRegistry(r convert.Registry) ConsumerOption {
	return OptionFunc[Consumer](func(c *Consumer) error {
		c.registry = r
		return nil
	})
}

// WithMiddleware appends round tripper constructors to the consumer's
// middleware chain.  Constructors execute in the order given.
func WithMiddleware(ctors ...func(http.RoundTripper) http.RoundTripper) ConsumerOption {
	return OptionFunc[Consumer](func(c *Consumer) error {
		for _, ctor := range ctors {
			c.chain = c.chain.Append(ctor)
		}

		return nil
	})
}

// WithResponseHook appends response hooks, which run in registration order.
func WithResponseHook(hooks ...ResponseHook) ConsumerOption {
	return OptionFunc[Consumer](func(c *Consumer) error {
		c.responseHooks = append(c.responseHooks, hooks...)
		return nil
	})
}

// WithErrorHook appends error hooks, which run in registration order.
func WithErrorHook(hooks ...ErrorHook) ConsumerOption {
	return OptionFunc[Consumer](func(c *Consumer) error {
		c.errorHooks = append(c.errorHooks, hooks...)
		return nil
	})
}

// PermitAnyStatus disables status checking for every endpoint on this
// consumer.  See AllowAnyStatus for the per-endpoint version.
func PermitAnyStatus() ConsumerOption {
	return OptionFunc[Consumer](func(c *Consumer) error {
		c.allowAny = true
		return nil
	})
}
