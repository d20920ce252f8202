// SPDX-FileCopyrightText: 2023 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

// Package beckonfx integrates beckon consumers into an uber/fx
// application, with client configuration unmarshaled from viper.
package beckonfx

import (
	"github.com/spf13/viper"
	"go.uber.org/fx"

	"github.com/xmidt-org/beckon"
)

// ConfigIn is the set of dependencies for unmarshaling client
// configuration.  DecodeOptions may be supplied as a group to influence
// every unmarshal in the application.
type ConfigIn struct {
	fx.In

	Viper         *viper.Viper
	DecodeOptions []viper.DecoderConfigOption `optional:"true"`
}

// ProvideClientConfig emits a *beckon.ClientConfig unmarshaled from the
// given viper configuration key.  Durations and other textual types are
// handled by beckon.DefaultDecodeHooks.
func ProvideClientConfig(key string) fx.Option {
	return fx.Provide(
		func(in ConfigIn) (*beckon.ClientConfig, error) {
			cfg := new(beckon.ClientConfig)
			err := in.Viper.UnmarshalKey(
				key,
				cfg,
				beckon.Merge(
					[]viper.DecoderConfigOption{beckon.DefaultDecodeHooks},
					in.DecodeOptions,
				),
			)

			return cfg, err
		},
	)
}

// ConsumerIn is the set of dependencies for building a consumer.  The
// client configuration is optional; when absent, the consumer uses its
// default client.
type ConsumerIn struct {
	fx.In

	Config *beckon.ClientConfig `optional:"true"`
}

// ProvideConsumer emits a *beckon.Consumer for the given base URL.  Any
// *beckon.ClientConfig component in the application is applied first, so
// explicit options given here can override it.
func ProvideConsumer(baseURL string, opts ...beckon.ConsumerOption) fx.Option {
	return fx.Provide(
		func(in ConsumerIn) (*beckon.Consumer, error) {
			all := make([]beckon.ConsumerOption, 0, len(opts)+1)
			if in.Config != nil {
				all = append(all, beckon.WithConfig(*in.Config))
			}

			all = append(all, opts...)
			return beckon.New(baseURL, all...)
		},
	)
}

// ProvideAPI emits a bound *T facade, filling in T's tagged function
// fields from the application's *beckon.Consumer.
func ProvideAPI[T any]() fx.Option {
	return fx.Provide(
		func(c *beckon.Consumer) (*T, error) {
			api := new(T)
			if err := c.Bind(api); err != nil {
				return nil, err
			}

			return api, nil
		},
	)
}
