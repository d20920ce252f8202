// SPDX-FileCopyrightText: 2023 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package beckon

import (
	"crypto/tls"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
)

type ConfigSuite struct {
	suite.Suite
}

func (suite *ConfigSuite) TestTransportConfig() {
	tc := TransportConfig{
		TLSHandshakeTimeout:   5 * time.Second,
		DisableKeepAlives:     true,
		MaxIdleConns:          50,
		MaxIdleConnsPerHost:   10,
		IdleConnTimeout:       time.Minute,
		ResponseHeaderTimeout: 2 * time.Second,
		ForceAttemptHTTP2:     true,
	}

	transport, err := tc.NewTransport(nil)
	suite.Require().NoError(err)
	suite.Equal(5*time.Second, transport.TLSHandshakeTimeout)
	suite.True(transport.DisableKeepAlives)
	suite.Equal(50, transport.MaxIdleConns)
	suite.Equal(10, transport.MaxIdleConnsPerHost)
	suite.Equal(time.Minute, transport.IdleConnTimeout)
	suite.Equal(2*time.Second, transport.ResponseHeaderTimeout)
	suite.True(transport.ForceAttemptHTTP2)
	suite.Nil(transport.TLSClientConfig)
}

func (suite *ConfigSuite) TestTLSConfig() {
	suite.Run("Nil", func() {
		var cfg *TLSConfig
		tc, err := cfg.New()
		suite.NoError(err)
		suite.Nil(tc)
	})

	suite.Run("Defaults", func() {
		tc, err := (&TLSConfig{}).New()
		suite.Require().NoError(err)
		suite.Equal(uint16(tls.VersionTLS13), tc.MinVersion)
		suite.Equal([]string{"http/1.1"}, tc.NextProtos)
		suite.False(tc.InsecureSkipVerify)
	})

	suite.Run("Fields", func() {
		tc, err := (&TLSConfig{
			ServerName:         "example.com",
			InsecureSkipVerify: true,
			NextProtos:         []string{"h2"},
			MinVersion:         tls.VersionTLS12,
			MaxVersion:         tls.VersionTLS10,
		}).New()

		suite.Require().NoError(err)
		suite.Equal("example.com", tc.ServerName)
		suite.True(tc.InsecureSkipVerify)
		suite.Equal([]string{"h2"}, tc.NextProtos)

		// a max below the min is raised to the min
		suite.Equal(tc.MinVersion, tc.MaxVersion)
	})

	suite.Run("BadCertificate", func() {
		_, err := (&TLSConfig{
			Certificates: ExternalCertificates{
				{KeyFile: "key-only.pem"},
			},
		}).New()

		suite.ErrorIs(err, ErrTLSCertificateRequired)
	})

	suite.Run("MissingCertPool", func() {
		_, err := (&TLSConfig{
			RootCAs: ExternalCertPool{"nosuchfile.pem"},
		}).New()

		suite.Error(err)
	})
}

func (suite *ConfigSuite) TestClientConfig() {
	suite.Run("Success", func() {
		client, err := ClientConfig{
			Timeout: 13 * time.Second,
			Header: http.Header{
				"X-Source": {"config"},
			},
		}.NewClient()

		suite.Require().NoError(err)
		suite.Equal(13*time.Second, client.Timeout)
		suite.NotNil(client.Transport)
	})

	suite.Run("NoHeader", func() {
		client, err := ClientConfig{}.NewClient()
		suite.Require().NoError(err)

		// with no headers to stamp, the transport is used directly
		_, ok := client.Transport.(*http.Transport)
		suite.True(ok)
	})

	suite.Run("BadTLS", func() {
		_, err := ClientConfig{
			TLS: &TLSConfig{
				Certificates: ExternalCertificates{
					{CertificateFile: "cert-only.pem"},
				},
			},
		}.NewClient()

		suite.ErrorIs(err, ErrTLSCertificateRequired)
	})
}

func TestConfig(t *testing.T) {
	suite.Run(t, new(ConfigSuite))
}
