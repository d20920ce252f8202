// SPDX-FileCopyrightText: 2023 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package beckon

import (
	"crypto/tls"
	"crypto/x509"
	"errors"
	"net/http"
	"os"
	"time"
)

var (
	ErrTLSCertificateRequired         = errors.New("both a certificateFile and keyFile are required")
	ErrUnableToAddClientCACertificate = errors.New("unable to add client CA certificate")

	// strongCipherSuites are the tls.CipherSuite values that are safe for TLS versions less than 1.3
	strongCipherSuites = []uint16{
		tls.TLS_ECDHE_ECDSA_WITH_AES_256_GCM_SHA384,
		tls.TLS_ECDHE_RSA_WITH_AES_256_GCM_SHA384,
	}
)

// ExternalCertificate represents a client certificate with its key file on
// the filesystem.
type ExternalCertificate struct {
	CertificateFile string
	KeyFile         string
}

// Load reads in the certificate and key files from the file system
func (ec ExternalCertificate) Load() (tls.Certificate, error) {
	if len(ec.CertificateFile) > 0 && len(ec.KeyFile) > 0 {
		return tls.LoadX509KeyPair(ec.CertificateFile, ec.KeyFile)
	}

	return tls.Certificate{}, ErrTLSCertificateRequired
}

// ExternalCertificates is a sequence of externally available certificates
type ExternalCertificates []ExternalCertificate

// AppendTo loads and appends each certificate in this slice.  Any error short
// circuits and returns that error together with the slice with any successfully
// loaded certificates.
func (ecs ExternalCertificates) AppendTo(certs []tls.Certificate) ([]tls.Certificate, error) {
	for _, ec := range ecs {
		cert, err := ec.Load()
		if err != nil {
			return certs, err
		}

		certs = append(certs, cert)
	}

	return certs, nil
}

// ExternalCertPool is a sequence of file names containing PEM-encoded certificates
// or certificate bundles to be added to an x509.CertPool
type ExternalCertPool []string

// AppendTo adds each PEM-encoded file from this external pool to the given
// x509.CertPool.  The number of certs added is returned, and any error will
// short circuit subsequent loading.
func (ecp ExternalCertPool) AppendTo(pool *x509.CertPool) (int, error) {
	var loaded int
	for _, ec := range ecp {
		pemCert, err := os.ReadFile(ec)
		if err != nil {
			return loaded, err
		}

		if pool.AppendCertsFromPEM(pemCert) {
			loaded++
		} else {
			return loaded, ErrUnableToAddClientCACertificate
		}
	}

	return loaded, nil
}

// TLSConfig represents the unmarshaled, client-side tls options.
type TLSConfig struct {
	// Certificates is the optional set of client certificates to present
	// to a server requiring mTLS.
	Certificates ExternalCertificates

	// RootCAs is the optional certificate pool for root certificates.  By default, the golang
	// library uses the system certificate pool if this is unset.
	RootCAs ExternalCertPool

	// ServerName is used to validate the server's hostname.  This field is optional
	// and has no default.
	ServerName string

	// InsecureSkipVerify indicates whether the server's certificate chain
	// and hostname should go unverified.
	InsecureSkipVerify bool

	// NextProtos is the list of supported application protocols.  Defaults to "http/1.1" if unset.
	NextProtos []string

	// MinVersion is the minimum required TLS version.  If unset, 1.3 is used.
	MinVersion uint16

	// MaxVersion is the maximum required TLS version.  If unset, the internal crypto/tls default is used.
	MaxVersion uint16
}

// nextProtos returns the appropriate next protocols for the TLS handshake.  By default, http/1.1 is used.
func (c *TLSConfig) nextProtos() []string {
	nextProtos := append([]string{}, c.NextProtos...)
	if len(nextProtos) == 0 {
		// assume http/1.1 by default
		nextProtos = append(nextProtos, "http/1.1")
	}

	return nextProtos
}

// enforceVersions ensures certain constraints on the TLS version are met.
func (c *TLSConfig) enforceVersions(tc *tls.Config) {
	// If MinVersion was unset in configuration, explicitly establish it as 1.3.
	// This is different from the default crypto/tls behavior, as that package
	// defaults to 1.0 if MinVersion is unset.
	if tc.MinVersion == 0 {
		tc.MinVersion = tls.VersionTLS13
	}

	// If MaxVersion is set and less than MinVersion, set it explicitly to MinVersion.
	// We don't need to worry about the case where MaxVersion is unset, as crypto/tls
	// uses 1.3 in that case.
	if tc.MaxVersion != 0 && tc.MaxVersion < tc.MinVersion {
		tc.MaxVersion = tc.MinVersion
	}
}

// certificates loads any externally configured certificates and pools.
func (c *TLSConfig) certificates(tc *tls.Config) error {
	certs, err := c.Certificates.AppendTo(nil)
	if err != nil {
		return err
	}

	tc.Certificates = certs
	if len(c.RootCAs) > 0 {
		rootCAs := x509.NewCertPool()
		if count, err := c.RootCAs.AppendTo(rootCAs); err != nil {
			return err
		} else if count > 0 {
			tc.RootCAs = rootCAs
		}
	}

	return nil
}

// New constructs a *tls.Config from this TLSConfig instance, usually unmarshaled
// from some external source.  If this instance is nil, it returns nil with no error.
func (c *TLSConfig) New() (*tls.Config, error) {
	if c == nil {
		return nil, nil
	}

	tc := &tls.Config{
		MinVersion:         c.MinVersion,
		MaxVersion:         c.MaxVersion,
		NextProtos:         c.nextProtos(),
		ServerName:         c.ServerName,
		InsecureSkipVerify: c.InsecureSkipVerify, //nolint:gosec // the caller set this explicitly

		// always use the strong cipher suites for tls versions < 1.3
		CipherSuites: strongCipherSuites,
	}

	c.enforceVersions(tc)
	if err := c.certificates(tc); err != nil {
		return nil, err
	}

	return tc, nil
}

// ClientFactory is implemented by any type that can produce an *http.Client,
// most notably ClientConfig.
type ClientFactory interface {
	NewClient() (*http.Client, error)
}

// TransportConfig is the unmarshalable counterpart of http.Transport.
type TransportConfig struct {
	TLSHandshakeTimeout    time.Duration
	DisableKeepAlives      bool
	DisableCompression     bool
	MaxIdleConns           int
	MaxIdleConnsPerHost    int
	MaxConnsPerHost        int
	IdleConnTimeout        time.Duration
	ResponseHeaderTimeout  time.Duration
	ExpectContinueTimeout  time.Duration
	ProxyConnectHeader     http.Header
	MaxResponseHeaderBytes int64
	WriteBufferSize        int
	ReadBufferSize         int
	ForceAttemptHTTP2      bool
}

// NewTransport produces an *http.Transport from this configuration, with an
// optional TLS configuration.
func (tc TransportConfig) NewTransport(tls *TLSConfig) (*http.Transport, error) {
	tlsConfig, err := tls.New()
	if err != nil {
		return nil, err
	}

	return &http.Transport{
		TLSClientConfig:        tlsConfig,
		TLSHandshakeTimeout:    tc.TLSHandshakeTimeout,
		DisableKeepAlives:      tc.DisableKeepAlives,
		DisableCompression:     tc.DisableCompression,
		MaxIdleConns:           tc.MaxIdleConns,
		MaxIdleConnsPerHost:    tc.MaxIdleConnsPerHost,
		MaxConnsPerHost:        tc.MaxConnsPerHost,
		IdleConnTimeout:        tc.IdleConnTimeout,
		ResponseHeaderTimeout:  tc.ResponseHeaderTimeout,
		ExpectContinueTimeout:  tc.ExpectContinueTimeout,
		ProxyConnectHeader:     tc.ProxyConnectHeader,
		MaxResponseHeaderBytes: tc.MaxResponseHeaderBytes,
		WriteBufferSize:        tc.WriteBufferSize,
		ReadBufferSize:         tc.ReadBufferSize,
		ForceAttemptHTTP2:      tc.ForceAttemptHTTP2,
	}, nil
}

// ClientConfig is the prototype for an *http.Client, shaped for
// unmarshaling from external configuration.
type ClientConfig struct {
	Timeout   time.Duration
	Header    http.Header
	Transport TransportConfig
	TLS       *TLSConfig
}

// NewClient produces an *http.Client from this configuration.  Any
// configured Header is stamped onto every request via round tripper
// decoration.
func (cc ClientConfig) NewClient() (*http.Client, error) {
	transport, err := cc.Transport.NewTransport(cc.TLS)
	if err != nil {
		return nil, err
	}

	return &http.Client{
		Timeout:   cc.Timeout,
		Transport: NewHeader(cc.Header).AddRequest(transport),
	}, nil
}
