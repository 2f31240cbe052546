// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package networking

import (
	"crypto/tls"
	"crypto/x509"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"syscall"
	"time"
)

// HttpTimeout is the default overall timeout of outbound requests.
const HttpTimeout = 30 * time.Second

const (
	defaultTLSHandshakeTimeout   = 10 * time.Second
	defaultResponseHeaderTimeout = 10 * time.Second
)

// ValidatingTransport refuses any request that is not HTTPS.
type ValidatingTransport struct {
	Transport http.RoundTripper
}

// RoundTrip implements http.RoundTripper.
func (t *ValidatingTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	switch {
	case req.URL == nil:
		return nil, errors.New("request has no URL")
	case req.URL.Scheme != HttpsScheme:
		return nil, fmt.Errorf("refusing %s: only https is allowed", req.URL.Redacted())
	}
	return t.Transport.RoundTrip(req)
}

// HttpClientBuilder assembles the client used for calls to Salla.
type HttpClientBuilder struct {
	timeout      time.Duration
	caBundlePath string
	allowPrivate bool
}

// NewHttpClientBuilder returns a builder with HttpTimeout and private
// addresses blocked.
func NewHttpClientBuilder() *HttpClientBuilder {
	return &HttpClientBuilder{timeout: HttpTimeout}
}

// WithCABundle trusts only the PEM certificates in path instead of the system pool.
func (b *HttpClientBuilder) WithCABundle(path string) *HttpClientBuilder {
	b.caBundlePath = path
	return b
}

// WithPrivateIPs controls whether private and loopback addresses may be dialled.
func (b *HttpClientBuilder) WithPrivateIPs(allow bool) *HttpClientBuilder {
	b.allowPrivate = allow
	return b
}

// WithTimeout overrides the overall timeout. Non-positive values are ignored.
func (b *HttpClientBuilder) WithTimeout(timeout time.Duration) *HttpClientBuilder {
	if timeout > 0 {
		b.timeout = timeout
	}
	return b
}

// Build creates the client.
func (b *HttpClientBuilder) Build() (*http.Client, error) {
	tlsConfig := &tls.Config{MinVersion: tls.VersionTLS12}
	if b.caBundlePath != "" {
		pool, err := loadCABundle(b.caBundlePath)
		if err != nil {
			return nil, err
		}
		tlsConfig.RootCAs = pool
	}

	dialer := &net.Dialer{}
	if !b.allowPrivate {
		dialer.Control = func(_, address string, _ syscall.RawConn) error {
			return RejectPrivateAddress(address)
		}
	}

	return &http.Client{
		Timeout: b.timeout,
		Transport: &ValidatingTransport{Transport: &http.Transport{
			Proxy:                 http.ProxyFromEnvironment,
			DialContext:           dialer.DialContext,
			TLSClientConfig:       tlsConfig,
			TLSHandshakeTimeout:   defaultTLSHandshakeTimeout,
			ResponseHeaderTimeout: defaultResponseHeaderTimeout,
		}},
	}, nil
}

func loadCABundle(path string) (*x509.CertPool, error) {
	pem, err := os.ReadFile(path) // #nosec G304 - operator supplied path
	if err != nil {
		return nil, fmt.Errorf("failed to read CA certificate bundle: %w", err)
	}
	pool := x509.NewCertPool()
	if !pool.AppendCertsFromPEM(pem) {
		return nil, fmt.Errorf("failed to parse CA certificate bundle %s", path)
	}
	return pool, nil
}
