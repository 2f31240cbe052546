// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

// Package networking provides the outbound HTTP plumbing shared by the
// upstream OAuth client and the Salla REST client.
package networking

import (
	"errors"
	"net"
	"net/http"
	"net/netip"
)

// URL schemes.
const (
	HttpScheme  = "http"
	HttpsScheme = "https"
)

// ErrPrivateIPAddress is returned when a dial targets a private or loopback address.
var ErrPrivateIPAddress = errors.New("the requested address is private; " +
	"set UPSTREAM_ALLOW_PRIVATE_IPS=true to allow it")

// HTTPClient is the subset of *http.Client used by this module.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// sharedAddressSpace is RFC 6598 carrier-grade NAT space, which
// netip.Addr.IsPrivate does not cover.
var sharedAddressSpace = netip.MustParsePrefix("100.64.0.0/10")

func isPrivateAddr(addr netip.Addr) bool {
	addr = addr.Unmap()
	return addr.IsPrivate() ||
		addr.IsLoopback() ||
		addr.IsLinkLocalUnicast() ||
		addr.IsLinkLocalMulticast() ||
		addr.IsUnspecified() ||
		sharedAddressSpace.Contains(addr)
}

// RejectPrivateAddress returns ErrPrivateIPAddress when a host:port dial
// address is a literal private IP. Host names pass; the dialer calls this
// again with the resolved address.
func RejectPrivateAddress(address string) error {
	host, _, err := net.SplitHostPort(address)
	if err != nil {
		return err
	}
	addr, err := netip.ParseAddr(host)
	if err != nil {
		return nil
	}
	if isPrivateAddr(addr) {
		return ErrPrivateIPAddress
	}
	return nil
}
