// Copyright 2025 The Relay Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

// Package util holds small helpers shared across the module.
package util

import (
	"net"
	"net/netip"
	"strings"
)

// IsLoopback reports whether addr ("host" or "host:port") refers to the local
// machine. The config layer uses it to decide whether a bearer token may be
// sent over plain HTTP.
func IsLoopback(addr string) bool {
	host, _, err := net.SplitHostPort(addr)
	if err != nil {
		// If SplitHostPort fails, it might be just a host without a port.
		host = strings.Trim(addr, "[]")
	}
	if host == "localhost" {
		return true
	}
	ip, err := netip.ParseAddr(host)
	if err != nil {
		return false
	}
	return ip.IsLoopback()
}
