// Copyright 2025, the Pinmark contributors
// SPDX-License-Identifier: AGPL-3.0-only

package limiter

import (
	"net"
	"net/http"
	"strings"

	"github.com/rs/zerolog/log"
)

// IPv4 and IPv6 address lengths as measured in bits.
const (
	ipv4BitLength = 32
	ipv6BitLength = 128
)

// Prefix lengths used to group clients. A single IPv6 host usually owns a whole /64.
const (
	ipv4Prefix = 32
	ipv6Prefix = 64
)

// getClientIP extracts the client's IP address from an HTTP request with proxy awareness.
//
// Proxy headers (X-Forwarded-For, X-Real-IP) are only trusted when the connection
// comes from private or loopback networks.
func getClientIP(r *http.Request) string {
	remoteIP := r.RemoteAddr
	if ip, _, err := net.SplitHostPort(remoteIP); err == nil {
		remoteIP = ip
	}

	fromTrustedSource := false
	if ip := net.ParseIP(remoteIP); ip != nil {
		fromTrustedSource = ip.IsPrivate() || ip.IsLoopback()
	}

	if fromTrustedSource {
		if realIP := strings.TrimSpace(r.Header.Get("X-Real-IP")); realIP != "" {
			return realIP
		}

		// last hop appended by the nearest proxy
		if xff := strings.TrimSpace(r.Header.Get("X-Forwarded-For")); xff != "" {
			parts := strings.Split(xff, ",")

			return strings.TrimSpace(parts[len(parts)-1])
		}
	}

	if remoteIP == "" {
		log.Error().
			Msg("Could not determine client IP")
	}

	return remoteIP
}

// clientNetwork returns the key under which r is throttled.
//
// Unparsable addresses are used verbatim.
func clientNetwork(r *http.Request) string {
	ipStr := getClientIP(r)

	rawIP := net.ParseIP(ipStr)
	if rawIP == nil {
		return ipStr
	}

	return getNetwork(rawIP, ipv4Prefix, ipv6Prefix).String()
}

func getNetwork(rawIP net.IP, v4Prefix, v6Prefix int) *net.IPNet {
	var mask net.IPMask
	if v4 := rawIP.To4(); v4 != nil {
		rawIP = v4
		mask = net.CIDRMask(v4Prefix, ipv4BitLength)
	} else {
		mask = net.CIDRMask(v6Prefix, ipv6BitLength)
	}

	return &net.IPNet{
		IP:   rawIP.Mask(mask),
		Mask: mask,
	}
}
