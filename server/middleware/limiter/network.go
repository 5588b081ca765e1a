// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

package limiter

import (
	"net/http"
	"net/netip"
	"strings"

	"github.com/rs/zerolog/log"
)

// clientAddr returns the address of the client that sent r.
//
// X-Real-IP and then the last hop of X-Forwarded-For are honored only when
// the connection comes from a loopback or private address, which is where
// a reverse proxy sits.
func clientAddr(r *http.Request) (netip.Addr, bool) {
	peer, err := netip.ParseAddrPort(r.RemoteAddr)
	if err != nil {
		// RemoteAddr without a port, as set by some test harnesses.
		addr, err := netip.ParseAddr(r.RemoteAddr)
		if err != nil {
			return netip.Addr{}, false
		}

		peer = netip.AddrPortFrom(addr, 0)
	}

	addr := peer.Addr().Unmap()
	if !addr.IsLoopback() && !addr.IsPrivate() {
		return addr, true
	}

	if forwarded, ok := forwardedAddr(r.Header); ok {
		return forwarded, true
	}

	return addr, true
}

func forwardedAddr(h http.Header) (netip.Addr, bool) {
	if v := strings.TrimSpace(h.Get("X-Real-IP")); v != "" {
		if addr, err := netip.ParseAddr(v); err == nil {
			return addr.Unmap(), true
		}

		log.Warn().Str("value", v).Msg("Ignoring malformed X-Real-IP header")
	}

	xff := h.Get("X-Forwarded-For")
	if xff == "" {
		return netip.Addr{}, false
	}

	hops := strings.Split(xff, ",")

	addr, err := netip.ParseAddr(strings.TrimSpace(hops[len(hops)-1]))
	if err != nil {
		log.Warn().Str("value", xff).Msg("Ignoring malformed X-Forwarded-For header")

		return netip.Addr{}, false
	}

	return addr.Unmap(), true
}

// passListed reports whether addr equals or falls inside an entry of the
// pass list. Entries are addresses or CIDR prefixes.
func passListed(addr netip.Addr, entries []string) bool {
	for _, entry := range entries {
		if prefix, err := netip.ParsePrefix(entry); err == nil {
			if prefix.Contains(addr) {
				return true
			}

			continue
		}

		if other, err := netip.ParseAddr(entry); err == nil && other.Unmap() == addr {
			return true
		}
	}

	return false
}

// networkOf returns the network that shares a bucket with addr.
func networkOf(addr netip.Addr, ipv4Bits, ipv6Bits int) netip.Prefix {
	bits := ipv6Bits
	if addr.Is4() {
		bits = ipv4Bits
	}

	prefix, err := addr.Prefix(bits)
	if err != nil {
		// Out of range prefix lengths limit the single address.
		return netip.PrefixFrom(addr, addr.BitLen())
	}

	return prefix
}
