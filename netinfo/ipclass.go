package netinfo

import "net"

// cgnat is the carrier-grade NAT block (RFC 6598), which net.IP.IsPrivate
// does not cover.
var cgnat = mustParseCIDR("100.64.0.0/10")

func mustParseCIDR(s string) *net.IPNet {
	_, block, err := net.ParseCIDR(s)
	if err != nil {
		panic(err)
	}

	return block
}

// IsPrivate reports whether addr is an IPv4 or IPv6 literal inside a
// private or otherwise non-globally-routable range: RFC 1918, loopback,
// link-local, CGNAT and IPv6 unique-local. Unparsable input returns false,
// i.e. the address is assumed public so that downstream lookups are
// attempted rather than skipped.
func IsPrivate(addr string) bool {
	ip := net.ParseIP(addr)
	if ip == nil {
		return false
	}

	return ip.IsPrivate() ||
		ip.IsLoopback() ||
		ip.IsLinkLocalUnicast() ||
		ip.IsLinkLocalMulticast() ||
		ip.IsUnspecified() ||
		cgnat.Contains(ip)
}
