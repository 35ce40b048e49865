package clientip

import (
	"crypto/sha256"
	"encoding/hex"
	"net"
	"net/http"
	"strings"
)

// Headers carrying a single client address, checked before the
// multi-value forwarding headers. CDN-injected values are listed first
// since they are set by infrastructure rather than the client.
var singleValueHeaders = []string{
	"CF-Connecting-IP",
	"Fastly-Client-IP",
	"X-Real-IP",
}

// GetIP returns the client's network address for an HTTP request.
// Proxy headers are consulted in trust order; the connection's remote
// address is the fallback when no header carries a valid IP.
func GetIP(r *http.Request) string {
	for _, h := range singleValueHeaders {
		if ip := normalizeIP(r.Header.Get(h)); ip != "" {
			return ip
		}
	}

	// X-Forwarded-For may hold a chain; the first valid entry is the client.
	if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
		for _, part := range strings.Split(forwarded, ",") {
			if ip := normalizeIP(part); ip != "" {
				return ip
			}
		}
	}

	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		// RemoteAddr without a port, common in tests and unix sockets.
		return normalizeIP(r.RemoteAddr)
	}
	return normalizeIP(host)
}

// OwnerKey derives a stable anonymous identity key from a network address.
// The salt keeps the digest from being a reversible lookup table of
// addresses; different salts produce unrelated key spaces.
func OwnerKey(salt, ip string) string {
	sum := sha256.Sum256([]byte(salt + "|" + ip))
	return hex.EncodeToString(sum[:])
}

// normalizeIP validates a candidate address and returns its canonical
// string form, or empty when the candidate is not a valid IP.
func normalizeIP(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	ip := net.ParseIP(s)
	if ip == nil {
		return ""
	}
	return ip.String()
}
