// Package clientip extracts the real client network address from an HTTP
// request and derives stable anonymous identity keys from it.
//
// GetIP walks the common proxy headers in trust order (CDN-injected headers
// first, then standard forwarding headers) and falls back to the connection's
// remote address. Every candidate is validated and normalized with
// net.ParseIP, so header spoofing with garbage values degrades to the next
// source instead of poisoning downstream identity keys.
//
// OwnerKey produces a salted SHA-256 digest of an address. It is the
// anonymous counterpart to an account identifier: requests from the same
// address map to the same key without the raw address ever being stored.
//
// Usage:
//
//	ip := clientip.GetIP(r)
//	key := clientip.OwnerKey(cfg.Salt, ip)
package clientip
