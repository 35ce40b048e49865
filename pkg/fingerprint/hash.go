package fingerprint

import (
	"crypto/sha256"
	"encoding/hex"
	"net/http"
	"slices"
	"strings"

	"github.com/dmitrymomot/botwall/pkg/clientip"
)

// stableHeaders is the subset of headers whose presence pattern is a
// useful device trait: different clients send different subsets, but a
// given client sends the same ones consistently.
var stableHeaders = []string{
	"user-agent",
	"accept",
	"accept-language",
	"accept-encoding",
	"connection",
	"upgrade-insecure-requests",
	"sec-fetch-dest",
	"sec-fetch-mode",
	"sec-fetch-site",
	"cache-control",
}

// Hash derives a compact device/browser hash from stable request
// attributes. The result is a 32-character hex string suitable for
// storing next to a session record to recognize the device later.
func Hash(r *http.Request) string {
	components := []string{
		r.UserAgent(),
		r.Header.Get("Accept-Language"),
		r.Header.Get("Accept-Encoding"),
		r.Header.Get("Accept"),
		clientip.GetIP(r),
		headerShape(r),
	}

	nonEmpty := components[:0]
	for _, c := range components {
		if c != "" {
			nonEmpty = append(nonEmpty, c)
		}
	}

	sum := sha256.Sum256([]byte(strings.Join(nonEmpty, "|")))
	return hex.EncodeToString(sum[:16])
}

// Match reports whether the request's device hash equals a stored one.
func Match(r *http.Request, stored string) bool {
	return stored != "" && Hash(r) == stored
}

// headerShape encodes which of the stable headers the client sent.
func headerShape(r *http.Request) string {
	var present []string
	for name := range r.Header {
		lower := strings.ToLower(name)
		if slices.Contains(stableHeaders, lower) {
			present = append(present, lower)
		}
	}
	slices.Sort(present)
	return strings.Join(present, ",")
}
