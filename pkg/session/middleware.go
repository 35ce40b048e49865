package session

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/dmitrymomot/botwall/pkg/clientip"
)

// KeyFunc derives the owner identity for a request. The default keys
// anonymous visitors by a salted hash of the client IP.
type KeyFunc func(r *http.Request) (OwnerKind, string)

// IPKeyFunc keys requests by client IP, salted so raw addresses never
// reach the store.
func IPKeyFunc(salt string) KeyFunc {
	return func(r *http.Request) (OwnerKind, string) {
		return OwnerAnonymous, clientip.OwnerKey(salt, clientip.GetIP(r))
	}
}

// Middleware resolves or creates a session for every request, counts the
// request against its quota, and rejects over-limit traffic with 429.
// The session rides the request context for downstream handlers.
func Middleware(registry *Registry, transport Transport, keyFunc KeyFunc) func(http.Handler) http.Handler {
	if keyFunc == nil {
		keyFunc = IPKeyFunc(registry.config.IdentitySalt)
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			// Store trouble is logged by the registry; the client only
			// ever sees the generic rate-limit denial.
			sess, fresh, err := resolve(registry, transport, keyFunc, r)
			if err != nil {
				http.Error(w, http.StatusText(http.StatusTooManyRequests), http.StatusTooManyRequests)
				return
			}

			if fresh {
				_ = transport.SetToken(w, sess.Token, time.Until(sess.ExpiresAt))
			}

			result, err := registry.IncrementAndCheck(ctx, sess.Token)
			if err != nil {
				http.Error(w, http.StatusText(http.StatusTooManyRequests), http.StatusTooManyRequests)
				return
			}
			if !result.Allowed {
				writeRateLimitHeaders(w, result)
				http.Error(w, http.StatusText(http.StatusTooManyRequests), http.StatusTooManyRequests)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithSession(ctx, sess)))
		})
	}
}

// resolve finds the request's session via its transport token, falling
// back to owner-key lookup when the token is absent or dead. The fresh
// flag reports whether the client needs the token (re)issued.
func resolve(registry *Registry, transport Transport, keyFunc KeyFunc, r *http.Request) (*Session, bool, error) {
	ctx := r.Context()

	if token, err := transport.GetToken(r); err == nil {
		sess, err := registry.lookup(ctx, token)
		switch {
		case err == nil:
			return sess, false, nil
		case errors.Is(err, ErrSessionNotFound), errors.Is(err, ErrSessionExpired):
			// Stale token; mint against the owner key below.
		default:
			return nil, false, err
		}
	}

	kind, key := keyFunc(r)
	sess, err := registry.GetOrCreate(ctx, kind, key)
	if err != nil {
		return nil, false, err
	}
	return sess, true, nil
}

func writeRateLimitHeaders(w http.ResponseWriter, result QuotaResult) {
	w.Header().Set("X-RateLimit-Limit", strconv.FormatInt(result.Limit, 10))
	remaining := max(result.Limit-result.CurrentCount, 0)
	w.Header().Set("X-RateLimit-Remaining", strconv.FormatInt(remaining, 10))
	if !result.ResetAt.IsZero() {
		w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(result.ResetAt.Unix(), 10))
	}
}
