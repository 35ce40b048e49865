package fingerprint

import "net/http"

// Middleware analyzes every request once and injects the result into the
// request context for downstream handlers.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fp := Analyze(r.UserAgent(), FlattenHeaders(r.Header))
		next.ServeHTTP(w, r.WithContext(WithFingerprint(r.Context(), fp)))
	})
}
