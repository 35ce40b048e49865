package fingerprint

import "context"

type contextKey struct{}

// WithFingerprint stores an analyzed fingerprint in the context.
func WithFingerprint(ctx context.Context, fp Fingerprint) context.Context {
	return context.WithValue(ctx, contextKey{}, fp)
}

// FromContext retrieves the fingerprint placed by Middleware.
func FromContext(ctx context.Context) (Fingerprint, bool) {
	fp, ok := ctx.Value(contextKey{}).(Fingerprint)
	return fp, ok
}
