package session

import (
	"net/http"
	"time"
)

// CookieTransport carries the session token in a client-held cookie:
// HTTP-only, SameSite=Strict, Secure when configured, with an expiry
// matching the session's. The token is already an opaque 256-bit random
// value, so the cookie carries it as-is.
type CookieTransport struct {
	cookieName string
	secure     bool
}

// NewCookieTransport creates a cookie-based transport. The secure flag
// must be set in production deployments.
func NewCookieTransport(cookieName string, secure bool) *CookieTransport {
	return &CookieTransport{
		cookieName: cookieName,
		secure:     secure,
	}
}

// GetToken extracts the session token from the cookie.
func (t *CookieTransport) GetToken(r *http.Request) (string, error) {
	c, err := r.Cookie(t.cookieName)
	if err != nil || c.Value == "" {
		return "", ErrSessionNotFound
	}
	return c.Value, nil
}

// SetToken stores the session token in the cookie.
func (t *CookieTransport) SetToken(w http.ResponseWriter, token string, ttl time.Duration) error {
	http.SetCookie(w, &http.Cookie{
		Name:     t.cookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(ttl.Seconds()),
		HttpOnly: true,
		Secure:   t.secure,
		SameSite: http.SameSiteStrictMode,
	})
	return nil
}

// ClearToken expires the cookie immediately.
func (t *CookieTransport) ClearToken(w http.ResponseWriter) error {
	http.SetCookie(w, &http.Cookie{
		Name:     t.cookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   t.secure,
		SameSite: http.SameSiteStrictMode,
	})
	return nil
}
