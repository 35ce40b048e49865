package session

import (
	"net/http"
	"strings"
	"time"
)

// HeaderTransport carries the session token in an HTTP header, for API
// clients that do not speak cookies.
type HeaderTransport struct {
	headerName string
	prefix     string
}

// HeaderOption is a functional option for HeaderTransport.
type HeaderOption func(*HeaderTransport)

// WithHeaderPrefix sets a custom prefix for the header value.
func WithHeaderPrefix(prefix string) HeaderOption {
	return func(t *HeaderTransport) {
		t.prefix = prefix
	}
}

// NewHeaderTransport creates a header-based transport.
func NewHeaderTransport(headerName string, opts ...HeaderOption) *HeaderTransport {
	t := &HeaderTransport{
		headerName: headerName,
		prefix:     "Bearer ",
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// GetToken extracts the session token from the header.
func (t *HeaderTransport) GetToken(r *http.Request) (string, error) {
	value := r.Header.Get(t.headerName)
	if value == "" {
		return "", ErrSessionNotFound
	}
	return strings.TrimPrefix(value, t.prefix), nil
}

// SetToken sends the session token in the response header.
func (t *HeaderTransport) SetToken(w http.ResponseWriter, token string, ttl time.Duration) error {
	w.Header().Set(t.headerName, t.prefix+token)
	if ttl > 0 {
		w.Header().Set(t.headerName+"-Expires", time.Now().Add(ttl).Format(time.RFC3339))
	}
	return nil
}

// ClearToken removes the session header from the response.
func (t *HeaderTransport) ClearToken(w http.ResponseWriter) error {
	w.Header().Del(t.headerName)
	w.Header().Del(t.headerName + "-Expires")
	return nil
}
