package errors

import (
	"net"
	"net/url"
	"strings"
)

// ValidateURL validates a URL string for safety.
// It ensures the URL has a safe scheme (http or https).
func ValidateURL(rawURL string) error {
	if rawURL == "" {
		return New(ErrCodeInvalidInput, "URL cannot be empty")
	}

	// Simple scheme validation without full URL parsing
	if !strings.HasPrefix(rawURL, "http://") && !strings.HasPrefix(rawURL, "https://") {
		return New(ErrCodeInvalidInput, "URL must use http or https scheme")
	}

	return nil
}

// ValidateOrigin validates a CORS origin such as "http://localhost:3000".
//
// Validation rules:
//   - Must be a valid http or https URL (see [ValidateURL])
//   - Must have a host
//   - No path (not even "/"), query or fragment, since a browser Origin
//     header never has one
//
// The wildcard "*" is accepted as-is.
func ValidateOrigin(origin string) error {
	if origin == "*" {
		return nil
	}
	if err := ValidateURL(origin); err != nil {
		return New(ErrCodeInvalidConfig, "invalid origin %q: %s", origin, UserMessage(err))
	}

	u, err := url.Parse(origin)
	if err != nil {
		return Wrap(ErrCodeInvalidConfig, err, "invalid origin %q", origin)
	}
	if u.Host == "" {
		return New(ErrCodeInvalidConfig, "origin %q has no host", origin)
	}
	if u.Path != "" || u.RawQuery != "" || u.ForceQuery || u.Fragment != "" {
		return New(ErrCodeInvalidConfig, "origin %q must be scheme://host[:port] with no path or trailing slash", origin)
	}
	return nil
}

// ValidateListenAddr validates a host:port listen address such as ":8000".
func ValidateListenAddr(addr string) error {
	if addr == "" {
		return New(ErrCodeInvalidConfig, "listen address cannot be empty")
	}
	if _, _, err := net.SplitHostPort(addr); err != nil {
		return Wrap(ErrCodeInvalidConfig, err, "invalid listen address %q", addr)
	}
	return nil
}
