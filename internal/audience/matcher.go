// Package audience compares the audience an assertion was created for
// against the audience string a relying party supplies.
//
// The "want" side comes out of the assertion and is always a full origin.
// The "got" side is external input and may be partially specified; only the
// fields it actually carries are compared. A relying party that asserts just
// a domain is not making any claim about scheme or port.
package audience

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

var (
	ErrSchemeMismatch = errors.New("scheme mismatch")
	ErrPortMismatch   = errors.New("port mismatch")
	ErrDomainMismatch = errors.New("domain mismatch")
	ErrMalformed      = errors.New("malformed domain")
)

// origin is a normalized audience. The has* flags record which fields the
// input actually carried.
type origin struct {
	scheme    string
	host      string
	port      string
	hasScheme bool
	hasPort   bool
}

func defaultPort(scheme string) string {
	switch scheme {
	case "https":
		return "443"
	case "http":
		return "80"
	}
	return ""
}

// parseWant parses a trusted, fully-specified audience origin.
func parseWant(want string) (origin, error) {
	u, err := url.Parse(want)
	if err != nil {
		return origin{}, fmt.Errorf("parsing trusted audience %q: %w", want, err)
	}
	if u.Scheme == "" || u.Hostname() == "" {
		return origin{}, fmt.Errorf("trusted audience %q is not a full origin", want)
	}
	port := u.Port()
	if port == "" {
		port = defaultPort(u.Scheme)
	}
	return origin{
		scheme:    u.Scheme,
		host:      u.Hostname(),
		port:      port,
		hasScheme: true,
		hasPort:   port != "",
	}, nil
}

// parseGot parses the relying party's audience string. Three shapes are
// accepted, detected in this order: a full origin ("scheme://host[:port]"),
// "host:port" with exactly one colon, or a bare domain.
func parseGot(got string) (origin, error) {
	switch {
	case strings.Contains(got, "://"):
		u, err := url.Parse(got)
		if err != nil {
			return origin{}, fmt.Errorf("%w: %s", ErrMalformed, err)
		}
		if u.Hostname() == "" {
			return origin{}, fmt.Errorf("%w: origin %q has no host", ErrMalformed, got)
		}
		port := u.Port()
		if port == "" {
			port = defaultPort(u.Scheme)
		}
		return origin{
			scheme:    u.Scheme,
			host:      u.Hostname(),
			port:      port,
			hasScheme: true,
			hasPort:   port != "",
		}, nil

	case strings.Contains(got, ":"):
		if strings.Count(got, ":") != 1 {
			return origin{}, fmt.Errorf("%w: %q has more than one colon", ErrMalformed, got)
		}
		host, port, _ := strings.Cut(got, ":")
		if host == "" || port == "" {
			return origin{}, fmt.Errorf("%w: %q is not host:port", ErrMalformed, got)
		}
		return origin{host: host, port: port, hasPort: true}, nil

	default:
		if got == "" {
			return origin{}, fmt.Errorf("%w: empty audience", ErrMalformed)
		}
		return origin{host: got}, nil
	}
}

// Compare checks the relying party's audience string (got) against the
// audience the assertion was created for (want). It returns nil on match, or
// an error wrapping one of the mismatch sentinels. Malformed input never
// escapes as anything but ErrMalformed.
func Compare(want, got string) error {
	w, err := parseWant(want)
	if err != nil {
		return fmt.Errorf("%w: %s", ErrMalformed, err)
	}
	g, err := parseGot(got)
	if err != nil {
		return err
	}

	if g.hasScheme && g.scheme != w.scheme {
		return fmt.Errorf("%w: want %q, got %q", ErrSchemeMismatch, w.scheme, g.scheme)
	}
	if g.hasPort && g.port != w.port {
		return fmt.Errorf("%w: want %q, got %q", ErrPortMismatch, w.port, g.port)
	}
	if g.host != w.host {
		return fmt.Errorf("%w: want %q, got %q", ErrDomainMismatch, w.host, g.host)
	}
	return nil
}
