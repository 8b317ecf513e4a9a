// Package validate performs client-side form validation. Failures
// here never reach the network: they are surfaced inline on the form.
package validate

import (
	"fmt"
	"net/mail"
	"net/url"
	"strings"
)

// IsURL reports whether s is an absolute http(s) URL with a host.
func IsURL(s string) bool {
	u, err := url.Parse(s)
	if err != nil {
		return false
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return false
	}
	return u.Host != ""
}

// IsEmail reports whether s is a plausible email address.
func IsEmail(s string) bool {
	addr, err := mail.ParseAddress(s)
	// Reject the "Name <addr>" form; forms submit bare addresses.
	return err == nil && addr.Address == s
}

// StripProtocol reduces a URL to its host[:port] part. Domains are
// stored and compared in this form, base-domain matching included.
func StripProtocol(s string) (string, error) {
	raw := s
	if !strings.Contains(raw, "://") {
		raw = "https://" + raw
	}
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return "", fmt.Errorf("invalid URL: %q", s)
	}
	return u.Host, nil
}
