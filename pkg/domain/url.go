package domain

import (
	"net/url"
	"strings"
)

// ValidateURL checks that raw is an absolute http(s) url. Returns *InvalidURLError otherwise.
func ValidateURL(raw string) error {
	if strings.TrimSpace(raw) == "" {
		return &InvalidURLError{URL: raw, Reason: "empty url"}
	}
	u, err := url.Parse(raw)
	if err != nil {
		return &InvalidURLError{URL: raw, Reason: "invalid url format"}
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return &InvalidURLError{URL: raw, Reason: "invalid url format"}
	}
	if u.Host == "" || strings.ContainsAny(u.Host, " \t") {
		return &InvalidURLError{URL: raw, Reason: "invalid url format"}
	}
	return nil
}
