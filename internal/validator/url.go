package validator

import (
	"fmt"
	"net/url"
	"strings"
)

// Reason describes why a URL was rejected
type Reason string

const (
	ReasonEmpty             Reason = "empty"
	ReasonMalformed         Reason = "malformed"
	ReasonUnsupportedScheme Reason = "unsupported-scheme"
)

// InvalidURLError is returned by ValidateURL for any rejected candidate
type InvalidURLError struct {
	URL    string
	Reason Reason
}

func (e *InvalidURLError) Error() string {
	if e.Reason == ReasonEmpty {
		return "invalid URL: empty"
	}
	return fmt.Sprintf("invalid URL (%s): %q", e.Reason, e.URL)
}

// ValidateURL checks that candidate is a non-empty http or https URL with a host.
func ValidateURL(candidate string) error {
	if strings.TrimSpace(candidate) == "" {
		return &InvalidURLError{URL: candidate, Reason: ReasonEmpty}
	}

	parsed, err := url.Parse(candidate)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return &InvalidURLError{URL: candidate, Reason: ReasonMalformed}
	}

	// url.Parse lowercases the scheme
	switch parsed.Scheme {
	case "http", "https":
		return nil
	default:
		return &InvalidURLError{URL: candidate, Reason: ReasonUnsupportedScheme}
	}
}
