package backend

import (
	"net/url"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// Backend is an upstream server identified by its base URL.
type Backend struct {
	url  *url.URL
	base string
}

// New creates a Backend for the given base URL.
func New(u *url.URL) *Backend {
	return &Backend{
		url:  u,
		base: u.String(),
	}
}

// Parse validates rawURL and creates a Backend from it.
// Only http and https URLs with a host are accepted.
func Parse(rawURL string) (*Backend, error) {
	if err := validation.Validate(rawURL, validation.Required, validation.By(ValidateURL)); err != nil {
		return nil, err
	}

	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, err
	}

	return New(u), nil
}

// URL returns the backend base URL.
func (b *Backend) URL() *url.URL {
	return b.url
}

func (b *Backend) String() string {
	return b.base
}

// Target returns the outbound URL for an inbound request target. The target
// (path and raw query) is appended to the base as-is, without re-encoding.
func (b *Backend) Target(requestURI string) string {
	return b.base + requestURI
}

// ValidateURL is an ozzo-validation rule checking that value is an absolute
// http or https URL.
func ValidateURL(value interface{}) error {
	rawURL, ok := value.(string)
	if !ok {
		return validation.NewError("validation_invalid_type", "must be a string")
	}

	if rawURL == "" {
		return validation.NewError("validation_empty_url", "backend URL cannot be empty")
	}

	parsedURL, err := url.Parse(rawURL)
	if err != nil {
		return validation.NewError("validation_invalid_url", "must be a valid URL")
	}

	if parsedURL.Scheme != "http" && parsedURL.Scheme != "https" {
		return validation.NewError("validation_invalid_scheme", "URL must use http or https scheme")
	}

	if parsedURL.Host == "" {
		return validation.NewError("validation_missing_host", "URL must have a host")
	}

	return nil
}
