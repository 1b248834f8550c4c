package scraper

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound means the provider answered 404 for a page.
	ErrNotFound = errors.New("page not found")

	// ErrUpstream covers transport failures and unexpected statuses.
	ErrUpstream = errors.New("upstream failure")
)

// HTTPError is returned when the provider answers with a non-2xx status
// other than 404.
type HTTPError struct {
	URL        string
	StatusCode int
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("GET %s: unexpected status %d", e.URL, e.StatusCode)
}

func (e *HTTPError) Unwrap() error {
	return ErrUpstream
}

// transient reports whether err is a failure worth surfacing, as opposed to
// a plain not-found answer.
func transient(err error) bool {
	return err != nil && !errors.Is(err, ErrNotFound)
}
