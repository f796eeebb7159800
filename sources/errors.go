package sources

import (
	"fmt"

	"deal-search/models"
)

// FetchError reports a network failure, a non-success status or an open
// circuit for one upstream source.
type FetchError struct {
	Source     models.Source
	URL        string
	StatusCode int
	Err        error
}

func (e *FetchError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s source: GET %s: unexpected status %d", e.Source, e.URL, e.StatusCode)
	}
	return fmt.Sprintf("%s source: GET %s: %v", e.Source, e.URL, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// ParseError reports an upstream payload that could not be decoded at all.
type ParseError struct {
	Source models.Source
	Err    error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s source: parse: %v", e.Source, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// StatusError is returned by fetchers when the upstream answers outside 2xx.
type StatusError struct {
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status %d", e.StatusCode)
}
