package magimix

import (
	"errors"
	"fmt"
)

var errMissingElement = errors.New("element not found")

// FetchError is returned when a page could not be retrieved: transport
// failures, timeouts and non-2xx statuses.
type FetchError struct {
	URL        string
	StatusCode int
	Err        error
}

func (e *FetchError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("fetch %s: http %d", e.URL, e.StatusCode)
	}
	return fmt.Sprintf("fetch %s: %s", e.URL, e.Err.Error())
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// ParseError is returned when an expected element is missing from a page
// or its text does not have the expected shape.
type ParseError struct {
	URL  string
	What string
	Err  error
}

func (e *ParseError) Error() string {
	if e.URL == "" {
		return fmt.Sprintf("parse %s: %s", e.What, e.Err.Error())
	}
	return fmt.Sprintf("parse %s of %s: %s", e.What, e.URL, e.Err.Error())
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// withURL fills in the page url of a ParseError returned by a parser.
func withURL(err error, link string) error {
	var perr *ParseError
	if errors.As(err, &perr) && perr.URL == "" {
		perr.URL = link
	}
	return err
}
