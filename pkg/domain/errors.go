package domain

import (
	"context"
	"errors"
	"fmt"
)

// InvalidURLError is returned for input that is not an absolute http(s) url
type InvalidURLError struct {
	URL    string
	Reason string
}

func (e *InvalidURLError) Error() string {
	return fmt.Sprintf("invalid url %q: %s", e.URL, e.Reason)
}

// FetchError is returned when every configured endpoint failed for a fetch
type FetchError struct {
	URL string
	Err error // last endpoint error
}

func (e *FetchError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("all proxies failed for %s", e.URL)
	}
	return fmt.Sprintf("all proxies failed for %s: %v", e.URL, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// ExtractionError is returned when a strategy cannot make sense of fetched content
type ExtractionError struct {
	Strategy Strategy
	Err      error
}

func (e *ExtractionError) Error() string {
	return fmt.Sprintf("%s extraction: %v", e.Strategy, e.Err)
}

func (e *ExtractionError) Unwrap() error { return e.Err }

// ErrAllStrategiesFailed is the error text of an outcome after every strategy came back empty
const ErrAllStrategiesFailed = "all parsing methods failed"

// ErrNoEvents is wrapped by the outcome error once every strategy came back empty
var ErrNoEvents = errors.New(ErrAllStrategiesFailed)

// ErrorKind groups failed outcomes for run statistics, messages carry urls and vary per venue
type ErrorKind string

// error kinds
const (
	ErrorKindFetch      ErrorKind = "fetch_failed"
	ErrorKindNoEvents   ErrorKind = "all_strategies_failed"
	ErrorKindInvalidURL ErrorKind = "invalid_url"
	ErrorKindExtraction ErrorKind = "extraction_failed"
	ErrorKindCanceled   ErrorKind = "canceled"
	ErrorKindPanic      ErrorKind = "panic"
	ErrorKindOther      ErrorKind = "other"
)

// KindOf classifies err, nil gives an empty kind
func KindOf(err error) ErrorKind {
	var invalid *InvalidURLError
	var fetchErr *FetchError
	var extractErr *ExtractionError
	switch {
	case err == nil:
		return ""
	case errors.As(err, &invalid):
		return ErrorKindInvalidURL
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return ErrorKindCanceled
	case errors.As(err, &fetchErr):
		return ErrorKindFetch
	case errors.Is(err, ErrNoEvents):
		return ErrorKindNoEvents
	case errors.As(err, &extractErr):
		return ErrorKindExtraction
	}
	return ErrorKindOther
}
