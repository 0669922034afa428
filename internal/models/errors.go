package models

import "errors"

// Custom errors
var (
	ErrInvalidOdds         = errors.New("invalid american odds: must be non-zero")
	ErrMalformedQuote      = errors.New("malformed quote")
	ErrInsufficientSample  = errors.New("not enough books quoting selection")
	ErrDegenerateProbSum   = errors.New("degenerate probability sum in vig removal")
	ErrUpstreamUnavailable = errors.New("odds provider unavailable")
	ErrNotFound            = errors.New("record not found")
)
