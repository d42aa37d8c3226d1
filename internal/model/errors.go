package model

import (
	"errors"
	"fmt"
)

// Page-level errors abort the run; row-level errors drop the row.
var (
	ErrFetch            = errors.New("fetch failed")
	ErrNoTableFound     = errors.New("no table found")
	ErrMalformedRecord  = errors.New("malformed record")
	ErrUnparseableYear  = errors.New("unparseable year")
	ErrDuplicateName    = errors.New("duplicate name")
	ErrInvalidOverrides = errors.New("invalid overrides")
)

// FetchError describes a failed page fetch
type FetchError struct {
	URL        string
	StatusCode int // 0 when no response was received
	Err        error
}

func (e *FetchError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("fetch %s: status %d: %v", e.URL, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("fetch %s: %v", e.URL, e.Err)
}

func (e *FetchError) Unwrap() []error {
	return []error{ErrFetch, e.Err}
}

// YearError describes a year string that could not be parsed
type YearError struct {
	Input  string
	Reason string
}

func (e *YearError) Error() string {
	return fmt.Sprintf("%v: %q: %s", ErrUnparseableYear, e.Input, e.Reason)
}

func (e *YearError) Unwrap() error {
	return ErrUnparseableYear
}
