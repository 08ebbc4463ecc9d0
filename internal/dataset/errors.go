package dataset

import (
	"errors"
	"fmt"
)

// ErrEmptyInput indicates the input has no header row.
var ErrEmptyInput = errors.New("empty input: no header row")

// ErrInvalidEncoding indicates the input is not valid UTF-8.
var ErrInvalidEncoding = errors.New("input is not valid UTF-8")

// ParseError reports input that cannot be turned into a Dataset.
// It is the only failure the profiling pipeline surfaces for well-formed calls.
type ParseError struct {
	Source string
	Line   int // 1-based; 0 when unknown
	Err    error
}

func (e *ParseError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("parse %s: line %d: %v", e.Source, e.Line, e.Err)
	}
	return fmt.Sprintf("parse %s: %v", e.Source, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }
