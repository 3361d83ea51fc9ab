package message

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned when a path has no stored messages
	ErrNotFound = errors.New("not found")
	// ErrInvalidIndex is returned for an unparsable or out of range index
	ErrInvalidIndex = errors.New("invalid index")
	// ErrInvalidRange is returned for an unparsable or out of range start-end selector
	ErrInvalidRange = errors.New("invalid range")
	// ErrUnsupportedSelector is returned when a selector does not apply to an operation
	ErrUnsupportedSelector = errors.New("unsupported selector")
)

// BoundsError describes a selector that does not fit the history it was applied to
type BoundsError struct {
	Err   error // ErrInvalidIndex or ErrInvalidRange
	Input string
	Max   int // history length, 0 when the selector failed to parse
}

func (e *BoundsError) Error() string {
	if e.Max > 0 {
		return fmt.Sprintf("%s %q: valid range is 1-%d", e.Err, e.Input, e.Max)
	}
	return fmt.Sprintf("%s %q", e.Err, e.Input)
}

func (e *BoundsError) Unwrap() error {
	return e.Err
}
