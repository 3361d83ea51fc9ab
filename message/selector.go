package message

import (
	"fmt"
	"strconv"
	"strings"
)

/* SelectorKind tells which stored messages a selector addresses
 * Indices are external: 1 is the most recent message
 */
type SelectorKind int

const (
	SelectIndex SelectorKind = iota + 1
	SelectRange
	SelectAll
	SelectOld
)

// String returns the string representation of the selector kind
func (k SelectorKind) String() string {
	switch k {
	case SelectIndex:
		return "index"
	case SelectRange:
		return "range"
	case SelectAll:
		return "all"
	case SelectOld:
		return "old"
	default:
		return "unknown"
	}
}

// Selector is a parsed message selector
type Selector struct {
	Kind  SelectorKind
	Start int
	End   int
}

// Latest selects the most recent message
func Latest() Selector {
	return Index(1)
}

// Index selects the message at external index k
func Index(k int) Selector {
	return Selector{Kind: SelectIndex, Start: k, End: k}
}

// Range selects external indices start..end inclusive
func Range(start, end int) Selector {
	return Selector{Kind: SelectRange, Start: start, End: end}
}

// All selects every stored message
func All() Selector {
	return Selector{Kind: SelectAll}
}

// Old selects everything but the most recent message
func Old() Selector {
	return Selector{Kind: SelectOld}
}

// ParseSelector parses "all", "a", "old", "o", "N", "N-M" or "" (the latest message)
func ParseSelector(s string) (Selector, error) {
	s = strings.TrimSpace(s)
	switch strings.ToLower(s) {
	case "":
		return Latest(), nil
	case "all", "a":
		return All(), nil
	case "old", "o":
		return Old(), nil
	}

	if before, after, found := strings.Cut(s, "-"); found {
		start, errStart := strconv.Atoi(before)
		end, errEnd := strconv.Atoi(after)
		if errStart != nil || errEnd != nil || start < 1 || start > end {
			return Selector{}, &BoundsError{Err: ErrInvalidRange, Input: s}
		}
		return Range(start, end), nil
	}

	k, err := strconv.Atoi(s)
	if err != nil || k < 1 {
		return Selector{}, &BoundsError{Err: ErrInvalidIndex, Input: s}
	}
	return Index(k), nil
}

// IsLatest reports whether the selector is a bare request for the most recent message
func (s Selector) IsLatest() bool {
	return s.Kind == SelectIndex && s.Start == 1
}

// String returns the selector in the form it is typed in chat
func (s Selector) String() string {
	switch s.Kind {
	case SelectIndex:
		return strconv.Itoa(s.Start)
	case SelectRange:
		return fmt.Sprintf("%d-%d", s.Start, s.End)
	case SelectAll:
		return "all"
	case SelectOld:
		return "old"
	default:
		return ""
	}
}
