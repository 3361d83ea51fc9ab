package message

import (
	"fmt"
	"sort"
	"time"
)

/* Store keeps the message history of every webhook path in memory
 * Histories are stored oldest first; callers address them newest first
 * (external index i is internal position len-i).
 * Store is not safe for concurrent use, Service serialises access to it.
 */
type Store struct {
	histories map[string]History
	now       func() time.Time
}

// NewStore creates an empty store
func NewStore() *Store {
	return &Store{
		histories: make(map[string]History),
		now:       time.Now,
	}
}

// Record stores body as the newest message of path and applies the retention policy
func (s *Store) Record(path string, body map[string]string, r Retention) Message {
	msg := Message{
		Body:      cloneBody(body),
		Timestamp: s.now().UnixMilli(),
		Path:      path,
	}

	if !r.StoreAll {
		// latest-only always drops what was kept before, including bulk history
		s.histories[path] = History{msg}
		return msg
	}

	h := append(s.histories[path], msg)
	if limit := r.Limit(); len(h) > limit {
		h = append(History(nil), h[len(h)-limit:]...)
	}
	s.histories[path] = h
	return msg
}

// Resolve returns the messages addressed by sel, in selector order
func (s *Store) Resolve(path string, sel Selector) ([]Entry, error) {
	h, err := s.nonEmpty(path)
	if err != nil {
		return nil, err
	}
	n := len(h)

	switch sel.Kind {
	case SelectAll:
		entries := make([]Entry, 0, n)
		for i := 1; i <= n; i++ {
			entries = append(entries, entry(h, i))
		}
		return entries, nil
	case SelectRange:
		if err := checkRange(sel, n); err != nil {
			return nil, err
		}
		entries := make([]Entry, 0, sel.End-sel.Start+1)
		for i := sel.Start; i <= sel.End; i++ {
			entries = append(entries, entry(h, i))
		}
		return entries, nil
	case SelectIndex:
		if err := checkIndex(sel, n); err != nil {
			return nil, err
		}
		return []Entry{entry(h, sel.Start)}, nil
	default:
		return nil, fmt.Errorf("resolving %q: %w", sel.String(), ErrUnsupportedSelector)
	}
}

// entry returns a copy of the message at external index i
func entry(h History, i int) Entry {
	m := h[len(h)-i]
	m.Body = cloneBody(m.Body)
	return Entry{Message: m, Index: i}
}

// Delete removes the messages addressed by sel
func (s *Store) Delete(path string, sel Selector) (DeleteResult, error) {
	h, err := s.nonEmpty(path)
	if err != nil {
		return DeleteResult{}, err
	}
	n := len(h)
	result := DeleteResult{Path: path, Selector: sel}

	switch sel.Kind {
	case SelectAll:
		s.histories[path] = History{}
		result.Removed = n
	case SelectOld:
		if n <= 1 {
			result.Remaining = n
			return result, nil
		}
		s.histories[path] = History{h[n-1]}
		result.Removed = n - 1
	case SelectRange:
		if err := checkRange(sel, n); err != nil {
			return DeleteResult{}, err
		}
		s.histories[path] = without(h, n-sel.End, n-sel.Start+1)
		result.Removed = sel.End - sel.Start + 1
	case SelectIndex:
		if err := checkIndex(sel, n); err != nil {
			return DeleteResult{}, err
		}
		s.histories[path] = without(h, n-sel.Start, n-sel.Start+1)
		result.Removed = 1
	default:
		return DeleteResult{}, fmt.Errorf("deleting %q: %w", sel.String(), ErrUnsupportedSelector)
	}

	result.Remaining = len(s.histories[path])
	return result, nil
}

// Collapse keeps only the latest message when the policy disables bulk storage
// It returns true when the history changed and should be persisted again
func (s *Store) Collapse(path string, r Retention) bool {
	h := s.histories[path]
	if r.StoreAll || len(h) <= 1 {
		return false
	}
	s.histories[path] = History{h[len(h)-1]}
	return true
}

// History returns a copy of the history of path and whether the path is known
func (s *Store) History(path string) (History, bool) {
	h, ok := s.histories[path]
	if !ok {
		return nil, false
	}
	return h.Clone(), true
}

// Replace sets the full history of path, as read from persistence
func (s *Store) Replace(path string, h History) {
	s.histories[path] = h.Clone()
}

// Len returns the number of stored messages of path
func (s *Store) Len(path string) int {
	return len(s.histories[path])
}

// Paths returns every known path in lexical order
func (s *Store) Paths() []string {
	paths := make([]string, 0, len(s.histories))
	for path := range s.histories {
		paths = append(paths, path)
	}
	sort.Strings(paths)
	return paths
}

func (s *Store) nonEmpty(path string) (History, error) {
	h, ok := s.histories[path]
	if !ok || len(h) == 0 {
		return nil, fmt.Errorf("history of %s: %w", path, ErrNotFound)
	}
	return h, nil
}

func checkIndex(sel Selector, n int) error {
	if sel.Start < 1 || sel.Start > n {
		return &BoundsError{Err: ErrInvalidIndex, Input: sel.String(), Max: n}
	}
	return nil
}

func checkRange(sel Selector, n int) error {
	if sel.Start < 1 || sel.Start > sel.End || sel.End > n {
		return &BoundsError{Err: ErrInvalidRange, Input: sel.String(), Max: n}
	}
	return nil
}

// without returns h minus the internal slice [lo, hi)
func without(h History, lo, hi int) History {
	out := make(History, 0, len(h)-(hi-lo))
	out = append(out, h[:lo]...)
	return append(out, h[hi:]...)
}
