package message

import (
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestStore returns a store whose clock advances one second per message
func newTestStore(t *testing.T) *Store {
	t.Helper()
	s := NewStore()
	base := time.Date(2026, 10, 18, 12, 0, 0, 0, time.UTC)
	tick := 0
	s.now = func() time.Time {
		tick++
		return base.Add(time.Duration(tick) * time.Second)
	}
	return s
}

func body(n int) map[string]string {
	return map[string]string{"n": strconv.Itoa(n)}
}

// fill records messages n=1..count, so external index 1 holds n=count
func fill(t *testing.T, s *Store, path string, count int, r Retention) {
	t.Helper()
	for i := 1; i <= count; i++ {
		s.Record(path, body(i), r)
	}
}

func numbers(h History) []string {
	out := make([]string, 0, len(h))
	for _, m := range h {
		out = append(out, m.Body["n"])
	}
	return out
}

func TestStore_Record(t *testing.T) {
	bulk := Retention{StoreAll: true, Max: 3}

	t.Run("bulk storage keeps the most recent max messages", func(t *testing.T) {
		s := newTestStore(t)
		for n := 1; n <= 7; n++ {
			s.Record("/api", body(n), bulk)
			h, _ := s.History("/api")
			assert.Len(t, h, min(n, 3))
		}

		h, _ := s.History("/api")
		assert.Equal(t, []string{"5", "6", "7"}, numbers(h))
	})

	t.Run("default max is 50", func(t *testing.T) {
		s := newTestStore(t)
		fill(t, s, "/api", 60, Retention{StoreAll: true})

		assert.Equal(t, 50, s.Len("/api"))
		h, _ := s.History("/api")
		assert.Equal(t, "11", h[0].Body["n"])
	})

	t.Run("latest only keeps a single message", func(t *testing.T) {
		s := newTestStore(t)
		fill(t, s, "/api", 4, Retention{})

		h, _ := s.History("/api")
		assert.Equal(t, []string{"4"}, numbers(h))
	})

	t.Run("latest only discards previous bulk history", func(t *testing.T) {
		s := newTestStore(t)
		fill(t, s, "/api", 3, bulk)
		s.Record("/api", body(9), Retention{})

		h, _ := s.History("/api")
		assert.Equal(t, []string{"9"}, numbers(h))
	})

	t.Run("stores timestamp and path and copies the body", func(t *testing.T) {
		s := newTestStore(t)
		in := map[string]string{"k": "v"}
		msg := s.Record("/api", in, bulk)
		in["k"] = "changed"

		assert.Equal(t, "/api", msg.Path)
		assert.Equal(t, time.Date(2026, 10, 18, 12, 0, 1, 0, time.UTC).UnixMilli(), msg.Timestamp)
		h, _ := s.History("/api")
		assert.Equal(t, "v", h[0].Body["k"])
	})

	t.Run("returned histories are copies", func(t *testing.T) {
		s := newTestStore(t)
		fill(t, s, "/api", 2, bulk)
		h, _ := s.History("/api")
		h[0].Body["n"] = "changed"

		again, _ := s.History("/api")
		assert.Equal(t, "1", again[0].Body["n"])
	})
}

func TestStore_Resolve(t *testing.T) {
	bulk := Retention{StoreAll: true, Max: 50}

	t.Run("index 1 is the most recent and N the oldest retained", func(t *testing.T) {
		s := newTestStore(t)
		fill(t, s, "/api", 5, bulk)

		latest, err := s.Resolve("/api", Latest())
		require.NoError(t, err)
		require.Len(t, latest, 1)
		assert.Equal(t, "5", latest[0].Message.Body["n"])
		assert.Equal(t, 1, latest[0].Index)

		oldest, err := s.Resolve("/api", Index(5))
		require.NoError(t, err)
		assert.Equal(t, "1", oldest[0].Message.Body["n"])
	})

	t.Run("resolved entries do not share bodies with the store", func(t *testing.T) {
		s := newTestStore(t)
		s.Record("/p", map[string]string{"k": "v"}, Retention{})

		entries, err := s.Resolve("/p", Latest())
		require.NoError(t, err)
		entries[0].Message.Body["k"] = "mutated"

		all, err := s.Resolve("/p", All())
		require.NoError(t, err)
		all[0].Message.Body["k"] = "mutated too"

		h, ok := s.History("/p")
		require.True(t, ok)
		assert.Equal(t, "v", h[0].Body["k"])
	})

	t.Run("range returns entries in ascending external index", func(t *testing.T) {
		s := newTestStore(t)
		fill(t, s, "/api", 5, bulk)

		entries, err := s.Resolve("/api", Range(2, 3))

		require.NoError(t, err)
		require.Len(t, entries, 2)
		assert.Equal(t, 2, entries[0].Index)
		assert.Equal(t, "4", entries[0].Message.Body["n"])
		assert.Equal(t, 3, entries[1].Index)
		assert.Equal(t, "3", entries[1].Message.Body["n"])
	})

	t.Run("all returns newest first", func(t *testing.T) {
		s := newTestStore(t)
		fill(t, s, "/api", 3, bulk)

		entries, err := s.Resolve("/api", All())

		require.NoError(t, err)
		require.Len(t, entries, 3)
		for i, e := range entries {
			assert.Equal(t, i+1, e.Index)
			assert.Equal(t, strconv.Itoa(3-i), e.Message.Body["n"])
		}
	})

	t.Run("error - unknown path", func(t *testing.T) {
		s := newTestStore(t)

		_, err := s.Resolve("/nope", Latest())

		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("error - emptied history", func(t *testing.T) {
		s := newTestStore(t)
		fill(t, s, "/api", 2, bulk)
		_, err := s.Delete("/api", All())
		require.NoError(t, err)

		_, err = s.Resolve("/api", Latest())

		assert.ErrorIs(t, err, ErrNotFound)
		assert.Contains(t, s.Paths(), "/api")
	})

	t.Run("error - index out of range", func(t *testing.T) {
		s := newTestStore(t)
		fill(t, s, "/api", 5, bulk)

		_, err := s.Resolve("/api", Index(99))

		require.ErrorIs(t, err, ErrInvalidIndex)
		var bounds *BoundsError
		require.ErrorAs(t, err, &bounds)
		assert.Equal(t, 5, bounds.Max)
	})

	t.Run("error - range past the end", func(t *testing.T) {
		s := newTestStore(t)
		fill(t, s, "/api", 5, bulk)

		_, err := s.Resolve("/api", Range(4, 6))

		assert.ErrorIs(t, err, ErrInvalidRange)
	})

	t.Run("error - old is not a query selector", func(t *testing.T) {
		s := newTestStore(t)
		fill(t, s, "/api", 2, bulk)

		_, err := s.Resolve("/api", Old())

		assert.ErrorIs(t, err, ErrUnsupportedSelector)
	})
}

func TestStore_Delete(t *testing.T) {
	bulk := Retention{StoreAll: true, Max: 50}

	t.Run("delete index 1 promotes index 2", func(t *testing.T) {
		s := newTestStore(t)
		fill(t, s, "/api", 5, bulk)
		before, err := s.Resolve("/api", Index(2))
		require.NoError(t, err)

		result, err := s.Delete("/api", Latest())
		require.NoError(t, err)
		assert.Equal(t, 1, result.Removed)
		assert.Equal(t, 4, result.Remaining)

		after, err := s.Resolve("/api", Latest())
		require.NoError(t, err)
		assert.Equal(t, before[0].Message, after[0].Message)
	})

	t.Run("delete range removes one contiguous block", func(t *testing.T) {
		s := newTestStore(t)
		fill(t, s, "/api", 5, bulk)

		result, err := s.Delete("/api", Range(2, 3))

		require.NoError(t, err)
		assert.Equal(t, 2, result.Removed)
		h, _ := s.History("/api")
		assert.Equal(t, []string{"1", "2", "5"}, numbers(h))
	})

	t.Run("delete all leaves an empty known history", func(t *testing.T) {
		s := newTestStore(t)
		fill(t, s, "/api", 3, bulk)

		result, err := s.Delete("/api", All())

		require.NoError(t, err)
		assert.Equal(t, 3, result.Removed)
		h, ok := s.History("/api")
		assert.True(t, ok)
		assert.Empty(t, h)
	})

	t.Run("delete old keeps the latest", func(t *testing.T) {
		s := newTestStore(t)
		fill(t, s, "/api", 4, bulk)

		result, err := s.Delete("/api", Old())

		require.NoError(t, err)
		assert.Equal(t, 3, result.Removed)
		h, _ := s.History("/api")
		assert.Equal(t, []string{"4"}, numbers(h))
	})

	t.Run("delete old on a single message is a no-op", func(t *testing.T) {
		s := newTestStore(t)
		fill(t, s, "/api", 1, bulk)

		result, err := s.Delete("/api", Old())

		require.NoError(t, err)
		assert.Equal(t, 0, result.Removed)
		assert.Equal(t, 1, s.Len("/api"))
		assert.Contains(t, result.String(), "nothing to remove")
	})

	t.Run("error - out of range leaves history unchanged", func(t *testing.T) {
		s := newTestStore(t)
		fill(t, s, "/api", 5, bulk)

		_, err := s.Delete("/api", Index(0))
		assert.ErrorIs(t, err, ErrInvalidIndex)
		_, err = s.Delete("/api", Index(6))
		assert.ErrorIs(t, err, ErrInvalidIndex)
		_, err = s.Delete("/api", Range(3, 9))
		assert.ErrorIs(t, err, ErrInvalidRange)

		h, _ := s.History("/api")
		assert.Equal(t, []string{"1", "2", "3", "4", "5"}, numbers(h))
	})

	t.Run("error - unknown path", func(t *testing.T) {
		s := newTestStore(t)

		_, err := s.Delete("/nope", All())

		assert.ErrorIs(t, err, ErrNotFound)
	})
}

func TestStore_Collapse(t *testing.T) {
	t.Run("collapses when bulk storage is disabled", func(t *testing.T) {
		s := newTestStore(t)
		s.Replace("/api", History{{Path: "/api", Body: body(1)}, {Path: "/api", Body: body(2)}})

		dirty := s.Collapse("/api", Retention{})

		assert.True(t, dirty)
		h, _ := s.History("/api")
		assert.Equal(t, []string{"2"}, numbers(h))
	})

	t.Run("keeps history when bulk storage is enabled", func(t *testing.T) {
		s := newTestStore(t)
		s.Replace("/api", History{{Path: "/api", Body: body(1)}, {Path: "/api", Body: body(2)}})

		assert.False(t, s.Collapse("/api", Retention{StoreAll: true}))
		assert.Equal(t, 2, s.Len("/api"))
	})

	t.Run("single message is clean", func(t *testing.T) {
		s := newTestStore(t)
		s.Replace("/api", History{{Path: "/api", Body: body(1)}})

		assert.False(t, s.Collapse("/api", Retention{}))
	})
}
