package main

import (
	"bytes"
	"context"
	"strconv"
	"testing"

	"github.com/marcelsud/webhook-recorder/message"
	"github.com/marcelsud/webhook-recorder/message/file"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seed(t *testing.T, dir, path string, n int) {
	h := make(message.History, 0, n)
	for i := 1; i <= n; i++ {
		h = append(h, message.Message{
			Body:      map[string]string{"n": strconv.Itoa(i)},
			Timestamp: int64(i) * 1000,
			Path:      path,
		})
	}
	require.NoError(t, file.NewRepository(dir, zerolog.Nop()).Save(context.Background(), path, h))
}

func run(t *testing.T, args ...string) (string, error) {
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestCLI(t *testing.T) {
	dir := t.TempDir()
	seed(t, dir, "/api/github", 4)
	seed(t, dir, "/ping", 1)

	t.Run("success - list", func(t *testing.T) {
		out, err := run(t, "list", "--dir", dir)
		require.NoError(t, err)
		assert.Equal(t, "/api/github\t4\n/ping\t1\n", out)
	})

	t.Run("success - show latest as raw json", func(t *testing.T) {
		out, err := run(t, "show", "/api/github", "--dir", dir)
		require.NoError(t, err)
		assert.Contains(t, out, "latest message from /api/github:")
		assert.Contains(t, out, `"n": "4"`)
	})

	t.Run("success - delete a range and save", func(t *testing.T) {
		out, err := run(t, "delete", "/api/github", "2-3", "--dir", dir)
		require.NoError(t, err)
		assert.Contains(t, out, "Removed messages 2-3")

		out, err = run(t, "list", "--dir", dir)
		require.NoError(t, err)
		assert.Contains(t, out, "/api/github\t2\n")
	})

	t.Run("error - unknown path", func(t *testing.T) {
		_, err := run(t, "show", "/nope", "--dir", dir)
		require.ErrorIs(t, err, message.ErrNotFound)
	})

	t.Run("error - bad selector", func(t *testing.T) {
		_, err := run(t, "delete", "/ping", "x", "--dir", dir)
		require.ErrorIs(t, err, message.ErrInvalidIndex)
	})

	t.Run("success - empty directory", func(t *testing.T) {
		out, err := run(t, "list", "--dir", t.TempDir())
		require.NoError(t, err)
		assert.Contains(t, out, "no stored messages")
	})
}
