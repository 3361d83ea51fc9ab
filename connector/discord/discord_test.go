package discord

import (
	"context"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/bwmarrin/discordgo"
	"github.com/marcelsud/webhook-recorder/command"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplit(t *testing.T) {
	t.Run("success - short text is one chunk", func(t *testing.T) {
		assert.Equal(t, []string{"hello"}, Split("hello", 10))
	})

	t.Run("success - long text is cut at the limit", func(t *testing.T) {
		chunks := Split(strings.Repeat("a", 25), 10)
		assert.Equal(t, []string{strings.Repeat("a", 10), strings.Repeat("a", 10), strings.Repeat("a", 5)}, chunks)
	})

	t.Run("success - prefers a newline in the second half", func(t *testing.T) {
		chunks := Split("aaaaaaa\nbbbbbbbb", 10)
		assert.Equal(t, []string{"aaaaaaa\n", "bbbbbbbb"}, chunks)
	})

	t.Run("success - never splits a rune", func(t *testing.T) {
		text := strings.Repeat("é", 6) // 12 bytes
		chunks := Split(text, 5)
		for _, c := range chunks {
			assert.LessOrEqual(t, len(c), 5)
			assert.True(t, utf8.ValidString(c))
		}
		assert.Equal(t, text, strings.Join(chunks, ""))
	})
}

func TestConnector(t *testing.T) {
	c := New("1180", "", nil, zerolog.Nop())

	assert.Equal(t, "discord", c.Platform())
	assert.Equal(t, "1180", c.SelfID())

	t.Run("error - send before open", func(t *testing.T) {
		err := c.Send(context.Background(), "chan", "hi")
		assert.ErrorIs(t, err, ErrDisconnected)
	})

	t.Run("error - open without token", func(t *testing.T) {
		err := c.Open(context.Background())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "token is required")
	})

	t.Run("success - close without session", func(t *testing.T) {
		assert.NoError(t, c.Close())
	})
}

type fakeExecutor struct {
	requests []command.Request
	reply    string
	ok       bool
}

func (f *fakeExecutor) Execute(ctx context.Context, req command.Request) (string, bool) {
	f.requests = append(f.requests, req)
	return f.reply, f.ok
}

func TestConnector_Commands(t *testing.T) {
	t.Run("success - command is parsed with the channel as session", func(t *testing.T) {
		exec := &fakeExecutor{reply: "event 3", ok: true}
		c := New("1180", "token", exec, zerolog.Nop())

		reply, ok := c.answer(context.Background(), "  webhook.get /bulk 2 ", "chan-1")
		require.True(t, ok)
		assert.Equal(t, "event 3", reply)
		require.Len(t, exec.requests, 1)
		assert.Equal(t, command.Request{Name: "webhook.get", Args: []string{"/bulk", "2"}, Session: "chan-1"}, exec.requests[0])
	})

	t.Run("success - unknown command stays silent", func(t *testing.T) {
		exec := &fakeExecutor{}
		c := New("1180", "token", exec, zerolog.Nop())

		_, ok := c.answer(context.Background(), "hello there", "chan-1")
		assert.False(t, ok)
		assert.Len(t, exec.requests, 1)
	})

	t.Run("success - blank message is not executed", func(t *testing.T) {
		exec := &fakeExecutor{reply: "x", ok: true}
		c := New("1180", "token", exec, zerolog.Nop())

		_, ok := c.answer(context.Background(), "   ", "chan-1")
		assert.False(t, ok)
		assert.Empty(t, exec.requests)
	})

	t.Run("success - messages from bots are ignored", func(t *testing.T) {
		exec := &fakeExecutor{reply: "x", ok: true}
		c := New("1180", "token", exec, zerolog.Nop())
		state := discordgo.NewState()
		state.User = &discordgo.User{ID: "self"}
		s := &discordgo.Session{State: state}

		c.onMessageCreate(s, &discordgo.MessageCreate{Message: &discordgo.Message{
			Content: "webhook.list", ChannelID: "chan-1", Author: &discordgo.User{ID: "self"},
		}})
		c.onMessageCreate(s, &discordgo.MessageCreate{Message: &discordgo.Message{
			Content: "webhook.list", ChannelID: "chan-1", Author: &discordgo.User{ID: "other", Bot: true},
		}})
		assert.Empty(t, exec.requests)
	})

	t.Run("success - no executor means no answer", func(t *testing.T) {
		c := New("1180", "token", nil, zerolog.Nop())
		_, ok := c.answer(context.Background(), "webhook.list", "chan-1")
		assert.False(t, ok)
	})
}
