package discord

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/bwmarrin/discordgo"
	"github.com/marcelsud/webhook-recorder/command"
	"github.com/marcelsud/webhook-recorder/dispatch"
	"github.com/rs/zerolog"
)

// MaxMessageLength is the Discord limit for a single message content
const MaxMessageLength = 2000

// Platform is the platform name Discord connectors report
const Platform = "discord"

var ErrDisconnected = errors.New("discord session is not open")

// Executor answers chat commands read from a channel
type Executor interface {
	Execute(ctx context.Context, req command.Request) (string, bool)
}

// Connector posts messages to Discord channels through a bot account.
// With an executor it also answers commands typed in those channels.
type Connector struct {
	mu       sync.RWMutex
	id       string
	token    string
	ctx      context.Context
	session  *discordgo.Session
	executor Executor
	log      zerolog.Logger
}

// New creates a connector identified by id. Call Open before sending.
// A nil executor leaves incoming messages unanswered.
func New(id, token string, executor Executor, logger zerolog.Logger) *Connector {
	return &Connector{
		id:       id,
		token:    token,
		ctx:      context.Background(),
		executor: executor,
		log:      logger,
	}
}

// Open connects the bot to the Discord gateway
func (c *Connector) Open(ctx context.Context) error {
	if c.token == "" {
		return fmt.Errorf("discord connector %s: bot token is required", c.id)
	}

	session, err := discordgo.New("Bot " + c.token)
	if err != nil {
		return fmt.Errorf("creating discord session: %w", err)
	}
	session.Identify.Intents = discordgo.IntentsGuildMessages |
		discordgo.IntentsDirectMessages |
		discordgo.IntentsMessageContent
	if c.executor != nil {
		session.AddHandler(c.onMessageCreate)
	}

	c.mu.Lock()
	c.ctx = ctx
	c.mu.Unlock()

	if err := session.Open(); err != nil {
		return fmt.Errorf("opening discord gateway: %w", err)
	}

	c.mu.Lock()
	c.session = session
	c.mu.Unlock()

	if user := session.State.User; user != nil {
		c.log.Info().Str("bot", user.Username).Str("user_id", user.ID).Str("connector", c.id).Msg("discord connected")
	}
	return nil
}

// Close disconnects from the gateway
func (c *Connector) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.session == nil {
		return nil
	}
	err := c.session.Close()
	c.session = nil
	if err != nil {
		return fmt.Errorf("closing discord session: %w", err)
	}
	return nil
}

func (c *Connector) Platform() string { return Platform }

func (c *Connector) SelfID() string { return c.id }

// Send posts text to the channel sessionID, split into chunks Discord accepts
func (c *Connector) Send(ctx context.Context, sessionID, text string) error {
	c.mu.RLock()
	session := c.session
	c.mu.RUnlock()
	if session == nil {
		return ErrDisconnected
	}

	for _, chunk := range Split(text, MaxMessageLength) {
		if _, err := session.ChannelMessageSend(sessionID, chunk, discordgo.WithContext(ctx)); err != nil {
			return fmt.Errorf("sending discord message to %s: %w", sessionID, err)
		}
	}
	return nil
}

func (c *Connector) onMessageCreate(s *discordgo.Session, m *discordgo.MessageCreate) {
	if m.Author == nil || m.Author.Bot {
		return
	}
	if s.State != nil && s.State.User != nil && m.Author.ID == s.State.User.ID {
		return
	}

	c.mu.RLock()
	ctx := c.ctx
	c.mu.RUnlock()

	reply, ok := c.answer(ctx, m.Content, m.ChannelID)
	if !ok {
		return
	}
	if err := c.Send(ctx, m.ChannelID, reply); err != nil {
		c.log.Error().Err(err).Str("channel", m.ChannelID).Msg("failed to answer command")
	}
}

// answer runs the command in content, if any, on behalf of channelID
func (c *Connector) answer(ctx context.Context, content, channelID string) (string, bool) {
	if c.executor == nil {
		return "", false
	}
	req, ok := command.ParseRequest(content, channelID)
	if !ok {
		return "", false
	}
	reply, ok := c.executor.Execute(ctx, req)
	if !ok || reply == "" {
		return "", false
	}
	c.log.Debug().Str("command", req.Name).Str("channel", channelID).Msg("command answered")
	return reply, true
}

// Split cuts text into chunks of at most maxLen bytes.
// It prefers a newline in the second half of a chunk and never splits a rune.
func Split(text string, maxLen int) []string {
	if len(text) <= maxLen {
		return []string{text}
	}
	var chunks []string
	for len(text) > 0 {
		if len(text) <= maxLen {
			chunks = append(chunks, text)
			break
		}
		cutAt := maxLen
		for cutAt > 0 && !utf8.RuneStart(text[cutAt]) {
			cutAt--
		}
		if cutAt == 0 {
			cutAt = maxLen
		}
		if idx := strings.LastIndex(text[:cutAt], "\n"); idx > maxLen/2 {
			cutAt = idx + 1
		}
		chunks = append(chunks, text[:cutAt])
		text = text[cutAt:]
	}
	return chunks
}

var _ dispatch.Connector = (*Connector)(nil)
