package console

import (
	"context"
	"sync"

	"github.com/marcelsud/webhook-recorder/dispatch"
	"github.com/rs/zerolog"
)

// MaxRecorded bounds how many sent messages a connector remembers
const MaxRecorded = 100

// Sent is a message handed to a console connector
type Sent struct {
	SessionID string
	Text      string
}

/* Connector writes messages to the process log instead of a chat platform
 * Useful for local development; it also keeps the last MaxRecorded messages for inspection
 */
type Connector struct {
	mu       sync.Mutex
	platform string
	id       string
	sent     []Sent
	log      zerolog.Logger
}

func New(platform, id string, logger zerolog.Logger) *Connector {
	return &Connector{
		platform: platform,
		id:       id,
		log:      logger,
	}
}

func (c *Connector) Platform() string { return c.platform }

func (c *Connector) SelfID() string { return c.id }

// Send logs text for sessionID. It never fails.
func (c *Connector) Send(ctx context.Context, sessionID, text string) error {
	c.mu.Lock()
	c.sent = append(c.sent, Sent{SessionID: sessionID, Text: text})
	if over := len(c.sent) - MaxRecorded; over > 0 {
		c.sent = append(c.sent[:0:0], c.sent[over:]...)
	}
	c.mu.Unlock()

	c.log.Info().
		Str("platform", c.platform).
		Str("connector", c.id).
		Str("session", sessionID).
		Str("text", text).
		Msg("message sent")
	return nil
}

// Sent returns the most recent messages sent, oldest first
func (c *Connector) Sent() []Sent {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]Sent(nil), c.sent...)
}

var _ dispatch.Connector = (*Connector)(nil)
