package dispatch

import (
	"context"
	"fmt"
	"sync"

	"github.com/marcelsud/webhook-recorder/render"
	"github.com/rs/zerolog"
)

// Dispatcher delivers rendered webhook bodies through the available connectors
type Dispatcher struct {
	mu         sync.RWMutex
	connectors []Connector
	log        zerolog.Logger
}

// NewDispatcher creates a dispatcher over connectors, tried in the given order
func NewDispatcher(logger zerolog.Logger, connectors ...Connector) *Dispatcher {
	return &Dispatcher{
		connectors: connectors,
		log:        logger,
	}
}

// Add registers another connector, tried after the existing ones
func (d *Dispatcher) Add(c Connector) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.connectors = append(d.connectors, c)
}

// Connectors returns the registered connectors
func (d *Dispatcher) Connectors() []Connector {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return append([]Connector(nil), d.connectors...)
}

// Available lists the registered connectors as "platform,id"
func (d *Dispatcher) Available() []string {
	connectors := d.Connectors()
	out := make([]string, 0, len(connectors))
	for _, c := range connectors {
		out = append(out, fmt.Sprintf("%s,%s", c.Platform(), c.SelfID()))
	}
	return out
}

// Forward sends body through the first eligible connector and target pair
// The target template is rendered once and posted to each of its sessions.
// It returns NoConnector when no pair matched.
func (d *Dispatcher) Forward(ctx context.Context, targets []Target, body map[string]string) Outcome {
	for _, c := range d.Connectors() {
		for _, t := range targets {
			if !Eligible(c, t) {
				continue
			}
			text := render.Render(t.Template(), body)
			for _, sessionID := range t.SessionIDs {
				if err := c.Send(ctx, sessionID, text); err != nil {
					d.log.Error().
						Err(err).
						Str("platform", c.Platform()).
						Str("connector", c.SelfID()).
						Str("session", sessionID).
						Msg("sending message")
				}
			}
			return Delivered
		}
	}
	return NoConnector
}
