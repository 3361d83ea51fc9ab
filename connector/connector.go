package connector

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/marcelsud/webhook-recorder/connector/console"
	"github.com/marcelsud/webhook-recorder/connector/discord"
	"github.com/marcelsud/webhook-recorder/dispatch"
	"github.com/marcelsud/webhook-recorder/routes"
	"github.com/rs/zerolog"
)

// Set is the list of connectors opened from the routes file
type Set struct {
	Connectors []dispatch.Connector
	closers    []func() error
}

// Build creates and opens every configured connector.
// Chat connectors pass incoming commands to executor.
// Connectors already opened are closed again when a later one fails.
func Build(ctx context.Context, configs []routes.ConnectorConfig, executor discord.Executor, logger zerolog.Logger) (*Set, error) {
	set := &Set{}
	for _, cfg := range configs {
		log := logger.With().Str("platform", cfg.Platform).Str("connector", cfg.ID).Logger()

		switch cfg.Kind {
		case routes.KindConsole:
			set.Connectors = append(set.Connectors, console.New(cfg.Platform, cfg.ID, log))
		case routes.KindDiscord:
			c := discord.New(cfg.ID, os.Getenv(cfg.TokenEnv), executor, log)
			if err := c.Open(ctx); err != nil {
				_ = set.Close()
				return nil, fmt.Errorf("opening connector %s,%s: %w", cfg.Platform, cfg.ID, err)
			}
			set.Connectors = append(set.Connectors, c)
			set.closers = append(set.closers, c.Close)
		default:
			_ = set.Close()
			return nil, fmt.Errorf("unknown connector kind %q", cfg.Kind)
		}
	}
	return set, nil
}

// Close closes every connector holding a live session
func (s *Set) Close() error {
	var errs []error
	for _, closeFn := range s.closers {
		if err := closeFn(); err != nil {
			errs = append(errs, err)
		}
	}
	s.closers = nil
	return errors.Join(errs...)
}
