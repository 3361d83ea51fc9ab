package routes

import "fmt"

const (
	KindDiscord = "discord"
	KindConsole = "console"
)

// ConnectorConfig describes one bot the server connects on startup
type ConnectorConfig struct {
	Platform string `yaml:"platform"`
	ID       string `yaml:"id"`
	Kind     string `yaml:"kind"`
	TokenEnv string `yaml:"token_env"` // environment variable holding the bot token
}

// Validate checks if the connector configuration is valid
func (c ConnectorConfig) Validate() error {
	if c.Platform == "" || c.ID == "" {
		return fmt.Errorf("connector must name platform and id")
	}
	switch c.Kind {
	case KindConsole:
	case KindDiscord:
		if c.TokenEnv == "" {
			return fmt.Errorf("discord connector %s requires token_env", c.ID)
		}
	default:
		return fmt.Errorf("unknown connector kind %q for %s,%s", c.Kind, c.Platform, c.ID)
	}
	return nil
}
