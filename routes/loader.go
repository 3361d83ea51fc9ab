package routes

import (
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/marcelsud/webhook-recorder/dispatch"
	"github.com/marcelsud/webhook-recorder/message"
	"gopkg.in/yaml.v3"
)

var ErrRouteNotFound = errors.New("route not found")

/* Loader manages webhook configuration from routes.yaml
 * Provides in-memory lookup by path and by custom command
 */

// Config represents the structure of routes.yaml
type Config struct {
	Connectors []ConnectorConfig        `yaml:"connectors"`
	Webhooks   map[string]WebhookConfig `yaml:"webhooks"`
}

// WebhookConfig represents a single webhook path in the YAML file
type WebhookConfig struct {
	Method             string            `yaml:"method"` // Default: get
	Headers            map[string]string `yaml:"headers"`
	SigningSecret      string            `yaml:"signing_secret"`
	Response           []TargetConfig    `yaml:"response"`
	SaveLatestMessage  bool              `yaml:"save_latest_message"`
	StoreAllMessages   bool              `yaml:"store_all_messages"`
	MaxStoredMessages  int               `yaml:"max_stored_messages"` // Default: 50
	PersistMessages    bool              `yaml:"persist_messages"`
	InstantForward     *bool             `yaml:"instant_forward"` // Default: true
	CustomCommand      string            `yaml:"custom_command"`
	CommandDescription string            `yaml:"command_description"`
}

// TargetConfig is one response entry in the YAML file
type TargetConfig struct {
	Platform    string   `yaml:"platform"`
	ConnectorID string   `yaml:"connector_id"`
	SessionIDs  []string `yaml:"session_ids"`
	MsgTemplate []string `yaml:"msg_template"`
}

// Loader holds the loaded routes
type Loader struct {
	routes     map[string]*Route
	commands   map[string]*Route
	connectors []ConnectorConfig
}

// NewLoader creates a new route loader
func NewLoader() *Loader {
	return &Loader{
		routes:   make(map[string]*Route),
		commands: make(map[string]*Route),
	}
}

// Load reads and parses the routes.yaml file
func (l *Loader) Load(filePath string) error {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return fmt.Errorf("reading routes file: %w", err)
	}
	return l.LoadBytes(data)
}

// LoadBytes parses routes YAML, replacing whatever was loaded before
func (l *Loader) LoadBytes(data []byte) error {
	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return fmt.Errorf("parsing routes YAML: %w", err)
	}

	connectors := make([]ConnectorConfig, 0, len(config.Connectors))
	seen := make(map[string]bool)
	for _, cc := range config.Connectors {
		if err := cc.Validate(); err != nil {
			return fmt.Errorf("validating connector: %w", err)
		}
		key := cc.Platform + "," + cc.ID
		if seen[key] {
			return fmt.Errorf("validating connector: duplicate connector %s", key)
		}
		seen[key] = true
		connectors = append(connectors, cc)
	}

	routes := make(map[string]*Route, len(config.Webhooks))
	commands := make(map[string]*Route)
	for path, wc := range config.Webhooks {
		route := newRoute(path, wc)
		if err := route.Validate(); err != nil {
			return fmt.Errorf("validating route: %w", err)
		}
		if route.CustomCommand != "" {
			if other, taken := commands[route.CustomCommand]; taken {
				return fmt.Errorf("validating route: custom_command %q used by both %s and %s",
					route.CustomCommand, other.Path, route.Path)
			}
			commands[route.CustomCommand] = route
		}
		routes[path] = route
	}

	l.routes = routes
	l.commands = commands
	l.connectors = connectors
	return nil
}

func newRoute(path string, wc WebhookConfig) *Route {
	method := strings.ToLower(wc.Method)
	if method == "" {
		method = "get"
	}
	maxStored := wc.MaxStoredMessages
	if maxStored == 0 {
		maxStored = message.DefaultMaxStored
	}
	instantForward := true
	if wc.InstantForward != nil {
		instantForward = *wc.InstantForward
	}

	targets := make([]dispatch.Target, 0, len(wc.Response))
	for _, tc := range wc.Response {
		targets = append(targets, dispatch.Target{
			Platform:    tc.Platform,
			ConnectorID: tc.ConnectorID,
			SessionIDs:  tc.SessionIDs,
			MsgTemplate: tc.MsgTemplate,
		})
	}

	return &Route{
		Path:               path,
		Method:             method,
		Headers:            wc.Headers,
		SigningSecret:      wc.SigningSecret,
		Response:           targets,
		SaveLatestMessage:  wc.SaveLatestMessage,
		StoreAllMessages:   wc.StoreAllMessages,
		MaxStoredMessages:  maxStored,
		PersistMessages:    wc.PersistMessages,
		InstantForward:     instantForward,
		CustomCommand:      wc.CustomCommand,
		CommandDescription: wc.CommandDescription,
	}
}

// Get retrieves a route by its path
func (l *Loader) Get(path string) (*Route, error) {
	route, exists := l.routes[path]
	if !exists {
		return nil, fmt.Errorf("%w: %s", ErrRouteNotFound, path)
	}
	return route, nil
}

// List returns all loaded routes sorted by path
func (l *Loader) List() []*Route {
	routes := make([]*Route, 0, len(l.routes))
	for _, route := range l.routes {
		routes = append(routes, route)
	}
	sort.Slice(routes, func(i, j int) bool { return routes[i].Path < routes[j].Path })
	return routes
}

// Exists checks if a path is configured
func (l *Loader) Exists(path string) bool {
	_, exists := l.routes[path]
	return exists
}

// ByCommand returns the route bound to a custom command
func (l *Loader) ByCommand(name string) (*Route, bool) {
	route, exists := l.commands[name]
	return route, exists
}

// Connectors returns the configured connectors in file order
func (l *Loader) Connectors() []ConnectorConfig {
	return append([]ConnectorConfig(nil), l.connectors...)
}

// Policies returns the startup policy of every configured path
func (l *Loader) Policies() map[string]message.Policy {
	policies := make(map[string]message.Policy, len(l.routes))
	for path, route := range l.routes {
		policies[path] = route.Policy()
	}
	return policies
}
