package routes

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/marcelsud/webhook-recorder/dispatch"
	"github.com/marcelsud/webhook-recorder/message"
	"github.com/marcelsud/webhook-recorder/signature"
)

// ReservedCommandPrefix is taken by the built-in chat commands
const ReservedCommandPrefix = "webhook."

/* Route represents the configuration of one webhook path
 * Maps the path to its response targets and history settings
 */
type Route struct {
	Path               string
	Method             string // get or post
	Headers            map[string]string
	SigningSecret      string // Standard Webhooks signing secret (whsec_ prefix)
	Response           []dispatch.Target
	SaveLatestMessage  bool
	StoreAllMessages   bool
	MaxStoredMessages  int
	PersistMessages    bool
	InstantForward     bool
	CustomCommand      string
	CommandDescription string
}

// Validate checks if the route configuration is valid
func (r *Route) Validate() error {
	if !strings.HasPrefix(r.Path, "/") {
		return fmt.Errorf("path must start with / (got %q)", r.Path)
	}
	if r.Method != "get" && r.Method != "post" {
		return fmt.Errorf("method must be get or post for %s (got %q)", r.Path, r.Method)
	}
	if r.MaxStoredMessages < 1 {
		return fmt.Errorf("max_stored_messages must be at least 1 for %s (got %d)", r.Path, r.MaxStoredMessages)
	}
	for i, t := range r.Response {
		if t.Platform == "" || t.ConnectorID == "" {
			return fmt.Errorf("response %d of %s must name platform and connector_id", i, r.Path)
		}
		if len(t.SessionIDs) == 0 {
			return fmt.Errorf("response %d of %s must list at least one session", i, r.Path)
		}
	}
	if r.SigningSecret != "" {
		if _, err := signature.ParseSecret(r.SigningSecret); err != nil {
			return fmt.Errorf("invalid signing_secret for %s: %w", r.Path, err)
		}
	}
	if strings.HasPrefix(r.CustomCommand, ReservedCommandPrefix) {
		return fmt.Errorf("custom_command %q of %s uses the reserved prefix %s", r.CustomCommand, r.Path, ReservedCommandPrefix)
	}
	if strings.ContainsAny(r.CustomCommand, " \t\n") {
		return fmt.Errorf("custom_command %q of %s must be a single word", r.CustomCommand, r.Path)
	}
	return nil
}

// HTTPMethod returns the method in the form net/http uses
func (r *Route) HTTPMethod() string {
	if r.Method == "post" {
		return http.MethodPost
	}
	return http.MethodGet
}

// Secret returns the parsed signing secret, nil when the route is unsigned
func (r *Route) Secret() (signature.Secret, error) {
	if r.SigningSecret == "" {
		return nil, nil
	}
	return signature.ParseSecret(r.SigningSecret)
}

// Retention returns the history bound of the route
func (r *Route) Retention() message.Retention {
	return message.Retention{StoreAll: r.StoreAllMessages, Max: r.MaxStoredMessages}
}

// ReceiveOptions returns what the store does with a new body for this route
func (r *Route) ReceiveOptions() message.ReceiveOptions {
	return message.ReceiveOptions{
		SaveLatest: r.SaveLatestMessage,
		Retention:  r.Retention(),
		Persist:    r.PersistMessages,
	}
}

// Policy returns the settings applied to the route history on startup
func (r *Route) Policy() message.Policy {
	return message.Policy{Retention: r.Retention(), Persist: r.PersistMessages}
}

// Keeps reports whether the route records bodies at all
func (r *Route) Keeps() bool {
	return r.SaveLatestMessage || r.StoreAllMessages
}
