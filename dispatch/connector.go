package dispatch

import (
	"context"
	"slices"
	"strings"
)

/* Connector is a bot able to post text into a chat session
 * Send is fire-and-forget for the dispatcher: errors are logged, never retried
 */
type Connector interface {
	Platform() string
	SelfID() string
	Send(ctx context.Context, sessionID, text string) error
}

// Target is one response entry of a webhook: which bot posts what, and where
type Target struct {
	Platform    string
	ConnectorID string
	SessionIDs  []string
	MsgTemplate []string
}

// Template returns the message template lines joined with newlines
func (t Target) Template() string {
	return strings.Join(t.MsgTemplate, "\n")
}

// HasSession reports whether sessionID is one of the target sessions
func (t Target) HasSession(sessionID string) bool {
	return slices.Contains(t.SessionIDs, sessionID)
}

// Eligible reports whether c may deliver for t.
// A connector is skipped only when both platform and id differ, so a bot with
// the right id on another platform still qualifies.
func Eligible(c Connector, t Target) bool {
	return !(c.Platform() != t.Platform && c.SelfID() != t.ConnectorID)
}
