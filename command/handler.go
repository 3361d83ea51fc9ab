package command

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/marcelsud/webhook-recorder/dispatch"
	"github.com/marcelsud/webhook-recorder/message"
	"github.com/marcelsud/webhook-recorder/routes"
)

const (
	CmdGet    = "webhook.get"
	CmdDelete = "webhook.delete"
	CmdList   = "webhook.list"
	CmdHelp   = "webhook.help"
)

var ErrBulkDisabled = errors.New("bulk storage is disabled")

// Routes is the route lookup the handler needs
type Routes interface {
	Get(path string) (*routes.Route, error)
	List() []*routes.Route
	ByCommand(name string) (*routes.Route, bool)
}

// Request is one chat command addressed to the recorder
type Request struct {
	Name    string   `json:"name"`
	Args    []string `json:"args"`
	Session string   `json:"session"`
}

// ParseRequest splits a chat line into a request; ok is false for a blank line
func ParseRequest(text, session string) (Request, bool) {
	fields := strings.Fields(text)
	if len(fields) == 0 {
		return Request{}, false
	}
	return Request{Name: fields[0], Args: fields[1:], Session: session}, true
}

/* Handler executes chat commands against the stored histories
 * Uses pointer semantics as it's an API, not data.
 */
type Handler struct {
	routes    Routes
	messages  message.UseCase
	formatter dispatch.Formatter
}

func NewHandler(rs Routes, messages message.UseCase, formatter dispatch.Formatter) *Handler {
	return &Handler{
		routes:    rs,
		messages:  messages,
		formatter: formatter,
	}
}

// Execute runs req and returns the reply text.
// ok is false when the command name is neither built-in nor a custom command.
func (h *Handler) Execute(ctx context.Context, req Request) (reply string, ok bool) {
	switch req.Name {
	case CmdGet:
		opts, err := ParseGetOptions(req.Args)
		if err != nil {
			return describe("", err), true
		}
		return h.get(opts, req.Session), true
	case CmdDelete:
		opts, err := ParseDeleteOptions(req.Args)
		if err != nil {
			return describe("", err), true
		}
		return h.delete(ctx, opts), true
	case CmdList:
		return h.list(), true
	case CmdHelp:
		return h.help(), true
	}

	route, found := h.routes.ByCommand(req.Name)
	if !found {
		return "", false
	}
	if len(req.Args) > 1 {
		return fmt.Sprintf("usage: %s [index|start-end|all]", req.Name), true
	}
	opts, err := ParseGetOptions(append([]string{route.Path}, req.Args...))
	if err != nil {
		return describe(route.Path, err), true
	}
	return h.get(opts, req.Session), true
}

func (h *Handler) get(opts GetOptions, session string) string {
	route, err := h.routes.Get(opts.Path)
	if err != nil {
		return describe(opts.Path, err)
	}
	if opts.Selector.Kind != message.SelectIndex && !route.StoreAllMessages {
		return describe(opts.Path, ErrBulkDisabled)
	}

	entries, err := h.messages.Query(opts.Path, opts.Selector)
	if err != nil {
		return describe(opts.Path, err)
	}
	return h.formatter.Format(opts.Path, entries, route.Response, session)
}

func (h *Handler) delete(ctx context.Context, opts DeleteOptions) string {
	route, err := h.routes.Get(opts.Path)
	if err != nil {
		return describe(opts.Path, err)
	}
	if !route.StoreAllMessages {
		return describe(opts.Path, ErrBulkDisabled)
	}

	result, err := h.messages.Delete(ctx, opts.Path, opts.Selector, route.PersistMessages)
	if err != nil {
		return describe(opts.Path, err)
	}
	return result.String()
}

func (h *Handler) list() string {
	all := h.routes.List()
	if len(all) == 0 {
		return "No webhooks configured."
	}

	var b strings.Builder
	b.WriteString("Configured webhooks:")
	for _, route := range all {
		fmt.Fprintf(&b, "\n%s %s, %d stored", route.HTTPMethod(), route.Path, h.messages.Len(route.Path))
		if route.CustomCommand != "" {
			fmt.Fprintf(&b, ", command %s", route.CustomCommand)
		}
	}
	return b.String()
}

func (h *Handler) help() string {
	var b strings.Builder
	b.WriteString("Commands:")
	fmt.Fprintf(&b, "\n%s <path> [index|start-end|all]: show stored messages, 1 is the latest", CmdGet)
	fmt.Fprintf(&b, "\n%s <path> <index|start-end|all|old>: delete stored messages", CmdDelete)
	fmt.Fprintf(&b, "\n%s: list configured webhooks", CmdList)
	fmt.Fprintf(&b, "\n%s: show this help", CmdHelp)
	for _, route := range h.routes.List() {
		if route.CustomCommand == "" {
			continue
		}
		description := route.CommandDescription
		if description == "" {
			description = "latest message from " + route.Path
		}
		fmt.Fprintf(&b, "\n%s [index|start-end|all]: %s", route.CustomCommand, description)
	}
	return b.String()
}

// describe turns a command error into the reply shown in chat
func describe(path string, err error) string {
	var bounds *message.BoundsError
	switch {
	case errors.Is(err, routes.ErrRouteNotFound):
		return fmt.Sprintf("No webhook configured for %s.", path)
	case errors.Is(err, message.ErrNotFound):
		return fmt.Sprintf("No stored messages for %s.", path)
	case errors.Is(err, ErrBulkDisabled):
		return fmt.Sprintf("%s only keeps its latest message, enable store_all_messages to address older ones.", path)
	case errors.As(err, &bounds):
		return fmt.Sprintf("Invalid selector: %s.", bounds.Error())
	default:
		return err.Error()
	}
}
