package chi

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sort"

	"github.com/google/uuid"
	"github.com/marcelsud/webhook-recorder/dispatch"
	"github.com/marcelsud/webhook-recorder/message"
	"github.com/marcelsud/webhook-recorder/message/payload"
	"github.com/marcelsud/webhook-recorder/routes"
)

/* HTTP layer DTOs for webhook API
 * Separate from domain entities to avoid leaking internal structure
 */

// webhookResponse is the answer to a received webhook
type webhookResponse struct {
	EventID string `json:"event_id"`
	Path    string `json:"path"`
	Stored  bool   `json:"stored"`
	Outcome string `json:"outcome"`
}

// routeResponse represents a configured webhook in the API
type routeResponse struct {
	Path               string `json:"path"`
	Method             string `json:"method"`
	Stored             int    `json:"stored"`
	SaveLatestMessage  bool   `json:"save_latest_message"`
	StoreAllMessages   bool   `json:"store_all_messages"`
	MaxStoredMessages  int    `json:"max_stored_messages"`
	PersistMessages    bool   `json:"persist_messages"`
	InstantForward     bool   `json:"instant_forward"`
	CustomCommand      string `json:"custom_command,omitempty"`
	CommandDescription string `json:"command_description,omitempty"`
}

// receiveWebhook handles a request on a configured webhook path
func receiveWebhook(deps Dependencies, route *routes.Route) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		eventID := uuid.NewString()
		log := deps.Logger.With().Str("event_id", eventID).Str("path", route.Path).Logger()
		log.Info().Str("method", r.Method).Msg("received webhook")

		body, err := extractBody(w, r)
		if err != nil {
			var tooLarge *http.MaxBytesError
			if errors.As(err, &tooLarge) {
				http.Error(w, fmt.Sprintf("body exceeds %d bytes", tooLarge.Limit), http.StatusRequestEntityTooLarge)
				return
			}
			http.Error(w, fmt.Sprintf("invalid body: %v", err), http.StatusBadRequest)
			return
		}
		keys := make([]string, 0, len(body))
		for key := range body {
			keys = append(keys, key)
		}
		sort.Strings(keys)
		for _, key := range keys {
			log.Debug().Msgf("{%s} => %s", key, body[key])
		}

		ctx := r.Context()
		deps.Metrics.Received(ctx, route.Path)

		_, stored := deps.Messages.Receive(ctx, route.Path, body, route.ReceiveOptions())
		if stored {
			deps.Metrics.Stored(ctx, route.Path)
		}

		outcome := dispatch.Stored
		if route.InstantForward {
			outcome = deps.Dispatcher.Forward(ctx, route.Response, body)
			deps.Metrics.Dispatched(ctx, route.Path, outcome)
		}
		if outcome == dispatch.NoConnector {
			log.Error().
				Strs("available", deps.Dispatcher.Available()).
				Msg("no connector available to deliver the message")
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(outcome.StatusCode())
		response := webhookResponse{
			EventID: eventID,
			Path:    route.Path,
			Stored:  stored,
			Outcome: outcome.String(),
		}
		if err := json.NewEncoder(w).Encode(response); err != nil {
			log.Error().Err(err).Msg("encoding webhook response")
		}
	})
}

// extractBody reads query parameters for GET and the JSON or form body otherwise
func extractBody(w http.ResponseWriter, r *http.Request) (map[string]string, error) {
	if r.Method == http.MethodGet {
		return payload.FromValues(r.URL.Query()), nil
	}

	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("reading request body: %w", err)
	}
	defer r.Body.Close()

	return payload.Parse(r.Header.Get("Content-Type"), data)
}

// getWebhooks handles GET /v1/webhooks
func getWebhooks(routeLoader *routes.Loader, messages message.UseCase) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		allRoutes := routeLoader.List()

		responses := make([]routeResponse, 0, len(allRoutes))
		for _, route := range allRoutes {
			responses = append(responses, routeResponse{
				Path:               route.Path,
				Method:             route.Method,
				Stored:             messages.Len(route.Path),
				SaveLatestMessage:  route.SaveLatestMessage,
				StoreAllMessages:   route.StoreAllMessages,
				MaxStoredMessages:  route.MaxStoredMessages,
				PersistMessages:    route.PersistMessages,
				InstantForward:     route.InstantForward,
				CustomCommand:      route.CustomCommand,
				CommandDescription: route.CommandDescription,
			})
		}

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(responses); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
	})
}
