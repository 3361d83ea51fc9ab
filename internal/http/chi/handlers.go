package chi

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/httplog"
	"github.com/marcelsud/webhook-recorder/command"
	"github.com/marcelsud/webhook-recorder/dispatch"
	"github.com/marcelsud/webhook-recorder/message"
	"github.com/marcelsud/webhook-recorder/metrics"
	"github.com/marcelsud/webhook-recorder/routes"
	"github.com/rs/zerolog"
)

// Dependencies are the collaborators the HTTP layer is built from
type Dependencies struct {
	Logger         zerolog.Logger
	Messages       message.UseCase
	Routes         *routes.Loader
	Dispatcher     *dispatch.Dispatcher
	Commands       *command.Handler
	Metrics        metrics.Recorder // optional
	MetricsHandler http.Handler     // optional, served on /metrics
	Now            func() time.Time // optional, clock for signature checks
}

// Handlers sets up one route per configured webhook plus the recorder API
func Handlers(ctx context.Context, deps Dependencies) *chi.Mux {
	if deps.Metrics == nil {
		deps.Metrics = metrics.Nop{}
	}
	if deps.Now == nil {
		deps.Now = time.Now
	}

	r := chi.NewRouter()
	r.Use(httplog.RequestLogger(deps.Logger))
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))

	// Health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"healthy"}`))
	})
	if deps.MetricsHandler != nil {
		r.Method(http.MethodGet, "/metrics", deps.MetricsHandler)
	}

	r.Route("/v1", func(r chi.Router) {
		r.Get("/webhooks", getWebhooks(deps.Routes, deps.Messages).ServeHTTP)
		r.Post("/commands", postCommand(deps.Commands).ServeHTTP)
	})

	for _, route := range deps.Routes.List() {
		r.With(
			requireHeaders(route, deps.Metrics, deps.Logger),
			verifySignature(route, deps.Metrics, deps.Logger, deps.Now),
		).Method(route.HTTPMethod(), route.Path, receiveWebhook(deps, route))
		deps.Logger.Info().
			Str("method", route.HTTPMethod()).
			Str("path", route.Path).
			Msg("registered webhook")
	}

	return r
}
