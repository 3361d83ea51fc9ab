package chi

import (
	"bytes"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/marcelsud/webhook-recorder/metrics"
	"github.com/marcelsud/webhook-recorder/routes"
	"github.com/marcelsud/webhook-recorder/signature"
	"github.com/rs/zerolog"
)

const maxBodyBytes = 1 << 20

// requireHeaders answers 400 when a configured header is missing or differs
func requireHeaders(route *routes.Route, rec metrics.Recorder, logger zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			for name, want := range route.Headers {
				if r.Header.Get(name) != want {
					logger.Warn().Str("path", route.Path).Str("header", name).Msg("header check failed")
					rec.HeaderRejected(r.Context(), route.Path)
					http.Error(w, "header mismatch", http.StatusBadRequest)
					return
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}

// verifySignature checks Standard Webhooks signatures on routes with a signing secret
func verifySignature(route *routes.Route, rec metrics.Recorder, logger zerolog.Logger, now func() time.Time) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		secret, err := route.Secret()
		if err != nil || secret == nil {
			// routes are validated on load, an unparsable secret means unsigned
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
			var tooLarge *http.MaxBytesError
			if errors.As(err, &tooLarge) {
				http.Error(w, "request body too large", http.StatusRequestEntityTooLarge)
				return
			}
			if err != nil {
				http.Error(w, "failed to read request body", http.StatusBadRequest)
				return
			}
			r.Body.Close()

			payload := body
			if r.Method == http.MethodGet {
				payload = []byte(r.URL.RawQuery)
			}
			if err := signature.Verify(secret, r.Header, payload, now()); err != nil {
				logger.Warn().Err(err).Str("path", route.Path).Msg("signature check failed")
				rec.HeaderRejected(r.Context(), route.Path)
				http.Error(w, "invalid signature", http.StatusBadRequest)
				return
			}

			r.Body = io.NopCloser(bytes.NewReader(body))
			next.ServeHTTP(w, r)
		})
	}
}
