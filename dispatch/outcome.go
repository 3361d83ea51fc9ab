package dispatch

import "net/http"

/* Outcome represents what happened to a received webhook
 * Delivered: a connector posted the rendered message
 * Stored: forwarding is disabled for the path, the body was only recorded
 * NoConnector: no connector matched any response target
 */
type Outcome int

const (
	Delivered Outcome = iota + 1
	Stored
	NoConnector
)

// String returns the string representation of the outcome
func (o Outcome) String() string {
	switch o {
	case Delivered:
		return "delivered"
	case Stored:
		return "stored"
	case NoConnector:
		return "no_connector"
	default:
		return "unknown"
	}
}

// StatusCode returns the HTTP status answered to the webhook caller
func (o Outcome) StatusCode() int {
	switch o {
	case Delivered, Stored:
		return http.StatusOK
	default:
		return http.StatusMethodNotAllowed
	}
}
