package metrics

import (
	"context"
	"time"

	"github.com/marcelsud/webhook-recorder/dispatch"
)

// Snapshot represents the current state of the stored histories.
type Snapshot struct {
	// HistoryLengths maps webhook path to the number of stored messages
	HistoryLengths map[string]int64 `json:"history_lengths"`

	// Timestamp when the snapshot was collected
	Timestamp time.Time `json:"timestamp"`
}

// Collector defines the interface for collecting gauges from the recorder.
type Collector interface {
	// Collect gathers current metrics from the system
	Collect(ctx context.Context) (Snapshot, error)

	// GetHistoryLengths returns the number of stored messages per path
	GetHistoryLengths(ctx context.Context) (map[string]int64, error)
}

// Recorder counts webhook traffic as it happens.
type Recorder interface {
	Received(ctx context.Context, path string)
	Stored(ctx context.Context, path string)
	Dispatched(ctx context.Context, path string, outcome dispatch.Outcome)
	HeaderRejected(ctx context.Context, path string)
	PersistFailed(ctx context.Context, path string)
}

// Nop is a Recorder that records nothing
type Nop struct{}

func (Nop) Received(context.Context, string)                     {}
func (Nop) Stored(context.Context, string)                       {}
func (Nop) Dispatched(context.Context, string, dispatch.Outcome) {}
func (Nop) HeaderRejected(context.Context, string)               {}
func (Nop) PersistFailed(context.Context, string)                {}
