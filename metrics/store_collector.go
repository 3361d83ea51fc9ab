package metrics

import (
	"context"
	"time"
)

// StatsSource reports the history length of every known path
type StatsSource interface {
	Stats() map[string]int
}

// StoreCollector implements the Collector interface over the in-memory histories
type StoreCollector struct {
	source StatsSource
}

// NewStoreCollector creates a new collector reading from source
func NewStoreCollector(source StatsSource) *StoreCollector {
	return &StoreCollector{source: source}
}

// Collect gathers all metrics from the store
func (c *StoreCollector) Collect(ctx context.Context) (Snapshot, error) {
	lengths, err := c.GetHistoryLengths(ctx)
	if err != nil {
		return Snapshot{}, err
	}
	return Snapshot{
		HistoryLengths: lengths,
		Timestamp:      time.Now(),
	}, nil
}

// GetHistoryLengths returns the number of stored messages per path
func (c *StoreCollector) GetHistoryLengths(ctx context.Context) (map[string]int64, error) {
	stats := c.source.Stats()
	lengths := make(map[string]int64, len(stats))
	for path, n := range stats {
		lengths[path] = int64(n)
	}
	return lengths, nil
}
