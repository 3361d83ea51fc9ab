package message

import "context"

/* Small interfaces for history persistence
 * Backends return errors; Service decides that they are logged and never
 * allowed to stop a webhook from being delivered.
 */

// Reader loads persisted histories
type Reader interface {
	// LoadAll returns every persisted history keyed by path
	LoadAll(ctx context.Context) (map[string]History, error)
}

// Writer persists histories
type Writer interface {
	// Save overwrites the persisted history of path
	Save(ctx context.Context, path string, h History) error
}

// Repository combines the persistence operations of a backend
type Repository interface {
	Reader
	Writer
	Close(ctx context.Context) error
}
