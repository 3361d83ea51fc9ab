package message

import (
	"context"
	"sync"

	"github.com/rs/zerolog"
)

// ReceiveOptions are the per-path flags that decide what happens to a new body
type ReceiveOptions struct {
	SaveLatest bool
	Retention  Retention
	Persist    bool
}

// Policy is what Load needs to know about a configured path
type Policy struct {
	Retention Retention
	Persist   bool
}

// UseCase defines the history operations used by the HTTP and command layers
type UseCase interface {
	Receive(ctx context.Context, path string, body map[string]string, opts ReceiveOptions) (Message, bool)
	Query(path string, sel Selector) ([]Entry, error)
	Delete(ctx context.Context, path string, sel Selector, persist bool) (DeleteResult, error)
	Len(path string) int
}

/* Service owns the store and its persistence backend
 * Uses pointer semantics as it's an API, not data.
 * Every operation holds mu from mutation to the end of the inline save, so the
 * persisted file always matches the state the handler returned with.
 */
type Service struct {
	mu    sync.Mutex
	store *Store
	repo  Repository
	log   zerolog.Logger

	// OnPersistFailure is called after a failed save, for metrics
	OnPersistFailure func(path string)
}

// NewService creates a service; repo may be nil to keep histories in memory only
func NewService(repo Repository, logger zerolog.Logger) *Service {
	return &Service{
		store: NewStore(),
		repo:  repo,
		log:   logger,
	}
}

// Receive records body for path when the path keeps messages, then saves it
// It reports whether the body was stored
func (s *Service) Receive(ctx context.Context, path string, body map[string]string, opts ReceiveOptions) (Message, bool) {
	if !opts.SaveLatest && !opts.Retention.StoreAll {
		return Message{}, false
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	msg := s.store.Record(path, body, opts.Retention)
	s.log.Info().
		Str("path", path).
		Int("stored", s.store.Len(path)).
		Msg("saved message")

	if opts.Persist {
		s.persist(ctx, path)
	}
	return msg, true
}

// Query returns the messages of path addressed by sel
func (s *Service) Query(path string, sel Selector) ([]Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.store.Resolve(path, sel)
}

// Delete removes messages of path and saves the result when persist is set
func (s *Service) Delete(ctx context.Context, path string, sel Selector, persist bool) (DeleteResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	result, err := s.store.Delete(path, sel)
	if err != nil {
		return DeleteResult{}, err
	}
	s.log.Info().
		Str("path", path).
		Str("selector", sel.String()).
		Int("removed", result.Removed).
		Msg("deleted messages")

	if persist && result.Removed > 0 {
		s.persist(ctx, path)
	}
	return result, nil
}

// Load reads every persisted history, then collapses the paths whose policy
// disables bulk storage. It returns the number of histories loaded.
func (s *Service) Load(ctx context.Context, policies map[string]Policy) int {
	if s.repo == nil {
		return 0
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	all, err := s.repo.LoadAll(ctx)
	if err != nil {
		s.log.Error().Err(err).Msg("loading persisted messages")
		return 0
	}
	for path, h := range all {
		s.store.Replace(path, h)
	}

	for path, policy := range policies {
		if !s.store.Collapse(path, policy.Retention) {
			continue
		}
		s.log.Info().Str("path", path).Msg("bulk storage disabled, kept only the latest message")
		if policy.Persist {
			s.persist(ctx, path)
		}
	}

	s.log.Info().Int("paths", len(all)).Msg("loaded persisted messages")
	return len(all)
}

// History returns a copy of the history of path
func (s *Service) History(path string) (History, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.store.History(path)
}

// Len returns the number of stored messages of path
func (s *Service) Len(path string) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.store.Len(path)
}

// Stats returns the history length of every known path
func (s *Service) Stats() map[string]int {
	s.mu.Lock()
	defer s.mu.Unlock()

	stats := make(map[string]int)
	for _, path := range s.store.Paths() {
		stats[path] = s.store.Len(path)
	}
	return stats
}

// persist saves the history of path; the caller holds mu
func (s *Service) persist(ctx context.Context, path string) {
	if s.repo == nil {
		return
	}
	h, _ := s.store.History(path)
	if err := s.repo.Save(ctx, path, h); err != nil {
		s.log.Error().Err(err).Str("path", path).Msg("persisting messages")
		if s.OnPersistFailure != nil {
			s.OnPersistFailure(path)
		}
	}
}
