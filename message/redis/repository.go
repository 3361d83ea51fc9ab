package redis

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/marcelsud/webhook-recorder/message"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

/* Redis implementation of message.Repository
 * Each path is a plain string key holding the JSON history, the same document
 * the file backend writes. Keys are named webhook-messages:{path}.
 */

const keyPrefix = "webhook-messages"

type Repository struct {
	client *redis.Client
	log    zerolog.Logger
}

// NewRepository creates a new Redis repository
func NewRepository(addr, password string, db int, logger zerolog.Logger) (*Repository, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	// Test connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("connecting to Redis: %w", err)
	}

	return &Repository{
		client: client,
		log:    logger,
	}, nil
}

// Save overwrites the history of path
func (r *Repository) Save(ctx context.Context, path string, h message.History) error {
	data, err := message.EncodeHistory(h)
	if err != nil {
		return err
	}

	if err := r.client.Set(ctx, historyKey(path), data, 0).Err(); err != nil {
		return fmt.Errorf("storing history of %s: %w", path, err)
	}
	return nil
}

// LoadAll scans every history key
// The path comes from the key, so emptied histories survive a restart
func (r *Repository) LoadAll(ctx context.Context) (map[string]message.History, error) {
	histories := make(map[string]message.History)
	pattern := keyPrefix + ":*"

	var cursor uint64
	for {
		keys, nextCursor, err := r.client.Scan(ctx, cursor, pattern, 100).Result()
		if err != nil {
			return nil, fmt.Errorf("scanning history keys: %w", err)
		}

		for _, key := range keys {
			data, err := r.client.Get(ctx, key).Bytes()
			if err == redis.Nil {
				// Key removed between scan and get
				continue
			}
			if err != nil {
				return nil, fmt.Errorf("getting history: %w", err)
			}

			h, _, err := message.DecodeHistory(data)
			if err != nil {
				r.log.Error().Err(err).Str("key", key).Msg("parsing history")
				continue
			}
			histories[strings.TrimPrefix(key, keyPrefix+":")] = h
		}

		cursor = nextCursor
		if cursor == 0 {
			break
		}
	}

	return histories, nil
}

// Close closes the Redis connection
func (r *Repository) Close(ctx context.Context) error {
	return r.client.Close()
}

// GetClient returns the underlying Redis client for advanced operations
func (r *Repository) GetClient() *redis.Client {
	return r.client
}

func historyKey(path string) string {
	return fmt.Sprintf("%s:%s", keyPrefix, path)
}
