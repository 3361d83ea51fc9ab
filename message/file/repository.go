package file

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/marcelsud/webhook-recorder/message"
	"github.com/rs/zerolog"
)

/* JSON file implementation of message.Repository
 * One file per webhook path under a single root directory:
 * <root>/<sanitized path>.json holding the whole history of the path.
 */

const extension = ".json"

var unsafeChars = strings.NewReplacer(
	"/", "_", `\`, "_", ":", "_", "*", "_", "?", "_",
	`"`, "_", "<", "_", ">", "_", "|", "_",
)

type Repository struct {
	root string
	log  zerolog.Logger
}

// NewRepository creates a file repository rooted at root
// The directory is created on the first save, not here
func NewRepository(root string, logger zerolog.Logger) *Repository {
	return &Repository{
		root: root,
		log:  logger,
	}
}

// Sanitize turns a webhook path into a file name without extension
func Sanitize(path string) string {
	return unsafeChars.Replace(path)
}

// FileName returns the file that holds the history of path
func (r *Repository) FileName(path string) string {
	return filepath.Join(r.root, Sanitize(path)+extension)
}

// Save overwrites the history file of path
func (r *Repository) Save(ctx context.Context, path string, h message.History) error {
	if err := os.MkdirAll(r.root, 0o755); err != nil {
		return fmt.Errorf("creating persistence directory: %w", err)
	}

	data, err := message.EncodeHistory(h)
	if err != nil {
		return err
	}

	if err := os.WriteFile(r.FileName(path), data, 0o644); err != nil {
		return fmt.Errorf("writing history of %s: %w", path, err)
	}
	return nil
}

// LoadAll reads every history file under the root directory
// A missing root is not an error. Files that fail to parse are logged and skipped.
func (r *Repository) LoadAll(ctx context.Context) (map[string]message.History, error) {
	histories := make(map[string]message.History)

	entries, err := os.ReadDir(r.root)
	if errors.Is(err, fs.ErrNotExist) {
		return histories, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading persistence directory: %w", err)
	}

	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != extension {
			continue
		}
		name := filepath.Join(r.root, entry.Name())

		data, err := os.ReadFile(name)
		if err != nil {
			r.log.Error().Err(err).Str("file", name).Msg("reading history file")
			continue
		}

		h, format, err := message.DecodeHistory(data)
		if err != nil {
			r.log.Error().Err(err).Str("file", name).Msg("parsing history file")
			continue
		}
		if len(h) == 0 {
			// an empty sequence carries no path to key it by
			r.log.Debug().Str("file", name).Msg("skipping empty history file")
			continue
		}

		path := h[0].Path
		histories[path] = h
		r.log.Info().
			Str("path", path).
			Str("format", format.String()).
			Int("messages", len(h)).
			Msg("loaded history file")
	}

	return histories, nil
}

// Close is a no-op, files are closed after every write
func (r *Repository) Close(ctx context.Context) error {
	return nil
}
