package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	_ "github.com/glebarez/go-sqlite" // pure Go SQLite driver, registers "sqlite"
	"github.com/marcelsud/webhook-recorder/message"
	"github.com/rs/zerolog"
)

/*
SQLite implementation of message.Repository

One row per stored message, ordered by position inside its path. Paths are also
recorded in known_paths so that an emptied history is still known after a restart.
*/

type Repository struct {
	DB  *sql.DB
	log zerolog.Logger
}

// NewRepository opens the database at dsn and creates the tables if needed
func NewRepository(ctx context.Context, dsn string, logger zerolog.Logger) (*Repository, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	// SQLite allows one writer; a single connection keeps saves serialised
	db.SetMaxOpenConns(1)

	r := &Repository{DB: db, log: logger}
	if err := r.CreateTables(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return r, nil
}

// CreateTables creates the schema if it does not exist
func (r *Repository) CreateTables(ctx context.Context) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS known_paths (
  path TEXT PRIMARY KEY
)`,
		`CREATE TABLE IF NOT EXISTS stored_messages (
  path TEXT NOT NULL,
  position INTEGER NOT NULL,
  timestamp INTEGER NOT NULL,
  body TEXT NOT NULL,
  PRIMARY KEY (path, position)
)`,
	}
	for _, stmt := range statements {
		if _, err := r.DB.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("creating tables: %w", err)
		}
	}
	return nil
}

// Save replaces every row of path in one transaction
func (r *Repository) Save(ctx context.Context, path string, h message.History) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `INSERT OR IGNORE INTO known_paths (path) VALUES (?)`, path); err != nil {
		return fmt.Errorf("registering path: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM stored_messages WHERE path = ?`, path); err != nil {
		return fmt.Errorf("deleting messages: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		insert into stored_messages (path, position, timestamp, body)
		values(?,?,?,?)`)
	if err != nil {
		return fmt.Errorf("preparing statement: %w", err)
	}
	defer stmt.Close()

	for i, m := range h {
		body, err := json.Marshal(m.Body)
		if err != nil {
			return fmt.Errorf("marshaling body: %w", err)
		}
		if _, err := stmt.ExecContext(ctx, path, i, m.Timestamp, string(body)); err != nil {
			return fmt.Errorf("executing statement: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

// LoadAll reads every known path with its messages in order
func (r *Repository) LoadAll(ctx context.Context) (map[string]message.History, error) {
	histories := make(map[string]message.History)

	paths, err := r.DB.QueryContext(ctx, `SELECT path FROM known_paths`)
	if err != nil {
		return nil, fmt.Errorf("selecting paths: %w", err)
	}
	defer paths.Close()
	for paths.Next() {
		var path string
		if err := paths.Scan(&path); err != nil {
			return nil, fmt.Errorf("scanning path: %w", err)
		}
		histories[path] = message.History{}
	}
	if err := paths.Err(); err != nil {
		return nil, fmt.Errorf("interacting with paths: %w", err)
	}
	paths.Close()

	rows, err := r.DB.QueryContext(ctx, `SELECT path, timestamp, body FROM stored_messages ORDER BY path, position`)
	if err != nil {
		return nil, fmt.Errorf("selecting messages: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			m    message.Message
			body string
		)
		if err := rows.Scan(&m.Path, &m.Timestamp, &body); err != nil {
			return nil, fmt.Errorf("scanning message: %w", err)
		}
		if err := json.Unmarshal([]byte(body), &m.Body); err != nil {
			r.log.Error().Err(err).Str("path", m.Path).Msg("parsing stored body")
			continue
		}
		histories[m.Path] = append(histories[m.Path], m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("interacting with messages: %w", err)
	}

	return histories, nil
}

// Close closes the database
func (r *Repository) Close(ctx context.Context) error {
	if err := r.DB.Close(); err != nil {
		return fmt.Errorf("closing repository: %w", err)
	}
	return nil
}
