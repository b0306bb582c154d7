// Package store persists finished stories in a local SQLite database.
package store

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/lamim/storyforge/pkg/models"
)

//go:embed migrations/*.sql
var migrations embed.FS

// ErrNotFound is returned when no story has the requested id
var ErrNotFound = errors.New("story not found")

// DefaultListLimit caps List when no limit is given
const DefaultListLimit = 50

// Store is a story record store
type Store struct {
	db     *sqlx.DB
	logger *slog.Logger
}

// storyRow mirrors the stories table
type storyRow struct {
	ID           string            `db:"id"`
	CreatedAt    int64             `db:"created_at"`
	Prompt       string            `db:"prompt"`
	Title        string            `db:"title"`
	Body         string            `db:"body"`
	StoryText    string            `db:"story_text"`
	AudioPath    string            `db:"audio_path"`
	ImagePaths   models.StringList `db:"image_paths"`
	ExecutionLog models.StringList `db:"execution_log"`
}

func toRow(r *models.StoryRecord) storyRow {
	return storyRow{
		ID:           r.ID,
		CreatedAt:    r.CreatedAt.UnixNano(),
		Prompt:       r.Prompt,
		Title:        r.Title,
		Body:         r.Body,
		StoryText:    r.StoryText,
		AudioPath:    r.AudioPath,
		ImagePaths:   r.ImagePaths,
		ExecutionLog: r.ExecutionLog,
	}
}

func (row storyRow) record() *models.StoryRecord {
	return &models.StoryRecord{
		ID:           row.ID,
		CreatedAt:    time.Unix(0, row.CreatedAt).UTC(),
		Prompt:       row.Prompt,
		Title:        row.Title,
		Body:         row.Body,
		StoryText:    row.StoryText,
		AudioPath:    row.AudioPath,
		ImagePaths:   row.ImagePaths,
		ExecutionLog: row.ExecutionLog,
	}
}

// Open migrates the database at path to the latest schema and opens it
func Open(ctx context.Context, path string, logger *slog.Logger) (*Store, error) {
	if err := migrateUp(path); err != nil {
		return nil, err
	}

	db, err := sqlx.ConnectContext(ctx, "sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open story database: %w", err)
	}
	// SQLite allows one writer at a time
	db.SetMaxOpenConns(1)

	logger = logger.With("component", "store")
	logger.Debug("Opened story database", "path", path)
	return &Store{db: db, logger: logger}, nil
}

func migrateUp(path string) error {
	src, err := iofs.New(migrations, "migrations")
	if err != nil {
		return fmt.Errorf("failed to load migrations: %w", err)
	}

	m, err := migrate.NewWithSourceInstance("iofs", src, "sqlite://"+path)
	if err != nil {
		return fmt.Errorf("failed to create migrator: %w", err)
	}
	defer func() { _, _ = m.Close() }()

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	return nil
}

// Close closes the database
func (s *Store) Close() error {
	return s.db.Close()
}

// Create inserts a new story record. A zero CreatedAt is set to now.
func (s *Store) Create(ctx context.Context, rec *models.StoryRecord) error {
	if rec.ID == "" {
		return errors.New("story record has no id")
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}

	_, err := s.db.NamedExecContext(ctx, `
		INSERT INTO stories (id, created_at, prompt, title, body, story_text, audio_path, image_paths, execution_log)
		VALUES (:id, :created_at, :prompt, :title, :body, :story_text, :audio_path, :image_paths, :execution_log)`,
		toRow(rec))
	if err != nil {
		return fmt.Errorf("failed to insert story %s: %w", rec.ID, err)
	}

	s.logger.Info("Saved story", "id", rec.ID, "title", rec.Title)
	return nil
}

// Get returns the story with id, or ErrNotFound
func (s *Store) Get(ctx context.Context, id string) (*models.StoryRecord, error) {
	var row storyRow
	err := s.db.GetContext(ctx, &row, `SELECT * FROM stories WHERE id = ?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get story %s: %w", id, err)
	}
	return row.record(), nil
}

// List returns up to limit stories, newest first
func (s *Store) List(ctx context.Context, limit int) ([]*models.StoryRecord, error) {
	if limit <= 0 {
		limit = DefaultListLimit
	}

	var rows []storyRow
	err := s.db.SelectContext(ctx, &rows,
		`SELECT * FROM stories ORDER BY created_at DESC, id LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list stories: %w", err)
	}

	out := make([]*models.StoryRecord, len(rows))
	for i, row := range rows {
		out[i] = row.record()
	}
	return out, nil
}

// Delete removes the story with id, or returns ErrNotFound
func (s *Store) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM stories WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete story %s: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to delete story %s: %w", id, err)
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}

	s.logger.Info("Deleted story", "id", id)
	return nil
}
