// Package sqlite is a store.Repository backed by a SQLite database.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/goliatone/go-uibuilder/pkg/schema"
	"github.com/goliatone/go-uibuilder/pkg/store"
)

// Store persists records in the ui_schema table.
type Store struct {
	db    *sql.DB
	now   func() time.Time
	newID store.IDFunc
}

// Option configures a Store.
type Option func(*Store)

// WithClock replaces the time source used for timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		if now != nil {
			s.now = now
		}
	}
}

// WithIDFunc replaces the id generator.
func WithIDFunc(fn store.IDFunc) Option {
	return func(s *Store) {
		if fn != nil {
			s.newID = fn
		}
	}
}

// Open opens (creating if needed) the database at path and applies pending
// migrations. Use ":memory:" for a throwaway database.
func Open(path string, opts ...Option) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("sqlite: open %s: %w", path, err)
	}

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("sqlite: pragma: %w", err)
	}

	if path == ":memory:" {
		// every connection would otherwise see its own empty database
		db.SetMaxOpenConns(1)
	} else {
		db.SetMaxOpenConns(20)
		db.SetMaxIdleConns(10)
		db.SetConnMaxIdleTime(5 * time.Minute)
		db.SetConnMaxLifetime(2 * time.Hour)
	}

	if err := migrateDB(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("sqlite: migrate: %w", err)
	}
	return New(db, opts...), nil
}

// New wraps an already migrated database.
func New(db *sql.DB, opts ...Option) *Store {
	s := &Store{db: db, now: time.Now, newID: store.NewID}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

// Close releases the database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

const selectColumns = `SELECT id, name, description, content, created_at, updated_at FROM ui_schema`

type scanner interface {
	Scan(dest ...any) error
}

func scanRecord(row scanner) (schema.Record, error) {
	var (
		rec     schema.Record
		desc    sql.NullString
		content string
	)
	if err := row.Scan(&rec.ID, &rec.Name, &desc, &content, &rec.CreatedAt, &rec.UpdatedAt); err != nil {
		return schema.Record{}, err
	}
	if desc.Valid {
		d := desc.String
		rec.Description = &d
	}
	if err := json.Unmarshal([]byte(content), &rec.Content); err != nil {
		return schema.Record{}, fmt.Errorf("sqlite: decode content of %s: %w", rec.ID, err)
	}
	rec.CreatedAt = rec.CreatedAt.UTC()
	rec.UpdatedAt = rec.UpdatedAt.UTC()
	return rec, nil
}

func (s *Store) List(ctx context.Context) ([]schema.Record, error) {
	rows, err := s.db.QueryContext(ctx, selectColumns+` ORDER BY updated_at DESC, name, id`)
	if err != nil {
		return nil, fmt.Errorf("sqlite: list: %w", err)
	}
	defer rows.Close()

	out := []schema.Record{}
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("sqlite: list: %w", err)
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: list: %w", err)
	}
	return out, nil
}

func (s *Store) Get(ctx context.Context, id string) (schema.Record, error) {
	return s.getOne(ctx, s.db, selectColumns+` WHERE id = ?`, id)
}

func (s *Store) GetByName(ctx context.Context, name string) (schema.Record, error) {
	return s.getOne(ctx, s.db, selectColumns+` WHERE name = ? ORDER BY updated_at DESC, id LIMIT 1`, name)
}

type querier interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func (s *Store) getOne(ctx context.Context, q querier, query string, key string) (schema.Record, error) {
	rec, err := scanRecord(q.QueryRowContext(ctx, query, key))
	if errors.Is(err, sql.ErrNoRows) {
		return schema.Record{}, fmt.Errorf("%w: %s", store.ErrNotFound, key)
	}
	if err != nil {
		return schema.Record{}, fmt.Errorf("sqlite: get %s: %w", key, err)
	}
	return rec, nil
}

func (s *Store) Create(ctx context.Context, in store.NewRecord) (schema.Record, error) {
	if err := in.Validate(); err != nil {
		return schema.Record{}, err
	}
	rec := store.Build(s.newID(), in, s.now().UTC())
	content, err := json.Marshal(rec.Content)
	if err != nil {
		return schema.Record{}, fmt.Errorf("sqlite: encode content: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO ui_schema (id, name, description, content, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		rec.ID, rec.Name, nullable(rec.Description), string(content), rec.CreatedAt, rec.UpdatedAt,
	)
	if err != nil {
		return schema.Record{}, fmt.Errorf("sqlite: insert: %w", err)
	}
	return rec, nil
}

func (s *Store) Update(ctx context.Context, id string, patch store.Patch) (schema.Record, error) {
	if err := patch.Validate(); err != nil {
		return schema.Record{}, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return schema.Record{}, fmt.Errorf("sqlite: begin: %w", err)
	}
	defer tx.Rollback()

	rec, err := s.getOne(ctx, tx, selectColumns+` WHERE id = ?`, id)
	if err != nil {
		return schema.Record{}, err
	}
	rec = patch.Apply(rec, s.now().UTC())

	content, err := json.Marshal(rec.Content)
	if err != nil {
		return schema.Record{}, fmt.Errorf("sqlite: encode content: %w", err)
	}
	_, err = tx.ExecContext(ctx, `
		UPDATE ui_schema SET name = ?, description = ?, content = ?, updated_at = ?
		WHERE id = ?`,
		rec.Name, nullable(rec.Description), string(content), rec.UpdatedAt, rec.ID,
	)
	if err != nil {
		return schema.Record{}, fmt.Errorf("sqlite: update %s: %w", id, err)
	}
	if err := tx.Commit(); err != nil {
		return schema.Record{}, fmt.Errorf("sqlite: commit: %w", err)
	}
	return rec, nil
}

func (s *Store) Delete(ctx context.Context, id string) (bool, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM ui_schema WHERE id = ?`, id)
	if err != nil {
		return false, fmt.Errorf("sqlite: delete %s: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("sqlite: delete %s: %w", id, err)
	}
	return n > 0, nil
}

func nullable(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

var _ store.Repository = (*Store)(nil)
