package docstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Postgres is a Store backed by a PostgreSQL jsonb table.
type Postgres struct {
	pool *pgxpool.Pool
}

// NewPostgres creates a connection pool for url, verifies it and
// creates the documents table if needed.
func NewPostgres(ctx context.Context, url string) (*Postgres, error) {
	cfg, err := pgxpool.ParseConfig(url)
	if err != nil {
		return nil, fmt.Errorf("while parsing database url: %w", err)
	}

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("while creating connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("while pinging database: %w", err)
	}

	s := &Postgres{pool: pool}
	if err := s.migrate(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("while migrating database: %w", err)
	}
	return s, nil
}

func (s *Postgres) migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS documents (
			seq BIGSERIAL,
			collection TEXT NOT NULL,
			id TEXT NOT NULL,
			data JSONB NOT NULL DEFAULT '{}'::jsonb,
			PRIMARY KEY (collection, id)
		);
		CREATE INDEX IF NOT EXISTS idx_documents_user ON documents (collection, (data->>'userId'));
		CREATE INDEX IF NOT EXISTS idx_documents_parent ON documents (collection, (data->>'parentId'));
		CREATE INDEX IF NOT EXISTS idx_documents_folder ON documents (collection, (data->>'folderId'));
	`)
	return err
}

// Get implements Store.
func (s *Postgres) Get(ctx context.Context, collection, id string) (Document, error) {
	var data []byte
	err := s.pool.QueryRow(ctx,
		`SELECT data FROM documents WHERE collection = $1 AND id = $2`,
		collection, id,
	).Scan(&data)
	if errors.Is(err, pgx.ErrNoRows) {
		return Document{}, ErrNotFound
	}
	if err != nil {
		return Document{}, err
	}

	fields, err := decodeFields(string(data))
	if err != nil {
		return Document{}, err
	}
	return Document{ID: id, Fields: fields}, nil
}

// Create implements Store.
func (s *Postgres) Create(ctx context.Context, collection string, fields Fields) (string, error) {
	data, err := json.Marshal(cloneFields(fields))
	if err != nil {
		return "", err
	}

	id := uuid.New().String()
	if _, err := s.pool.Exec(ctx,
		`INSERT INTO documents (collection, id, data) VALUES ($1, $2, $3::jsonb)`,
		collection, id, string(data),
	); err != nil {
		return "", err
	}
	return id, nil
}

// Update implements Store. jsonb concatenation replaces only the given keys.
func (s *Postgres) Update(ctx context.Context, collection, id string, fields Fields) error {
	data, err := json.Marshal(cloneFields(fields))
	if err != nil {
		return err
	}

	tag, err := s.pool.Exec(ctx,
		`UPDATE documents SET data = data || $3::jsonb WHERE collection = $1 AND id = $2`,
		collection, id, string(data),
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete implements Store.
func (s *Postgres) Delete(ctx context.Context, collection, id string) error {
	_, err := s.pool.Exec(ctx,
		`DELETE FROM documents WHERE collection = $1 AND id = $2`,
		collection, id,
	)
	return err
}

// Query implements Store.
func (s *Postgres) Query(ctx context.Context, collection string, filters ...Filter) ([]Document, error) {
	if err := checkFields(filters); err != nil {
		return nil, err
	}

	var b strings.Builder
	b.WriteString(`SELECT id, data FROM documents WHERE collection = $1`)
	args := []any{collection}
	for _, f := range filters {
		if f.Value == nil {
			fmt.Fprintf(&b, " AND (data->'%s' IS NULL OR data->'%s' = 'null'::jsonb)", f.Field, f.Field)
			continue
		}
		value, err := json.Marshal(f.Value)
		if err != nil {
			return nil, err
		}
		args = append(args, string(value))
		fmt.Fprintf(&b, " AND data->'%s' = $%d::jsonb", f.Field, len(args))
	}
	b.WriteString(" ORDER BY seq")

	rows, err := s.pool.Query(ctx, b.String(), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var docs []Document
	for rows.Next() {
		var id string
		var data []byte
		if err := rows.Scan(&id, &data); err != nil {
			return nil, err
		}
		fields, err := decodeFields(string(data))
		if err != nil {
			return nil, err
		}
		docs = append(docs, Document{ID: id, Fields: fields})
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return docs, nil
}

// Close implements Store.
func (s *Postgres) Close() error {
	s.pool.Close()
	return nil
}
