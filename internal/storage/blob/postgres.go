package blob

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	_ "github.com/lib/pq"
)

type PostgresStore struct {
	db     *sql.DB
	dbName string
}

func NewPostgres(ctx context.Context, dsn, dbName string) (*PostgresStore, error) {
	const op = "storage.blob.NewPostgres"

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	_, err = db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS files (
			db_name    TEXT NOT NULL,
			file_key   TEXT NOT NULL,
			data       BYTEA NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			PRIMARY KEY (db_name, file_key)
		)`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("%s: создание таблицы files: %w", op, err)
	}

	return &PostgresStore{db: db, dbName: dbName}, nil
}

func (s *PostgresStore) Get(ctx context.Context, key string) ([]byte, error) {
	const op = "storage.blob.PostgresStore.Get"

	var data []byte
	err := s.db.QueryRowContext(ctx,
		`SELECT data FROM files WHERE db_name = $1 AND file_key = $2`, s.dbName, key).Scan(&data)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %s: %w", op, key, ErrNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return data, nil
}

func (s *PostgresStore) Put(ctx context.Context, key string, data []byte) error {
	const op = "storage.blob.PostgresStore.Put"

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO files (db_name, file_key, data) VALUES ($1, $2, $3)
		ON CONFLICT (db_name, file_key) DO UPDATE SET data = EXCLUDED.data, updated_at = now()`,
		s.dbName, key, data)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

func (s *PostgresStore) Close() error {
	return s.db.Close()
}
