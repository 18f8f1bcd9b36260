package blob

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/go-sql-driver/mysql"
)

// MySQLStore хранит образы в таблице files(db_name, file_key, data).
type MySQLStore struct {
	db     *sql.DB
	dbName string
}

func NewMySQL(ctx context.Context, dsn, dbName string) (*MySQLStore, error) {
	const op = "storage.blob.NewMySQL"

	cfg, err := mysql.ParseDSN(dsn)
	if err != nil {
		return nil, fmt.Errorf("%s: некорректный dsn: %w", op, err)
	}
	cfg.ParseTime = true

	db, err := sql.Open("mysql", cfg.FormatDSN())
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	_, err = db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS files (
			db_name  VARCHAR(64)  NOT NULL,
			file_key VARCHAR(128) NOT NULL,
			data     LONGBLOB     NOT NULL,
			updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
			PRIMARY KEY (db_name, file_key)
		)`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("%s: создание таблицы files: %w", op, err)
	}

	return &MySQLStore{db: db, dbName: dbName}, nil
}

func (s *MySQLStore) Get(ctx context.Context, key string) ([]byte, error) {
	const op = "storage.blob.MySQLStore.Get"

	var data []byte
	err := s.db.QueryRowContext(ctx,
		`SELECT data FROM files WHERE db_name = ? AND file_key = ?`, s.dbName, key).Scan(&data)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %s: %w", op, key, ErrNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return data, nil
}

func (s *MySQLStore) Put(ctx context.Context, key string, data []byte) error {
	const op = "storage.blob.MySQLStore.Put"

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO files (db_name, file_key, data) VALUES (?, ?, ?)
		ON DUPLICATE KEY UPDATE data = VALUES(data)`, s.dbName, key, data)
	if err != nil {
		var mysqlErr *mysql.MySQLError
		if errors.As(err, &mysqlErr) && mysqlErr.Number == 1153 {
			return fmt.Errorf("%s: образ базы больше max_allowed_packet (%d байт): %w", op, len(data), err)
		}
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

func (s *MySQLStore) Close() error {
	return s.db.Close()
}
