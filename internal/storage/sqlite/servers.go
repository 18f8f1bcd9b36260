package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"chequeos-rutinas/internal/storage"
)

func (s *Storage) GetServers(ctx context.Context) ([]storage.Server, error) {
	const op = "storage.sqlite.GetServers"

	servers := []storage.Server{}
	if s.db == nil {
		return servers, nil
	}

	rows, err := s.db.QueryContext(ctx, `SELECT data FROM servers ORDER BY rowid ASC`)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	for rows.Next() {
		var data string
		if err := rows.Scan(&data); err != nil {
			return nil, fmt.Errorf("%s: сканирование строки: %w", op, err)
		}

		var srv storage.Server
		if err := json.Unmarshal([]byte(data), &srv); err != nil {
			return nil, fmt.Errorf("%s: разбор сервера: %w", op, err)
		}
		if srv.Cameras == nil {
			srv.Cameras = []storage.Camera{}
		}
		servers = append(servers, srv)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return servers, nil
}

// SetServers заменяет весь список серверов. Уникальность IP здесь не проверяется.
func (s *Storage) SetServers(ctx context.Context, servers []storage.Server) error {
	const op = "storage.sqlite.SetServers"

	if s.db == nil {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%s: начало транзакции: %w", op, err)
	}
	defer tx.Rollback()

	if err := setServersTx(ctx, tx, servers); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%s: коммит транзакции: %w", op, err)
	}
	return nil
}

func setServersTx(ctx context.Context, tx *sql.Tx, servers []storage.Server) error {
	if _, err := tx.ExecContext(ctx, `DELETE FROM servers`); err != nil {
		return fmt.Errorf("удаление серверов: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `INSERT OR REPLACE INTO servers (id, data) VALUES (?, ?)`)
	if err != nil {
		return fmt.Errorf("подготовка запроса: %w", err)
	}
	defer stmt.Close()

	for _, srv := range servers {
		if srv.Cameras == nil {
			srv.Cameras = []storage.Camera{}
		}
		data, err := json.Marshal(srv)
		if err != nil {
			return fmt.Errorf("сериализация сервера %s: %w", srv.ID, err)
		}
		if _, err := stmt.ExecContext(ctx, srv.ID, string(data)); err != nil {
			return fmt.Errorf("вставка сервера %s: %w", srv.ID, err)
		}
	}
	return nil
}
