package sqlite

import (
	"context"
	"database/sql"
	"fmt"
)

func (s *Storage) GetOperators(ctx context.Context) ([]string, error) {
	const op = "storage.sqlite.GetOperators"

	operators := []string{}
	if s.db == nil {
		return operators, nil
	}

	rows, err := s.db.QueryContext(ctx, `SELECT name FROM operators ORDER BY name ASC`)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("%s: сканирование строки: %w", op, err)
		}
		operators = append(operators, name)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return operators, nil
}

// SetOperators заменяет весь список операторов (удалить всё, вставить заново).
func (s *Storage) SetOperators(ctx context.Context, operators []string) error {
	const op = "storage.sqlite.SetOperators"

	if s.db == nil {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%s: начало транзакции: %w", op, err)
	}
	defer tx.Rollback()

	if err := setOperatorsTx(ctx, tx, operators); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%s: коммит транзакции: %w", op, err)
	}
	return nil
}

func setOperatorsTx(ctx context.Context, tx *sql.Tx, operators []string) error {
	if _, err := tx.ExecContext(ctx, `DELETE FROM operators`); err != nil {
		return fmt.Errorf("удаление операторов: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `INSERT OR IGNORE INTO operators (name) VALUES (?)`)
	if err != nil {
		return fmt.Errorf("подготовка запроса: %w", err)
	}
	defer stmt.Close()

	for _, name := range operators {
		if _, err := stmt.ExecContext(ctx, name); err != nil {
			return fmt.Errorf("вставка оператора %q: %w", name, err)
		}
	}
	return nil
}
