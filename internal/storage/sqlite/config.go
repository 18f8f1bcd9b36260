package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

func (s *Storage) GetHelpText(ctx context.Context) (string, error) {
	const op = "storage.sqlite.GetHelpText"

	if s.db == nil {
		return "", nil
	}

	var value sql.NullString
	err := s.db.QueryRowContext(ctx, `SELECT value FROM config WHERE key = ?`, helpTextKey).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return value.String, nil
}

func (s *Storage) SetHelpText(ctx context.Context, text string) error {
	const op = "storage.sqlite.SetHelpText"

	if s.db == nil {
		return nil
	}
	if err := setHelpText(ctx, s.db, text); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

func setHelpText(ctx context.Context, ex execer, text string) error {
	_, err := ex.ExecContext(ctx, `INSERT OR REPLACE INTO config (key, value) VALUES (?, ?)`, helpTextKey, text)
	return err
}
