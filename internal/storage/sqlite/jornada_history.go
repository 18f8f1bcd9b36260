package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"chequeos-rutinas/internal/storage"
)

func (s *Storage) GetJornadaHistory(ctx context.Context) ([]storage.JornadaCheckRecord, error) {
	const op = "storage.sqlite.GetJornadaHistory"

	history := []storage.JornadaCheckRecord{}
	if s.db == nil {
		return history, nil
	}

	rows, err := s.db.QueryContext(ctx, `SELECT data FROM jornada_history ORDER BY date DESC, rowid DESC`)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	for rows.Next() {
		var data string
		if err := rows.Scan(&data); err != nil {
			return nil, fmt.Errorf("%s: сканирование строки: %w", op, err)
		}

		var rec storage.JornadaCheckRecord
		if err := json.Unmarshal([]byte(data), &rec); err != nil {
			return nil, fmt.Errorf("%s: разбор записи: %w", op, err)
		}
		rec.Normalize()
		history = append(history, rec)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return history, nil
}

func (s *Storage) GetJornadaCheckRecord(ctx context.Context, id string) (*storage.JornadaCheckRecord, error) {
	const op = "storage.sqlite.GetJornadaCheckRecord"

	if s.db == nil {
		return nil, fmt.Errorf("%s: %w", op, storage.ErrStorageUnavailable)
	}

	var data string
	err := s.db.QueryRowContext(ctx, `SELECT data FROM jornada_history WHERE id = ?`, id).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%s: запись %s: %w", op, id, storage.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	var rec storage.JornadaCheckRecord
	if err := json.Unmarshal([]byte(data), &rec); err != nil {
		return nil, fmt.Errorf("%s: разбор записи: %w", op, err)
	}
	rec.Normalize()
	return &rec, nil
}

func (s *Storage) AddJornadaCheckRecord(ctx context.Context, check storage.NewJornadaCheck) (*storage.JornadaCheckRecord, error) {
	const op = "storage.sqlite.AddJornadaCheckRecord"

	if s.db == nil {
		return nil, fmt.Errorf("%s: %w", op, storage.ErrStorageUnavailable)
	}

	id, date := s.stamp()
	rec := storage.JornadaCheckRecord{
		ID:             id,
		Date:           date,
		Operator:       check.Operator,
		Shift:          check.Shift,
		CompletedTasks: check.CompletedTasks,
		Observations:   check.Observations,
	}
	rec = rec.Clone()

	if err := insertJornadaRecord(ctx, s.db, `INSERT INTO jornada_history (id, date, data) VALUES (?, ?, ?)`, rec); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &rec, nil
}

// UpdateJornadaCheckRecord перезаписывает данные записи с тем же id.
// Колонка date не меняется. Без открытой базы — ничего не делает.
func (s *Storage) UpdateJornadaCheckRecord(ctx context.Context, rec storage.JornadaCheckRecord) error {
	const op = "storage.sqlite.UpdateJornadaCheckRecord"

	if s.db == nil {
		return nil
	}

	rec.Normalize()
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("%s: сериализация записи %s: %w", op, rec.ID, err)
	}

	res, err := s.db.ExecContext(ctx, `UPDATE jornada_history SET data = ? WHERE id = ?`, string(data), rec.ID)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if n == 0 {
		return fmt.Errorf("%s: запись %s: %w", op, rec.ID, storage.ErrNotFound)
	}
	return nil
}

func (s *Storage) InsertJornadaCheckRecords(ctx context.Context, records ...storage.JornadaCheckRecord) error {
	const op = "storage.sqlite.InsertJornadaCheckRecords"

	if s.db == nil {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%s: начало транзакции: %w", op, err)
	}
	defer tx.Rollback()

	if err := insertJornadaRecordsTx(ctx, tx, records); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%s: коммит транзакции: %w", op, err)
	}
	return nil
}

func insertJornadaRecordsTx(ctx context.Context, tx *sql.Tx, records []storage.JornadaCheckRecord) error {
	for _, rec := range records {
		rec.Normalize()
		if err := insertJornadaRecord(ctx, tx, `INSERT OR REPLACE INTO jornada_history (id, date, data) VALUES (?, ?, ?)`, rec); err != nil {
			return err
		}
	}
	return nil
}

func insertJornadaRecord(ctx context.Context, ex execer, query string, rec storage.JornadaCheckRecord) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("сериализация записи %s: %w", rec.ID, err)
	}
	if _, err := ex.ExecContext(ctx, query, rec.ID, rec.Date, string(data)); err != nil {
		return fmt.Errorf("вставка записи %s: %w", rec.ID, err)
	}
	return nil
}
