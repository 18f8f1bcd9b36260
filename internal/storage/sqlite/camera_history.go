package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"chequeos-rutinas/internal/storage"
)

// GetCameraHistory возвращает историю проверок камер, новые записи первыми.
func (s *Storage) GetCameraHistory(ctx context.Context) ([]storage.CameraCheckRecord, error) {
	const op = "storage.sqlite.GetCameraHistory"

	history := []storage.CameraCheckRecord{}
	if s.db == nil {
		return history, nil
	}

	rows, err := s.db.QueryContext(ctx, `SELECT data FROM camera_history ORDER BY date DESC, rowid DESC`)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	for rows.Next() {
		var data string
		if err := rows.Scan(&data); err != nil {
			return nil, fmt.Errorf("%s: сканирование строки: %w", op, err)
		}

		var rec storage.CameraCheckRecord
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

func (s *Storage) GetCameraCheckRecord(ctx context.Context, id string) (*storage.CameraCheckRecord, error) {
	const op = "storage.sqlite.GetCameraCheckRecord"

	if s.db == nil {
		return nil, fmt.Errorf("%s: %w", op, storage.ErrStorageUnavailable)
	}

	var data string
	err := s.db.QueryRowContext(ctx, `SELECT data FROM camera_history WHERE id = ?`, id).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%s: запись %s: %w", op, id, storage.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	var rec storage.CameraCheckRecord
	if err := json.Unmarshal([]byte(data), &rec); err != nil {
		return nil, fmt.Errorf("%s: разбор записи: %w", op, err)
	}
	rec.Normalize()
	return &rec, nil
}

// AddCameraCheckRecord проставляет id и дату и сохраняет запись.
func (s *Storage) AddCameraCheckRecord(ctx context.Context, check storage.NewCameraCheck) (*storage.CameraCheckRecord, error) {
	const op = "storage.sqlite.AddCameraCheckRecord"

	if s.db == nil {
		return nil, fmt.Errorf("%s: %w", op, storage.ErrStorageUnavailable)
	}

	id, date := s.stamp()
	rec := storage.CameraCheckRecord{
		ID:                  id,
		Date:                date,
		Operator:            check.Operator,
		GeneralObservations: check.GeneralObservations,
		CameraStates:        check.CameraStates,
		ServerStates:        check.ServerStates,
	}
	rec = rec.Clone()

	if err := insertCameraRecord(ctx, s.db, `INSERT INTO camera_history (id, date, data) VALUES (?, ?, ?)`, rec); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &rec, nil
}

// InsertCameraCheckRecords вставляет записи как есть, с их собственными id и датой.
// Используется миграцией и импортом.
func (s *Storage) InsertCameraCheckRecords(ctx context.Context, records ...storage.CameraCheckRecord) error {
	const op = "storage.sqlite.InsertCameraCheckRecords"

	if s.db == nil {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%s: начало транзакции: %w", op, err)
	}
	defer tx.Rollback()

	if err := insertCameraRecordsTx(ctx, tx, records); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%s: коммит транзакции: %w", op, err)
	}
	return nil
}

func insertCameraRecordsTx(ctx context.Context, tx *sql.Tx, records []storage.CameraCheckRecord) error {
	for _, rec := range records {
		rec.Normalize()
		if err := insertCameraRecord(ctx, tx, `INSERT OR REPLACE INTO camera_history (id, date, data) VALUES (?, ?, ?)`, rec); err != nil {
			return err
		}
	}
	return nil
}

func insertCameraRecord(ctx context.Context, ex execer, query string, rec storage.CameraCheckRecord) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("сериализация записи %s: %w", rec.ID, err)
	}
	if _, err := ex.ExecContext(ctx, query, rec.ID, rec.Date, string(data)); err != nil {
		return fmt.Errorf("вставка записи %s: %w", rec.ID, err)
	}
	return nil
}
