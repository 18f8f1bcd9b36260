package sqlite

import (
	"context"
	"fmt"

	"chequeos-rutinas/internal/storage"
)

// ExportSnapshot собирает всё состояние в один снимок.
func (s *Storage) ExportSnapshot(ctx context.Context) (storage.Snapshot, error) {
	const op = "storage.sqlite.ExportSnapshot"

	var (
		snap storage.Snapshot
		err  error
	)
	snap.Version = storage.SnapshotVersion

	if snap.Operators, err = s.GetOperators(ctx); err != nil {
		return storage.Snapshot{}, fmt.Errorf("%s: %w", op, err)
	}
	if snap.Servers, err = s.GetServers(ctx); err != nil {
		return storage.Snapshot{}, fmt.Errorf("%s: %w", op, err)
	}
	if snap.HelpText, err = s.GetHelpText(ctx); err != nil {
		return storage.Snapshot{}, fmt.Errorf("%s: %w", op, err)
	}
	if snap.CheckHistory, err = s.GetCameraHistory(ctx); err != nil {
		return storage.Snapshot{}, fmt.Errorf("%s: %w", op, err)
	}
	if snap.JornadaHistory, err = s.GetJornadaHistory(ctx); err != nil {
		return storage.Snapshot{}, fmt.Errorf("%s: %w", op, err)
	}
	return snap, nil
}

// ReplaceAll удаляет все данные и вставляет содержимое снимка одной транзакцией.
// id и даты записей истории сохраняются как есть.
func (s *Storage) ReplaceAll(ctx context.Context, snap storage.Snapshot) error {
	const op = "storage.sqlite.ReplaceAll"

	if s.db == nil {
		return fmt.Errorf("%s: %w", op, storage.ErrStorageUnavailable)
	}
	snap.Normalize()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%s: начало транзакции: %w", op, err)
	}
	defer tx.Rollback()

	for _, table := range []string{"operators", "servers", "config", "camera_history", "jornada_history"} {
		if _, err := tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return fmt.Errorf("%s: очистка %s: %w", op, table, err)
		}
	}

	if err := setOperatorsTx(ctx, tx, snap.Operators); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if err := setServersTx(ctx, tx, snap.Servers); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if err := setHelpText(ctx, tx, snap.HelpText); err != nil {
		return fmt.Errorf("%s: текст помощи: %w", op, err)
	}
	if err := setSchemaVersion(ctx, tx); err != nil {
		return fmt.Errorf("%s: версия схемы: %w", op, err)
	}
	if err := insertCameraRecordsTx(ctx, tx, snap.CheckHistory); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if err := insertJornadaRecordsTx(ctx, tx, snap.JornadaHistory); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%s: коммит транзакции: %w", op, err)
	}
	return nil
}
