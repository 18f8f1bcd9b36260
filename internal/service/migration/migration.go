// Package migration переносит данные из старого плоского хранилища
// в реляционное. Вызывается только для только что созданной базы.
package migration

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"chequeos-rutinas/internal/storage"
	"chequeos-rutinas/internal/storage/legacy"
)

type Writer interface {
	SetOperators(ctx context.Context, operators []string) error
	SetServers(ctx context.Context, servers []storage.Server) error
	SetHelpText(ctx context.Context, text string) error
	InsertCameraCheckRecords(ctx context.Context, records ...storage.CameraCheckRecord) error
	InsertJornadaCheckRecords(ctx context.Context, records ...storage.JornadaCheckRecord) error
}

type Result struct {
	Found               bool
	Operators           int
	Servers             int
	ServerShape         legacy.ServerShape
	HelpText            bool
	CameraRecords       int
	LegacyCameraRecords int
	JornadaRecords      int
	Cleared             bool
}

type Migrator struct {
	log *slog.Logger
	src legacy.Source
}

func New(log *slog.Logger, src legacy.Source) *Migrator {
	return &Migrator{log: log, src: src}
}

// Run переносит все пять ключей. Старые ключи удаляются только если
// хоть один был найден и весь проход завершился без ошибок.
func (m *Migrator) Run(ctx context.Context, dst Writer) (Result, error) {
	const op = "service.migration.Run"

	log := m.log.With(slog.String("op", op))
	log.Info("проверка данных старого хранилища для миграции")

	var res Result

	if raw, ok, err := m.src.Get(legacy.KeyOperators); err != nil {
		return res, partial(op, err)
	} else if ok {
		res.Found = true
		var operators []string
		if err := json.Unmarshal([]byte(raw), &operators); err != nil {
			return res, partial(op, fmt.Errorf("операторы: %w", err))
		}
		if err := dst.SetOperators(ctx, operators); err != nil {
			return res, partial(op, err)
		}
		res.Operators = len(operators)
	}

	if raw, ok, err := m.src.Get(legacy.KeyServers); err != nil {
		return res, partial(op, err)
	} else if ok {
		res.Found = true
		servers, shape, err := legacy.DecodeServers(json.RawMessage(raw))
		if err != nil {
			return res, partial(op, err)
		}
		if err := dst.SetServers(ctx, servers); err != nil {
			return res, partial(op, err)
		}
		res.Servers = len(servers)
		res.ServerShape = shape
	}

	if text, ok, err := m.src.Get(legacy.KeyHelpText); err != nil {
		return res, partial(op, err)
	} else if ok {
		res.Found = true
		if err := dst.SetHelpText(ctx, text); err != nil {
			return res, partial(op, err)
		}
		res.HelpText = true
	}

	if raw, ok, err := m.src.Get(legacy.KeyCheckHistory); err != nil {
		return res, partial(op, err)
	} else if ok {
		res.Found = true
		records, legacyCount, err := legacy.DecodeCameraRecords(json.RawMessage(raw))
		if err != nil {
			return res, partial(op, err)
		}
		if err := dst.InsertCameraCheckRecords(ctx, records...); err != nil {
			return res, partial(op, err)
		}
		res.CameraRecords = len(records)
		res.LegacyCameraRecords = legacyCount
		if legacyCount > 0 {
			log.Warn("детализация старых проверок камер не перенесена", slog.Int("records", legacyCount))
		}
	}

	if raw, ok, err := m.src.Get(legacy.KeyJornadaHistory); err != nil {
		return res, partial(op, err)
	} else if ok {
		res.Found = true
		records, err := legacy.DecodeJornadaRecords(json.RawMessage(raw))
		if err != nil {
			return res, partial(op, err)
		}
		if err := dst.InsertJornadaCheckRecords(ctx, records...); err != nil {
			return res, partial(op, err)
		}
		res.JornadaRecords = len(records)
	}

	if !res.Found {
		log.Info("данных для миграции нет")
		return res, nil
	}

	if err := m.src.Remove(legacy.Keys...); err != nil {
		return res, partial(op, fmt.Errorf("очистка старого хранилища: %w", err))
	}
	res.Cleared = true

	log.Info("миграция завершена, старые данные удалены",
		slog.Int("operators", res.Operators),
		slog.Int("servers", res.Servers),
		slog.String("server_shape", res.ServerShape.String()),
		slog.Int("camera_records", res.CameraRecords),
		slog.Int("jornada_records", res.JornadaRecords),
	)
	return res, nil
}

func partial(op string, err error) error {
	return fmt.Errorf("%s: %w: %w", op, storage.ErrMigrationPartial, err)
}
