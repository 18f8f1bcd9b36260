package importbackup

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/render"

	"chequeos-rutinas/internal/service/state"
	"chequeos-rutinas/internal/snapshot"
	"chequeos-rutinas/internal/storage"
)

const maxBackupSize = 64 << 20

type SnapshotImporter interface {
	Import(ctx context.Context, snap storage.Snapshot) error
}

// ImportBackup — POST /api/backup/import. Заменяет ВСЕ данные содержимым файла.
func ImportBackup(log *slog.Logger, importer SnapshotImporter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.backup.ImportBackup"

		snap, err := snapshot.Decode(http.MaxBytesReader(w, r.Body, maxBackupSize))
		if err != nil {
			log.Warn("Неверный файл резервной копии", slog.String("op", op), slog.String("error", err.Error()))
			http.Error(w, "Error: invalid backup file format", http.StatusBadRequest)
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), 30*time.Second)
		defer cancel()

		if err := importer.Import(ctx, snap); err != nil {
			log.Error("Ошибка импорта", slog.String("op", op), slog.String("error", err.Error()))
			switch {
			case errors.Is(err, storage.ErrInvalidFormat):
				http.Error(w, "Error: invalid backup file format", http.StatusBadRequest)
			case errors.Is(err, state.ErrNotReady), errors.Is(err, storage.ErrStorageUnavailable):
				http.Error(w, "Service unavailable", http.StatusServiceUnavailable)
			default:
				http.Error(w, "Internal server error", http.StatusInternalServerError)
			}
			return
		}

		log.Info("Данные импортированы",
			slog.Int("operators", len(snap.Operators)),
			slog.Int("servers", len(snap.Servers)),
			slog.Int("camera_records", len(snap.CheckHistory)),
			slog.Int("jornada_records", len(snap.JornadaHistory)),
		)

		render.JSON(w, r, map[string]interface{}{
			"status":          "imported",
			"operators":       len(snap.Operators),
			"servers":         len(snap.Servers),
			"camera_records":  len(snap.CheckHistory),
			"jornada_records": len(snap.JornadaHistory),
		})
	}
}
