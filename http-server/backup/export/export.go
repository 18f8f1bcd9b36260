package export

import (
	"bytes"
	"log/slog"
	"net/http"
	"time"

	"chequeos-rutinas/internal/snapshot"
	"chequeos-rutinas/internal/storage"
)

type SnapshotProvider interface {
	Snapshot() storage.Snapshot
}

// ExportBackup отдаёт всё состояние файлом chequeos-rutinas-backup-YYYY-MM-DD.json.
func ExportBackup(log *slog.Logger, provider SnapshotProvider, now func() time.Time) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.backup.ExportBackup"

		snap := provider.Snapshot()

		var buf bytes.Buffer
		if err := snapshot.Encode(&buf, snap); err != nil {
			log.Error("failed to encode backup", slog.String("op", op), slog.String("error", err.Error()))
			http.Error(w, "Internal error", http.StatusInternalServerError)
			return
		}

		log.Info("Экспорт резервной копии",
			slog.Int("operators", len(snap.Operators)),
			slog.Int("servers", len(snap.Servers)),
			slog.Int("camera_records", len(snap.CheckHistory)),
			slog.Int("jornada_records", len(snap.JornadaHistory)),
		)

		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.Header().Set("Content-Disposition", "attachment; filename="+snapshot.FileName(now().UTC()))
		w.Write(buf.Bytes())
	}
}
