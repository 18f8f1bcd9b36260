package get

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"chequeos-rutinas/internal/service/history"
	"chequeos-rutinas/internal/storage"
)

type CameraHistoryProvider interface {
	CameraHistory() []storage.CameraCheckRecord
	CameraCheck(id string) (storage.CameraCheckRecord, bool)
	Servers() []storage.Server
}

// GetCameraChecks — история с фильтрами ?date=YYYY-MM-DD&operator=,
// камеры сгруппированы по текущим серверам.
func GetCameraChecks(log *slog.Logger, provider CameraHistoryProvider) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.camera_check.GetCameraChecks"

		filter := history.Filter{
			Date:     r.URL.Query().Get("date"),
			Operator: r.URL.Query().Get("operator"),
		}

		records := history.FilterCamera(provider.CameraHistory(), filter)
		servers := provider.Servers()

		views := make([]history.CameraRecordView, 0, len(records))
		for _, rec := range records {
			views = append(views, history.ResolveCameraRecord(rec, servers))
		}

		log.Debug("история камер", slog.String("op", op), slog.Int("count", len(views)))
		render.JSON(w, r, views)
	}
}

func GetCameraCheck(log *slog.Logger, provider CameraHistoryProvider) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.camera_check.GetCameraCheck"

		id := chi.URLParam(r, "id")
		rec, ok := provider.CameraCheck(id)
		if !ok {
			log.Warn("запись не найдена", slog.String("op", op), slog.String("id", id))
			http.Error(w, "record not found", http.StatusNotFound)
			return
		}

		render.JSON(w, r, history.ResolveCameraRecord(rec, provider.Servers()))
	}
}
