package save

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/render"

	"chequeos-rutinas/internal/middleware/operator"
	"chequeos-rutinas/internal/service/state"
	"chequeos-rutinas/internal/storage"
)

type CameraCheckSaver interface {
	AddCameraCheck(ctx context.Context, check storage.NewCameraCheck) (storage.CameraCheckRecord, error)
}

// SaveCameraCheck — POST /api/camera-checks. Оператор берётся из X-Operator,
// id и дату проставляет хранилище.
func SaveCameraCheck(log *slog.Logger, saver CameraCheckSaver) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.camera_check.SaveCameraCheck"

		var req storage.NewCameraCheck
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			log.Error("Invalid JSON", slog.String("op", op), slog.String("error", err.Error()))
			http.Error(w, "Bad request: invalid JSON", http.StatusBadRequest)
			return
		}
		if name, ok := operator.FromContext(r.Context()); ok {
			req.Operator = name
		}
		if req.Operator == "" {
			http.Error(w, "operator is required", http.StatusBadRequest)
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		rec, err := saver.AddCameraCheck(ctx, req)
		if err != nil {
			log.Error("Ошибка сохранения проверки камер", slog.String("op", op), slog.String("error", err.Error()))
			switch {
			case errors.Is(err, state.ErrNotReady), errors.Is(err, storage.ErrStorageUnavailable):
				http.Error(w, "Service unavailable", http.StatusServiceUnavailable)
			default:
				http.Error(w, "Internal server error", http.StatusInternalServerError)
			}
			return
		}

		log.Info("Проверка камер сохранена",
			slog.String("id", rec.ID),
			slog.String("operator", rec.Operator),
			slog.Int("cameras", len(rec.CameraStates)),
		)

		render.Status(r, http.StatusCreated)
		render.JSON(w, r, rec)
	}
}
