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

type JornadaCheckSaver interface {
	AddJornadaCheck(ctx context.Context, check storage.NewJornadaCheck) (storage.JornadaCheckRecord, error)
}

// SaveJornadaCheck — POST /api/jornada-checks.
func SaveJornadaCheck(log *slog.Logger, saver JornadaCheckSaver) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.jornada_check.SaveJornadaCheck"

		var req storage.NewJornadaCheck
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
		if !req.Shift.Valid() {
			http.Error(w, "shift must be Mañana or Tarde", http.StatusBadRequest)
			return
		}
		if req.CompletedTasks == nil {
			req.CompletedTasks = []string{}
		}

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		rec, err := saver.AddJornadaCheck(ctx, req)
		if err != nil {
			log.Error("Ошибка сохранения проверки смены", slog.String("op", op), slog.String("error", err.Error()))
			switch {
			case errors.Is(err, state.ErrNotReady), errors.Is(err, storage.ErrStorageUnavailable):
				http.Error(w, "Service unavailable", http.StatusServiceUnavailable)
			default:
				http.Error(w, "Internal server error", http.StatusInternalServerError)
			}
			return
		}

		log.Info("Проверка смены сохранена",
			slog.String("id", rec.ID),
			slog.String("operator", rec.Operator),
			slog.String("shift", string(rec.Shift)),
			slog.Int("tasks", len(rec.CompletedTasks)),
		)

		render.Status(r, http.StatusCreated)
		render.JSON(w, r, rec)
	}
}
