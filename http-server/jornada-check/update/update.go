package update

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"chequeos-rutinas/internal/middleware/operator"
	"chequeos-rutinas/internal/service/state"
	"chequeos-rutinas/internal/storage"
)

type JornadaCheckUpdater interface {
	UpdateJornadaCheck(ctx context.Context, id string, edit storage.NewJornadaCheck) (storage.JornadaCheckRecord, error)
}

// UpdateJornadaCheck — PUT /api/jornada-checks/{id}. Дата записи не меняется.
func UpdateJornadaCheck(log *slog.Logger, updater JornadaCheckUpdater) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.jornada_check.UpdateJornadaCheck"

		id := chi.URLParam(r, "id")

		var req storage.NewJornadaCheck
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			log.Error("Invalid JSON", slog.String("op", op), slog.String("error", err.Error()))
			http.Error(w, "Bad request: invalid JSON", http.StatusBadRequest)
			return
		}
		if !req.Shift.Valid() {
			http.Error(w, "shift must be Mañana or Tarde", http.StatusBadRequest)
			return
		}
		if name, ok := operator.FromContext(r.Context()); ok && req.Operator == "" {
			req.Operator = name
		}

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		rec, err := updater.UpdateJornadaCheck(ctx, id, req)
		if err != nil {
			switch {
			case errors.Is(err, state.ErrRecordNotFound):
				log.Warn("Запись смены не найдена", slog.String("op", op), slog.String("id", id))
				http.Error(w, "record not found", http.StatusNotFound)
			case errors.Is(err, state.ErrNotReady):
				http.Error(w, "Service unavailable", http.StatusServiceUnavailable)
			default:
				log.Error("Ошибка обновления смены", slog.String("op", op), slog.String("error", err.Error()))
				http.Error(w, "Internal server error", http.StatusInternalServerError)
			}
			return
		}

		log.Info("Проверка смены обновлена", slog.String("id", rec.ID), slog.String("date", rec.Date))
		render.JSON(w, r, rec)
	}
}
