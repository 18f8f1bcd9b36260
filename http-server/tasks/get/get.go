package get

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/render"

	"chequeos-rutinas/internal/constants"
	"chequeos-rutinas/internal/storage"
)

type Tasks struct {
	Shift   storage.Shift           `json:"shift"`
	Date    string                  `json:"date"`
	Weekday time.Weekday            `json:"weekday"`
	Tasks   []constants.JornadaTask `json:"tasks"`
}

// GetTasks — задачи смены на день: ?shift=Mañana|Tarde&date=YYYY-MM-DD (по умолчанию сегодня).
func GetTasks(log *slog.Logger, now func() time.Time) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.tasks.GetTasks"

		shift := storage.Shift(r.URL.Query().Get("shift"))
		if !shift.Valid() {
			http.Error(w, "shift must be Mañana or Tarde", http.StatusBadRequest)
			return
		}

		day := now()
		if dateStr := r.URL.Query().Get("date"); dateStr != "" {
			d, err := time.Parse("2006-01-02", dateStr)
			if err != nil {
				log.Warn("invalid date", slog.String("op", op), slog.String("date", dateStr))
				http.Error(w, "invalid date", http.StatusBadRequest)
				return
			}
			day = d
		}

		render.JSON(w, r, Tasks{
			Shift:   shift,
			Date:    day.Format("2006-01-02"),
			Weekday: day.Weekday(),
			Tasks:   constants.ApplicableTasks(shift, day.Weekday()),
		})
	}
}
