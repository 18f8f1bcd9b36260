package get

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/render"

	"chequeos-rutinas/internal/service/history"
	"chequeos-rutinas/internal/storage"
)

type JornadaHistoryProvider interface {
	JornadaHistory() []storage.JornadaCheckRecord
}

// GetJornadaChecks — история смен с текстами задач, фильтры ?date=&operator=.
func GetJornadaChecks(log *slog.Logger, provider JornadaHistoryProvider) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.jornada_check.GetJornadaChecks"

		filter := history.Filter{
			Date:     r.URL.Query().Get("date"),
			Operator: r.URL.Query().Get("operator"),
		}

		records := history.FilterJornada(provider.JornadaHistory(), filter)
		views := make([]history.JornadaRecordView, 0, len(records))
		for _, rec := range records {
			views = append(views, history.ResolveJornadaRecord(rec))
		}

		log.Debug("история смен", slog.String("op", op), slog.Int("count", len(views)))
		render.JSON(w, r, views)
	}
}
