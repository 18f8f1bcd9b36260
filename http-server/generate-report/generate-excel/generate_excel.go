package generate_excel

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"chequeos-rutinas/internal/service/history"
)

type GenerateExcelHandler interface {
	GenerateExcel(ctx context.Context, filter history.Filter) ([]byte, error)
}

// GenerateReportExcel — GET /api/report/excel?date=YYYY-MM-DD&operator=.
func GenerateReportExcel(log *slog.Logger, gen GenerateExcelHandler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handler.report.GenerateReportExcel"

		dateStr := r.URL.Query().Get("date")
		if dateStr != "" {
			if _, err := time.Parse("2006-01-02", dateStr); err != nil {
				http.Error(w, "invalid date", http.StatusBadRequest)
				return
			}
		}

		filter := history.Filter{
			Date:     dateStr,
			Operator: r.URL.Query().Get("operator"),
		}

		ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second) // На Excel можно побольше времени
		defer cancel()

		excelBytes, err := gen.GenerateExcel(ctx, filter)
		if err != nil {
			log.Error("failed to generate excel", "op", op, "err", err)
			http.Error(w, "Internal error", http.StatusInternalServerError)
			return
		}

		fileName := fmt.Sprintf("historial-chequeos-%s.xlsx", time.Now().Format("2006-01-02_150405"))

		w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		w.Header().Set("Content-Disposition", "attachment; filename="+fileName)
		w.Write(excelBytes)
	}
}
