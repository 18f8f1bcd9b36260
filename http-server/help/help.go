package help

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/render"

	"chequeos-rutinas/internal/service/state"
)

type HelpProvider interface {
	HelpText() string
	SetHelpText(ctx context.Context, text string) (string, error)
}

type Help struct {
	Text string `json:"text"`
}

func GetHelp(log *slog.Logger, provider HelpProvider) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		render.JSON(w, r, Help{Text: provider.HelpText()})
	}
}

func SaveHelp(log *slog.Logger, provider HelpProvider) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.help.SaveHelp"

		var req Help
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			log.Error("Invalid JSON", slog.String("op", op), slog.String("error", err.Error()))
			http.Error(w, "Bad request: invalid JSON", http.StatusBadRequest)
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		text, err := provider.SetHelpText(ctx, req.Text)
		if err != nil {
			log.Error("Ошибка сохранения справки", slog.String("op", op), slog.String("error", err.Error()))
			if errors.Is(err, state.ErrNotReady) {
				http.Error(w, "Service unavailable", http.StatusServiceUnavailable)
				return
			}
			http.Error(w, "Internal server error", http.StatusInternalServerError)
			return
		}

		render.JSON(w, r, Help{Text: text})
	}
}
