package get

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/render"

	"chequeos-rutinas/internal/service/state"
)

type StatusProvider interface {
	State() state.State
}

type Status struct {
	State string `json:"state"`
	Ready bool   `json:"ready"`
}

// GetStatus доступен и до загрузки данных.
func GetStatus(log *slog.Logger, provider StatusProvider) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s := provider.State()
		render.JSON(w, r, Status{State: s.String(), Ready: s == state.Ready})
	}
}
