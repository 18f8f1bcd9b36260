package get

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/render"
)

type OperatorsProvider interface {
	Operators() []string
}

func GetOperators(log *slog.Logger, provider OperatorsProvider) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.operators.GetOperators"

		operators := provider.Operators()
		log.Debug("операторы", slog.String("op", op), slog.Int("count", len(operators)))

		render.JSON(w, r, operators)
	}
}
