package save

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"chequeos-rutinas/internal/service/state"
)

type OperatorsSaver interface {
	SetOperators(ctx context.Context, operators []string) ([]string, error)
	AddOperator(ctx context.Context, name string) ([]string, error)
	DeleteOperator(ctx context.Context, name string) ([]string, error)
}

type SetRequest struct {
	Operators []string `json:"operators"`
}

type AddRequest struct {
	Name string `json:"name"`
}

// SetOperators — PUT /api/operators, замена всего списка.
func SetOperators(log *slog.Logger, saver OperatorsSaver) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.operators.SetOperators"

		var req SetRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			log.Error("Invalid JSON", slog.String("op", op), slog.String("error", err.Error()))
			http.Error(w, "Bad request: invalid JSON", http.StatusBadRequest)
			return
		}
		if req.Operators == nil {
			http.Error(w, "operators is required", http.StatusBadRequest)
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		operators, err := saver.SetOperators(ctx, req.Operators)
		if err != nil {
			log.Error("Ошибка сохранения операторов", slog.String("op", op), slog.String("error", err.Error()))
			http.Error(w, http.StatusText(statusFor(err)), statusFor(err))
			return
		}

		render.JSON(w, r, operators)
	}
}

// AddOperator — POST /api/operators.
func AddOperator(log *slog.Logger, saver OperatorsSaver) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.operators.AddOperator"

		var req AddRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			log.Error("Invalid JSON", slog.String("op", op), slog.String("error", err.Error()))
			http.Error(w, "Bad request: invalid JSON", http.StatusBadRequest)
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		operators, err := saver.AddOperator(ctx, req.Name)
		if err != nil {
			log.Warn("Оператор не добавлен", slog.String("op", op), slog.String("error", err.Error()))
			http.Error(w, message(err), statusFor(err))
			return
		}

		log.Info("Оператор добавлен", slog.String("op", op), slog.String("name", req.Name))
		render.Status(r, http.StatusCreated)
		render.JSON(w, r, operators)
	}
}

// DeleteOperator — DELETE /api/operators/{name}. История не меняется.
func DeleteOperator(log *slog.Logger, saver OperatorsSaver) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.operators.DeleteOperator"

		name := chi.URLParam(r, "name")

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		operators, err := saver.DeleteOperator(ctx, name)
		if err != nil {
			log.Warn("Оператор не удалён", slog.String("op", op), slog.String("error", err.Error()))
			http.Error(w, message(err), statusFor(err))
			return
		}

		log.Info("Оператор удалён", slog.String("op", op), slog.String("name", name))
		render.JSON(w, r, operators)
	}
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, state.ErrEmptyValue):
		return http.StatusBadRequest
	case errors.Is(err, state.ErrOperatorNotFound):
		return http.StatusNotFound
	case errors.Is(err, state.ErrDuplicateOperator):
		return http.StatusConflict
	case errors.Is(err, state.ErrNotReady):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func message(err error) string {
	switch statusFor(err) {
	case http.StatusBadRequest:
		return "operator name is required"
	case http.StatusNotFound:
		return "operator not found"
	case http.StatusConflict:
		return "operator already exists"
	}
	return http.StatusText(statusFor(err))
}
