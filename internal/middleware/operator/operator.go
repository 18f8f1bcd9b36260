package operator

import (
	"context"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
)

const Header = "X-Operator"

type ctxKey struct{}

type OperatorChecker interface {
	HasOperator(name string) bool
}

// RequireOperator пропускает запрос только если заголовок X-Operator
// называет оператора из локального списка. Имя можно передать в URL-кодировке.
func RequireOperator(log *slog.Logger, checker OperatorChecker) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			const op = "middleware.operator.RequireOperator"

			name := strings.TrimSpace(r.Header.Get(Header))
			if name == "" {
				requireOperator(w)
				return
			}
			if decoded, err := url.PathUnescape(name); err == nil {
				name = decoded
			}

			if !checker.HasOperator(name) {
				log.Warn("неизвестный оператор", slog.String("op", op), slog.String("operator", name))
				requireOperator(w)
				return
			}

			next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), ctxKey{}, name)))
		})
	}
}

func FromContext(ctx context.Context) (string, bool) {
	name, ok := ctx.Value(ctxKey{}).(string)
	return name, ok && name != ""
}

func requireOperator(w http.ResponseWriter) {
	http.Error(w, "Unauthorized: select an operator", http.StatusUnauthorized)
}
