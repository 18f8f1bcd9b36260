package ready

import (
	"net/http"
)

type ReadyChecker interface {
	Ready() bool
}

// RequireReady отвечает 503, пока данные не загружены.
func RequireReady(checker ReadyChecker) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !checker.Ready() {
				w.Header().Set("Retry-After", "1")
				http.Error(w, "Service unavailable: loading data", http.StatusServiceUnavailable)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
