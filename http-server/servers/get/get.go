package get

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/render"

	"chequeos-rutinas/internal/storage"
)

type ServersProvider interface {
	Servers() []storage.Server
}

func GetServers(log *slog.Logger, provider ServersProvider) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.servers.GetServers"

		servers := provider.Servers()
		log.Debug("серверы", slog.String("op", op), slog.Int("count", len(servers)))

		render.JSON(w, r, servers)
	}
}
