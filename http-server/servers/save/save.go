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
	"chequeos-rutinas/internal/storage"
)

type ServersSaver interface {
	SetServers(ctx context.Context, servers []storage.Server) ([]storage.Server, error)
	AddServer(ctx context.Context, ip string) (storage.Server, error)
	DeleteServer(ctx context.Context, id string) error
	SetServerCameras(ctx context.Context, id string, cameras []storage.Camera) (storage.Server, error)
	AppendCameras(ctx context.Context, id string, cameras []storage.Camera) (storage.Server, error)
}

type SetRequest struct {
	Servers []storage.Server `json:"servers"`
}

type AddRequest struct {
	IP string `json:"ip"`
}

// CamerasRequest — Append дописывает камеры вместо замены.
type CamerasRequest struct {
	Cameras []storage.Camera `json:"cameras"`
	Append  bool             `json:"append"`
}

// SetServers — PUT /api/servers. Повтор IP здесь не проверяется.
func SetServers(log *slog.Logger, saver ServersSaver) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.servers.SetServers"

		var req SetRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			log.Error("Invalid JSON", slog.String("op", op), slog.String("error", err.Error()))
			http.Error(w, "Bad request: invalid JSON", http.StatusBadRequest)
			return
		}
		if req.Servers == nil {
			http.Error(w, "servers is required", http.StatusBadRequest)
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		servers, err := saver.SetServers(ctx, req.Servers)
		if err != nil {
			log.Error("Ошибка сохранения серверов", slog.String("op", op), slog.String("error", err.Error()))
			http.Error(w, message(err), statusFor(err))
			return
		}

		render.JSON(w, r, servers)
	}
}

// AddServer — POST /api/servers, IP должен быть уникален.
func AddServer(log *slog.Logger, saver ServersSaver) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.servers.AddServer"

		var req AddRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			log.Error("Invalid JSON", slog.String("op", op), slog.String("error", err.Error()))
			http.Error(w, "Bad request: invalid JSON", http.StatusBadRequest)
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		srv, err := saver.AddServer(ctx, req.IP)
		if err != nil {
			log.Warn("Сервер не добавлен", slog.String("op", op), slog.String("ip", req.IP), slog.String("error", err.Error()))
			http.Error(w, message(err), statusFor(err))
			return
		}

		log.Info("Сервер добавлен", slog.String("op", op), slog.String("id", srv.ID), slog.String("ip", srv.IP))
		render.Status(r, http.StatusCreated)
		render.JSON(w, r, srv)
	}
}

func DeleteServer(log *slog.Logger, saver ServersSaver) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.servers.DeleteServer"

		id := chi.URLParam(r, "id")

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		if err := saver.DeleteServer(ctx, id); err != nil {
			log.Warn("Сервер не удалён", slog.String("op", op), slog.String("id", id), slog.String("error", err.Error()))
			http.Error(w, message(err), statusFor(err))
			return
		}

		log.Info("Сервер удалён", slog.String("op", op), slog.String("id", id))
		render.JSON(w, r, map[string]string{"status": "deleted"})
	}
}

// SaveCameras — PUT /api/servers/{id}/cameras.
func SaveCameras(log *slog.Logger, saver ServersSaver) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.servers.SaveCameras"

		id := chi.URLParam(r, "id")

		var req CamerasRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			log.Error("Invalid JSON", slog.String("op", op), slog.String("error", err.Error()))
			http.Error(w, "Bad request: invalid JSON", http.StatusBadRequest)
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		var (
			srv storage.Server
			err error
		)
		if req.Append {
			srv, err = saver.AppendCameras(ctx, id, req.Cameras)
		} else {
			srv, err = saver.SetServerCameras(ctx, id, req.Cameras)
		}
		if err != nil {
			log.Warn("Камеры не сохранены", slog.String("op", op), slog.String("id", id), slog.String("error", err.Error()))
			http.Error(w, message(err), statusFor(err))
			return
		}

		log.Info("Камеры сохранены", slog.String("op", op), slog.String("id", id), slog.Int("cameras", len(srv.Cameras)))
		render.JSON(w, r, srv)
	}
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, state.ErrEmptyValue):
		return http.StatusBadRequest
	case errors.Is(err, state.ErrServerNotFound):
		return http.StatusNotFound
	case errors.Is(err, state.ErrDuplicateIP):
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
		return "ip is required"
	case http.StatusNotFound:
		return "server not found"
	case http.StatusConflict:
		return "a server with this ip already exists"
	}
	return http.StatusText(statusFor(err))
}
