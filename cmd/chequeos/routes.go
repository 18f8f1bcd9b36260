package main

import (
	"log/slog"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/cors"

	exportbackup "chequeos-rutinas/http-server/backup/export"
	importbackup "chequeos-rutinas/http-server/backup/import"
	getcamera "chequeos-rutinas/http-server/camera-check/get"
	savecamera "chequeos-rutinas/http-server/camera-check/save"
	generate_excel "chequeos-rutinas/http-server/generate-report/generate-excel"
	"chequeos-rutinas/http-server/help"
	getjornada "chequeos-rutinas/http-server/jornada-check/get"
	savejornada "chequeos-rutinas/http-server/jornada-check/save"
	updatejornada "chequeos-rutinas/http-server/jornada-check/update"
	getoperators "chequeos-rutinas/http-server/operators/get"
	saveoperators "chequeos-rutinas/http-server/operators/save"
	getservers "chequeos-rutinas/http-server/servers/get"
	saveservers "chequeos-rutinas/http-server/servers/save"
	getstatus "chequeos-rutinas/http-server/status/get"
	gettasks "chequeos-rutinas/http-server/tasks/get"
	"chequeos-rutinas/internal/config"
	"chequeos-rutinas/internal/middleware/operator"
	"chequeos-rutinas/internal/middleware/ready"
	generate_excel2 "chequeos-rutinas/internal/service/generate-excel"
	"chequeos-rutinas/internal/service/state"
)

func routes(cfg *config.Config, log *slog.Logger, app *state.App) *chi.Mux {
	router := chi.NewRouter()

	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   cfg.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", operator.Header},
		ExposedHeaders:   []string{"Content-Disposition"},
		AllowCredentials: true,
	})

	router.Use(corsHandler.Handler)

	router.Use(middleware.RequestID)
	//ip пользователя
	router.Use(middleware.RealIP)
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)

	// отвечает и во время загрузки
	router.Get("/api/status", getstatus.GetStatus(log, app))

	genService := generate_excel2.NewGenerateService(app)

	router.Route("/api", func(r chi.Router) {
		r.Use(ready.RequireReady(app))

		// операторы
		r.Get("/operators", getoperators.GetOperators(log, app))
		r.Put("/operators", saveoperators.SetOperators(log, app))
		r.Post("/operators", saveoperators.AddOperator(log, app))
		r.Delete("/operators/{name}", saveoperators.DeleteOperator(log, app))

		// серверы и камеры
		r.Get("/servers", getservers.GetServers(log, app))
		r.Put("/servers", saveservers.SetServers(log, app))
		r.Post("/servers", saveservers.AddServer(log, app))
		r.Delete("/servers/{id}", saveservers.DeleteServer(log, app))
		r.Put("/servers/{id}/cameras", saveservers.SaveCameras(log, app))

		r.Get("/help", help.GetHelp(log, app))
		r.Put("/help", help.SaveHelp(log, app))

		r.Get("/tasks", gettasks.GetTasks(log, time.Now))

		// история
		r.Get("/camera-checks", getcamera.GetCameraChecks(log, app))
		r.Get("/camera-checks/{id}", getcamera.GetCameraCheck(log, app))
		r.Get("/jornada-checks", getjornada.GetJornadaChecks(log, app))

		// новые проверки — только от выбранного оператора
		r.Group(func(r chi.Router) {
			r.Use(operator.RequireOperator(log, app))

			r.Post("/camera-checks", savecamera.SaveCameraCheck(log, app))
			r.Post("/jornada-checks", savejornada.SaveJornadaCheck(log, app))
			r.Put("/jornada-checks/{id}", updatejornada.UpdateJornadaCheck(log, app))
		})

		// резервная копия
		r.Get("/backup/export", exportbackup.ExportBackup(log, app, time.Now))
		r.Post("/backup/import", importbackup.ImportBackup(log, app))

		r.Get("/report/excel", generate_excel.GenerateReportExcel(log, genService))
	})

	return router
}
