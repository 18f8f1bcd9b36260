package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"chequeos-rutinas/internal/config"
	"chequeos-rutinas/internal/service/migration"
	"chequeos-rutinas/internal/service/state"
	"chequeos-rutinas/internal/storage/blob"
	"chequeos-rutinas/internal/storage/legacy"
	"chequeos-rutinas/internal/storage/sqlite"
)

const (
	envLocal = "local"
	envDev   = "dev"
	envProd  = "prod"
)

func main() {
	cfg := config.MustConfig()

	log, closeLog := setupLogger(cfg.Env, cfg.ErrorLog)
	defer closeLog()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Error("server stopped", slog.String("error", err.Error()))
		os.Exit(1)
	}
	log.Info("server stopped")
}

func run(ctx context.Context, cfg *config.Config, log *slog.Logger) error {
	files, err := openBlobStore(ctx, cfg.Storage)
	if err != nil {
		return fmt.Errorf("failed to open blob store: %w", err)
	}
	defer files.Close()

	store := sqlite.New(files)
	defer store.Close()

	app := state.New(log, store, migration.New(log, legacySource(cfg.LegacyPath)))

	srv := &http.Server{
		Addr:         cfg.Address,
		Handler:      routes(cfg, log, app),
		ReadTimeout:  cfg.HTTPServer.Timeout,
		WriteTimeout: cfg.HTTPServer.Timeout,
		IdleTimeout:  cfg.HTTPServer.IdleTimeout,
	}

	g, gCtx := errgroup.WithContext(ctx)

	// загрузка идёт параллельно с сервером: до Ready API отвечает 503
	g.Go(func() error {
		return app.Start(gCtx)
	})

	g.Go(func() error {
		log.Info("server started", slog.String("address", cfg.Address), slog.String("storage", cfg.Storage.Backend))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("failed start server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gCtx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTPServer.ShutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		return err
	}

	// последний сброс на диск перед выходом
	saveCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return store.Save(saveCtx)
}

func openBlobStore(ctx context.Context, cfg config.Storage) (blob.Store, error) {
	switch cfg.Backend {
	case config.BackendMySQL:
		return blob.NewMySQL(ctx, cfg.DSN, cfg.DBName)
	case config.BackendPostgres:
		return blob.NewPostgres(ctx, cfg.DSN, cfg.DBName)
	case config.BackendMemory:
		return blob.NewMemory(), nil
	default:
		return blob.NewFile(cfg.Dir, cfg.DBName)
	}
}

func legacySource(path string) legacy.Source {
	if path == "" {
		return legacy.MapSource{}
	}
	return legacy.NewFileSource(path)
}
