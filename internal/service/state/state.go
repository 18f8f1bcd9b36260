// Package state — единственный путь записи для остального приложения.
// Каждое изменение сначала попадает в хранилище и сбрасывается на диск,
// и только потом отражается в памяти.
package state

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"

	"chequeos-rutinas/internal/service/migration"
	"chequeos-rutinas/internal/storage"
)

type State int

const (
	Uninitialized State = iota
	Initializing
	Migrating
	DefaultsSeeded
	Ready
)

func (s State) String() string {
	switch s {
	case Uninitialized:
		return "uninitialized"
	case Initializing:
		return "initializing"
	case Migrating:
		return "migrating"
	case DefaultsSeeded:
		return "defaults_seeded"
	case Ready:
		return "ready"
	}
	return fmt.Sprintf("state(%d)", int(s))
}

var (
	ErrNotReady          = errors.New("application state is not ready")
	ErrDuplicateIP       = errors.New("server with this ip already exists")
	ErrDuplicateOperator = errors.New("operator already exists")
	ErrEmptyValue        = errors.New("value must not be empty")
	ErrServerNotFound    = errors.New("server not found")
	ErrOperatorNotFound  = errors.New("operator not found")
	ErrRecordNotFound    = errors.New("record not found")
)

var (
	DefaultOperators = []string{"Operador A", "Operador B"}
	DefaultServers   = []storage.Server{
		{ID: "server-1", IP: "192.168.200.213", Cameras: []storage.Camera{}},
		{ID: "server-2", IP: "192.168.200.214", Cameras: []storage.Camera{}},
	}
	DefaultHelpText = "Procedimiento de ejemplo: Si una cámara no graba, reinicie el servidor correspondiente. Si el problema persiste, contacte al soporte técnico en el anexo 555."
)

type Store interface {
	migration.Writer

	Init(ctx context.Context) (fresh bool, err error)
	Save(ctx context.Context) error

	GetOperators(ctx context.Context) ([]string, error)
	GetServers(ctx context.Context) ([]storage.Server, error)
	GetHelpText(ctx context.Context) (string, error)
	GetCameraHistory(ctx context.Context) ([]storage.CameraCheckRecord, error)
	GetJornadaHistory(ctx context.Context) ([]storage.JornadaCheckRecord, error)

	AddCameraCheckRecord(ctx context.Context, check storage.NewCameraCheck) (*storage.CameraCheckRecord, error)
	AddJornadaCheckRecord(ctx context.Context, check storage.NewJornadaCheck) (*storage.JornadaCheckRecord, error)
	UpdateJornadaCheckRecord(ctx context.Context, rec storage.JornadaCheckRecord) error

	ReplaceAll(ctx context.Context, snap storage.Snapshot) error
}

type Migrator interface {
	Run(ctx context.Context, dst migration.Writer) (migration.Result, error)
}

type App struct {
	log      *slog.Logger
	store    Store
	migrator Migrator
	newID    func() string

	// state читается без mu: статус доступен и во время загрузки
	state atomic.Int32

	mu             sync.RWMutex
	operators      []string
	servers        []storage.Server
	helpText       string
	cameraHistory  []storage.CameraCheckRecord
	jornadaHistory []storage.JornadaCheckRecord
}

func New(log *slog.Logger, store Store, migrator Migrator) *App {
	return &App{
		log:            log,
		store:          store,
		migrator:       migrator,
		newID:          uuid.NewString,
		operators:      []string{},
		servers:        []storage.Server{},
		cameraHistory:  []storage.CameraCheckRecord{},
		jornadaHistory: []storage.JornadaCheckRecord{},
	}
}

func (a *App) State() State {
	return State(a.state.Load())
}

func (a *App) Ready() bool {
	return a.State() == Ready
}

func (a *App) setState(s State) {
	a.state.Store(int32(s))
	a.log.Debug("состояние приложения", slog.String("state", s.String()))
}

// Start открывает хранилище, при необходимости мигрирует старые данные,
// заполняет пустые наборы значениями по умолчанию и переводит состояние в Ready.
// Ошибки хранилища и миграции только логируются.
func (a *App) Start(ctx context.Context) error {
	const op = "service.state.Start"

	a.mu.Lock()
	defer a.mu.Unlock()

	if s := a.State(); s != Uninitialized {
		return fmt.Errorf("%s: повторный запуск в состоянии %s", op, s)
	}
	log := a.log.With(slog.String("op", op))

	a.setState(Initializing)
	fresh, err := a.store.Init(ctx)
	if err != nil {
		log.Error("хранилище недоступно, приложение работает без данных", slog.String("error", err.Error()))
	}

	if fresh {
		a.setState(Migrating)
		if _, err := a.migrator.Run(ctx, a.store); err != nil {
			log.Error("ошибка миграции старого хранилища", slog.String("error", err.Error()))
		}
		a.flush(ctx)
	}

	if err := a.reload(ctx); err != nil {
		log.Error("не удалось загрузить данные", slog.String("error", err.Error()))
	}

	if err := a.seedDefaults(ctx); err != nil {
		log.Error("не удалось записать значения по умолчанию", slog.String("error", err.Error()))
	}
	a.setState(DefaultsSeeded)
	a.flush(ctx)

	a.setState(Ready)
	log.Info("данные загружены",
		slog.Int("operators", len(a.operators)),
		slog.Int("servers", len(a.servers)),
		slog.Int("camera_records", len(a.cameraHistory)),
		slog.Int("jornada_records", len(a.jornadaHistory)),
	)
	return nil
}

func (a *App) seedDefaults(ctx context.Context) error {
	if len(a.operators) == 0 {
		if err := a.store.SetOperators(ctx, DefaultOperators); err != nil {
			return err
		}
	}
	if len(a.servers) == 0 {
		if err := a.store.SetServers(ctx, storage.CloneServers(DefaultServers)); err != nil {
			return err
		}
	}
	if a.helpText == "" {
		if err := a.store.SetHelpText(ctx, DefaultHelpText); err != nil {
			return err
		}
	}
	// в памяти — то, что реально оказалось в хранилище
	return a.reload(ctx)
}

func (a *App) reload(ctx context.Context) error {
	operators, err := a.store.GetOperators(ctx)
	if err != nil {
		return err
	}
	servers, err := a.store.GetServers(ctx)
	if err != nil {
		return err
	}
	helpText, err := a.store.GetHelpText(ctx)
	if err != nil {
		return err
	}
	cameraHistory, err := a.store.GetCameraHistory(ctx)
	if err != nil {
		return err
	}
	jornadaHistory, err := a.store.GetJornadaHistory(ctx)
	if err != nil {
		return err
	}

	a.operators = operators
	a.servers = servers
	a.helpText = helpText
	a.cameraHistory = cameraHistory
	a.jornadaHistory = jornadaHistory
	return nil
}

// flush — ошибка сохранения только логируется: диск отстаёт от памяти
// до следующего успешного сохранения.
func (a *App) flush(ctx context.Context) {
	if err := a.store.Save(ctx); err != nil {
		a.log.Error("не удалось сохранить базу", slog.String("error", err.Error()))
	}
}

func (a *App) ensureReady() error {
	if s := a.State(); s != Ready {
		return fmt.Errorf("%w: %s", ErrNotReady, s)
	}
	return nil
}
