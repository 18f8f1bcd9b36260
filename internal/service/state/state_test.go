package state

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chequeos-rutinas/internal/service/migration"
	"chequeos-rutinas/internal/storage"
	"chequeos-rutinas/internal/storage/blob"
	"chequeos-rutinas/internal/storage/legacy"
	"chequeos-rutinas/internal/storage/sqlite"
)

type brokenBlobStore struct{}

func (brokenBlobStore) Get(context.Context, string) ([]byte, error) {
	return nil, errors.New("диск недоступен")
}
func (brokenBlobStore) Put(context.Context, string, []byte) error { return nil }
func (brokenBlobStore) Close() error                            { return nil }

func startApp(t *testing.T, files blob.Store, src legacy.Source) *App {
	t.Helper()
	store := sqlite.New(files)
	t.Cleanup(func() { store.Close() })

	app := New(slog.Default(), store, migration.New(slog.Default(), src))
	n := 0
	app.newID = func() string {
		n++
		return fmt.Sprintf("id%d", n)
	}
	require.NoError(t, app.Start(context.Background()))
	return app
}

// Тест: первый запуск без старых данных заполняет значения по умолчанию
func TestStart_SeedsDefaults(t *testing.T) {
	app := startApp(t, blob.NewMemory(), legacy.MapSource{})

	assert.Equal(t, Ready, app.State())
	assert.True(t, app.Ready())
	assert.Equal(t, DefaultOperators, app.Operators())
	assert.Equal(t, DefaultServers, app.Servers())
	assert.Equal(t, DefaultHelpText, app.HelpText())
	assert.Empty(t, app.CameraHistory())
	assert.Empty(t, app.JornadaHistory())
}

// Тест: данные старого хранилища переносятся, значения по умолчанию не затирают их
func TestStart_MigratesLegacy(t *testing.T) {
	src := legacy.MapSource{
		legacy.KeyOperators: `["Zoe","Ana"]`,
		legacy.KeyCheckHistory: `[{"id":"r1","date":"2024-05-01T10:00:00.000Z","operator":"Ana",` +
			`"generalObservations":"","cameraStates":{},"serverStates":{}}]`,
	}
	app := startApp(t, blob.NewMemory(), src)

	assert.Equal(t, []string{"Ana", "Zoe"}, app.Operators())
	assert.Equal(t, DefaultServers, app.Servers())
	require.Len(t, app.CameraHistory(), 1)
	assert.Equal(t, "r1", app.CameraHistory()[0].ID)
	assert.Empty(t, src)
}

// Тест: повторный запуск читает сохранённый образ и не мигрирует снова
func TestStart_ReloadsSavedImage(t *testing.T) {
	ctx := context.Background()
	files := blob.NewMemory()

	first := startApp(t, files, legacy.MapSource{})
	_, err := first.AddOperator(ctx, "Carla")
	require.NoError(t, err)

	src := legacy.MapSource{legacy.KeyOperators: `["Nadie"]`}
	second := startApp(t, files, src)

	assert.Equal(t, []string{"Carla", "Operador A", "Operador B"}, second.Operators())
	assert.Len(t, src, 1)
}

// Тест: до Ready все изменения отклоняются
func TestMutations_NotReady(t *testing.T) {
	ctx := context.Background()
	store := sqlite.New(blob.NewMemory())
	defer store.Close()
	app := New(slog.Default(), store, migration.New(slog.Default(), legacy.MapSource{}))

	_, err := app.SetOperators(ctx, []string{"A"})
	assert.ErrorIs(t, err, ErrNotReady)
	_, err = app.AddCameraCheck(ctx, storage.NewCameraCheck{Operator: "A"})
	assert.ErrorIs(t, err, ErrNotReady)
	_, err = app.SetHelpText(ctx, "x")
	assert.ErrorIs(t, err, ErrNotReady)
	assert.ErrorIs(t, app.Import(ctx, storage.Snapshot{}), ErrNotReady)
	assert.Equal(t, Uninitialized, app.State())
}

// Тест: без хранилища приложение всё равно становится Ready, но пустым
func TestStart_StorageUnavailable(t *testing.T) {
	ctx := context.Background()
	app := startApp(t, brokenBlobStore{}, legacy.MapSource{legacy.KeyOperators: `["Ana"]`})

	assert.Equal(t, Ready, app.State())
	assert.Empty(t, app.Operators())
	assert.Empty(t, app.Servers())

	_, err := app.AddCameraCheck(ctx, storage.NewCameraCheck{Operator: "Ana"})
	assert.ErrorIs(t, err, storage.ErrStorageUnavailable)
	assert.Empty(t, app.CameraHistory())
}

// Тест: операторы добавляются, переименовываются и удаляются
func TestOperators(t *testing.T) {
	ctx := context.Background()
	app := startApp(t, blob.NewMemory(), legacy.MapSource{})

	ops, err := app.AddOperator(ctx, "  Beto ")
	require.NoError(t, err)
	assert.Equal(t, []string{"Beto", "Operador A", "Operador B"}, ops)

	_, err = app.AddOperator(ctx, "Beto")
	assert.ErrorIs(t, err, ErrDuplicateOperator)
	_, err = app.AddOperator(ctx, "   ")
	assert.ErrorIs(t, err, ErrEmptyValue)

	ops, err = app.RenameOperator(ctx, "Beto", "Alberto")
	require.NoError(t, err)
	assert.Equal(t, []string{"Alberto", "Operador A", "Operador B"}, ops)

	_, err = app.RenameOperator(ctx, "Alberto", "Operador A")
	assert.ErrorIs(t, err, ErrDuplicateOperator)

	ops, err = app.DeleteOperator(ctx, "Operador A")
	require.NoError(t, err)
	assert.Equal(t, []string{"Alberto", "Operador B"}, ops)
	assert.False(t, app.HasOperator("Operador A"))

	_, err = app.DeleteOperator(ctx, "Operador A")
	assert.ErrorIs(t, err, ErrOperatorNotFound)
}

// Тест: повтор IP при добавлении сервера отклоняется, список не меняется
func TestAddServer_DuplicateIP(t *testing.T) {
	ctx := context.Background()
	app := startApp(t, blob.NewMemory(), legacy.MapSource{})

	srv, err := app.AddServer(ctx, "10.0.0.5")
	require.NoError(t, err)
	assert.Equal(t, "server_id1", srv.ID)
	assert.Equal(t, []storage.Camera{}, srv.Cameras)

	_, err = app.AddServer(ctx, "192.168.200.213")
	assert.ErrorIs(t, err, ErrDuplicateIP)
	assert.Len(t, app.Servers(), 3)
}

// Тест: камеры сервера заменяются и дописываются, новым выдаются id
func TestServerCameras(t *testing.T) {
	ctx := context.Background()
	app := startApp(t, blob.NewMemory(), legacy.MapSource{})

	srv, err := app.SetServerCameras(ctx, "server-1", []storage.Camera{
		{ID: "c1", Location: "Puerta"},
		{Location: "Patio"},
	})
	require.NoError(t, err)
	require.Len(t, srv.Cameras, 2)
	assert.Equal(t, "c1", srv.Cameras[0].ID)
	assert.Equal(t, "cam_id1", srv.Cameras[1].ID)

	srv, err = app.AppendCameras(ctx, "server-1", []storage.Camera{{Location: "Techo"}})
	require.NoError(t, err)
	require.Len(t, srv.Cameras, 3)
	assert.Equal(t, "Techo", srv.Cameras[2].Location)

	_, err = app.AppendCameras(ctx, "nope", nil)
	assert.ErrorIs(t, err, ErrServerNotFound)

	require.NoError(t, app.DeleteServer(ctx, "server-2"))
	servers := app.Servers()
	require.Len(t, servers, 1)
	assert.Equal(t, "server-1", servers[0].ID)
	assert.ErrorIs(t, app.DeleteServer(ctx, "server-2"), ErrServerNotFound)
}

// Тест: новая проверка камер встаёт в начало истории и переживает перезапуск
func TestAddCameraCheck(t *testing.T) {
	ctx := context.Background()
	files := blob.NewMemory()
	app := startApp(t, files, legacy.MapSource{})

	first, err := app.AddCameraCheck(ctx, storage.NewCameraCheck{Operator: "Operador A"})
	require.NoError(t, err)
	second, err := app.AddCameraCheck(ctx, storage.NewCameraCheck{
		Operator:     "Operador B",
		CameraStates: map[string]storage.DeviceState{"c1": {Status: storage.StatusInRepair}},
	})
	require.NoError(t, err)

	history := app.CameraHistory()
	require.Len(t, history, 2)
	assert.Equal(t, second.ID, history[0].ID)
	assert.Equal(t, first.ID, history[1].ID)

	got, ok := app.CameraCheck(second.ID)
	require.True(t, ok)
	assert.Equal(t, storage.StatusInRepair, got.CameraStates["c1"].Status)

	reloaded := startApp(t, files, legacy.MapSource{})
	assert.Equal(t, history, reloaded.CameraHistory())
}

// Тест: после импорта записей из будущего порядок истории в памяти
// совпадает с порядком после перезагрузки
func TestAddCheck_HistoryOrderMatchesReload(t *testing.T) {
	ctx := context.Background()
	files := blob.NewMemory()
	app := startApp(t, files, legacy.MapSource{})

	require.NoError(t, app.Import(ctx, storage.Snapshot{
		Operators: []string{"Ana"},
		Servers:   []storage.Server{},
		CheckHistory: []storage.CameraCheckRecord{{
			ID: "future-cam", Date: "2099-01-01T00:00:00.000Z", Operator: "Ana",
			CameraStates: map[string]storage.DeviceState{}, ServerStates: map[string]bool{},
		}},
		JornadaHistory: []storage.JornadaCheckRecord{{
			ID: "future-jor", Date: "2099-01-01T00:00:00.000Z", Operator: "Ana",
			Shift: storage.ShiftAfternoon, CompletedTasks: []string{},
		}},
	}))

	cam, err := app.AddCameraCheck(ctx, storage.NewCameraCheck{Operator: "Ana"})
	require.NoError(t, err)
	jor, err := app.AddJornadaCheck(ctx, storage.NewJornadaCheck{Operator: "Ana", Shift: storage.ShiftMorning})
	require.NoError(t, err)

	cams := app.CameraHistory()
	require.Len(t, cams, 2)
	assert.Equal(t, "future-cam", cams[0].ID)
	assert.Equal(t, cam.ID, cams[1].ID)

	jors := app.JornadaHistory()
	require.Len(t, jors, 2)
	assert.Equal(t, "future-jor", jors[0].ID)
	assert.Equal(t, jor.ID, jors[1].ID)

	reloaded := startApp(t, files, legacy.MapSource{})
	assert.Equal(t, cams, reloaded.CameraHistory())
	assert.Equal(t, jors, reloaded.JornadaHistory())
}

// Тест: ошибка сохранения на диск не откатывает изменение в памяти
func TestFlushFailure_KeepsInMemory(t *testing.T) {
	ctx := context.Background()
	files := blob.NewMemory()
	app := startApp(t, files, legacy.MapSource{})

	files.FailPut = errors.New("quota exceeded")
	rec, err := app.AddJornadaCheck(ctx, storage.NewJornadaCheck{Operator: "Operador A", Shift: storage.ShiftMorning})
	require.NoError(t, err)

	_, ok := app.JornadaCheck(rec.ID)
	assert.True(t, ok)

	files.FailPut = nil
	reloaded := startApp(t, files, legacy.MapSource{})
	assert.Empty(t, reloaded.JornadaHistory())
}

// Тест: правка проверки смены сохраняет id и дату
func TestUpdateJornadaCheck(t *testing.T) {
	ctx := context.Background()
	app := startApp(t, blob.NewMemory(), legacy.MapSource{})

	rec, err := app.AddJornadaCheck(ctx, storage.NewJornadaCheck{
		Operator:       "Operador A",
		Shift:          storage.ShiftMorning,
		CompletedTasks: []string{"m1"},
	})
	require.NoError(t, err)

	updated, err := app.UpdateJornadaCheck(ctx, rec.ID, storage.NewJornadaCheck{
		Shift:          storage.ShiftAfternoon,
		CompletedTasks: []string{"a1", "a2"},
		Observations:   "todo bien",
	})
	require.NoError(t, err)
	assert.Equal(t, rec.ID, updated.ID)
	assert.Equal(t, rec.Date, updated.Date)
	assert.Equal(t, "Operador A", updated.Operator)
	assert.Equal(t, storage.ShiftAfternoon, updated.Shift)
	assert.Equal(t, []string{"a1", "a2"}, updated.CompletedTasks)

	history := app.JornadaHistory()
	require.Len(t, history, 1)
	assert.Equal(t, updated, history[0])

	_, err = app.UpdateJornadaCheck(ctx, "missing", storage.NewJornadaCheck{})
	assert.ErrorIs(t, err, ErrRecordNotFound)
}

// Тест: импорт заменяет всё состояние, экспорт отдаёт его обратно
func TestImport_ReplacesState(t *testing.T) {
	ctx := context.Background()
	app := startApp(t, blob.NewMemory(), legacy.MapSource{})
	_, err := app.AddCameraCheck(ctx, storage.NewCameraCheck{Operator: "Operador A"})
	require.NoError(t, err)

	snap := storage.Snapshot{
		Operators: []string{"Ana"},
		Servers:   []storage.Server{{ID: "s9", IP: "10.9.9.9", Cameras: []storage.Camera{}}},
		HelpText:  "nuevo",
		CheckHistory: []storage.CameraCheckRecord{{
			ID: "r1", Date: "2024-01-01T00:00:00.000Z", Operator: "Ana",
			CameraStates: map[string]storage.DeviceState{}, ServerStates: map[string]bool{},
		}},
		JornadaHistory: []storage.JornadaCheckRecord{},
	}
	require.NoError(t, app.Import(ctx, snap))

	got := app.Snapshot()
	assert.Equal(t, storage.SnapshotVersion, got.Version)
	assert.Equal(t, []string{"Ana"}, got.Operators)
	assert.Equal(t, snap.Servers, got.Servers)
	assert.Equal(t, "nuevo", got.HelpText)
	assert.Equal(t, snap.CheckHistory, got.CheckHistory)
	assert.Empty(t, got.JornadaHistory)
}

// Тест: чтения отдают копии
func TestReads_ReturnCopies(t *testing.T) {
	app := startApp(t, blob.NewMemory(), legacy.MapSource{})

	servers := app.Servers()
	servers[0].IP = "0.0.0.0"
	servers[0].Cameras = append(servers[0].Cameras, storage.Camera{ID: "x"})
	ops := app.Operators()
	ops[0] = "cambiado"

	assert.Equal(t, DefaultServers, app.Servers())
	assert.Equal(t, DefaultOperators, app.Operators())
}
