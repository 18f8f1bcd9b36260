package sqlite

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chequeos-rutinas/internal/storage"
	"chequeos-rutinas/internal/storage/blob"
)

func newTestStorage(t *testing.T, files blob.Store, opts ...Option) *Storage {
	t.Helper()

	s := New(files, opts...)
	_, err := s.Init(context.Background())
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

type brokenBlobStore struct{}

func (brokenBlobStore) Get(context.Context, string) ([]byte, error) {
	return nil, errors.New("indexeddb недоступна")
}
func (brokenBlobStore) Put(context.Context, string, []byte) error { return nil }
func (brokenBlobStore) Close() error                            { return nil }

func TestInit_FreshThenReload(t *testing.T) {
	ctx := context.Background()
	files := blob.NewMemory()

	first := New(files)
	fresh, err := first.Init(ctx)
	require.NoError(t, err)
	assert.True(t, fresh)

	version, err := first.SchemaVersion(ctx)
	require.NoError(t, err)
	assert.Equal(t, storage.SnapshotVersion, version)

	require.NoError(t, first.SetOperators(ctx, []string{"B", "A"}))
	require.NoError(t, first.SetHelpText(ctx, "reiniciar el DVR"))
	require.NoError(t, first.Save(ctx))
	require.NoError(t, first.Close())

	second := New(files)
	fresh, err = second.Init(ctx)
	require.NoError(t, err)
	assert.False(t, fresh)
	defer second.Close()

	ops, err := second.GetOperators(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"A", "B"}, ops)

	help, err := second.GetHelpText(ctx)
	require.NoError(t, err)
	assert.Equal(t, "reiniciar el DVR", help)
}

func TestInit_UnsavedChangesAreLost(t *testing.T) {
	ctx := context.Background()
	files := blob.NewMemory()

	first := newTestStorage(t, files)
	require.NoError(t, first.Save(ctx))
	require.NoError(t, first.SetOperators(ctx, []string{"A"}))
	require.NoError(t, first.Close())

	second := newTestStorage(t, files)
	ops, err := second.GetOperators(ctx)
	require.NoError(t, err)
	assert.Empty(t, ops)
}

func TestInit_ReloadMutateCloseReload(t *testing.T) {
	ctx := context.Background()
	files := blob.NewMemory()

	first := New(files)
	_, err := first.Init(ctx)
	require.NoError(t, err)
	require.NoError(t, first.SetOperators(ctx, []string{"A"}))
	require.NoError(t, first.Save(ctx))
	require.NoError(t, first.Close())

	// Тест: база, поднятая из образа, изменяется, сохраняется и закрывается
	second := New(files)
	fresh, err := second.Init(ctx)
	require.NoError(t, err)
	assert.False(t, fresh)

	require.NoError(t, second.SetOperators(ctx, []string{"A", "B"}))
	for n := 0; n < 50; n++ {
		_, err := second.AddCameraCheckRecord(ctx, storage.NewCameraCheck{Operator: "B"})
		require.NoError(t, err)
	}
	require.NoError(t, second.Save(ctx))
	require.NoError(t, second.Close())
	assert.False(t, second.Ready())

	// Тест: повторная загрузка видит изменения второго запуска
	third := New(files)
	_, err = third.Init(ctx)
	require.NoError(t, err)

	ops, err := third.GetOperators(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"A", "B"}, ops)

	cams, err := third.GetCameraHistory(ctx)
	require.NoError(t, err)
	assert.Len(t, cams, 50)

	require.NoError(t, third.Close())
}

func TestInit_SeedsStampFromStoredDates(t *testing.T) {
	ctx := context.Background()
	files := blob.NewMemory()

	first := newTestStorage(t, files)
	require.NoError(t, first.InsertCameraCheckRecords(ctx,
		storage.CameraCheckRecord{ID: "c1", Date: "2024-06-01T12:00:00.000Z"}))
	require.NoError(t, first.InsertJornadaCheckRecords(ctx,
		storage.JornadaCheckRecord{ID: "j1", Date: "2024-06-02T09:30:00.000Z", Shift: storage.ShiftMorning}))
	require.NoError(t, first.Save(ctx))
	require.NoError(t, first.Close())

	// Тест: после перезапуска часы отстают от сохранённых записей
	behind := func() time.Time { return time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC) }
	second := newTestStorage(t, files, WithClock(behind))

	rec, err := second.AddCameraCheckRecord(ctx, storage.NewCameraCheck{Operator: "A"})
	require.NoError(t, err)
	assert.Equal(t, "2024-06-02T09:30:00.000Z", rec.Date)

	cams, err := second.GetCameraHistory(ctx)
	require.NoError(t, err)
	require.Len(t, cams, 2)
	assert.Equal(t, rec.ID, cams[0].ID)
}

func TestInit_FailureDegradesToEmpty(t *testing.T) {
	ctx := context.Background()
	s := New(brokenBlobStore{})

	fresh, err := s.Init(ctx)
	require.Error(t, err)
	assert.ErrorIs(t, err, storage.ErrStorageUnavailable)
	assert.False(t, fresh)
	assert.False(t, s.Ready())

	ops, err := s.GetOperators(ctx)
	require.NoError(t, err)
	assert.Empty(t, ops)

	servers, err := s.GetServers(ctx)
	require.NoError(t, err)
	assert.Empty(t, servers)

	help, err := s.GetHelpText(ctx)
	require.NoError(t, err)
	assert.Equal(t, "", help)

	cams, err := s.GetCameraHistory(ctx)
	require.NoError(t, err)
	assert.Empty(t, cams)

	jors, err := s.GetJornadaHistory(ctx)
	require.NoError(t, err)
	assert.Empty(t, jors)

	// записи без базы игнорируются
	assert.NoError(t, s.SetOperators(ctx, []string{"A"}))
	assert.NoError(t, s.SetHelpText(ctx, "x"))
	assert.NoError(t, s.UpdateJornadaCheckRecord(ctx, storage.JornadaCheckRecord{ID: "j1"}))
	assert.NoError(t, s.Save(ctx))

	rec, err := s.AddCameraCheckRecord(ctx, storage.NewCameraCheck{Operator: "A"})
	assert.Nil(t, rec)
	assert.ErrorIs(t, err, storage.ErrStorageUnavailable)

	jrec, err := s.AddJornadaCheckRecord(ctx, storage.NewJornadaCheck{Operator: "A"})
	assert.Nil(t, jrec)
	assert.ErrorIs(t, err, storage.ErrStorageUnavailable)
}

func TestOperators_ReplaceSortedAndDeduplicated(t *testing.T) {
	ctx := context.Background()
	s := newTestStorage(t, blob.NewMemory())

	require.NoError(t, s.SetOperators(ctx, []string{"Carla", "Ana", "Beto", "Ana"}))
	ops, err := s.GetOperators(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"Ana", "Beto", "Carla"}, ops)

	require.NoError(t, s.SetOperators(ctx, []string{"Zoe"}))
	ops, err = s.GetOperators(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"Zoe"}, ops)
}

func TestServers_RoundTripAndIndependentCopies(t *testing.T) {
	ctx := context.Background()
	s := newTestStorage(t, blob.NewMemory())

	servers := []storage.Server{
		{ID: "s1", IP: "10.0.0.1", Cameras: []storage.Camera{
			{ID: "c1", IP: "10.0.0.11", Location: "Gate", City: "PMontt", Section: "Taller", Number: "02"},
		}},
		{ID: "s2", IP: "10.0.0.1"},
	}
	require.NoError(t, s.SetServers(ctx, servers))

	got, err := s.GetServers(ctx)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, servers[0], got[0])
	// дубликат IP хранилище не отклоняет, nil-камеры становятся пустым списком
	assert.Equal(t, "10.0.0.1", got[1].IP)
	assert.Equal(t, []storage.Camera{}, got[1].Cameras)

	got[0].Cameras[0].Location = "changed"
	got[0].IP = "changed"

	again, err := s.GetServers(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Gate", again[0].Cameras[0].Location)
	assert.Equal(t, "10.0.0.1", again[0].IP)
}

func TestAddCameraCheckRecord_Scenario(t *testing.T) {
	ctx := context.Background()
	s := newTestStorage(t, blob.NewMemory())

	require.NoError(t, s.SetOperators(ctx, []string{"A"}))
	require.NoError(t, s.SetServers(ctx, []storage.Server{{
		ID: "s1", IP: "10.0.0.1",
		Cameras: []storage.Camera{{ID: "c1", IP: "10.0.0.1", Location: "Gate"}},
	}}))

	rec, err := s.AddCameraCheckRecord(ctx, storage.NewCameraCheck{
		Operator:            "A",
		GeneralObservations: "ok",
		CameraStates:        map[string]storage.DeviceState{"c1": {Status: storage.StatusOK}},
		ServerStates:        map[string]bool{"s1": true},
	})
	require.NoError(t, err)
	require.NotNil(t, rec)

	history, err := s.GetCameraHistory(ctx)
	require.NoError(t, err)
	require.Len(t, history, 1)

	got := history[0]
	assert.NotEmpty(t, got.ID)
	assert.NotEmpty(t, got.Date)
	assert.Equal(t, rec.ID, got.ID)
	assert.Equal(t, rec.Date, got.Date)
	assert.Equal(t, "A", got.Operator)
	assert.Equal(t, "ok", got.GeneralObservations)
	assert.Equal(t, map[string]storage.DeviceState{"c1": {Status: storage.StatusOK, Observation: ""}}, got.CameraStates)
	assert.Equal(t, map[string]bool{"s1": true}, got.ServerStates)

	byID, err := s.GetCameraCheckRecord(ctx, rec.ID)
	require.NoError(t, err)
	assert.Equal(t, got, *byID)

	_, err = s.GetCameraCheckRecord(ctx, "missing")
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestStamping_UniqueIDsNonDecreasingDates(t *testing.T) {
	ctx := context.Background()

	// часы идут вперёд, стоят на месте и отскакивают назад
	base := time.Date(2024, 5, 1, 8, 0, 0, 0, time.UTC)
	ticks := []time.Duration{0, 0, 5 * time.Millisecond, -time.Second, 2 * time.Second, 2 * time.Second}
	i := 0
	clock := func() time.Time {
		t := base.Add(ticks[i%len(ticks)])
		i++
		return t
	}
	s := newTestStorage(t, blob.NewMemory(), WithClock(clock))

	var ids []string
	var dates []string
	for n := 0; n < 6; n++ {
		if n%2 == 0 {
			rec, err := s.AddCameraCheckRecord(ctx, storage.NewCameraCheck{Operator: fmt.Sprint(n)})
			require.NoError(t, err)
			ids = append(ids, rec.ID)
			dates = append(dates, rec.Date)
		} else {
			rec, err := s.AddJornadaCheckRecord(ctx, storage.NewJornadaCheck{Operator: fmt.Sprint(n), Shift: storage.ShiftMorning})
			require.NoError(t, err)
			ids = append(ids, rec.ID)
			dates = append(dates, rec.Date)
		}
	}

	seen := map[string]bool{}
	for _, id := range ids {
		assert.False(t, seen[id], "повторный id %s", id)
		seen[id] = true
	}
	for n := 1; n < len(dates); n++ {
		assert.LessOrEqual(t, dates[n-1], dates[n])
	}
	assert.Equal(t, "2024-05-01T08:00:00.005Z", dates[3])
}

func TestCameraHistory_OrderedNewestFirst(t *testing.T) {
	ctx := context.Background()
	s := newTestStorage(t, blob.NewMemory())

	require.NoError(t, s.InsertCameraCheckRecords(ctx,
		storage.CameraCheckRecord{ID: "old", Date: "2023-01-01T10:00:00.000Z"},
		storage.CameraCheckRecord{ID: "new", Date: "2024-01-01T10:00:00.000Z"},
		storage.CameraCheckRecord{ID: "mid", Date: "2023-06-01T10:00:00.000Z"},
	))

	history, err := s.GetCameraHistory(ctx)
	require.NoError(t, err)
	require.Len(t, history, 3)
	assert.Equal(t, "new", history[0].ID)
	assert.Equal(t, "mid", history[1].ID)
	assert.Equal(t, "old", history[2].ID)
	// вставка без id/даты-штампа: значения сохранены как есть
	assert.Equal(t, "2023-01-01T10:00:00.000Z", history[2].Date)
	assert.NotNil(t, history[2].CameraStates)
}

func TestJornada_UpdateKeepsIdentity(t *testing.T) {
	ctx := context.Background()
	s := newTestStorage(t, blob.NewMemory())

	rec, err := s.AddJornadaCheckRecord(ctx, storage.NewJornadaCheck{
		Operator: "A", Shift: storage.ShiftMorning, CompletedTasks: []string{"m1"},
	})
	require.NoError(t, err)

	updated := *rec
	updated.Shift = storage.ShiftAfternoon
	updated.CompletedTasks = []string{"a1", "a2"}
	updated.Observations = "sin novedad"
	require.NoError(t, s.UpdateJornadaCheckRecord(ctx, updated))

	history, err := s.GetJornadaHistory(ctx)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, updated, history[0])
	assert.Equal(t, rec.Date, history[0].Date)

	err = s.UpdateJornadaCheckRecord(ctx, storage.JornadaCheckRecord{ID: "missing"})
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestJornada_NilTasksStoredAsEmpty(t *testing.T) {
	ctx := context.Background()
	s := newTestStorage(t, blob.NewMemory())

	rec, err := s.AddJornadaCheckRecord(ctx, storage.NewJornadaCheck{Operator: "A", Shift: storage.ShiftAfternoon})
	require.NoError(t, err)
	assert.Equal(t, []string{}, rec.CompletedTasks)

	got, err := s.GetJornadaCheckRecord(ctx, rec.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{}, got.CompletedTasks)
}

func TestReplaceAll_ExportRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := newTestStorage(t, blob.NewMemory())

	require.NoError(t, s.SetOperators(ctx, []string{"A", "B"}))
	require.NoError(t, s.SetServers(ctx, []storage.Server{{ID: "s1", IP: "10.0.0.1", Cameras: []storage.Camera{{ID: "c1"}}}}))
	require.NoError(t, s.SetHelpText(ctx, "ayuda"))
	_, err := s.AddCameraCheckRecord(ctx, storage.NewCameraCheck{Operator: "A", ServerStates: map[string]bool{"s1": true}})
	require.NoError(t, err)
	_, err = s.AddJornadaCheckRecord(ctx, storage.NewJornadaCheck{Operator: "B", Shift: storage.ShiftMorning, CompletedTasks: []string{"m1"}})
	require.NoError(t, err)

	before, err := s.ExportSnapshot(ctx)
	require.NoError(t, err)
	assert.Equal(t, storage.SnapshotVersion, before.Version)

	require.NoError(t, s.ReplaceAll(ctx, before))

	after, err := s.ExportSnapshot(ctx)
	require.NoError(t, err)
	assert.Equal(t, before, after)

	version, err := s.SchemaVersion(ctx)
	require.NoError(t, err)
	assert.Equal(t, storage.SnapshotVersion, version)
}

func TestReplaceAll_WipesPreviousData(t *testing.T) {
	ctx := context.Background()
	s := newTestStorage(t, blob.NewMemory())

	require.NoError(t, s.SetOperators(ctx, []string{"Viejo"}))
	_, err := s.AddCameraCheckRecord(ctx, storage.NewCameraCheck{Operator: "Viejo"})
	require.NoError(t, err)

	require.NoError(t, s.ReplaceAll(ctx, storage.Snapshot{
		Operators: []string{"Nuevo"},
		HelpText:  "",
		JornadaHistory: []storage.JornadaCheckRecord{
			{ID: "j-legacy", Date: "2022-02-02T02:02:02.000Z", Operator: "Nuevo", Shift: storage.ShiftAfternoon},
		},
	}))

	snap, err := s.ExportSnapshot(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"Nuevo"}, snap.Operators)
	assert.Empty(t, snap.Servers)
	assert.Equal(t, "", snap.HelpText)
	assert.Empty(t, snap.CheckHistory)
	require.Len(t, snap.JornadaHistory, 1)
	assert.Equal(t, "j-legacy", snap.JornadaHistory[0].ID)
	assert.Equal(t, "2022-02-02T02:02:02.000Z", snap.JornadaHistory[0].Date)
}

func TestSave_PropagatesBlobError(t *testing.T) {
	ctx := context.Background()
	files := blob.NewMemory()
	s := newTestStorage(t, files)

	files.FailPut = errors.New("quota exceeded")
	err := s.Save(ctx)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "quota exceeded")
}
