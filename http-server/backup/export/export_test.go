package export

import (
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chequeos-rutinas/internal/snapshot"
	"chequeos-rutinas/internal/storage"
)

type fixedSnapshot storage.Snapshot

func (f fixedSnapshot) Snapshot() storage.Snapshot { return storage.Snapshot(f) }

// Тест: экспорт отдаёт файл с датой в имени, который снова читается кодеком
func TestExportBackup(t *testing.T) {
	snap := fixedSnapshot{
		Operators: []string{"Ana"},
		Servers:   []storage.Server{{ID: "s1", IP: "10.0.0.1", Cameras: []storage.Camera{}}},
		HelpText:  "<b>555</b>",
	}
	now := func() time.Time { return time.Date(2024, 5, 6, 10, 0, 0, 0, time.UTC) }

	rr := httptest.NewRecorder()
	ExportBackup(slog.Default(), snap, now).ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/backup/export", nil))

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "attachment; filename=chequeos-rutinas-backup-2024-05-06.json", rr.Header().Get("Content-Disposition"))
	assert.Contains(t, rr.Body.String(), `"helpText": "<b>555</b>"`)

	decoded, err := snapshot.Decode(strings.NewReader(rr.Body.String()))
	require.NoError(t, err)
	assert.Equal(t, []string{"Ana"}, decoded.Operators)
	assert.Equal(t, storage.SnapshotVersion, decoded.Version)
	assert.Empty(t, decoded.CheckHistory)
}

// Тест: дата в имени файла берётся по UTC, а не по местному времени
func TestExportBackup_FileNameUsesUTCDate(t *testing.T) {
	// 22:00 по Сантьяго — уже следующий день по UTC
	now := func() time.Time { return time.Date(2024, 5, 6, 22, 0, 0, 0, time.FixedZone("CLT", -4*3600)) }

	rr := httptest.NewRecorder()
	ExportBackup(slog.Default(), fixedSnapshot{}, now).ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/backup/export", nil))

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "attachment; filename=chequeos-rutinas-backup-2024-05-07.json", rr.Header().Get("Content-Disposition"))
}
