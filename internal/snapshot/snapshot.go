// Package snapshot — формат файла резервной копии: экспорт всего
// состояния в JSON и разбор/проверка импортируемого файла.
package snapshot

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"chequeos-rutinas/internal/storage"
	"chequeos-rutinas/internal/storage/legacy"
)

const (
	fieldOperators      = "operators"
	fieldServers        = "servers"
	fieldHelpText       = "helpText"
	fieldCheckHistory   = "checkHistory"
	fieldJornadaHistory = "jornadaHistory"
)

// RequiredFields — поля верхнего уровня, без которых импорт отклоняется.
var RequiredFields = []string{fieldOperators, fieldServers, fieldHelpText, fieldCheckHistory, fieldJornadaHistory}

func FileName(t time.Time) string {
	return fmt.Sprintf("chequeos-rutinas-backup-%s.json", t.Format("2006-01-02"))
}

func Encode(w io.Writer, snap storage.Snapshot) error {
	const op = "snapshot.Encode"

	snap.Normalize()
	if snap.Version == 0 {
		snap.Version = storage.SnapshotVersion
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(snap); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// Decode разбирает недоверенный JSON. Проверяется только наличие пяти полей
// верхнего уровня (helpText может быть пустой строкой); вложенные записи
// не валидируются. Старые формы серверов и записей камер принимаются.
func Decode(r io.Reader) (storage.Snapshot, error) {
	const op = "snapshot.Decode"

	var fields map[string]json.RawMessage
	if err := json.NewDecoder(r).Decode(&fields); err != nil {
		return storage.Snapshot{}, fmt.Errorf("%s: %w: %v", op, storage.ErrInvalidFormat, err)
	}

	if missing := missingFields(fields); len(missing) > 0 {
		return storage.Snapshot{}, fmt.Errorf("%s: %w: нет полей %s", op, storage.ErrInvalidFormat, strings.Join(missing, ", "))
	}

	var (
		snap storage.Snapshot
		err  error
	)

	if err := json.Unmarshal(fields[fieldOperators], &snap.Operators); err != nil {
		return storage.Snapshot{}, invalid(op, fieldOperators, err)
	}
	if snap.Servers, _, err = legacy.DecodeServers(fields[fieldServers]); err != nil {
		return storage.Snapshot{}, invalid(op, fieldServers, err)
	}
	if err := json.Unmarshal(fields[fieldHelpText], &snap.HelpText); err != nil {
		return storage.Snapshot{}, invalid(op, fieldHelpText, err)
	}
	if snap.CheckHistory, _, err = legacy.DecodeCameraRecords(fields[fieldCheckHistory]); err != nil {
		return storage.Snapshot{}, invalid(op, fieldCheckHistory, err)
	}
	if snap.JornadaHistory, err = legacy.DecodeJornadaRecords(fields[fieldJornadaHistory]); err != nil {
		return storage.Snapshot{}, invalid(op, fieldJornadaHistory, err)
	}
	if v, ok := fields["version"]; ok {
		// версия информативная, нечисловое значение не мешает импорту
		_ = json.Unmarshal(v, &snap.Version)
	}

	snap.Normalize()
	return snap, nil
}

func missingFields(fields map[string]json.RawMessage) []string {
	var missing []string
	for _, name := range RequiredFields {
		raw, ok := fields[name]
		if !ok || strings.TrimSpace(string(raw)) == "null" {
			missing = append(missing, name)
		}
	}
	return missing
}

func invalid(op, field string, err error) error {
	return fmt.Errorf("%s: %w: поле %s: %v", op, storage.ErrInvalidFormat, field, err)
}
