// Package legacy читает старое плоское хранилище ключ-значение
// (дамп localStorage) и старые формы данных в нём.
package legacy

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"sync"
)

const (
	KeyOperators      = "operators"
	KeyServers        = "servers"
	KeyHelpText       = "helpText"
	KeyCheckHistory   = "checkHistory"
	KeyJornadaHistory = "jornadaHistory"
)

// Keys — все ключи старого хранилища, в порядке миграции.
var Keys = []string{KeyOperators, KeyServers, KeyHelpText, KeyCheckHistory, KeyJornadaHistory}

type Source interface {
	Get(key string) (value string, ok bool, err error)
	Remove(keys ...string) error
}

// FileSource — JSON-объект {"ключ": "строка"} на диске.
// Отсутствующий файл равносилен пустому хранилищу.
type FileSource struct {
	mu   sync.Mutex
	path string
}

func NewFileSource(path string) *FileSource {
	return &FileSource{path: path}
}

func (f *FileSource) load() (map[string]json.RawMessage, error) {
	data, err := os.ReadFile(f.path)
	if errors.Is(err, fs.ErrNotExist) {
		return map[string]json.RawMessage{}, nil
	}
	if err != nil {
		return nil, err
	}
	items := map[string]json.RawMessage{}
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, fmt.Errorf("разбор %s: %w", f.path, err)
	}
	return items, nil
}

func (f *FileSource) Get(key string) (string, bool, error) {
	const op = "storage.legacy.FileSource.Get"

	if f.path == "" {
		return "", false, nil
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	items, err := f.load()
	if err != nil {
		return "", false, fmt.Errorf("%s: %w", op, err)
	}
	raw, ok := items[key]
	if !ok || string(raw) == "null" {
		return "", false, nil
	}

	// localStorage хранит строки; в ручных дампах бывает и сырой JSON
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s, s != "", nil
	}
	return string(raw), true, nil
}

func (f *FileSource) Remove(keys ...string) error {
	const op = "storage.legacy.FileSource.Remove"

	if f.path == "" {
		return nil
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	items, err := f.load()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	for _, k := range keys {
		delete(items, k)
	}

	if len(items) == 0 {
		if err := os.Remove(f.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("%s: %w", op, err)
		}
		return nil
	}

	data, err := json.MarshalIndent(items, "", "  ")
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if err := os.WriteFile(f.path, data, 0o644); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// MapSource — хранилище в памяти.
type MapSource map[string]string

func (m MapSource) Get(key string) (string, bool, error) {
	v, ok := m[key]
	return v, ok && v != "", nil
}

func (m MapSource) Remove(keys ...string) error {
	for _, k := range keys {
		delete(m, k)
	}
	return nil
}
