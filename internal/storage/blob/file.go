package blob

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// FileStore хранит каждый ключ отдельным файлом в <dir>/<dbName>.
type FileStore struct {
	dir string
}

func NewFile(dir, dbName string) (*FileStore, error) {
	const op = "storage.blob.NewFile"

	root := filepath.Join(dir, dbName)
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("%s: создание каталога %s: %w", op, root, err)
	}
	return &FileStore{dir: root}, nil
}

func (f *FileStore) path(key string) string {
	return filepath.Join(f.dir, filepath.Base(key))
}

func (f *FileStore) Get(_ context.Context, key string) ([]byte, error) {
	const op = "storage.blob.FileStore.Get"

	data, err := os.ReadFile(f.path(key))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%s: %s: %w", op, key, ErrNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return data, nil
}

func (f *FileStore) Put(_ context.Context, key string, data []byte) error {
	const op = "storage.blob.FileStore.Put"

	tmp, err := os.CreateTemp(f.dir, filepath.Base(key)+".*.tmp")
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("%s: запись: %w", op, err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("%s: sync: %w", op, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	// rename атомарен, читатель видит либо старый образ, либо новый
	if err := os.Rename(tmp.Name(), f.path(key)); err != nil {
		return fmt.Errorf("%s: rename: %w", op, err)
	}
	return nil
}

func (f *FileStore) Close() error { return nil }
