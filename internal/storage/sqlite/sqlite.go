// Package sqlite — локальное хранилище записей: база SQLite в памяти,
// образ которой целиком сохраняется в blob.Store.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/segmentio/ksuid"
	msqlite "modernc.org/sqlite"

	"chequeos-rutinas/internal/storage"
	"chequeos-rutinas/internal/storage/blob"
)

const (
	// DBFileKey — ключ, под которым лежит образ базы.
	DBFileKey = "sqlite_db_file"

	schemaVersionKey = "schemaVersion"
	helpTextKey      = "helpText"
)

var schema = []string{
	`CREATE TABLE IF NOT EXISTS config (key TEXT PRIMARY KEY, value TEXT)`,
	`CREATE TABLE IF NOT EXISTS operators (name TEXT PRIMARY KEY)`,
	`CREATE TABLE IF NOT EXISTS servers (id TEXT PRIMARY KEY, data TEXT)`,
	`CREATE TABLE IF NOT EXISTS camera_history (id TEXT PRIMARY KEY, date TEXT, data TEXT)`,
	`CREATE TABLE IF NOT EXISTS jornada_history (id TEXT PRIMARY KEY, date TEXT, data TEXT)`,
}

type Storage struct {
	db    *sql.DB
	files blob.Store

	mu        sync.Mutex
	now       func() time.Time
	newID     func() string
	lastStamp time.Time
}

type Option func(*Storage)

func WithClock(now func() time.Time) Option {
	return func(s *Storage) { s.now = now }
}

func WithIDGenerator(newID func() string) Option {
	return func(s *Storage) { s.newID = newID }
}

func New(files blob.Store, opts ...Option) *Storage {
	s := &Storage{
		files: files,
		now:   time.Now,
		newID: func() string { return ksuid.New().String() },
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Ready сообщает, открыта ли база. До успешного Init чтения возвращают
// пустые значения, а записи игнорируются.
func (s *Storage) Ready() bool {
	return s.db != nil
}

// Init поднимает базу из сохранённого образа, либо создаёт пустую схему.
// fresh == true означает, что база создана заново и нужна миграция.
func (s *Storage) Init(ctx context.Context) (fresh bool, err error) {
	const op = "storage.sqlite.Init"

	if s.db != nil {
		return false, nil
	}

	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		return false, fmt.Errorf("%s: %w: %w", op, storage.ErrStorageUnavailable, err)
	}
	// база в памяти живёт ровно столько, сколько соединение
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)
	db.SetConnMaxIdleTime(0)

	image, err := s.files.Get(ctx, DBFileKey)
	switch {
	case err == nil:
		if err := restoreImage(ctx, db, image); err != nil {
			db.Close()
			return false, fmt.Errorf("%s: загрузка образа базы: %w: %w", op, storage.ErrStorageUnavailable, err)
		}
	case errors.Is(err, blob.ErrNotFound):
		fresh = true
	default:
		db.Close()
		return false, fmt.Errorf("%s: чтение образа базы: %w: %w", op, storage.ErrStorageUnavailable, err)
	}

	if err := createSchema(ctx, db, fresh); err != nil {
		db.Close()
		return false, fmt.Errorf("%s: %w: %w", op, storage.ErrStorageUnavailable, err)
	}

	last, err := lastRecordDate(ctx, db)
	if err != nil {
		db.Close()
		return false, fmt.Errorf("%s: %w: %w", op, storage.ErrStorageUnavailable, err)
	}

	s.mu.Lock()
	if last.After(s.lastStamp) {
		s.lastStamp = last
	}
	s.mu.Unlock()

	s.db = db
	return fresh, nil
}

// lastRecordDate возвращает самую позднюю дату среди записей обеих историй.
func lastRecordDate(ctx context.Context, db *sql.DB) (time.Time, error) {
	var last sql.NullString
	err := db.QueryRowContext(ctx, `SELECT MAX(date) FROM (
		SELECT date FROM camera_history UNION ALL SELECT date FROM jornada_history)`).Scan(&last)
	if err != nil {
		return time.Time{}, fmt.Errorf("последняя дата записей: %w", err)
	}
	if !last.Valid || last.String == "" {
		return time.Time{}, nil
	}
	t, err := storage.ParseDate(last.String)
	if err != nil {
		// нечитаемую дату пропускаем
		return time.Time{}, nil
	}
	return t.UTC(), nil
}

func createSchema(ctx context.Context, db *sql.DB, fresh bool) error {
	for _, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("создание схемы: %w", err)
		}
	}
	if fresh {
		return setSchemaVersion(ctx, db)
	}
	return nil
}

func setSchemaVersion(ctx context.Context, ex execer) error {
	_, err := ex.ExecContext(ctx,
		`INSERT OR REPLACE INTO config (key, value) VALUES (?, ?)`,
		schemaVersionKey, fmt.Sprint(storage.SnapshotVersion))
	return err
}

// Save сериализует базу и пишет образ в долговременное хранилище.
func (s *Storage) Save(ctx context.Context) error {
	const op = "storage.sqlite.Save"

	if s.db == nil {
		return nil
	}

	var image []byte
	err := withDriverConn(ctx, s.db, func(c driverConn) error {
		var err error
		image, err = c.Serialize()
		return err
	})
	if err != nil {
		return fmt.Errorf("%s: сериализация базы: %w", op, err)
	}

	if err := s.files.Put(ctx, DBFileKey, image); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

func (s *Storage) Close() error {
	if s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	return err
}

// SchemaVersion возвращает версию схемы из таблицы config, 0 если её нет.
func (s *Storage) SchemaVersion(ctx context.Context) (int, error) {
	const op = "storage.sqlite.SchemaVersion"

	if s.db == nil {
		return 0, nil
	}
	var v sql.NullString
	err := s.db.QueryRowContext(ctx, `SELECT value FROM config WHERE key = ?`, schemaVersionKey).Scan(&v)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	var version int
	if _, err := fmt.Sscan(v.String, &version); err != nil {
		return 0, fmt.Errorf("%s: некорректная версия %q: %w", op, v.String, err)
	}
	return version, nil
}

// driverConn — то, что нужно от соединения modernc.org/sqlite.
type driverConn interface {
	Serialize() ([]byte, error)
	NewRestore(srcURI string) (*msqlite.Backup, error)
}

func withDriverConn(ctx context.Context, db *sql.DB, fn func(driverConn) error) error {
	conn, err := db.Conn(ctx)
	if err != nil {
		return err
	}
	defer conn.Close()

	return conn.Raw(func(raw any) error {
		c, ok := raw.(driverConn)
		if !ok {
			return fmt.Errorf("драйвер %T не поддерживает serialize/restore", raw)
		}
		return fn(c)
	})
}

// restoreImage переносит образ в базу в памяти через временный файл и
// backup API драйвера.
func restoreImage(ctx context.Context, db *sql.DB, image []byte) error {
	tmp, err := os.CreateTemp("", "chequeos-*.sqlite")
	if err != nil {
		return fmt.Errorf("временный файл образа: %w", err)
	}
	path := tmp.Name()
	defer os.Remove(path)

	if _, err := tmp.Write(image); err != nil {
		tmp.Close()
		return fmt.Errorf("запись временного файла образа: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("запись временного файла образа: %w", err)
	}

	return withDriverConn(ctx, db, func(c driverConn) error {
		restore, err := c.NewRestore(path)
		if err != nil {
			return fmt.Errorf("открытие образа: %w", err)
		}
		for {
			more, err := restore.Step(-1)
			if err != nil {
				restore.Finish()
				return fmt.Errorf("восстановление образа: %w", err)
			}
			if !more {
				break
			}
		}
		return restore.Finish()
	})
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// stamp выдаёт id и дату новой записи; даты не убывают в порядке вызовов.
func (s *Storage) stamp() (string, string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now().UTC().Truncate(time.Millisecond)
	if now.Before(s.lastStamp) {
		now = s.lastStamp
	}
	s.lastStamp = now

	return s.newID(), storage.FormatDate(now)
}
