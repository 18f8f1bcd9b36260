package state

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"chequeos-rutinas/internal/storage"
)

// SetOperators заменяет список операторов целиком.
func (a *App) SetOperators(ctx context.Context, operators []string) ([]string, error) {
	const op = "service.state.SetOperators"

	a.mu.Lock()
	defer a.mu.Unlock()

	if err := a.commitOperators(ctx, operators); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return append([]string{}, a.operators...), nil
}

func (a *App) AddOperator(ctx context.Context, name string) ([]string, error) {
	const op = "service.state.AddOperator"

	a.mu.Lock()
	defer a.mu.Unlock()

	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%s: %w", op, ErrEmptyValue)
	}
	if indexOf(a.operators, name) >= 0 {
		return nil, fmt.Errorf("%s: %w", op, ErrDuplicateOperator)
	}

	next := append(append([]string{}, a.operators...), name)
	if err := a.commitOperators(ctx, next); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return append([]string{}, a.operators...), nil
}

func (a *App) RenameOperator(ctx context.Context, oldName, newName string) ([]string, error) {
	const op = "service.state.RenameOperator"

	a.mu.Lock()
	defer a.mu.Unlock()

	newName = strings.TrimSpace(newName)
	if newName == "" {
		return nil, fmt.Errorf("%s: %w", op, ErrEmptyValue)
	}
	i := indexOf(a.operators, oldName)
	if i < 0 {
		return nil, fmt.Errorf("%s: %w", op, ErrOperatorNotFound)
	}
	if newName != oldName && indexOf(a.operators, newName) >= 0 {
		return nil, fmt.Errorf("%s: %w", op, ErrDuplicateOperator)
	}

	next := append([]string{}, a.operators...)
	next[i] = newName
	if err := a.commitOperators(ctx, next); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return append([]string{}, a.operators...), nil
}

// DeleteOperator не трогает историю: записи со старым именем остаются как есть.
func (a *App) DeleteOperator(ctx context.Context, name string) ([]string, error) {
	const op = "service.state.DeleteOperator"

	a.mu.Lock()
	defer a.mu.Unlock()

	i := indexOf(a.operators, name)
	if i < 0 {
		return nil, fmt.Errorf("%s: %w", op, ErrOperatorNotFound)
	}

	next := append(append([]string{}, a.operators[:i]...), a.operators[i+1:]...)
	if err := a.commitOperators(ctx, next); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return append([]string{}, a.operators...), nil
}

func (a *App) commitOperators(ctx context.Context, operators []string) error {
	if err := a.ensureReady(); err != nil {
		return err
	}
	if err := a.store.SetOperators(ctx, operators); err != nil {
		return err
	}
	a.flush(ctx)

	stored, err := a.store.GetOperators(ctx)
	if err != nil {
		return err
	}
	a.operators = stored
	return nil
}

// SetServers заменяет список серверов целиком. Повтор IP здесь допустим.
func (a *App) SetServers(ctx context.Context, servers []storage.Server) ([]storage.Server, error) {
	const op = "service.state.SetServers"

	a.mu.Lock()
	defer a.mu.Unlock()

	next := storage.CloneServers(servers)
	for i := range next {
		a.assignIDs(&next[i])
	}
	if err := a.commitServers(ctx, next); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return storage.CloneServers(a.servers), nil
}

// AddServer добавляет сервер без камер. IP должен быть уникален.
func (a *App) AddServer(ctx context.Context, ip string) (storage.Server, error) {
	const op = "service.state.AddServer"

	a.mu.Lock()
	defer a.mu.Unlock()

	ip = strings.TrimSpace(ip)
	if ip == "" {
		return storage.Server{}, fmt.Errorf("%s: %w", op, ErrEmptyValue)
	}
	for _, s := range a.servers {
		if s.IP == ip {
			return storage.Server{}, fmt.Errorf("%s: %w", op, ErrDuplicateIP)
		}
	}

	srv := storage.Server{ID: "server_" + a.newID(), IP: ip, Cameras: []storage.Camera{}}
	next := append(storage.CloneServers(a.servers), srv)
	if err := a.commitServers(ctx, next); err != nil {
		return storage.Server{}, fmt.Errorf("%s: %w", op, err)
	}
	return srv.Clone(), nil
}

func (a *App) DeleteServer(ctx context.Context, id string) error {
	const op = "service.state.DeleteServer"

	a.mu.Lock()
	defer a.mu.Unlock()

	i := a.serverIndex(id)
	if i < 0 {
		return fmt.Errorf("%s: %w", op, ErrServerNotFound)
	}

	next := storage.CloneServers(a.servers)
	next = append(next[:i], next[i+1:]...)
	if err := a.commitServers(ctx, next); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// SetServerCameras заменяет камеры сервера; камерам без id выдаётся новый.
func (a *App) SetServerCameras(ctx context.Context, id string, cameras []storage.Camera) (storage.Server, error) {
	const op = "service.state.SetServerCameras"

	return a.editCameras(ctx, op, id, func(srv *storage.Server) {
		srv.Cameras = append([]storage.Camera{}, cameras...)
	})
}

// AppendCameras дописывает камеры в конец списка сервера.
func (a *App) AppendCameras(ctx context.Context, id string, cameras []storage.Camera) (storage.Server, error) {
	const op = "service.state.AppendCameras"

	return a.editCameras(ctx, op, id, func(srv *storage.Server) {
		srv.Cameras = append(srv.Cameras, cameras...)
	})
}

func (a *App) editCameras(ctx context.Context, op, id string, edit func(*storage.Server)) (storage.Server, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	i := a.serverIndex(id)
	if i < 0 {
		return storage.Server{}, fmt.Errorf("%s: %w", op, ErrServerNotFound)
	}

	next := storage.CloneServers(a.servers)
	edit(&next[i])
	a.assignIDs(&next[i])
	if err := a.commitServers(ctx, next); err != nil {
		return storage.Server{}, fmt.Errorf("%s: %w", op, err)
	}

	if j := a.serverIndex(id); j >= 0 {
		return a.servers[j].Clone(), nil
	}
	return storage.Server{}, fmt.Errorf("%s: %w", op, ErrServerNotFound)
}

func (a *App) commitServers(ctx context.Context, servers []storage.Server) error {
	if err := a.ensureReady(); err != nil {
		return err
	}
	if err := a.store.SetServers(ctx, servers); err != nil {
		return err
	}
	a.flush(ctx)

	stored, err := a.store.GetServers(ctx)
	if err != nil {
		return err
	}
	a.servers = stored
	return nil
}

func (a *App) serverIndex(id string) int {
	for i, s := range a.servers {
		if s.ID == id {
			return i
		}
	}
	return -1
}

func (a *App) assignIDs(srv *storage.Server) {
	if srv.ID == "" {
		srv.ID = "server_" + a.newID()
	}
	if srv.Cameras == nil {
		srv.Cameras = []storage.Camera{}
	}
	for i := range srv.Cameras {
		if srv.Cameras[i].ID == "" {
			srv.Cameras[i].ID = "cam_" + a.newID()
		}
	}
}

func (a *App) SetHelpText(ctx context.Context, text string) (string, error) {
	const op = "service.state.SetHelpText"

	a.mu.Lock()
	defer a.mu.Unlock()

	if err := a.ensureReady(); err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	if err := a.store.SetHelpText(ctx, text); err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	a.flush(ctx)

	stored, err := a.store.GetHelpText(ctx)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	a.helpText = stored
	return a.helpText, nil
}

// AddCameraCheck добавляет запись и перечитывает историю из хранилища,
// чтобы порядок в памяти совпадал с порядком после перезагрузки.
func (a *App) AddCameraCheck(ctx context.Context, check storage.NewCameraCheck) (storage.CameraCheckRecord, error) {
	const op = "service.state.AddCameraCheck"

	a.mu.Lock()
	defer a.mu.Unlock()

	if err := a.ensureReady(); err != nil {
		return storage.CameraCheckRecord{}, fmt.Errorf("%s: %w", op, err)
	}
	rec, err := a.store.AddCameraCheckRecord(ctx, check)
	if err != nil {
		return storage.CameraCheckRecord{}, fmt.Errorf("%s: %w", op, err)
	}
	a.flush(ctx)

	history, err := a.store.GetCameraHistory(ctx)
	if err != nil {
		return storage.CameraCheckRecord{}, fmt.Errorf("%s: %w", op, err)
	}
	a.cameraHistory = history
	return rec.Clone(), nil
}

func (a *App) AddJornadaCheck(ctx context.Context, check storage.NewJornadaCheck) (storage.JornadaCheckRecord, error) {
	const op = "service.state.AddJornadaCheck"

	a.mu.Lock()
	defer a.mu.Unlock()

	if err := a.ensureReady(); err != nil {
		return storage.JornadaCheckRecord{}, fmt.Errorf("%s: %w", op, err)
	}
	rec, err := a.store.AddJornadaCheckRecord(ctx, check)
	if err != nil {
		return storage.JornadaCheckRecord{}, fmt.Errorf("%s: %w", op, err)
	}
	a.flush(ctx)

	history, err := a.store.GetJornadaHistory(ctx)
	if err != nil {
		return storage.JornadaCheckRecord{}, fmt.Errorf("%s: %w", op, err)
	}
	a.jornadaHistory = history
	return rec.Clone(), nil
}

// UpdateJornadaCheck переписывает запись на месте. Дата и id сохраняются,
// пустой оператор в правке оставляет прежнего.
func (a *App) UpdateJornadaCheck(ctx context.Context, id string, edit storage.NewJornadaCheck) (storage.JornadaCheckRecord, error) {
	const op = "service.state.UpdateJornadaCheck"

	a.mu.Lock()
	defer a.mu.Unlock()

	if err := a.ensureReady(); err != nil {
		return storage.JornadaCheckRecord{}, fmt.Errorf("%s: %w", op, err)
	}

	i := -1
	for j, r := range a.jornadaHistory {
		if r.ID == id {
			i = j
			break
		}
	}
	if i < 0 {
		return storage.JornadaCheckRecord{}, fmt.Errorf("%s: %w", op, ErrRecordNotFound)
	}

	rec := a.jornadaHistory[i].Clone()
	if edit.Operator != "" {
		rec.Operator = edit.Operator
	}
	rec.Shift = edit.Shift
	rec.CompletedTasks = append([]string{}, edit.CompletedTasks...)
	rec.Observations = edit.Observations

	if err := a.store.UpdateJornadaCheckRecord(ctx, rec); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return storage.JornadaCheckRecord{}, fmt.Errorf("%s: %w", op, ErrRecordNotFound)
		}
		return storage.JornadaCheckRecord{}, fmt.Errorf("%s: %w", op, err)
	}
	a.flush(ctx)

	a.jornadaHistory[i] = rec
	return rec.Clone(), nil
}

// Import заменяет всё состояние снимком. Здесь ошибка сохранения на диск
// возвращается вызывающему.
func (a *App) Import(ctx context.Context, snap storage.Snapshot) error {
	const op = "service.state.Import"

	a.mu.Lock()
	defer a.mu.Unlock()

	if err := a.ensureReady(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if err := a.store.ReplaceAll(ctx, snap); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	saveErr := a.store.Save(ctx)

	if err := a.reload(ctx); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if saveErr != nil {
		return fmt.Errorf("%s: сохранение: %w", op, saveErr)
	}
	return nil
}
