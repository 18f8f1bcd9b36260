package state

import "chequeos-rutinas/internal/storage"

// Все чтения отдают копии: вызывающий может менять их свободно.

func (a *App) Operators() []string {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return append([]string{}, a.operators...)
}

func (a *App) HasOperator(name string) bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return indexOf(a.operators, name) >= 0
}

func (a *App) Servers() []storage.Server {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return storage.CloneServers(a.servers)
}

func (a *App) HelpText() string {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.helpText
}

func (a *App) CameraHistory() []storage.CameraCheckRecord {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return storage.CloneCameraHistory(a.cameraHistory)
}

func (a *App) JornadaHistory() []storage.JornadaCheckRecord {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return storage.CloneJornadaHistory(a.jornadaHistory)
}

func (a *App) CameraCheck(id string) (storage.CameraCheckRecord, bool) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	for _, r := range a.cameraHistory {
		if r.ID == id {
			return r.Clone(), true
		}
	}
	return storage.CameraCheckRecord{}, false
}

func (a *App) JornadaCheck(id string) (storage.JornadaCheckRecord, bool) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	for _, r := range a.jornadaHistory {
		if r.ID == id {
			return r.Clone(), true
		}
	}
	return storage.JornadaCheckRecord{}, false
}

// Snapshot — полное состояние для экспорта.
func (a *App) Snapshot() storage.Snapshot {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return storage.Snapshot{
		Version:        storage.SnapshotVersion,
		Operators:      append([]string{}, a.operators...),
		Servers:        storage.CloneServers(a.servers),
		HelpText:       a.helpText,
		CheckHistory:   storage.CloneCameraHistory(a.cameraHistory),
		JornadaHistory: storage.CloneJornadaHistory(a.jornadaHistory),
	}
}

func indexOf(list []string, v string) int {
	for i, s := range list {
		if s == v {
			return i
		}
	}
	return -1
}
