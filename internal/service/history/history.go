// Package history готовит записи истории к показу: фильтры и привязка
// камер к текущему списку серверов.
package history

import (
	"sort"
	"strings"

	"chequeos-rutinas/internal/constants"
	"chequeos-rutinas/internal/storage"
)

const UnknownTask = "Tarea desconocida"

// Filter — пустое поле не фильтрует. Date — префикс ISO-даты, обычно YYYY-MM-DD.
type Filter struct {
	Date     string
	Operator string
}

func (f Filter) match(date, operator string) bool {
	if f.Operator != "" && operator != f.Operator {
		return false
	}
	if f.Date == "" {
		return true
	}
	t, err := storage.ParseDate(date)
	if err != nil {
		return false
	}
	return strings.HasPrefix(storage.FormatDate(t), f.Date)
}

// FilterCamera возвращает подходящие записи, новые сначала.
func FilterCamera(records []storage.CameraCheckRecord, f Filter) []storage.CameraCheckRecord {
	out := make([]storage.CameraCheckRecord, 0, len(records))
	for _, r := range records {
		if f.match(r.Date, r.Operator) {
			out = append(out, r.Clone())
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return dateKey(out[i].Date) > dateKey(out[j].Date)
	})
	return out
}

// FilterJornada сохраняет порядок хранилища.
func FilterJornada(records []storage.JornadaCheckRecord, f Filter) []storage.JornadaCheckRecord {
	out := make([]storage.JornadaCheckRecord, 0, len(records))
	for _, r := range records {
		if f.match(r.Date, r.Operator) {
			out = append(out, r.Clone())
		}
	}
	return out
}

func dateKey(date string) string {
	if t, err := storage.ParseDate(date); err == nil {
		return storage.FormatDate(t)
	}
	return date
}

type CameraRow struct {
	Camera storage.Camera      `json:"camera"`
	State  storage.DeviceState `json:"state"`
}

type ServerGroup struct {
	ServerID string      `json:"serverId"`
	IP       string      `json:"ip"`
	OK       bool        `json:"ok"`
	Cameras  []CameraRow `json:"cameras"`
}

type UnresolvedCamera struct {
	CameraID string              `json:"cameraId"`
	State    storage.DeviceState `json:"state"`
}

type CameraRecordView struct {
	storage.CameraCheckRecord
	Servers    []ServerGroup      `json:"servers"`
	Unresolved []UnresolvedCamera `json:"unresolved"`
}

// ResolveCameraRecord группирует состояния камер по IP серверов.
// Камеры, которых уже нет в списке, попадают в Unresolved.
func ResolveCameraRecord(rec storage.CameraCheckRecord, servers []storage.Server) CameraRecordView {
	view := CameraRecordView{
		CameraCheckRecord: rec.Clone(),
		Servers:           []ServerGroup{},
		Unresolved:        []UnresolvedCamera{},
	}

	groups := make(map[string]int)
	seen := make(map[string]bool, len(rec.CameraStates))
	for _, srv := range servers {
		for _, cam := range srv.Cameras {
			state, ok := rec.CameraStates[cam.ID]
			if !ok || seen[cam.ID] {
				continue
			}
			seen[cam.ID] = true

			i, ok := groups[srv.IP]
			if !ok {
				i = len(view.Servers)
				groups[srv.IP] = i
				view.Servers = append(view.Servers, ServerGroup{
					ServerID: srv.ID,
					IP:       srv.IP,
					OK:       rec.ServerStates[srv.ID],
					Cameras:  []CameraRow{},
				})
			}
			view.Servers[i].Cameras = append(view.Servers[i].Cameras, CameraRow{Camera: cam, State: state})
		}
	}

	for id, state := range rec.CameraStates {
		if !seen[id] {
			view.Unresolved = append(view.Unresolved, UnresolvedCamera{CameraID: id, State: state})
		}
	}
	sort.Slice(view.Unresolved, func(i, j int) bool {
		return view.Unresolved[i].CameraID < view.Unresolved[j].CameraID
	})
	return view
}

type TaskRow struct {
	ID   string `json:"id"`
	Text string `json:"text"`
}

type JornadaRecordView struct {
	storage.JornadaCheckRecord
	Tasks []TaskRow `json:"tasks"`
}

func ResolveJornadaRecord(rec storage.JornadaCheckRecord) JornadaRecordView {
	view := JornadaRecordView{JornadaCheckRecord: rec.Clone(), Tasks: make([]TaskRow, 0, len(rec.CompletedTasks))}
	for _, id := range rec.CompletedTasks {
		text, ok := constants.TaskText(id)
		if !ok {
			text = UnknownTask
		}
		view.Tasks = append(view.Tasks, TaskRow{ID: id, Text: text})
	}
	return view
}
