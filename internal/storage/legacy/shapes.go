package legacy

import (
	"encoding/json"
	"fmt"

	"chequeos-rutinas/internal/storage"
)

type ServerShape int

const (
	ShapeUnknown ServerShape = iota
	ShapeCurrent
	ShapeLegacyV1
)

func (s ServerShape) String() string {
	switch s {
	case ShapeCurrent:
		return "current"
	case ShapeLegacyV1:
		return "legacy-v1"
	}
	return "unknown"
}

// ServerV1 — самая старая форма: именованный сервер со списком устройств.
type ServerV1 struct {
	Name    string     `json:"name"`
	Devices []DeviceV1 `json:"devices"`
}

type DeviceV1 struct {
	IP      string           `json:"ip"`
	Cameras []storage.Camera `json:"cameras"`
}

// DetectServerShape определяет форму списка серверов по первому элементу.
func DetectServerShape(raw json.RawMessage) ServerShape {
	var items []map[string]json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		return ShapeUnknown
	}
	if len(items) == 0 {
		return ShapeCurrent
	}

	first := items[0]
	_, hasName := first["name"]
	_, hasDevices := first["devices"]
	_, hasIP := first["ip"]
	_, hasCameras := first["cameras"]

	switch {
	case hasName && hasDevices && !(hasIP && hasCameras):
		return ShapeLegacyV1
	case hasIP || hasCameras:
		return ShapeCurrent
	}
	return ShapeUnknown
}

// FlattenV1 превращает каждое устройство старого сервера в отдельный Server.
func FlattenV1(servers []ServerV1) []storage.Server {
	out := []storage.Server{}
	for i, srv := range servers {
		for j, dev := range srv.Devices {
			cameras := dev.Cameras
			if cameras == nil {
				cameras = []storage.Camera{}
			}
			out = append(out, storage.Server{
				ID:      fmt.Sprintf("server-%d-%d-%s", i, j, dev.IP),
				IP:      dev.IP,
				Cameras: cameras,
			})
		}
	}
	return out
}

// DecodeServers разбирает список серверов в любой известной форме.
func DecodeServers(raw json.RawMessage) ([]storage.Server, ServerShape, error) {
	shape := DetectServerShape(raw)

	switch shape {
	case ShapeLegacyV1:
		var v1 []ServerV1
		if err := json.Unmarshal(raw, &v1); err != nil {
			return nil, shape, fmt.Errorf("разбор серверов %s: %w", shape, err)
		}
		return FlattenV1(v1), shape, nil
	default:
		var servers []storage.Server
		if err := json.Unmarshal(raw, &servers); err != nil {
			return nil, shape, fmt.Errorf("разбор серверов: %w", err)
		}
		for i := range servers {
			if servers[i].Cameras == nil {
				servers[i].Cameras = []storage.Camera{}
			}
		}
		if servers == nil {
			servers = []storage.Server{}
		}
		return servers, shape, nil
	}
}

// IsLegacyCameraRecord — запись со старым ключом deviceStates вместо cameraStates.
func IsLegacyCameraRecord(raw json.RawMessage) bool {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return false
	}
	_, hasDevice := fields["deviceStates"]
	_, hasCamera := fields["cameraStates"]
	return hasDevice && !hasCamera
}

// DecodeCameraRecords разбирает историю проверок камер. У старых записей
// (deviceStates) детализация не переносится: cameraStates остаётся пустым,
// остальные поля сохраняются.
func DecodeCameraRecords(raw json.RawMessage) (records []storage.CameraCheckRecord, legacyCount int, err error) {
	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, 0, fmt.Errorf("разбор истории камер: %w", err)
	}

	records = make([]storage.CameraCheckRecord, 0, len(items))
	for i, item := range items {
		var rec storage.CameraCheckRecord
		if err := json.Unmarshal(item, &rec); err != nil {
			return nil, 0, fmt.Errorf("разбор записи камер #%d: %w", i, err)
		}
		if IsLegacyCameraRecord(item) {
			rec.CameraStates = map[string]storage.DeviceState{}
			legacyCount++
		}
		rec.Normalize()
		records = append(records, rec)
	}
	return records, legacyCount, nil
}

func DecodeJornadaRecords(raw json.RawMessage) ([]storage.JornadaCheckRecord, error) {
	var records []storage.JornadaCheckRecord
	if err := json.Unmarshal(raw, &records); err != nil {
		return nil, fmt.Errorf("разбор истории смен: %w", err)
	}
	for i := range records {
		records[i].Normalize()
	}
	if records == nil {
		records = []storage.JornadaCheckRecord{}
	}
	return records, nil
}
