package storage

import "time"

// DateLayout — формат ISO-8601 с миллисекундами, строки сортируются как время.
const DateLayout = "2006-01-02T15:04:05.000Z"

type DeviceStatus string

const (
	StatusNotChecked   DeviceStatus = "NOT_CHECKED"
	StatusOK           DeviceStatus = "OK"
	StatusNoConnection DeviceStatus = "SC"
	StatusInRepair     DeviceStatus = "ER"
)

func (s DeviceStatus) Valid() bool {
	switch s {
	case StatusNotChecked, StatusOK, StatusNoConnection, StatusInRepair:
		return true
	}
	return false
}

type Shift string

const (
	ShiftMorning   Shift = "Mañana"
	ShiftAfternoon Shift = "Tarde"
)

func (s Shift) Valid() bool {
	return s == ShiftMorning || s == ShiftAfternoon
}

type DeviceState struct {
	Status      DeviceStatus `json:"status"`
	Observation string       `json:"observation"`
}

type CameraCheckRecord struct {
	ID                  string                 `json:"id"`
	Date                string                 `json:"date"`
	Operator            string                 `json:"operator"`
	GeneralObservations string                 `json:"generalObservations"`
	CameraStates        map[string]DeviceState `json:"cameraStates"`
	ServerStates        map[string]bool        `json:"serverStates"`
}

// NewCameraCheck — данные чек-листа камер без id и даты, их проставляет хранилище.
type NewCameraCheck struct {
	Operator            string                 `json:"operator"`
	GeneralObservations string                 `json:"generalObservations"`
	CameraStates        map[string]DeviceState `json:"cameraStates"`
	ServerStates        map[string]bool        `json:"serverStates"`
}

type JornadaCheckRecord struct {
	ID             string   `json:"id"`
	Date           string   `json:"date"`
	Operator       string   `json:"operator"`
	Shift          Shift    `json:"shift"`
	CompletedTasks []string `json:"completedTasks"`
	Observations   string   `json:"observations"`
}

type NewJornadaCheck struct {
	Operator       string   `json:"operator"`
	Shift          Shift    `json:"shift"`
	CompletedTasks []string `json:"completedTasks"`
	Observations   string   `json:"observations"`
}

func (r CameraCheckRecord) Time() (time.Time, error) {
	return ParseDate(r.Date)
}

func (r JornadaCheckRecord) Time() (time.Time, error) {
	return ParseDate(r.Date)
}

// ParseDate принимает как наш формат, так и любой RFC3339 (старые записи).
func ParseDate(s string) (time.Time, error) {
	if t, err := time.Parse(DateLayout, s); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339Nano, s)
}

func FormatDate(t time.Time) string {
	return t.UTC().Format(DateLayout)
}

func (r CameraCheckRecord) Clone() CameraCheckRecord {
	out := r
	out.CameraStates = make(map[string]DeviceState, len(r.CameraStates))
	for k, v := range r.CameraStates {
		out.CameraStates[k] = v
	}
	out.ServerStates = make(map[string]bool, len(r.ServerStates))
	for k, v := range r.ServerStates {
		out.ServerStates[k] = v
	}
	return out
}

func (r JornadaCheckRecord) Clone() JornadaCheckRecord {
	out := r
	out.CompletedTasks = append([]string{}, r.CompletedTasks...)
	return out
}

// Normalize заменяет nil-коллекции пустыми, чтобы в JSON не попадал null.
func (r *CameraCheckRecord) Normalize() {
	if r.CameraStates == nil {
		r.CameraStates = map[string]DeviceState{}
	}
	if r.ServerStates == nil {
		r.ServerStates = map[string]bool{}
	}
}

func (r *JornadaCheckRecord) Normalize() {
	if r.CompletedTasks == nil {
		r.CompletedTasks = []string{}
	}
}

func CloneCameraHistory(in []CameraCheckRecord) []CameraCheckRecord {
	out := make([]CameraCheckRecord, len(in))
	for i, r := range in {
		out[i] = r.Clone()
	}
	return out
}

func CloneJornadaHistory(in []JornadaCheckRecord) []JornadaCheckRecord {
	out := make([]JornadaCheckRecord, len(in))
	for i, r := range in {
		out[i] = r.Clone()
	}
	return out
}
